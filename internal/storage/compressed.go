package storage

import (
	"bytes"
	"fmt"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic сигнатура кадра zstd
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Compressed сжимает данные чанков zstd перед записью во внутреннее хранилище.
// Несжатые записи (начинаются с SMCD) читаются как есть.
type Compressed struct {
	inner   world.ChunkStore
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressed оборачивает хранилище сжатием
func NewCompressed(inner world.ChunkStore) (*Compressed, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Compressed{
		inner:   inner,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Load читает и распаковывает данные чанка
func (c *Compressed) Load(coords vec.Vec2) ([]byte, bool, error) {
	data, found, err := c.inner.Load(coords)
	if err != nil || !found {
		return nil, found, err
	}

	if !bytes.HasPrefix(data, zstdMagic) {
		return data, true, nil
	}

	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress chunk %v: %w", coords, err)
	}
	return raw, true, nil
}

// Save сжимает и записывает данные чанка
func (c *Compressed) Save(coords vec.Vec2, data []byte) error {
	return c.inner.Save(coords, c.encoder.EncodeAll(data, nil))
}

// Close освобождает кодеки и закрывает внутреннее хранилище, если оно это умеет
func (c *Compressed) Close() error {
	c.encoder.Close()
	c.decoder.Close()

	if closer, ok := c.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
