package world

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
)

// Формат файла чанка: 12 байт заголовка и пары (тип, длина серии)
const (
	ChunkFileHeaderSize = 12
	ChunkFormatRLE      = 'R'
	MaxRunLength        = 255
)

var chunkFileMagic = [4]byte{'S', 'M', 'C', 'D'}

// Ошибки разбора файла чанка. Все они восстановимые: вызывающий
// откатывается на генерацию.
var (
	ErrTruncated          = errors.New("chunk file truncated")
	ErrBadMagic           = errors.New("chunk file has bad magic")
	ErrVersionMismatch    = errors.New("chunk file version mismatch")
	ErrDimensionMismatch  = errors.New("chunk file dimension bits mismatch")
	ErrUnsupportedFormat  = errors.New("chunk file format not supported")
	ErrBlockCountMismatch = errors.New("chunk file block count mismatch")
	ErrZeroRun            = errors.New("chunk file contains zero-length run")
	ErrUnknownBlockType   = errors.New("chunk file references unknown block type")
)

// ChunkFileHeader заголовок файла чанка
type ChunkFileHeader struct {
	Version uint8
	BitsX   uint8
	BitsY   uint8
	BitsZ   uint8
	Format  uint8
}

// Run серия одинаковых блоков
type Run struct {
	TypeIndex uint8
	Length    int
}

// ChunkFileName возвращает имя файла сохранения для координат чанка
func ChunkFileName(coords vec.Vec2) string {
	return fmt.Sprintf("Chunk_%d,%d.chunk", coords.X, coords.Y)
}

// ParseChunkFile проверяет заголовок и структуру тела файла и возвращает серии.
// Типы блоков не проверяются: это делает DecodeRLE по таблице типов чанка.
func ParseChunkFile(data []byte) (ChunkFileHeader, []Run, error) {
	var header ChunkFileHeader

	if len(data) < ChunkFileHeaderSize {
		return header, nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if [4]byte(data[:4]) != chunkFileMagic {
		return header, nil, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}

	header = ChunkFileHeader{
		Version: data[4],
		BitsX:   data[5],
		BitsY:   data[6],
		BitsZ:   data[7],
		Format:  data[11],
	}

	if header.Version != ChunkVersion {
		return header, nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, header.Version, ChunkVersion)
	}
	if header.BitsX != ChunkBitsX || header.BitsY != ChunkBitsY || header.BitsZ != ChunkBitsZ {
		return header, nil, fmt.Errorf("%w: got %d/%d/%d, want %d/%d/%d", ErrDimensionMismatch,
			header.BitsX, header.BitsY, header.BitsZ, ChunkBitsX, ChunkBitsY, ChunkBitsZ)
	}
	if header.Format != ChunkFormatRLE {
		return header, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, header.Format)
	}

	body := data[ChunkFileHeaderSize:]
	if len(body)%2 != 0 {
		return header, nil, fmt.Errorf("%w: odd body length %d", ErrTruncated, len(body))
	}

	runs := make([]Run, 0, len(body)/2)
	total := 0
	for i := 0; i < len(body); i += 2 {
		length := int(body[i+1])
		if length == 0 {
			return header, nil, fmt.Errorf("%w: pair %d", ErrZeroRun, i/2)
		}
		total += length
		if total > BlocksPerChunk {
			return header, nil, fmt.Errorf("%w: runs exceed %d blocks", ErrBlockCountMismatch, BlocksPerChunk)
		}
		runs = append(runs, Run{TypeIndex: body[i], Length: length})
	}

	if total != BlocksPerChunk {
		return header, nil, fmt.Errorf("%w: got %d, want %d", ErrBlockCountMismatch, total, BlocksPerChunk)
	}

	return header, runs, nil
}

// EncodeRLE сериализует типы блоков чанка: заголовок и серии не длиннее 255
func (c *Chunk) EncodeRLE() []byte {
	data := make([]byte, ChunkFileHeaderSize, ChunkFileHeaderSize+512)
	copy(data, chunkFileMagic[:])
	data[4] = ChunkVersion
	data[5] = ChunkBitsX
	data[6] = ChunkBitsY
	data[7] = ChunkBitsZ
	data[11] = ChunkFormatRLE

	current := c.blocks[0].typeIndex
	count := 0
	for i := range c.blocks {
		t := c.blocks[i].typeIndex
		if t != current || count == MaxRunLength {
			data = append(data, current, byte(count))
			current = t
			count = 0
		}
		count++
	}
	data = append(data, current, byte(count))

	return data
}

// DecodeRLE заменяет блоки чанка содержимым файла. При любой ошибке
// блоки чанка не меняются. Свет и флаги сбрасываются, флаги выводятся из типа.
func (c *Chunk) DecodeRLE(data []byte) error {
	_, runs, err := ParseChunkFile(data)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if _, ok := c.registry.LookupByIndex(run.TypeIndex); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownBlockType, run.TypeIndex)
		}
	}

	index := 0
	for _, run := range runs {
		t := c.registry.GetTypeByIndex(int(run.TypeIndex))
		for n := 0; n < run.Length; n++ {
			c.blocks[index].reset()
			c.blocks[index].SetType(t)
			index++
		}
	}

	c.isMeshDirty = true
	c.needsToBeSaved = false
	return nil
}

// InitializeFromBytes загружает чанк из данных файла; false при повреждённых данных
func (c *Chunk) InitializeFromBytes(data []byte) bool {
	if err := c.DecodeRLE(data); err != nil {
		logging.Warn("Чанк %v: данные отклонены: %v", c.coords, err)
		return false
	}
	return true
}

// InitializeFromFile загружает чанк из файла; false, если файла нет или он повреждён
func (c *Chunk) InitializeFromFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Чанк %v: файл %s не найден", c.coords, path)
		} else {
			logging.Warn("Чанк %v: ошибка чтения %s: %v", c.coords, path, err)
		}
		return false
	}

	if err := c.DecodeRLE(data); err != nil {
		logging.Warn("Чанк %v: файл %s отклонён: %v", c.coords, path, err)
		return false
	}
	return true
}

// SaveToFile записывает чанк в файл, создавая каталог при необходимости
func (c *Chunk) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chunk dir: %w", err)
		}
	}
	if err := os.WriteFile(path, c.EncodeRLE(), 0o644); err != nil {
		return fmt.Errorf("write chunk file: %w", err)
	}
	c.needsToBeSaved = false
	return nil
}

// WriteToFile записывает чанк в файл; ошибка только логируется
func (c *Chunk) WriteToFile(path string) {
	if err := c.SaveToFile(path); err != nil {
		logging.Error("Чанк %v: не удалось сохранить в %s: %v", c.coords, path, err)
	}
}
