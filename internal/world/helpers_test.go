package world

import (
	"errors"
	"testing"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/stretchr/testify/require"
)

// constantNoise даёт ровный рельеф: высота = base + value*maxDeviation
type constantNoise float64

func (n constantNoise) Noise2D(x, y, scale float64) float64 {
	return float64(n)
}

// memoryStore хранилище чанков в памяти
type memoryStore struct {
	data    map[vec.Vec2][]byte
	saves   int
	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[vec.Vec2][]byte)}
}

func (s *memoryStore) Load(coords vec.Vec2) ([]byte, bool, error) {
	data, ok := s.data[coords]
	return data, ok, nil
}

func (s *memoryStore) Save(coords vec.Vec2, data []byte) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.saves++
	s.data[coords] = append([]byte(nil), data...)
	return nil
}

var errStoreDown = errors.New("store down")

func testSettings() Settings {
	settings := DefaultSettings()
	settings.ActivationRadius = 40
	settings.DeactivationRadius = 60
	settings.MeshesPerTick = 0
	return settings
}

func newTestWorld(t *testing.T, store ChunkStore) *World {
	t.Helper()
	w, err := NewWorld(block.NewDefaultRegistry(), constantNoise(0), testSettings(), Options{Store: store})
	require.NoError(t, err)
	return w
}

func newTestChunk(coords vec.Vec2) *Chunk {
	return NewChunk(coords, block.NewDefaultRegistry())
}
