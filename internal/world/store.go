package world

import "github.com/annel0/voxelworld/internal/vec"

// ChunkStore хранилище сериализованных чанков (формат SMCD).
// Вызовы синхронные и выполняются в потоке симуляции.
type ChunkStore interface {
	// Load возвращает данные чанка; found=false, если чанк не сохранялся
	Load(coords vec.Vec2) (data []byte, found bool, err error)
	// Save сохраняет данные чанка, перезаписывая прежние
	Save(coords vec.Vec2, data []byte) error
}
