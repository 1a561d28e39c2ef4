package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
)

// FileStore хранит каждый чанк в отдельном файле Chunk_<x>,<y>.chunk
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore создаёт файловое хранилище в каталоге basePath
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Path возвращает путь к файлу чанка
func (fs *FileStore) Path(coords vec.Vec2) string {
	return filepath.Join(fs.basePath, world.ChunkFileName(coords))
}

// Load читает файл чанка; отсутствие файла не ошибка
func (fs *FileStore) Load(coords vec.Vec2) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.Path(coords))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения чанка %v: %w", coords, err)
	}
	return data, true, nil
}

// Save записывает файл чанка через временный файл, чтобы не оставить обрезанный файл
func (fs *FileStore) Save(coords vec.Vec2, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.Path(coords)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи чанка %v: %w", coords, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ошибка записи чанка %v: %w", coords, err)
	}
	return nil
}

// List возвращает координаты всех сохранённых чанков
func (fs *FileStore) List() ([]vec.Vec2, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", fs.basePath, err)
	}

	var coords []vec.Vec2
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if c, ok := ParseChunkFileName(entry.Name()); ok {
			coords = append(coords, c)
		}
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords, nil
}

// Close ничего не делает: файлы закрываются после каждой операции
func (fs *FileStore) Close() error {
	return nil
}

// ParseChunkFileName разбирает имя вида Chunk_<x>,<y>.chunk
func ParseChunkFileName(name string) (vec.Vec2, bool) {
	if !strings.HasPrefix(name, "Chunk_") || !strings.HasSuffix(name, ".chunk") {
		return vec.Vec2{}, false
	}

	var c vec.Vec2
	if _, err := fmt.Sscanf(name, "Chunk_%d,%d.chunk", &c.X, &c.Y); err != nil {
		return vec.Vec2{}, false
	}
	if world.ChunkFileName(c) != name {
		return vec.Vec2{}, false
	}
	return c, true
}
