package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/world"
)

// Поддерживаемые бэкенды
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Store хранилище чанков, которое нужно закрыть по завершении
type Store interface {
	world.ChunkStore
	io.Closer
}

// Config выбор и настройки бэкенда
type Config struct {
	Backend  string      `yaml:"backend"`  // none | file | badger | redis
	Path     string      `yaml:"path"`     // Каталог для file и badger
	Compress bool        `yaml:"compress"` // Сжимать чанки zstd
	Cache    bool        `yaml:"cache"`    // Redis как горячий кеш над file/badger
	Redis    RedisConfig `yaml:"redis"`
}

// Open открывает хранилище по конфигурации. Для BackendNone возвращает nil:
// мир тогда не сохраняется.
func Open(cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		logging.Info("💾 Хранилище чанков отключено")
		return nil, nil
	case BackendFile:
		store, err = NewFileStore(cfg.Path)
	case BackendBadger:
		store, err = NewBadgerStore(cfg.Path)
	case BackendRedis:
		store, err = NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache && !strings.EqualFold(cfg.Backend, BackendRedis) {
		hot, err := NewRedisStore(cfg.Redis)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("кеш чанков: %w", err)
		}
		store = NewTiered(hot, store)
	}

	if cfg.Compress {
		compressed, err := NewCompressed(store)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = compressed
	}

	logging.Info("💾 Хранилище чанков: %s (сжатие: %v, кеш: %v)", cfg.Backend, cfg.Compress, cfg.Cache)
	return store, nil
}
