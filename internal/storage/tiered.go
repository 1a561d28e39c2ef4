package storage

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
)

// Tiered двухуровневое хранилище: горячий кеш (Redis) поверх постоянного
// хранилища (файлы или BadgerDB). Чтение идёт сначала в кеш, промах
// дочитывается из постоянного хранилища и прогревает кеш. Запись сквозная.
//
// Постоянное хранилище - источник истины: ошибки кеша только логируются.
type Tiered struct {
	hot  world.ChunkStore
	cold world.ChunkStore

	hits   int64
	misses int64
}

// CacheMetrics счётчики обращений к горячему уровню
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatio      float64 `json:"hit_ratio"`
}

// NewTiered создаёт хранилище с кешем hot над cold
func NewTiered(hot, cold world.ChunkStore) *Tiered {
	return &Tiered{hot: hot, cold: cold}
}

// Load читает чанк из кеша, при промахе из постоянного хранилища
func (t *Tiered) Load(coords vec.Vec2) ([]byte, bool, error) {
	data, found, err := t.hot.Load(coords)
	if err != nil {
		logging.Warn("⚠️ Кеш чанков недоступен при чтении %v: %v", coords, err)
	} else if found {
		atomic.AddInt64(&t.hits, 1)
		return data, true, nil
	}
	atomic.AddInt64(&t.misses, 1)

	data, found, err = t.cold.Load(coords)
	if err != nil || !found {
		return data, found, err
	}

	if err := t.hot.Save(coords, data); err != nil {
		logging.Warn("⚠️ Не удалось прогреть кеш для чанка %v: %v", coords, err)
	}
	return data, true, nil
}

// Save пишет чанк в постоянное хранилище, затем в кеш
func (t *Tiered) Save(coords vec.Vec2, data []byte) error {
	if err := t.cold.Save(coords, data); err != nil {
		return err
	}
	if err := t.hot.Save(coords, data); err != nil {
		logging.Warn("⚠️ Не удалось обновить кеш для чанка %v: %v", coords, err)
	}
	return nil
}

// GetMetrics возвращает снимок счётчиков кеша
func (t *Tiered) GetMetrics() CacheMetrics {
	hits := atomic.LoadInt64(&t.hits)
	misses := atomic.LoadInt64(&t.misses)

	m := CacheMetrics{
		TotalRequests: hits + misses,
		CacheHits:     hits,
		CacheMisses:   misses,
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(hits) / float64(m.TotalRequests)
	}
	return m
}

// Close закрывает оба уровня
func (t *Tiered) Close() error {
	var errs []error
	for _, s := range []world.ChunkStore{t.hot, t.cold} {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
