package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        `yaml:"addr"`       // Адрес Redis сервера
	Password  string        `yaml:"password"`   // Пароль (пустой если не требуется)
	DB        int           `yaml:"db"`         // Номер базы данных
	KeyPrefix string        `yaml:"key_prefix"` // Префикс для ключей
	TTL       time.Duration `yaml:"ttl"`        // Время жизни записей, 0 - без ограничения
	Timeout   time.Duration `yaml:"timeout"`    // Таймаут одной операции
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "voxel:chunk:",
		Timeout:   2 * time.Second,
	}
}

// RedisStore хранит сериализованные чанки в Redis
type RedisStore struct {
	client    *redis.Client
	ctx       context.Context
	keyPrefix string
	ttl       time.Duration
	timeout   time.Duration
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRedisConfig().Timeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx := context.Background()

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisStore{
		client:    client,
		ctx:       ctx,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
		timeout:   config.Timeout,
	}, nil
}

func (rs *RedisStore) key(coords vec.Vec2) string {
	return fmt.Sprintf("%s%d:%d", rs.keyPrefix, coords.X, coords.Y)
}

// Load читает данные чанка
func (rs *RedisStore) Load(coords vec.Vec2) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(rs.ctx, rs.timeout)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.key(coords)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get chunk %v: %w", coords, err)
	}
	return data, true, nil
}

// Save записывает данные чанка
func (rs *RedisStore) Save(coords vec.Vec2, data []byte) error {
	ctx, cancel := context.WithTimeout(rs.ctx, rs.timeout)
	defer cancel()

	if err := rs.client.Set(ctx, rs.key(coords), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save chunk %v: %w", coords, err)
	}
	return nil
}

// Delete удаляет чанк
func (rs *RedisStore) Delete(coords vec.Vec2) error {
	ctx, cancel := context.WithTimeout(rs.ctx, rs.timeout)
	defer cancel()

	return rs.client.Del(ctx, rs.key(coords)).Err()
}

// Close закрывает соединение
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
