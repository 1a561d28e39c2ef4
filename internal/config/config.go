package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/world"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Storage   storage.Config  `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type WorldConfig struct {
	Seed               int64           `yaml:"seed"`
	ActivationRadius   float64         `yaml:"activation_radius"`
	DeactivationRadius float64         `yaml:"deactivation_radius"`
	MeshesPerTick      int             `yaml:"meshes_per_tick"`
	BaseElevation      int             `yaml:"base_elevation"`
	MaxDeviation       int             `yaml:"max_deviation"`
	SeaLevel           int             `yaml:"sea_level"`
	NoiseScale         float64         `yaml:"noise_scale"`
	TickRate           int             `yaml:"tick_rate"`         // Тиков в секунду
	BlockDefinitions   string          `yaml:"block_definitions"` // YAML с дополнительными типами блоков
	Reference          ReferenceConfig `yaml:"reference"`
}

// ReferenceConfig опорная точка стриминга: неподвижная или движущаяся по окружности
type ReferenceConfig struct {
	Mode   string        `yaml:"mode"` // static | orbit
	X      float64       `yaml:"x"`
	Y      float64       `yaml:"y"`
	Z      float64       `yaml:"z"`
	Radius float64       `yaml:"radius"`
	Period time.Duration `yaml:"period"`
}

type ServerConfig struct {
	RESTPort int    `yaml:"rest_port"`
	GinMode  string `yaml:"gin_mode"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"` // Доля трасс тиков; 0 - все
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает полную конфигурацию по умолчанию
func Default() *Config {
	settings := world.DefaultSettings()

	return &Config{
		World: WorldConfig{
			Seed:               1,
			ActivationRadius:   settings.ActivationRadius,
			DeactivationRadius: settings.DeactivationRadius,
			MeshesPerTick:      settings.MeshesPerTick,
			BaseElevation:      settings.Terrain.BaseElevation,
			MaxDeviation:       settings.Terrain.MaxDeviation,
			SeaLevel:           settings.Terrain.SeaLevel,
			NoiseScale:         settings.Terrain.NoiseScale,
			TickRate:           20,
			Reference: ReferenceConfig{
				Mode: "static",
				Z:    64,
			},
		},
		Storage: storage.Config{
			Backend: storage.BackendFile,
			Path:    "saves",
			Redis:   storage.DefaultRedisConfig(),
		},
		Server: ServerConfig{
			GinMode: "release",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxelworld",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Settings переводит конфигурацию мира в настройки World
func (w WorldConfig) Settings() world.Settings {
	return world.Settings{
		ActivationRadius:   w.ActivationRadius,
		DeactivationRadius: w.DeactivationRadius,
		MeshesPerTick:      w.MeshesPerTick,
		Terrain: world.TerrainParams{
			BaseElevation: w.BaseElevation,
			MaxDeviation:  w.MaxDeviation,
			SeaLevel:      w.SeaLevel,
			NoiseScale:    w.NoiseScale,
		},
	}
}

// TickInterval возвращает длительность одного тика
func (w WorldConfig) TickInterval() time.Duration {
	rate := w.TickRate
	if rate <= 0 {
		rate = 20
	}
	return time.Second / time.Duration(rate)
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// GetEndpoint возвращает адрес OTLP коллектора: config -> env -> default
func (t *TelemetryConfig) GetEndpoint() string {
	return getStringWithEnvFallback(t.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
}

// StorageConfig возвращает настройки хранилища с учётом переменных окружения
func (c *Config) StorageConfig() storage.Config {
	cfg := c.Storage
	cfg.Backend = getStringWithEnvFallback(os.Getenv("VOXEL_STORAGE_BACKEND"), "", cfg.Backend)
	cfg.Redis.Addr = getStringWithEnvFallback(os.Getenv("VOXEL_REDIS_ADDR"), "", cfg.Redis.Addr)
	return cfg
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if err := c.World.Settings().Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if c.World.Reference.Mode != "static" && c.World.Reference.Mode != "orbit" {
		return fmt.Errorf("world.reference.mode: unknown mode %q", c.World.Reference.Mode)
	}
	return nil
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// getStringWithEnvFallback возвращает строку с приоритетом: config -> env -> default
func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if envVar != "" {
		if envVal := os.Getenv(envVar); envVal != "" {
			return envVal
		}
	}
	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан - использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}
