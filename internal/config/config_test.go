package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 25, cfg.World.SeaLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.World.TickInterval())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  seed: 42
  activation_radius: 64
  deactivation_radius: 96
  reference:
    mode: orbit
    radius: 100
    period: 30s
storage:
  backend: badger
  path: /tmp/voxel
  compress: true
  redis:
    timeout: 1s
server:
  rest_port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 64.0, cfg.World.Settings().ActivationRadius)
	assert.Equal(t, 30*time.Second, cfg.World.Reference.Period)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, time.Second, cfg.Storage.Redis.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr, "Незаданные поля остаются по умолчанию")
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.Equal(t, 30, cfg.World.BaseElevation)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "world:\n  seed: 7\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.World.Seed)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "world: [1, 2"))
	assert.Error(t, err, "Некорректный YAML")

	_, err = Load(writeConfig(t, "world:\n  activation_radius: 100\n  deactivation_radius: 50\n"))
	assert.Error(t, err, "Радиус деактивации меньше радиуса активации")

	_, err = Load(writeConfig(t, "world:\n  reference:\n    mode: spiral\n"))
	assert.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	cfg := Default()

	t.Setenv("VOXEL_REST_PORT", "9100")
	assert.Equal(t, 9100, cfg.Server.GetRESTPort())

	t.Setenv("VOXEL_REST_PORT", "bogus")
	assert.Equal(t, 8088, cfg.Server.GetRESTPort())

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	assert.Equal(t, "collector:4318", cfg.Telemetry.GetEndpoint())

	t.Setenv("VOXEL_STORAGE_BACKEND", "redis")
	t.Setenv("VOXEL_REDIS_ADDR", "redis:6379")
	storageCfg := cfg.StorageConfig()
	assert.Equal(t, "redis", storageCfg.Backend)
	assert.Equal(t, "redis:6379", storageCfg.Redis.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend, "Исходная конфигурация не меняется")
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "voxelworld.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "orbit", cfg.World.Reference.Mode)
	assert.Equal(t, 2*time.Minute, cfg.World.Reference.Period)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, 2*time.Second, cfg.Storage.Redis.Timeout)
	assert.Equal(t, filepath.Join("configs", "blocks.yaml"), cfg.World.BlockDefinitions)
}
