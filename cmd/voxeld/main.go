package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxelworld/internal/api"
	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/observability"
	"github.com/annel0/voxelworld/internal/simulation"
	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/attribute"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML-конфигурации (или VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	if err := logging.InitDefaultLoggerInDir("voxeld", cfg.Logging.Dir); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	level := logging.ParseLevel(cfg.Logging.Level)
	logging.Default().SetLevels(level, logging.TRACE)

	loggers := logging.NewLoggerManager(cfg.Logging.Dir)
	loggers.SetConsoleLevel(level)
	defer loggers.CloseAll()
	worldLogger := loggers.MustGetLogger(logging.ComponentWorld)
	apiLogger := loggers.MustGetLogger(logging.ComponentAPI)
	loopLogger := loggers.MustGetLogger(logging.ComponentSimulation)

	logging.Info("🧊 Запуск voxeld (seed=%d, Ra=%.0f, Rd=%.0f)",
		cfg.World.Seed, cfg.World.ActivationRadius, cfg.World.DeactivationRadius)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.GetEndpoint(),
			SampleRatio: cfg.Telemetry.SampleRatio,
			Attributes:  []attribute.KeyValue{attribute.Int64("world.seed", cfg.World.Seed)},
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logging.Warn("⚠️ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	if err := run(ctx, cfg, worldLogger, loopLogger, apiLogger); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

func run(ctx context.Context, cfg *config.Config, worldLogger, loopLogger, apiLogger *logging.Logger) error {
	// === ТИПЫ БЛОКОВ ===
	registry := block.NewDefaultRegistry()
	if cfg.World.BlockDefinitions != "" {
		if err := registry.LoadDefinitions(cfg.World.BlockDefinitions); err != nil {
			return fmt.Errorf("загрузка описаний блоков: %w", err)
		}
	}
	logging.Info("🧱 Зарегистрировано типов блоков: %d", registry.Count())

	// === ХРАНИЛИЩЕ ===
	store, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("открытие хранилища: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error("❌ Ошибка закрытия хранилища: %v", err)
			}
		}()
	}

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := world.Options{
		Metrics: world.NewMetrics(reg),
		Logger:  worldLogger,
	}
	if store != nil {
		opts.Store = store
	}

	// === МИР ===
	w, err := world.NewWorld(registry, util.NewPerlinNoise(cfg.World.Seed), cfg.World.Settings(), opts)
	if err != nil {
		return fmt.Errorf("создание мира: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logging.Error("❌ Не все чанки сохранены: %v", err)
		}
	}()

	reference, err := simulation.ReferenceFromConfig(cfg.World.Reference)
	if err != nil {
		return err
	}

	loop := simulation.NewLoop(w, reference, cfg.World.TickInterval(), loopLogger)

	// === REST API ===
	gin.SetMode(cfg.Server.GinMode)
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{
		Port:       restPort,
		Executor:   loop,
		Registerer: reg,
		Gatherer:   reg,
		Logger:     apiLogger,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", restPort)

	loopDone := make(chan struct{})
	loopCtx, cancelLoop := context.WithCancel(ctx)
	go func() {
		loop.Run(loopCtx)
		close(loopDone)
	}()

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	case err := <-serverErr:
		if err != nil {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	// Мир сохраняется только после остановки цикла: у него один владелец
	cancelLoop()
	<-loopDone
	return nil
}
