package simulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/observability"
	"github.com/annel0/voxelworld/internal/world"
	"go.opentelemetry.io/otel/attribute"
)

// ErrLoopStopped возвращается Do после остановки цикла
var ErrLoopStopped = errors.New("simulation loop stopped")

type command struct {
	fn   func(*world.World)
	done chan struct{}
}

// Loop единственный владелец World: тики и внешние команды выполняются
// в одной горутине, поэтому мир не требует блокировок.
type Loop struct {
	world     *world.World
	reference ReferenceSource
	interval  time.Duration
	logger    *logging.Logger

	commands chan command
	stopped  chan struct{}
	stopOnce sync.Once

	started time.Time
}

// NewLoop создаёт цикл симуляции с фиксированным интервалом тика
func NewLoop(w *world.World, reference ReferenceSource, interval time.Duration, logger *logging.Logger) *Loop {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	return &Loop{
		world:     w,
		reference: reference,
		interval:  interval,
		logger:    logger,
		commands:  make(chan command),
		stopped:   make(chan struct{}),
		started:   time.Now(),
	}
}

// Run крутит тики до отмены ctx. После возврата Do больше не принимает команды.
func (l *Loop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.stopped) })

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.started = time.Now()
	l.logger.Info("⏱ Цикл симуляции запущен, тик %s", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("⏹ Цикл симуляции остановлен на тике %d", l.world.Tick())
			return
		case cmd := <-l.commands:
			cmd.fn(l.world)
			close(cmd.done)
		case <-ticker.C:
			l.Step(ctx, time.Since(l.started))
		}
	}
}

// Step выполняет один тик мира в отдельном спане трассировки
func (l *Loop) Step(ctx context.Context, elapsed time.Duration) {
	_, span := observability.Tracer().Start(ctx, "world.tick")
	defer span.End()

	reference := l.reference.Position(elapsed)
	l.world.Update(reference)

	stats := l.world.Stats()
	span.SetAttributes(
		attribute.Int64("world.tick", int64(stats.Tick)),
		attribute.Int("world.active_chunks", stats.ActiveChunks),
		attribute.Int("world.dirty_meshes", stats.DirtyMeshes),
		attribute.Float64Slice("world.reference", reference[:]),
	)
}

// Do выполняет fn в горутине цикла между тиками и ждёт завершения
func (l *Loop) Do(ctx context.Context, fn func(*world.World)) error {
	cmd := command{fn: fn, done: make(chan struct{})}

	select {
	case l.commands <- cmd:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
