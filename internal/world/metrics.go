package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Источник данных активированного чанка
const (
	SourceStore     = "store"
	SourceGenerated = "generated"
)

// Metrics Prometheus-метрики стриминга чанков. Nil-значение допустимо и ничего не делает.
type Metrics struct {
	activeChunks     prometheus.Gauge
	activations      *prometheus.CounterVec
	deactivations    prometheus.Counter
	rejectedLoads    prometheus.Counter
	saves            prometheus.Counter
	saveErrors       prometheus.Counter
	meshBuilds       prometheus.Counter
	meshBuildSeconds prometheus.Histogram
	lightingUpdates  prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activeChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "active_chunks",
			Help:      "Количество активных чанков.",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_activations_total",
			Help:      "Активации чанков по источнику данных.",
		}, []string{"source"}),
		deactivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_deactivations_total",
			Help:      "Общее число деактиваций чанков.",
		}),
		rejectedLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_loads_rejected_total",
			Help:      "Сохранённые чанки, отклонённые при загрузке (повреждены или другой версии).",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_saves_total",
			Help:      "Успешно сохранённые чанки.",
		}),
		saveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_save_errors_total",
			Help:      "Ошибки сохранения чанков.",
		}),
		meshBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "mesh_builds_total",
			Help:      "Перестроенные меши чанков.",
		}),
		meshBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "mesh_build_seconds",
			Help:      "Время построения меша одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		lightingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "lighting_updates_total",
			Help:      "Обработанные блоки очереди освещения.",
		}),
	}

	reg.MustRegister(
		m.activeChunks,
		m.activations,
		m.deactivations,
		m.rejectedLoads,
		m.saves,
		m.saveErrors,
		m.meshBuilds,
		m.meshBuildSeconds,
		m.lightingUpdates,
	)
	return m
}

func (m *Metrics) setActiveChunks(n int) {
	if m == nil {
		return
	}
	m.activeChunks.Set(float64(n))
}

func (m *Metrics) chunkActivated(source string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(source).Inc()
}

func (m *Metrics) chunkDeactivated() {
	if m == nil {
		return
	}
	m.deactivations.Inc()
}

func (m *Metrics) loadRejected() {
	if m == nil {
		return
	}
	m.rejectedLoads.Inc()
}

func (m *Metrics) chunkSaved(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.saveErrors.Inc()
		return
	}
	m.saves.Inc()
}

func (m *Metrics) meshBuilt(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.meshBuilds.Inc()
	m.meshBuildSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) lightingProcessed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.lightingUpdates.Add(float64(n))
}
