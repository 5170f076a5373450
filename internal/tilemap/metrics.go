package tilemap

import "github.com/prometheus/client_golang/prometheus"

// Причины отклонения записи
const (
	rejectOutOfBounds      = "out_of_bounds"
	rejectPositionMismatch = "position_mismatch"
)

// Metrics собирает Prometheus-метрики операций карты.
// Все методы допускают nil-получатель, поэтому карта без метрик ничего не платит.
type Metrics struct {
	tilesCreated   prometheus.Counter
	tilesRemoved   prometheus.Counter
	tilesSet       prometheus.Counter
	writesRejected *prometheus.CounterVec

	nodes    prometheus.Gauge
	sectors  prometheus.Gauge
	tiles    prometheus.Gauge
	collapse prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilemap",
			Name:      "tiles_created_total",
			Help:      "Тайлы, созданные через GetOrCreateTile.",
		}),
		tilesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilemap",
			Name:      "tiles_removed_total",
			Help:      "Тайлы, удалённые через RemoveTile.",
		}),
		tilesSet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilemap",
			Name:      "tiles_set_total",
			Help:      "Тайлы, записанные через SetTile.",
		}),
		writesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tilemap",
			Name:      "writes_rejected_total",
			Help:      "Отклонённые записи по причинам.",
		}, []string{"reason"}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tilemap",
			Name:      "nodes",
			Help:      "Количество узлов квадродерева при последнем снимке.",
		}),
		sectors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tilemap",
			Name:      "sectors",
			Help:      "Количество секторов этажей при последнем снимке.",
		}),
		tiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tilemap",
			Name:      "tiles",
			Help:      "Количество тайлов при последнем снимке.",
		}),
		collapse: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilemap",
			Name:      "prune_collapsed_total",
			Help:      "Ветки, схлопнутые явным Prune.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.tilesCreated, m.tilesRemoved, m.tilesSet, m.writesRejected,
			m.nodes, m.sectors, m.tiles, m.collapse)
	}
	return m
}

// Observe обновляет gauge-метрики по снимку Stats
func (m *Metrics) Observe(stats Stats) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(stats.Nodes))
	m.sectors.Set(float64(stats.Sectors))
	m.tiles.Set(float64(stats.Tiles))
}

func (m *Metrics) tileCreated() {
	if m != nil {
		m.tilesCreated.Inc()
	}
}

func (m *Metrics) tileRemoved() {
	if m != nil {
		m.tilesRemoved.Inc()
	}
}

func (m *Metrics) tileSet() {
	if m != nil {
		m.tilesSet.Inc()
	}
}

func (m *Metrics) writeRejected(reason string) {
	if m != nil {
		m.writesRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) pruned(collapsed int) {
	if m != nil && collapsed > 0 {
		m.collapse.Add(float64(collapsed))
	}
}
