// Package metrics 提供 Prometheus 指标采集与上报的统一封装。
// 该包集中定义插件的关键指标（事件处理、方面发射、存活 Worker），
// 便于在各模块复用并保持标签一致。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 事件处理结果标签值常量
const (
	// OutcomeEmitted 表示事件成功产出一批方面记录
	OutcomeEmitted = "emitted"
	// OutcomeSkipped 表示事件不满足门控条件被静默跳过
	OutcomeSkipped = "skipped"
	// OutcomeMalformed 表示事件载荷无法解析
	OutcomeMalformed = "malformed"
	// OutcomeDuplicate 表示事件命中幂等防护被跳过
	OutcomeDuplicate = "duplicate"
	// OutcomeFailed 表示方面提交被元数据服务拒绝
	OutcomeFailed = "failed"
)

// Metrics 封装插件运行时指标集合。
// 所有字段均为 Prometheus 指标类型，通过辅助方法更新指标值。
type Metrics struct {
	// EventsTotal 处理过的事件总数计数器
	// 标签: outcome (emitted/skipped/malformed/duplicate/failed)
	EventsTotal *prometheus.CounterVec

	// AspectsEmittedTotal 发射的方面记录总数计数器
	// 标签: aspect
	AspectsEmittedTotal *prometheus.CounterVec

	// EmitDuration 单条方面提交耗时直方图（单位：毫秒）
	// 标签: aspect
	EmitDuration *prometheus.HistogramVec

	// WorkerHeartbeatsTotal 存活 Worker 的心跳总数
	WorkerHeartbeatsTotal prometheus.Counter

	// WorkerUp 存活 Worker 是否处于运行状态（1 运行 / 0 其他）
	WorkerUp prometheus.Gauge
}

// NewMetrics 创建并注册一组 Prometheus 指标。
// namespace 用于作为所有指标名前缀，便于在同一 Prometheus 中区分不同应用。
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of processed pipeline events",
			},
			[]string{"outcome"},
		),
		AspectsEmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aspects_emitted_total",
				Help:      "Total number of emitted aspect records",
			},
			[]string{"aspect"},
		),
		EmitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "emit_duration_ms",
				Help:      "Aspect emission duration in milliseconds",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"aspect"},
		),
		WorkerHeartbeatsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_heartbeats_total",
				Help:      "Total number of liveness worker heartbeats",
			},
		),
		WorkerUp: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_up",
				Help:      "Whether the liveness worker is running (1) or not (0)",
			},
		),
	}
}

// RecordEvent 记录一次事件处理结果。
func (m *Metrics) RecordEvent(outcome string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(outcome).Inc()
}

// RecordAspect 记录一次方面发射及其耗时。
func (m *Metrics) RecordAspect(aspect string, durationMs float64) {
	if m == nil {
		return
	}
	m.AspectsEmittedTotal.WithLabelValues(aspect).Inc()
	m.EmitDuration.WithLabelValues(aspect).Observe(durationMs)
}

// RecordHeartbeat 记录一次存活 Worker 心跳。
func (m *Metrics) RecordHeartbeat() {
	if m == nil {
		return
	}
	m.WorkerHeartbeatsTotal.Inc()
}

// SetWorkerUp 更新存活 Worker 的运行状态。
func (m *Metrics) SetWorkerUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.WorkerUp.Set(1)
	} else {
		m.WorkerUp.Set(0)
	}
}
