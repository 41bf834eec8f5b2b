package madns

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 查询结果标签
const (
	resultOK        = "ok"
	resultNoRecords = "no_records"
	resultCanceled  = "canceled"
	resultError     = "error"
)

// Metrics 解析器查询指标
type Metrics struct {
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 创建并注册查询指标
//
// 同名指标已注册时复用已有的采集器。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "madns",
			Name:      "lookups_total",
			Help:      "Total DNS lookups issued by the multiaddr resolver.",
		},
		[]string{"type", "result"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "madns",
			Name:      "lookup_duration_seconds",
			Help:      "DNS lookup duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	var err error
	if lookups, err = register(reg, lookups); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Metrics{lookups: lookups, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(kind string, start time.Time, err error) {
	m.lookups.WithLabelValues(kind, resultLabel(err)).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrNoRecords):
		return resultNoRecords
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resultCanceled
	default:
		return resultError
	}
}

// MetricsBackend 记录每次查询的次数、结果与耗时
type MetricsBackend struct {
	backend Backend
	metrics *Metrics
}

// NewMetricsBackend 为后端增加指标
func NewMetricsBackend(backend Backend, metrics *Metrics) *MetricsBackend {
	return &MetricsBackend{backend: backend, metrics: metrics}
}

// LookupTXT 查询 TXT 记录
func (b *MetricsBackend) LookupTXT(ctx context.Context, name string) ([]string, error) {
	start := time.Now()
	v, err := b.backend.LookupTXT(ctx, name)
	b.metrics.observe("TXT", start, err)
	return v, err
}

// LookupA 查询 A 记录
func (b *MetricsBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	start := time.Now()
	v, err := b.backend.LookupA(ctx, host)
	b.metrics.observe("A", start, err)
	return v, err
}

// LookupAAAA 查询 AAAA 记录
func (b *MetricsBackend) LookupAAAA(ctx context.Context, host string) ([]netip.Addr, error) {
	start := time.Now()
	v, err := b.backend.LookupAAAA(ctx, host)
	b.metrics.observe("AAAA", start, err)
	return v, err
}
