package madns

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsBackend 按查询类型与结果计数
func TestMetricsBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	backend := newFakeBackend()
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	backend.errs["A broken.test"] = errors.New("servfail")
	b := NewMetricsBackend(backend, m)
	ctx := context.Background()

	_, err = b.LookupA(ctx, "host.test")
	require.NoError(t, err)
	_, err = b.LookupA(ctx, "host.test")
	require.NoError(t, err)
	_, err = b.LookupA(ctx, "broken.test")
	require.Error(t, err)
	_, err = b.LookupTXT(ctx, "_dnsaddr.none.test")
	assert.ErrorIs(t, err, ErrNoRecords)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	backend.block = true
	_, err = b.LookupAAAA(canceled, "host.test")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("A", resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("A", resultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("TXT", resultNoRecords)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("AAAA", resultCanceled)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}

// TestNewMetrics_Reuse 重复注册复用已有采集器
func TestNewMetrics_Reuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, first.lookups, second.lookups)
	assert.Same(t, first.duration, second.duration)
}

// TestResolver_WithMetrics 解析过程中的查询被记录
func TestResolver_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	backend := newFakeBackend()
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	r := NewResolverWithBackend(backend, WithMetrics(m))

	got, err := r.ResolveString(context.Background(), "/dns4/host.test/tcp/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ip4/1.2.3.4/tcp/1"}, strs(got))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("A", resultOK)))

	assert.IsType(t, &MetricsBackend{}, r.Backend())
	assert.Same(t, backend, NewResolverWithBackend(backend, WithMetrics(nil)).Backend())
}
