package madns

import (
	"context"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCachingBackend_Hit 第二次查询命中缓存
func TestCachingBackend_Hit(t *testing.T) {
	backend := newFakeBackend()
	backend.txt["_dnsaddr.boot.test"] = []string{"dnsaddr=/ip4/1.2.3.4/tcp/1"}
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 16, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		txt, err := c.LookupTXT(ctx, "_dnsaddr.boot.test")
		require.NoError(t, err)
		assert.Len(t, txt, 1)

		a, err := c.LookupA(ctx, "host.test")
		require.NoError(t, err)
		assert.Len(t, a, 1)
	}

	assert.Equal(t, 1, backend.Calls("TXT _dnsaddr.boot.test"))
	assert.Equal(t, 1, backend.Calls("A host.test"))
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, err := c.LookupA(ctx, "host.test")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.Calls("A host.test"))
}

// TestCachingBackend_NoRecordsNotCached 空应答不进入缓存
func TestCachingBackend_NoRecordsNotCached(t *testing.T) {
	backend := newFakeBackend()
	c := NewCachingBackend(backend, 16, time.Minute)
	ctx := context.Background()

	_, err := c.LookupAAAA(ctx, "missing.test")
	assert.ErrorIs(t, err, ErrNoRecords)
	_, err = c.LookupAAAA(ctx, "missing.test")
	assert.ErrorIs(t, err, ErrNoRecords)

	assert.Equal(t, 2, backend.Calls("AAAA missing.test"))
	assert.Equal(t, 0, c.Len())
}

// TestCachingBackend_Copy 调用方修改结果不影响缓存
func TestCachingBackend_Copy(t *testing.T) {
	backend := newFakeBackend()
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 0, 0)
	ctx := context.Background()

	first, err := c.LookupA(ctx, "host.test")
	require.NoError(t, err)
	first[0] = netip.MustParseAddr("9.9.9.9")

	second, err := c.LookupA(ctx, "host.test")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("1.2.3.4"), second[0])
}

// TestCachingBackend_Expire 过期后重新查询
func TestCachingBackend_Expire(t *testing.T) {
	backend := newFakeBackend()
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 16, 30*time.Millisecond)
	ctx := context.Background()

	_, err := c.LookupA(ctx, "host.test")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := c.LookupA(ctx, "host.test")
		return err == nil && backend.Calls("A host.test") == 2
	}, 2*time.Second, 20*time.Millisecond)
}

// gatedBackend 在 release 关闭前阻塞 A 查询
type gatedBackend struct {
	*fakeBackend
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.fakeBackend.LookupA(ctx, host)
}

// TestCachingBackend_Singleflight 并发未命中只查询一次
func TestCachingBackend_Singleflight(t *testing.T) {
	backend := &gatedBackend{
		fakeBackend: newFakeBackend(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	backend.a["host.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 16, time.Minute)

	const n = 8
	var wg sync.WaitGroup
	results := make([][]netip.Addr, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.LookupA(context.Background(), "host.test")
		}(i)
	}

	<-backend.entered
	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []netip.Addr{netip.MustParseAddr("1.2.3.4")}, results[i])
	}
	assert.Equal(t, 1, backend.Calls("A host.test"))
}

// stallFirstBackend 第一次 A 查询阻塞到其 ctx 结束，之后正常应答
type stallFirstBackend struct {
	*fakeBackend
	mu      sync.Mutex
	stalled bool
}

func (s *stallFirstBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	s.mu.Lock()
	first := !s.stalled
	s.stalled = true
	s.mu.Unlock()

	if first {
		s.fakeBackend.mu.Lock()
		s.fakeBackend.calls["A "+host]++
		s.fakeBackend.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.fakeBackend.LookupA(ctx, host)
}

// TestCachingBackend_CallerDeadline 等待合并查询的调用方按自己的 ctx 及时返回
func TestCachingBackend_CallerDeadline(t *testing.T) {
	backend := &stallFirstBackend{fakeBackend: newFakeBackend()}
	backend.a["slow.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 16, time.Minute)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()
	leaderDone := make(chan error, 1)
	go func() {
		_, err := c.LookupA(leaderCtx, "slow.test")
		leaderDone <- err
	}()
	require.Eventually(t, func() bool {
		return backend.Calls("A slow.test") == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.LookupA(ctx, "slow.test")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	cancelLeader()
	assert.ErrorIs(t, <-leaderDone, context.Canceled)
}

// TestCachingBackend_OtherCallerCanceled 其他调用方取消不影响仍有效的调用方
func TestCachingBackend_OtherCallerCanceled(t *testing.T) {
	backend := &stallFirstBackend{fakeBackend: newFakeBackend()}
	backend.a["slow.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	c := NewCachingBackend(backend, 16, time.Minute)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	go func() {
		_, _ = c.LookupA(leaderCtx, "slow.test")
	}()
	require.Eventually(t, func() bool {
		return backend.Calls("A slow.test") == 1
	}, time.Second, 5*time.Millisecond)

	type result struct {
		addrs []netip.Addr
		err   error
	}
	done := make(chan result, 1)
	go func() {
		addrs, err := c.LookupA(context.Background(), "slow.test")
		done <- result{addrs, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancelLeader()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, []netip.Addr{netip.MustParseAddr("1.2.3.4")}, res.addrs)
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not return after the in-flight caller was canceled")
	}

	addrs, err := c.LookupA(context.Background(), "slow.test")
	require.NoError(t, err)
	assert.Len(t, addrs, 1)
}

// TestResolver_CachedLookupCanceled 经缓存后端解析时，其他调用方的取消不会变成解析错误
func TestResolver_CachedLookupCanceled(t *testing.T) {
	backend := &stallFirstBackend{fakeBackend: newFakeBackend()}
	backend.a["slow.test"] = []netip.Addr{netip.MustParseAddr("1.2.3.4")}
	r := NewResolverWithBackend(NewCachingBackend(backend, 16, time.Minute))

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := r.ResolveString(leaderCtx, "/dns4/slow.test/tcp/1")
		leaderDone <- err
	}()
	require.Eventually(t, func() bool {
		return backend.Calls("A slow.test") == 1
	}, time.Second, 5*time.Millisecond)

	done := make(chan error, 1)
	var got []string
	go func() {
		addrs, err := r.ResolveString(context.Background(), "/dns4/slow.test/tcp/1")
		got = strs(addrs)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancelLeader()

	assert.ErrorIs(t, <-leaderDone, context.Canceled)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"/ip4/1.2.3.4/tcp/1"}, got)
}
