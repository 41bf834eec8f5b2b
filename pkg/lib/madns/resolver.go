package madns

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"time"

	"github.com/dep2p/go-multiaddr/internal/util/logger"
	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

var log = logger.Logger("madns")

// ============================================================================
//                              常量定义
// ============================================================================

const (
	// DNSAddrPrefix dnsaddr TXT 记录前缀
	DNSAddrPrefix = "dnsaddr="

	// DNSAddrDomainPrefix dnsaddr 查询域名前缀
	DNSAddrDomainPrefix = "_dnsaddr."
)

// ============================================================================
//                              Resolver 实现
// ============================================================================

// Resolver 多地址 DNS 解析器
//
// 将 /dnsaddr、/dns、/dns4、/dns6 开头的多地址解析为 /ip4、/ip6 地址。
// 单次调用内的子解析顺序执行，不做重试。
type Resolver struct {
	backend  Backend
	maxDepth int
	timeout  time.Duration
	reg      *multiaddr.Registry
}

// Option 解析器选项
type Option func(*Resolver)

// WithMaxDepth 设置 dnsaddr 最大递归深度
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithTimeout 设置单次查询超时
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// WithRegistry 设置 ResolveString 使用的协议注册表
func WithRegistry(reg *multiaddr.Registry) Option {
	return func(r *Resolver) {
		r.reg = reg
	}
}

// WithMetrics 记录每次查询的指标，nil 表示不记录
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		if m != nil {
			r.backend = NewMetricsBackend(r.backend, m)
		}
	}
}

// NewResolver 按配置创建解析器
func NewResolver(cfg Config, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := cfg.NewBackend()
	if err != nil {
		return nil, err
	}

	all := append([]Option{WithMaxDepth(cfg.MaxDepth), WithTimeout(cfg.Timeout)}, opts...)
	return NewResolverWithBackend(backend, all...), nil
}

// NewResolverWithBackend 使用指定后端创建解析器
func NewResolverWithBackend(backend Backend, opts ...Option) *Resolver {
	r := &Resolver{
		backend:  backend,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend 返回查询后端
func (r *Resolver) Backend() Backend {
	return r.backend
}

// MaxDepth 返回默认递归深度
func (r *Resolver) MaxDepth() int {
	return r.maxDepth
}

// ============================================================================
//                              解析方法
// ============================================================================

// Resolve 解析多地址，递归深度取配置值
func (r *Resolver) Resolve(ctx context.Context, m multiaddr.Multiaddr) ([]multiaddr.Multiaddr, error) {
	return r.ResolveWithDepth(ctx, m, r.maxDepth)
}

// ResolveString 解析字符串形式的多地址
//
// 字符串本身不合法时返回解析错误（匹配 multiaddr.ErrParse），不是 ResolutionError。
func (r *Resolver) ResolveString(ctx context.Context, s string) ([]multiaddr.Multiaddr, error) {
	m, err := multiaddr.NewMultiaddrWithRegistry(r.reg, s)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, m)
}

// ResolveWithDepth 以指定的剩余深度解析多地址
//
// 返回值：
//   - 首组件不是 dns 类协议：原地址本身
//   - 没有记录：空结果，err 为 nil
//   - 查询失败：*ResolutionError
//   - dnsaddr 深度耗尽：*RecursionLimitError
//   - ctx 取消或超时：ctx.Err()
func (r *Resolver) ResolveWithDepth(ctx context.Context, m multiaddr.Multiaddr, depth int) ([]multiaddr.Multiaddr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, &ResolutionError{Err: err}
	}

	first, rest, ok := multiaddr.SplitFirst(m)
	if !ok {
		return nil, &ResolutionError{Err: ErrEmptyAddr}
	}

	switch first.Code() {
	case multiaddr.P_DNSADDR:
		return r.resolveDNSAddr(ctx, m, first.Value(), depth)
	case multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6:
		return r.resolveDNS(ctx, first, rest)
	default:
		return []multiaddr.Multiaddr{m}, nil
	}
}

// resolveDNSAddr 查询 _dnsaddr.<host> 的 TXT 记录并递归解析候选地址
func (r *Resolver) resolveDNSAddr(ctx context.Context, m multiaddr.Multiaddr, host string, depth int) ([]multiaddr.Multiaddr, error) {
	if depth <= 0 {
		return nil, &RecursionLimitError{Host: host, Depth: depth}
	}

	peerID, _ := m.PeerID()
	name := DNSAddrDomainPrefix + host
	log.Debug("查询 dnsaddr", "name", name, "depth", depth, "peer", peerID)

	records, err := r.lookupTXT(ctx, name)
	if err != nil {
		return nil, r.fail(ctx, host, err)
	}

	reg := m.Registry()
	var out []multiaddr.Multiaddr
	for _, record := range records {
		cand, ok := parseRecord(reg, name, record)
		if !ok {
			continue
		}

		if peerID != "" {
			if id, ok := cand.PeerID(); !ok || id != peerID {
				log.Debug("跳过 peer 不匹配的候选", "addr", cand, "want", peerID)
				continue
			}
		}

		if !multiaddr.IsDNSMultiaddr(cand) {
			out = append(out, cand)
			continue
		}

		nested, err := r.ResolveWithDepth(ctx, cand, depth-1)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ErrRecursionLimit) {
				return nil, err
			}
			log.Warn("嵌套地址解析失败", "addr", cand, "err", err)
			continue
		}
		for _, n := range nested {
			if !hasDNSComponent(n) {
				out = append(out, n)
			}
		}
	}

	log.Debug("dnsaddr 解析完成", "name", name, "results", len(out))
	return out, nil
}

// resolveDNS 查询 A/AAAA 记录，每个应答生成一个地址并拼接剩余协议栈
func (r *Resolver) resolveDNS(ctx context.Context, first multiaddr.Component, rest multiaddr.Multiaddr) ([]multiaddr.Multiaddr, error) {
	host := first.Value()
	code := first.Code()
	log.Debug("查询 dns", "proto", first.Name(), "host", host)

	var ips []string
	if code == multiaddr.P_DNS || code == multiaddr.P_DNS4 {
		addrs, err := r.lookupIP(ctx, host, r.backend.LookupA)
		if err != nil {
			return nil, r.fail(ctx, host, err)
		}
		for _, ip := range addrs {
			ips = append(ips, "/ip4/"+ip.WithZone("").Unmap().String())
		}
	}
	if code == multiaddr.P_DNS || code == multiaddr.P_DNS6 {
		addrs, err := r.lookupIP(ctx, host, r.backend.LookupAAAA)
		if err != nil {
			return nil, r.fail(ctx, host, err)
		}
		// AAAA 应答始终生成 /ip6，IPv4 映射地址保持 ::ffff: 形式
		for _, ip := range addrs {
			ips = append(ips, "/ip6/"+netip.AddrFrom16(ip.As16()).String())
		}
	}

	reg := rest.Registry()
	out := make([]multiaddr.Multiaddr, 0, len(ips))
	for _, s := range ips {
		ipma, err := multiaddr.NewMultiaddrWithRegistry(reg, s)
		if err != nil {
			return nil, &ResolutionError{Host: host, Err: err}
		}
		out = append(out, ipma.Encapsulate(rest))
	}

	log.Debug("dns 解析完成", "host", host, "results", len(out))
	return out, nil
}

// ============================================================================
//                              查询辅助
// ============================================================================

// queryContext 为单次查询附加超时
func (r *Resolver) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *Resolver) lookupTXT(ctx context.Context, name string) ([]string, error) {
	qctx, cancel := r.queryContext(ctx)
	defer cancel()

	records, err := r.backend.LookupTXT(qctx, name)
	if errors.Is(err, ErrNoRecords) {
		log.Debug("没有 TXT 记录", "name", name)
		return nil, nil
	}
	return records, err
}

func (r *Resolver) lookupIP(ctx context.Context, host string, lookup func(context.Context, string) ([]netip.Addr, error)) ([]netip.Addr, error) {
	qctx, cancel := r.queryContext(ctx)
	defer cancel()

	addrs, err := lookup(qctx, host)
	if errors.Is(err, ErrNoRecords) {
		return nil, nil
	}
	return addrs, err
}

// fail 调用方取消时原样返回 ctx 错误，否则包装为 ResolutionError
func (r *Resolver) fail(ctx context.Context, host string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &ResolutionError{Host: host, Err: err}
}

// parseRecord 解析一条 dnsaddr=<multiaddr> 记录
func parseRecord(reg *multiaddr.Registry, name, record string) (multiaddr.Multiaddr, bool) {
	if !strings.HasPrefix(record, DNSAddrPrefix) {
		log.Debug("忽略非 dnsaddr 记录", "name", name, "record", record)
		return multiaddr.Multiaddr{}, false
	}

	s := strings.Trim(strings.TrimPrefix(record, DNSAddrPrefix), "\"' \t")
	if s == "" {
		log.Warn("跳过空 dnsaddr 记录", "name", name)
		return multiaddr.Multiaddr{}, false
	}

	m, err := multiaddr.NewMultiaddrWithRegistry(reg, s)
	if err != nil {
		log.Warn("跳过格式错误的 dnsaddr 记录", "name", name, "record", record, "err", err)
		return multiaddr.Multiaddr{}, false
	}
	return m, true
}

func hasDNSComponent(m multiaddr.Multiaddr) bool {
	return multiaddr.HasProtocol(m, multiaddr.P_DNS) ||
		multiaddr.HasProtocol(m, multiaddr.P_DNS4) ||
		multiaddr.HasProtocol(m, multiaddr.P_DNS6) ||
		multiaddr.HasProtocol(m, multiaddr.P_DNSADDR)
}
