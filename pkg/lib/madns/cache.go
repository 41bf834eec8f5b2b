package madns

import (
	"context"
	"errors"
	"net/netip"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// 缓存默认值
const (
	DefaultCacheSize = 512
	DefaultCacheTTL  = 5 * time.Minute
)

// CachingBackend 为任意后端增加应答缓存
//
// 只缓存成功的应答；ErrNoRecords 与其他错误每次都透传到底层后端。
// 可并发使用，并发的同名未命中查询只访问一次底层后端；
// 每个调用方的取消只影响它自己。
type CachingBackend struct {
	backend Backend
	txt     *expirable.LRU[string, []string]
	a       *expirable.LRU[string, []netip.Addr]
	aaaa    *expirable.LRU[string, []netip.Addr]
	group   singleflight.Group
}

// NewCachingBackend 创建缓存后端
func NewCachingBackend(backend Backend, size int, ttl time.Duration) *CachingBackend {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingBackend{
		backend: backend,
		txt:     expirable.NewLRU[string, []string](size, nil, ttl),
		a:       expirable.NewLRU[string, []netip.Addr](size, nil, ttl),
		aaaa:    expirable.NewLRU[string, []netip.Addr](size, nil, ttl),
	}
}

// LookupTXT 查询 TXT 记录
func (c *CachingBackend) LookupTXT(ctx context.Context, name string) ([]string, error) {
	return lookupCached(ctx, &c.group, c.txt, "TXT", name, c.backend.LookupTXT)
}

// LookupA 查询 A 记录
func (c *CachingBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	return lookupCached(ctx, &c.group, c.a, "A", host, c.backend.LookupA)
}

// LookupAAAA 查询 AAAA 记录
func (c *CachingBackend) LookupAAAA(ctx context.Context, host string) ([]netip.Addr, error) {
	return lookupCached(ctx, &c.group, c.aaaa, "AAAA", host, c.backend.LookupAAAA)
}

// Purge 清空缓存
func (c *CachingBackend) Purge() {
	c.txt.Purge()
	c.a.Purge()
	c.aaaa.Purge()
}

// Len 返回缓存条目总数
func (c *CachingBackend) Len() int {
	return c.txt.Len() + c.a.Len() + c.aaaa.Len()
}

// lookupCached 先查缓存，未命中时经 singleflight 合并同名查询
//
// 每个调用方只等待自己的 ctx：ctx 结束时立即返回 ctx.Err()。
// 合并的查询因其他调用方的取消而失败、而本调用方的 ctx 仍有效时，
// 本调用方重新发起查询。
func lookupCached[V any](
	ctx context.Context,
	group *singleflight.Group,
	cache *expirable.LRU[string, []V],
	kind, key string,
	lookup func(context.Context, string) ([]V, error),
) ([]V, error) {
	if v, ok := cache.Get(key); ok {
		return slices.Clone(v), nil
	}

	fetch := func(ctx context.Context) ([]V, error) {
		v, err := lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		cache.Add(key, slices.Clone(v))
		return v, nil
	}

	ch := group.DoChan(kind+" "+key, func() (any, error) {
		return fetch(ctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if isContextErr(res.Err) && ctx.Err() == nil {
				v, err := fetch(ctx)
				if err != nil {
					return nil, err
				}
				return slices.Clone(v), nil
			}
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]V)), nil
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
