package madns

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// ============================================================================
//                              配置定义
// ============================================================================

// DefaultMaxDepth dnsaddr 默认最大递归深度
const DefaultMaxDepth = 32

// Config 解析器配置
type Config struct {
	// Server 自定义 DNS 服务器地址（格式: "ip:port"），为空时使用系统配置
	Server string

	// UseSystem 使用 net.Resolver 而非 miekg/dns 线协议客户端
	UseSystem bool

	// Timeout 单次 DNS 查询超时，0 表示只受调用方 ctx 约束
	Timeout time.Duration

	// MaxDepth dnsaddr 最大递归深度
	MaxDepth int

	// CacheSize 应答缓存容量，0 表示关闭缓存
	CacheSize int

	// CacheTTL 应答缓存 TTL
	CacheTTL time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Server:    "",
		UseSystem: true,
		Timeout:   5 * time.Second,
		MaxDepth:  DefaultMaxDepth,
		CacheSize: DefaultCacheSize,
		CacheTTL:  DefaultCacheTTL,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var err error
	if c.Timeout < 0 {
		err = multierr.Append(err, errors.New("timeout must be non-negative"))
	}
	if c.MaxDepth <= 0 {
		err = multierr.Append(err, errors.New("max depth must be positive"))
	}
	if c.CacheSize < 0 {
		err = multierr.Append(err, errors.New("cache size must be non-negative"))
	}
	if c.CacheTTL < 0 {
		err = multierr.Append(err, errors.New("cache TTL must be non-negative"))
	}
	return err
}

// NewBackend 按配置创建查询后端
func (c *Config) NewBackend() (Backend, error) {
	var backend Backend
	if c.UseSystem {
		backend = NewSystemBackend(c.Server, c.Timeout)
	} else {
		client, err := NewClientBackend(c.Server, c.Timeout)
		if err != nil {
			return nil, err
		}
		backend = client
	}

	if c.CacheSize > 0 {
		backend = NewCachingBackend(backend, c.CacheSize, c.CacheTTL)
	}
	return backend, nil
}
