package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/multierr"
)

// 解析后端名称
const (
	// BackendSystem 使用 net.Resolver
	BackendSystem = "system"

	// BackendClient 使用 miekg/dns 线协议客户端
	BackendClient = "client"
)

// ResolverConfig DNS 解析配置
type ResolverConfig struct {
	// Backend 查询后端: "system" 或 "client"
	Backend string `json:"backend"`

	// Server 自定义 DNS 服务器（格式: "ip:port"），为空时使用系统配置
	Server string `json:"server,omitempty"`

	// Timeout 单次查询超时
	Timeout Duration `json:"timeout"`

	// MaxDepth dnsaddr 最大递归深度
	MaxDepth int `json:"max_depth"`

	// CacheSize 应答缓存容量，0 表示关闭缓存
	CacheSize int `json:"cache_size"`

	// CacheTTL 应答缓存 TTL
	CacheTTL Duration `json:"cache_ttl"`
}

// DefaultResolverConfig 返回默认解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Backend:   BackendSystem,
		Server:    "",
		Timeout:   Duration(5 * time.Second),
		MaxDepth:  32,
		CacheSize: 512,
		CacheTTL:  Duration(5 * time.Minute),
	}
}

// Validate 验证解析配置
func (c ResolverConfig) Validate() error {
	var err error
	switch c.Backend {
	case BackendSystem, BackendClient:
	default:
		err = multierr.Append(err, fmt.Errorf("resolver.backend: unknown backend %q", c.Backend))
	}
	if c.Server != "" {
		if _, _, e := net.SplitHostPort(c.Server); e != nil {
			err = multierr.Append(err, fmt.Errorf("resolver.server: %w", e))
		}
	}
	if c.Timeout < 0 {
		err = multierr.Append(err, errors.New("resolver.timeout must be non-negative"))
	}
	if c.MaxDepth <= 0 {
		err = multierr.Append(err, errors.New("resolver.max_depth must be positive"))
	}
	if c.CacheSize < 0 {
		err = multierr.Append(err, errors.New("resolver.cache_size must be non-negative"))
	}
	if c.CacheTTL < 0 {
		err = multierr.Append(err, errors.New("resolver.cache_ttl must be non-negative"))
	}
	return err
}

// WithServer 设置 DNS 服务器
func (c ResolverConfig) WithServer(server string) ResolverConfig {
	c.Server = server
	return c
}

// WithMaxDepth 设置最大递归深度
func (c ResolverConfig) WithMaxDepth(depth int) ResolverConfig {
	c.MaxDepth = depth
	return c
}
