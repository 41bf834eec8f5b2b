package madns

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-multiaddr/config"
	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

// Module 多地址 DNS 解析模块
var Module = fx.Module("madns",
	fx.Provide(
		NewFromParams,
	),
)

// Params 解析器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registry   *multiaddr.Registry   `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// ConfigFromUnified 从统一配置创建解析器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	rc := cfg.Resolver
	return Config{
		Server:    rc.Server,
		UseSystem: rc.Backend != config.BackendClient,
		Timeout:   rc.Timeout.Duration(),
		MaxDepth:  rc.MaxDepth,
		CacheSize: rc.CacheSize,
		CacheTTL:  rc.CacheTTL.Duration(),
	}
}

// NewFromParams 从 Fx 参数创建解析器
func NewFromParams(p Params) (*Resolver, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	opts := []Option{WithRegistry(p.Registry)}
	if p.Registerer != nil {
		m, err := NewMetrics(p.Registerer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMetrics(m))
	}
	return NewResolver(cfg, opts...)
}
