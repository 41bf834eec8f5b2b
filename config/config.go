// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入各子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Resolver.MaxDepth = 8
//
//	// 从文件加载
//	cfg, err := config.Load("maddr.json")
//
//	// 按配置扩展协议注册表
//	reg, err := cfg.BuildRegistry()
package config

import "go.uber.org/multierr"

// Config 是 maddr 的完整配置结构
//
// 配置按照功能模块组织：
//   - Resolver: DNS 解析
//   - Protocols/Aliases: 自定义协议与别名
//   - Log: 日志
type Config struct {
	// Resolver DNS 解析配置
	Resolver ResolverConfig `json:"resolver"`

	// Protocols 追加到默认注册表的自定义协议
	Protocols []ProtocolConfig `json:"protocols,omitempty"`

	// Aliases 协议别名
	Aliases []AliasConfig `json:"aliases,omitempty"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Resolver: DefaultResolverConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 所有子配置的问题会被汇总到同一个错误中返回，可用 multierr.Errors 拆分。
func (c *Config) Validate() error {
	err := multierr.Combine(
		c.Resolver.Validate(),
		c.Log.Validate(),
	)
	for _, p := range c.Protocols {
		err = multierr.Append(err, p.Validate())
	}
	for _, a := range c.Aliases {
		err = multierr.Append(err, a.Validate())
	}
	return err
}
