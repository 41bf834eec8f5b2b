package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

// ProtocolConfig 自定义协议
//
// 示例 JSON:
//
//	{"code": 3145728, "name": "shard", "codec": "utf8"}
type ProtocolConfig struct {
	// Code 协议代码
	Code int `json:"code"`

	// Name 协议名称
	Name string `json:"name"`

	// Codec 编解码器名称，为空表示无值的标志协议
	Codec string `json:"codec,omitempty"`
}

// Validate 验证协议配置
func (p ProtocolConfig) Validate() error {
	if _, err := multiaddr.NewProtocol(p.Code, p.Name, p.Codec); err != nil {
		return fmt.Errorf("protocols[%s]: %w", p.Name, err)
	}
	return nil
}

// AliasConfig 协议别名
//
// Name 与 Code 至少填写一个。
type AliasConfig struct {
	// Protocol 被别名的协议名称
	Protocol string `json:"protocol"`

	// Name 别名
	Name string `json:"name,omitempty"`

	// Code 别名代码（仅解码时识别）
	Code int `json:"code,omitempty"`
}

// Validate 验证别名配置
func (a AliasConfig) Validate() error {
	if a.Protocol == "" {
		return errors.New("aliases: protocol is required")
	}
	if a.Name == "" && a.Code == 0 {
		return fmt.Errorf("aliases[%s]: name or code is required", a.Protocol)
	}
	if a.Code < 0 {
		return fmt.Errorf("aliases[%s]: negative code %d", a.Protocol, a.Code)
	}
	return nil
}

// BuildRegistry 在默认注册表基础上追加自定义协议与别名
//
// 没有自定义项时直接返回默认注册表。
func (c *Config) BuildRegistry() (*multiaddr.Registry, error) {
	if len(c.Protocols) == 0 && len(c.Aliases) == 0 {
		return multiaddr.DefaultRegistry(), nil
	}

	b := multiaddr.DefaultRegistry().Unlock()
	var err error
	for _, pc := range c.Protocols {
		p, e := multiaddr.NewProtocol(pc.Code, pc.Name, pc.Codec)
		if e == nil {
			_, e = b.Add(p)
		}
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("protocols[%s]: %w", pc.Name, e))
		}
	}

	for _, ac := range c.Aliases {
		if ac.Name != "" {
			if e := b.AddAliasName(ac.Protocol, ac.Name); e != nil {
				err = multierr.Append(err, fmt.Errorf("aliases[%s]: %w", ac.Protocol, e))
			}
		}
		if ac.Code != 0 {
			base, e := b.FindByName(ac.Protocol)
			if e == nil {
				e = b.AddAliasCode(base.Code, ac.Code)
			}
			if e != nil {
				err = multierr.Append(err, fmt.Errorf("aliases[%s]: %w", ac.Protocol, e))
			}
		}
	}

	if err != nil {
		return nil, err
	}
	return b.Lock(), nil
}
