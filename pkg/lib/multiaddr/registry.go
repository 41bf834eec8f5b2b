package multiaddr

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
//                              RegistryBuilder
// ============================================================================

// RegistryBuilder 可变的协议注册表构建器
//
// 构建器本身不是并发安全的。调用 Lock 后构建器拒绝一切修改，
// 并产出一个只读的 *Registry，可在任意 goroutine 间无锁共享。
type RegistryBuilder struct {
	byName map[string]Protocol
	byCode map[int]Protocol
	locked bool
}

// NewRegistryBuilder 创建空的注册表构建器
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		byName: make(map[string]Protocol),
		byCode: make(map[int]Protocol),
	}
}

// Add 注册协议
//
// 未填充编解码器的描述会按 CodecName 补全。
// 名称或代码已存在时返回 *ProtocolExistsError。
func (b *RegistryBuilder) Add(p Protocol) (Protocol, error) {
	if b.locked {
		return Protocol{}, ErrRegistryLocked
	}

	if p.Codec == nil || p.VCode == nil {
		np, err := NewProtocol(p.Code, p.Name, p.CodecName)
		if err != nil {
			return Protocol{}, err
		}
		p = np
	}

	if existing, ok := b.byName[p.Name]; ok {
		return Protocol{}, &ProtocolExistsError{Protocol: existing, Kind: "name", Value: p.Name}
	}
	if existing, ok := b.byCode[p.Code]; ok {
		return Protocol{}, &ProtocolExistsError{Protocol: existing, Kind: "code", Value: p.Code}
	}

	b.byName[p.Name] = p
	b.byCode[p.Code] = p
	return p, nil
}

// AddAliasName 为已注册协议添加别名
func (b *RegistryBuilder) AddAliasName(name, alias string) error {
	if b.locked {
		return ErrRegistryLocked
	}

	base, ok := b.byName[name]
	if !ok {
		return &ProtocolNotFoundError{Value: name, Kind: "name"}
	}
	if existing, ok := b.byName[alias]; ok {
		return &ProtocolExistsError{Protocol: existing, Kind: "name", Value: alias}
	}

	b.byName[alias] = base
	return nil
}

// AddAliasCode 为已注册协议添加别名代码
//
// 编码时始终写出协议的主代码，别名代码仅在解码时识别。
func (b *RegistryBuilder) AddAliasCode(code, alias int) error {
	if b.locked {
		return ErrRegistryLocked
	}

	base, ok := b.byCode[code]
	if !ok {
		return &ProtocolNotFoundError{Value: code, Kind: "code"}
	}
	if existing, ok := b.byCode[alias]; ok {
		return &ProtocolExistsError{Protocol: existing, Kind: "code", Value: alias}
	}

	b.byCode[alias] = base
	return nil
}

// Lock 锁定构建器并返回只读注册表（单向操作）
func (b *RegistryBuilder) Lock() *Registry {
	b.locked = true
	return &Registry{byName: b.byName, byCode: b.byCode}
}

// Locked 构建器是否已锁定
func (b *RegistryBuilder) Locked() bool {
	return b.locked
}

// FindByName 按名称（含别名）查找构建器中已注册的协议
func (b *RegistryBuilder) FindByName(name string) (Protocol, error) {
	if p, ok := b.byName[name]; ok {
		return p, nil
	}
	return Protocol{}, &ProtocolNotFoundError{Value: name, Kind: "name"}
}

// Copy 复制构建器
//
// unlock 为 true 时副本可再次修改，否则保留原有锁定状态。
func (b *RegistryBuilder) Copy(unlock bool) *RegistryBuilder {
	c := &RegistryBuilder{
		byName: make(map[string]Protocol, len(b.byName)),
		byCode: make(map[int]Protocol, len(b.byCode)),
		locked: b.locked && !unlock,
	}
	for k, v := range b.byName {
		c.byName[k] = v
	}
	for k, v := range b.byCode {
		c.byCode[k] = v
	}
	return c
}

// ============================================================================
//                              Registry
// ============================================================================

// Registry 只读协议注册表
//
// nil *Registry 等价于默认注册表。
type Registry struct {
	byName map[string]Protocol
	byCode map[int]Protocol
}

func (r *Registry) orDefault() *Registry {
	if r == nil {
		return defaultRegistry
	}
	return r
}

// Find 按 Protocol、名称（string）或代码（int）查找协议
func (r *Registry) Find(key any) (Protocol, error) {
	switch k := key.(type) {
	case Protocol:
		return r.FindByCode(k.Code)
	case string:
		return r.FindByName(k)
	case int:
		return r.FindByCode(k)
	default:
		return Protocol{}, &ProtocolNotFoundError{Value: key, Kind: fmt.Sprintf("key type %T", key)}
	}
}

// FindByName 按名称查找协议
func (r *Registry) FindByName(name string) (Protocol, error) {
	p, ok := r.orDefault().byName[name]
	if !ok {
		return Protocol{}, &ProtocolNotFoundError{Value: name, Kind: "name"}
	}
	return p, nil
}

// FindByCode 按代码查找协议
func (r *Registry) FindByCode(code int) (Protocol, error) {
	p, ok := r.orDefault().byCode[code]
	if !ok {
		return Protocol{}, &ProtocolNotFoundError{Value: code, Kind: "code"}
	}
	return p, nil
}

// Protocols 返回全部协议（不含别名），按代码排序
func (r *Registry) Protocols() []Protocol {
	reg := r.orDefault()
	out := make([]Protocol, 0, len(reg.byCode))
	for code, p := range reg.byCode {
		if code == p.Code {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Aliases 返回全部别名名称到主名称的映射
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string)
	for name, p := range r.orDefault().byName {
		if name != p.Name {
			out[name] = p.Name
		}
	}
	return out
}

// Unlock 返回基于当前注册表内容的可修改构建器
func (r *Registry) Unlock() *RegistryBuilder {
	reg := r.orDefault()
	b := &RegistryBuilder{byName: reg.byName, byCode: reg.byCode, locked: true}
	return b.Copy(true)
}

// ProtocolsWithString 解析形如 "/ip4/tcp" 的协议名序列
func (r *Registry) ProtocolsWithString(s string) ([]Protocol, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, nil
	}

	names := strings.Split(s, "/")
	out := make([]Protocol, 0, len(names))
	for _, name := range names {
		p, err := r.FindByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
