package multiaddr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Multiaddr 自描述的网络地址
//
// Multiaddr 是不可变值：内部持有二进制缓冲区以及解析时所用的注册表，
// 所有修改操作都返回新地址。零值是合法的空地址。
// 相等性只由二进制缓冲区决定。
type Multiaddr struct {
	b   []byte
	reg *Registry
}

// NewMultiaddr 从字符串创建多地址（使用默认注册表）
func NewMultiaddr(s string) (Multiaddr, error) {
	return NewMultiaddrWithRegistry(nil, s)
}

// NewMultiaddrWithRegistry 使用指定注册表从字符串创建多地址
func NewMultiaddrWithRegistry(reg *Registry, s string) (Multiaddr, error) {
	b, err := stringToBytes(reg, s)
	if err != nil {
		return Multiaddr{}, err
	}
	return Multiaddr{b: b, reg: reg}, nil
}

// StringCast 从字符串创建多地址，失败时 panic
// 仅用于已知有效的常量地址
func StringCast(s string) Multiaddr {
	m, err := NewMultiaddr(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMultiaddrBytes 从字节创建多地址并立即校验
func NewMultiaddrBytes(b []byte) (Multiaddr, error) {
	return NewMultiaddrBytesWithRegistry(nil, b)
}

// NewMultiaddrBytesWithRegistry 使用指定注册表从字节创建多地址并立即校验
func NewMultiaddrBytesWithRegistry(reg *Registry, b []byte) (Multiaddr, error) {
	if err := validateBytes(reg, b); err != nil {
		return Multiaddr{}, err
	}
	return Multiaddr{b: cloneBytes(b), reg: reg}, nil
}

// Cast 从字节创建多地址（不校验）
//
// 合法性在首次遍历时检查：String 返回占位文本，其余遍历方法返回 *BinaryParseError。
func Cast(b []byte) Multiaddr {
	return CastWithRegistry(nil, b)
}

// CastWithRegistry 使用指定注册表从字节创建多地址（不校验）
func CastWithRegistry(reg *Registry, b []byte) Multiaddr {
	return Multiaddr{b: cloneBytes(b), reg: reg}
}

// Clone 复制地址
func (m Multiaddr) Clone() Multiaddr {
	return Multiaddr{b: cloneBytes(m.b), reg: m.reg}
}

// Registry 返回解析该地址所用的注册表
func (m Multiaddr) Registry() *Registry {
	return m.reg.orDefault()
}

// Bytes 返回二进制表示（副本）
func (m Multiaddr) Bytes() []byte {
	return cloneBytes(m.b)
}

// String 返回字符串表示
// 二进制非法时返回 "<invalid multiaddr ...>"，需要错误信息时使用 ToString
func (m Multiaddr) String() string {
	s, err := m.ToString()
	if err != nil {
		return fmt.Sprintf("<invalid multiaddr %x>", m.b)
	}
	return s
}

// ToString 返回字符串表示，二进制非法时返回 *BinaryParseError
func (m Multiaddr) ToString() (string, error) {
	return bytesToString(m.reg, m.b)
}

// Validate 校验二进制表示
func (m Multiaddr) Validate() error {
	return validateBytes(m.reg, m.b)
}

// Equal 判断两个地址是否相等
func (m Multiaddr) Equal(other Multiaddr) bool {
	return bytes.Equal(m.b, other.b)
}

// Key 返回可用作 map 键的二进制表示
func (m Multiaddr) Key() string {
	return string(m.b)
}

// IsEmpty 是否为空地址
func (m Multiaddr) IsEmpty() bool {
	return len(m.b) == 0
}

// Len 返回组件数量
// 二进制非法时只计算非法位置之前的组件
func (m Multiaddr) Len() int {
	n := 0
	r := newComponentReader(m.reg, m.b)
	for r.more() {
		if _, err := r.next(); err != nil {
			break
		}
		n++
	}
	return n
}

// Components 返回全部组件
func (m Multiaddr) Components() ([]Component, error) {
	return readComponents(m.reg, m.b)
}

// Protocols 返回地址包含的协议列表
func (m Multiaddr) Protocols() ([]Protocol, error) {
	comps, err := m.Components()
	if err != nil {
		return nil, err
	}
	out := make([]Protocol, len(comps))
	for i, c := range comps {
		out[i] = c.Protocol()
	}
	return out, nil
}

// Values 返回每个组件的值，标志协议对应空字符串
func (m Multiaddr) Values() ([]string, error) {
	comps, err := m.Components()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(comps))
	for i, c := range comps {
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ForEach 遍历多地址中的每个组件
// 如果回调函数返回 false，则停止遍历
func (m Multiaddr) ForEach(fn func(Component) bool) error {
	r := newComponentReader(m.reg, m.b)
	for r.more() {
		c, err := r.next()
		if err != nil {
			return err
		}
		if !fn(c) {
			return nil
		}
	}
	return nil
}

// Encapsulate 封装另一个地址（字节拼接）
func (m Multiaddr) Encapsulate(other Multiaddr) Multiaddr {
	b := make([]byte, 0, len(m.b)+len(other.b))
	b = append(b, m.b...)
	b = append(b, other.b...)
	return Multiaddr{b: b, reg: m.reg}
}

// Join 按顺序拼接多个地址
func Join(addrs ...Multiaddr) Multiaddr {
	var out Multiaddr
	for i, a := range addrs {
		if i == 0 {
			out.reg = a.reg
		}
		out.b = append(out.b, a.b...)
	}
	return out
}

// Decapsulate 解封装：移除 other 最后一次出现处及其之后的部分
//
// 匹配在字符串形式上进行。若 other 的字符串恰好出现在某个值的内部
// （例如域名中转义的 "/tcp/80"），结果可能不符合预期。
func (m Multiaddr) Decapsulate(other Multiaddr) (Multiaddr, error) {
	s, err := m.ToString()
	if err != nil {
		return Multiaddr{}, err
	}
	sub, err := other.ToString()
	if err != nil {
		return Multiaddr{}, err
	}

	idx := strings.LastIndex(s, sub)
	if idx < 0 {
		return Multiaddr{}, fmt.Errorf("%w: %s does not contain %s", ErrNotEncapsulated, s, sub)
	}
	return NewMultiaddrWithRegistry(m.reg, s[:idx])
}

// DecapsulateCode 移除最后一个指定协议的组件及其之后的部分
// 地址不包含该协议时原样返回
func (m Multiaddr) DecapsulateCode(code int) (Multiaddr, error) {
	comps, err := m.Components()
	if err != nil {
		return Multiaddr{}, err
	}
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].Code() == code {
			return Multiaddr{b: cloneBytes(m.b[:comps[i].offset]), reg: m.reg}, nil
		}
	}
	return m, nil
}

// Split 拆分为子地址
//
// maxsplit < 0 时拆分全部组件；否则前 maxsplit 个组件各成一个地址，
// 剩余部分（若有）合为最后一个地址。结果按顺序拼接后等于原地址。
func (m Multiaddr) Split(maxsplit int) ([]Multiaddr, error) {
	var out []Multiaddr
	r := newComponentReader(m.reg, m.b)
	for r.more() {
		if maxsplit >= 0 && len(out) == maxsplit {
			out = append(out, Multiaddr{b: cloneBytes(m.b[r.off:]), reg: m.reg})
			return out, nil
		}
		c, err := r.next()
		if err != nil {
			return nil, err
		}
		out = append(out, c.Multiaddr())
	}
	return out, nil
}

// ValueForProtocol 获取指定协议代码第一次出现时的值
// 标志协议返回空字符串；地址不包含该协议时返回 *ProtocolLookupError
func (m Multiaddr) ValueForProtocol(code int) (string, error) {
	proto, err := m.Registry().FindByCode(code)
	if err != nil {
		return "", err
	}
	return m.valueFor(proto)
}

// ValueForProtocolName 获取指定协议名称第一次出现时的值
func (m Multiaddr) ValueForProtocolName(name string) (string, error) {
	proto, err := m.Registry().FindByName(name)
	if err != nil {
		return "", err
	}
	return m.valueFor(proto)
}

func (m Multiaddr) valueFor(proto Protocol) (string, error) {
	var (
		value string
		found bool
		verr  error
	)
	err := m.ForEach(func(c Component) bool {
		if c.Code() != proto.Code {
			return true
		}
		value, verr = c.value()
		found = true
		return false
	})
	if err != nil {
		return "", err
	}
	if verr != nil {
		return "", verr
	}
	if !found {
		return "", &ProtocolLookupError{Protocol: proto, Addr: m.String()}
	}
	return value, nil
}

// PeerID 返回目标节点 ID
//
// 每个 /p2p 组件更新候选值，每个 /p2p-circuit 清空候选值，
// 因此中继地址返回中继之后的目标节点，而不是中继节点本身。
// 不存在或地址非法时返回 ("", false)。
func (m Multiaddr) PeerID() (string, bool) {
	var candidate *Component
	err := m.ForEach(func(c Component) bool {
		switch c.Code() {
		case P_P2P:
			cc := c
			candidate = &cc
		case P_P2P_CIRCUIT:
			candidate = nil
		}
		return true
	})
	if err != nil || candidate == nil {
		return "", false
	}
	v, err := candidate.value()
	if err != nil {
		return "", false
	}
	return v, true
}

// ============================================================================
//                              编码接口
// ============================================================================

// MarshalBinary 实现 encoding.BinaryMarshaler
func (m Multiaddr) MarshalBinary() ([]byte, error) {
	return m.Bytes(), nil
}

// UnmarshalBinary 实现 encoding.BinaryUnmarshaler
func (m *Multiaddr) UnmarshalBinary(data []byte) error {
	parsed, err := NewMultiaddrBytesWithRegistry(m.reg, data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText 实现 encoding.TextMarshaler
func (m Multiaddr) MarshalText() ([]byte, error) {
	s, err := m.ToString()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (m *Multiaddr) UnmarshalText(data []byte) error {
	parsed, err := NewMultiaddrWithRegistry(m.reg, string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (m Multiaddr) MarshalJSON() ([]byte, error) {
	s, err := m.ToString()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalJSON 实现 json.Unmarshaler
func (m *Multiaddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("multiaddr must be a JSON string: %w", err)
	}
	return m.UnmarshalText([]byte(s))
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
