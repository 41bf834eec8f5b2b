package multiaddr

import (
	"strings"
)

// Component 表示多地址中的一个组件（协议代码 + 可选值）
type Component struct {
	reg      *Registry
	proto    Protocol
	raw      []byte // 完整的 TLV 字节
	valueOff int    // 值在 raw 中的起始位置
	offset   int    // 组件在所属地址中的字节偏移
}

// Protocol 返回组件的协议
func (c Component) Protocol() Protocol {
	return c.proto
}

// Code 返回协议代码
func (c Component) Code() int {
	return c.proto.Code
}

// Name 返回协议名称
func (c Component) Name() string {
	return c.proto.Name
}

// RawValue 返回值的原始字节
func (c Component) RawValue() []byte {
	return c.raw[c.valueOff:]
}

// Value 返回值的字符串形式，标志协议返回空字符串
func (c Component) Value() string {
	v, _ := c.value()
	return v
}

// Bytes 返回组件的二进制表示
func (c Component) Bytes() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)
	return out
}

// Offset 返回组件在所属地址中的字节偏移
func (c Component) Offset() int {
	return c.offset
}

// Multiaddr 返回仅包含该组件的多地址
func (c Component) Multiaddr() Multiaddr {
	return Multiaddr{b: c.Bytes(), reg: c.reg}
}

// String 返回组件的字符串表示
func (c Component) String() string {
	s, _ := c.render()
	return s
}

func (c Component) value() (string, error) {
	if c.proto.Size == 0 {
		return "", nil
	}
	return c.proto.Codec.BytesToString(c.proto, c.RawValue())
}

// render 生成 "/name"、"/name/value" 或路径协议的 "/name/path"
func (c Component) render() (string, error) {
	if c.proto.Size == 0 {
		return "/" + c.proto.Name, nil
	}

	v, err := c.value()
	if err != nil {
		return "", err
	}
	if c.proto.Path && strings.HasPrefix(v, "/") {
		return "/" + c.proto.Name + v, nil
	}
	return "/" + c.proto.Name + "/" + v, nil
}
