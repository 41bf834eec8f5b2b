package multiaddr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
//                              字符串 -> 二进制
// ============================================================================

// stringToBytes 将多地址字符串转换为二进制格式
//
// 空字符串和 "/" 得到空地址。单遍扫描，不回溯。
func stringToBytes(reg *Registry, s string) ([]byte, error) {
	reg = reg.orDefault()
	orig := s

	// 去除尾部斜杠
	s = strings.TrimRight(s, "/")
	if s == "" {
		return []byte{}, nil
	}
	if s[0] != '/' {
		return nil, &StringParseError{Message: "multiaddr must begin with /", String: orig}
	}

	var buf bytes.Buffer
	parts := strings.Split(s[1:], "/")

	for len(parts) > 0 {
		name := parts[0]
		parts = parts[1:]

		if name == "" {
			return nil, &StringParseError{Message: "empty protocol name", String: orig}
		}

		proto, err := reg.FindByName(name)
		if err != nil {
			return nil, &StringParseError{Message: "unknown protocol", String: orig, Protocol: name, Err: err}
		}

		// 写入协议代码（varint）
		buf.Write(proto.VCode)

		// 如果协议无数据，继续下一个
		if proto.Size == 0 {
			continue
		}

		if len(parts) == 0 {
			return nil, &StringParseError{Message: "missing value", String: orig, Protocol: name}
		}

		var value string
		if proto.Path {
			// 路径协议消费剩余所有部分
			value = "/" + strings.Join(parts, "/")
			parts = nil
		} else {
			value = parts[0]
			parts = parts[1:]
			if _, err := reg.FindByName(value); err == nil {
				return nil, &StringParseError{
					Message:  fmt.Sprintf("value %q is a protocol name", value),
					String:   orig,
					Protocol: name,
				}
			}
		}

		valueBytes, err := proto.Codec.StringToBytes(proto, value)
		if err != nil {
			return nil, rebaseStringError(err, orig, name)
		}

		switch {
		case proto.Size == LengthPrefixedVarSize:
			// 变长协议写入长度前缀
			buf.Write(uvarintEncode(uint64(len(valueBytes))))
		case len(valueBytes) != proto.Size/8:
			return nil, &StringParseError{
				Message:  fmt.Sprintf("codec produced %d bytes, want %d", len(valueBytes), proto.Size/8),
				String:   orig,
				Protocol: name,
			}
		}

		buf.Write(valueBytes)
	}

	return buf.Bytes(), nil
}

// ============================================================================
//                              二进制 -> 字符串
// ============================================================================

// componentReader 顺序读取二进制多地址中的组件
//
// 所有遍历（字符串化、校验、Components、Split 等）共用同一个读取器，
// 每次调用都从头重新解析。
type componentReader struct {
	reg  *Registry
	buf  []byte
	off  int
	last string // 最后一个成功解析的协议名
}

func newComponentReader(reg *Registry, b []byte) *componentReader {
	return &componentReader{reg: reg.orDefault(), buf: b}
}

// more 是否还有未读字节
func (r *componentReader) more() bool {
	return r.off < len(r.buf)
}

// next 读取下一个组件
func (r *componentReader) next() (Component, error) {
	start := r.off
	rest := r.buf[start:]

	code, n, err := readVarintCode(rest)
	if err != nil {
		return Component{}, r.fail("invalid protocol code", r.last, err)
	}

	proto, err := r.reg.FindByCode(code)
	if err != nil {
		return Component{}, r.fail("unknown protocol", r.last, err)
	}

	pos := start + n
	size := 0
	switch {
	case proto.Size == LengthPrefixedVarSize:
		length, m, err := uvarintDecode(r.buf[pos:])
		if err != nil {
			return Component{}, r.fail(fmt.Sprintf("invalid length prefix for %s", proto.Name), r.last, err)
		}
		pos += m
		if length > uint64(len(r.buf)-pos) {
			return Component{}, r.fail(
				fmt.Sprintf("insufficient bytes for %s: need %d, have %d", proto.Name, length, len(r.buf)-pos),
				r.last, nil)
		}
		size = int(length)
	case proto.Size > 0:
		size = proto.Size / 8
		if size > len(r.buf)-pos {
			return Component{}, r.fail(
				fmt.Sprintf("insufficient bytes for %s: need %d, have %d", proto.Name, size, len(r.buf)-pos),
				r.last, nil)
		}
	}

	value := r.buf[pos : pos+size]
	if err := proto.Codec.ValidateBytes(value); err != nil {
		return Component{}, rebaseBinaryError(err, r.buf, proto.Name)
	}

	r.off = pos + size
	r.last = proto.Name

	return Component{
		reg:      r.reg,
		proto:    proto,
		raw:      r.buf[start:r.off:r.off],
		valueOff: pos - start,
		offset:   start,
	}, nil
}

func (r *componentReader) fail(msg, proto string, cause error) error {
	return &BinaryParseError{Message: msg, Binary: r.buf, Protocol: proto, Err: cause}
}

// rebaseStringError 将值级错误改写为指向完整输入的 StringParseError
//
// 编解码器已返回 StringParseError 时只替换输入并把原值并入描述，不再嵌套。
func rebaseStringError(err error, orig, proto string) error {
	var perr *StringParseError
	if !errors.As(err, &perr) {
		return &StringParseError{Message: "invalid value", String: orig, Protocol: proto, Err: err}
	}
	out := *perr
	out.String = orig
	out.Message = fmt.Sprintf("invalid value %q: %s", perr.String, perr.Message)
	if out.Protocol == "" {
		out.Protocol = proto
	}
	return &out
}

// rebaseBinaryError 将值级错误改写为指向完整缓冲区的 BinaryParseError
func rebaseBinaryError(err error, buf []byte, proto string) error {
	var perr *BinaryParseError
	if !errors.As(err, &perr) {
		return &BinaryParseError{Message: "invalid value", Binary: buf, Protocol: proto, Err: err}
	}
	out := *perr
	out.Binary = buf
	out.Message = fmt.Sprintf("invalid value %x: %s", perr.Binary, perr.Message)
	if out.Protocol == "" {
		out.Protocol = proto
	}
	return &out
}

// readComponents 解析全部组件，要求恰好消费整个缓冲区
func readComponents(reg *Registry, b []byte) ([]Component, error) {
	r := newComponentReader(reg, b)
	var out []Component
	for r.more() {
		c, err := r.next()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// bytesToString 将二进制格式的多地址转换为字符串
func bytesToString(reg *Registry, b []byte) (string, error) {
	var sb strings.Builder
	r := newComponentReader(reg, b)

	for r.more() {
		c, err := r.next()
		if err != nil {
			return "", err
		}
		s, err := c.render()
		if err != nil {
			return "", rebaseBinaryError(err, b, c.Name())
		}
		sb.WriteString(s)
	}

	return sb.String(), nil
}

// validateBytes 验证二进制多地址的格式
func validateBytes(reg *Registry, b []byte) error {
	r := newComponentReader(reg, b)
	for r.more() {
		if _, err := r.next(); err != nil {
			return err
		}
	}
	return nil
}
