package multiaddr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ============================================================================
//                              IP 地址
// ============================================================================

// ip4Codec 32 位 IPv4 地址（网络字节序）
type ip4Codec struct{}

func (ip4Codec) Size() int    { return 32 }
func (ip4Codec) IsPath() bool { return false }

func (ip4Codec) StringToBytes(p Protocol, s string) ([]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, stringValueError(p, s, "invalid IPv4 address", err)
	}
	if !addr.Is4() {
		return nil, stringValueError(p, s, "not an IPv4 address", nil)
	}
	return addr.AsSlice(), nil
}

func (c ip4Codec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid IPv4 address", err)
	}
	return netip.AddrFrom4([4]byte(b)).String(), nil
}

func (ip4Codec) ValidateBytes(b []byte) error {
	if len(b) != 4 {
		return fmt.Errorf("expected 4 bytes, got %d", len(b))
	}
	return nil
}

// ip6Codec 128 位 IPv6 地址（网络字节序）
type ip6Codec struct{}

func (ip6Codec) Size() int    { return 128 }
func (ip6Codec) IsPath() bool { return false }

func (ip6Codec) StringToBytes(p Protocol, s string) ([]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, stringValueError(p, s, "invalid IPv6 address", err)
	}
	if !addr.Is6() {
		return nil, stringValueError(p, s, "not an IPv6 address", nil)
	}
	if addr.Zone() != "" {
		// zone 必须通过 /ip6zone 组件表达
		return nil, stringValueError(p, s, "IPv6 zone not allowed, use /ip6zone", nil)
	}
	b := addr.As16()
	return b[:], nil
}

func (c ip6Codec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid IPv6 address", err)
	}
	return netip.AddrFrom16([16]byte(b)).String(), nil
}

func (ip6Codec) ValidateBytes(b []byte) error {
	if len(b) != 16 {
		return fmt.Errorf("expected 16 bytes, got %d", len(b))
	}
	return nil
}

// ============================================================================
//                              无符号整数
// ============================================================================

// uintCodec 固定位宽大端无符号整数
//
// bits=16 用于端口（tcp/udp/sctp/dccp），bits=8 用于 ipcidr，bits=64 用于 memory。
type uintCodec struct {
	bits int
}

func (c uintCodec) Size() int  { return c.bits }
func (uintCodec) IsPath() bool { return false }

func (c uintCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	v, err := strconv.ParseUint(s, 10, c.bits)
	if err != nil {
		return nil, stringValueError(p, s, fmt.Sprintf("invalid %d-bit unsigned integer", c.bits), err)
	}

	b := make([]byte, c.bits/8)
	switch c.bits {
	case 8:
		b[0] = byte(v)
	case 16:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 32:
		binary.BigEndian.PutUint32(b, uint32(v))
	case 64:
		binary.BigEndian.PutUint64(b, v)
	default:
		return nil, stringValueError(p, s, "unsupported integer width", nil)
	}
	return b, nil
}

func (c uintCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid integer", err)
	}

	var v uint64
	switch c.bits {
	case 8:
		v = uint64(b[0])
	case 16:
		v = uint64(binary.BigEndian.Uint16(b))
	case 32:
		v = uint64(binary.BigEndian.Uint32(b))
	case 64:
		v = binary.BigEndian.Uint64(b)
	}
	return strconv.FormatUint(v, 10), nil
}

func (c uintCodec) ValidateBytes(b []byte) error {
	switch c.bits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("unsupported integer width %d", c.bits)
	}
	if len(b) != c.bits/8 {
		return fmt.Errorf("expected %d bytes, got %d", c.bits/8, len(b))
	}
	return nil
}

// ============================================================================
//                              UTF-8 文本
// ============================================================================

var errEmptyValue = errors.New("empty value")

// utf8Codec 变长 UTF-8 文本（ip6zone），不得为空且不得包含 '/'
type utf8Codec struct{}

func (utf8Codec) Size() int    { return LengthPrefixedVarSize }
func (utf8Codec) IsPath() bool { return false }

func (c utf8Codec) StringToBytes(p Protocol, s string) ([]byte, error) {
	if err := c.ValidateBytes([]byte(s)); err != nil {
		return nil, stringValueError(p, s, "invalid text value", err)
	}
	return []byte(s), nil
}

func (c utf8Codec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid text value", err)
	}
	return string(b), nil
}

func (utf8Codec) ValidateBytes(b []byte) error {
	if len(b) == 0 {
		return errEmptyValue
	}
	if !utf8.Valid(b) {
		return errors.New("invalid UTF-8")
	}
	if strings.ContainsRune(string(b), '/') {
		return errors.New("value contains '/'")
	}
	return nil
}
