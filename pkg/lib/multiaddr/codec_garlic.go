package multiaddr

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"
)

// garlic64Encoding I2P 使用的 base64 字母表（'+/' 替换为 '-~'）
var garlic64Encoding = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-~")

// garlic32Codec I2P b32 地址：小写无填充 base32，解码后 32 字节或至少 35 字节
type garlic32Codec struct{}

func (garlic32Codec) Size() int    { return LengthPrefixedVarSize }
func (garlic32Codec) IsPath() bool { return false }

func (c garlic32Codec) StringToBytes(p Protocol, s string) ([]byte, error) {
	padded := strings.ToUpper(s)
	if rem := len(padded) % 8; rem != 0 {
		padded += strings.Repeat("=", 8-rem)
	}
	b, err := base32.StdEncoding.DecodeString(padded)
	if err != nil {
		return nil, stringValueError(p, s, "failed to decode base32 i2p addr", err)
	}
	if err := c.ValidateBytes(b); err != nil {
		return nil, stringValueError(p, s, "invalid i2p addr", err)
	}
	return b, nil
}

func (c garlic32Codec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid i2p addr", err)
	}
	s := strings.ToLower(base32.StdEncoding.EncodeToString(b))
	return strings.TrimRight(s, "="), nil
}

func (garlic32Codec) ValidateBytes(b []byte) error {
	// https://geti2p.net/spec/b32encrypted
	if len(b) != 32 && len(b) < 35 {
		return fmt.Errorf("garlic32 must be 32 or >= 35 bytes, got %d", len(b))
	}
	return nil
}

// garlic64Codec I2P 完整目的地址：'-~' 字母表 base64，解码后至少 386 字节
type garlic64Codec struct{}

func (garlic64Codec) Size() int    { return LengthPrefixedVarSize }
func (garlic64Codec) IsPath() bool { return false }

func (c garlic64Codec) StringToBytes(p Protocol, s string) ([]byte, error) {
	b, err := garlic64Encoding.DecodeString(s)
	if err != nil {
		return nil, stringValueError(p, s, "failed to decode base64 i2p addr", err)
	}
	if err := c.ValidateBytes(b); err != nil {
		return nil, stringValueError(p, s, "invalid i2p addr", err)
	}
	return b, nil
}

func (c garlic64Codec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid i2p addr", err)
	}
	return garlic64Encoding.EncodeToString(b), nil
}

func (garlic64Codec) ValidateBytes(b []byte) error {
	if len(b) < 386 {
		return fmt.Errorf("garlic64 must be at least 386 bytes, got %d", len(b))
	}
	return nil
}
