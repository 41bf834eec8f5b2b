package multiaddr

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// onionEncoding Tor 地址使用的无填充 base32
var onionEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// onionCodec Tor 隐藏服务地址：base32 地址 + 大端 16 位端口
//
// onion  (v2)：16 字符地址，10 字节
// onion3 (v3)：56 字符地址，35 字节
type onionCodec struct {
	addrLen int // 字符串地址长度
	rawLen  int // 解码后地址字节数
}

func (c onionCodec) Size() int  { return (c.rawLen + 2) * 8 }
func (onionCodec) IsPath() bool { return false }

func (c onionCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	addr, portStr, ok := strings.Cut(s, ":")
	if !ok {
		return nil, stringValueError(p, s, "missing port in onion address", nil)
	}
	addr = strings.TrimSuffix(addr, ".onion")
	if len(addr) != c.addrLen {
		return nil, stringValueError(p, s,
			fmt.Sprintf("onion address must be %d characters, got %d", c.addrLen, len(addr)), nil)
	}

	raw, err := onionEncoding.DecodeString(strings.ToUpper(addr))
	if err != nil {
		return nil, stringValueError(p, s, "invalid base32 onion address", err)
	}
	if len(raw) != c.rawLen {
		return nil, stringValueError(p, s,
			fmt.Sprintf("decoded onion address must be %d bytes", c.rawLen), nil)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, stringValueError(p, s, "invalid onion port", err)
	}
	if port < 1 {
		return nil, stringValueError(p, s, "onion port must be in 1-65535", nil)
	}

	b := make([]byte, c.rawLen+2)
	copy(b, raw)
	binary.BigEndian.PutUint16(b[c.rawLen:], uint16(port))
	return b, nil
}

func (c onionCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid onion address", err)
	}
	addr := strings.ToLower(onionEncoding.EncodeToString(b[:c.rawLen]))
	port := binary.BigEndian.Uint16(b[c.rawLen:])
	return addr + ":" + strconv.FormatUint(uint64(port), 10), nil
}

func (c onionCodec) ValidateBytes(b []byte) error {
	if len(b) != c.rawLen+2 {
		return fmt.Errorf("expected %d bytes, got %d", c.rawLen+2, len(b))
	}
	if binary.BigEndian.Uint16(b[c.rawLen:]) == 0 {
		return errors.New("onion port must be in 1-65535")
	}
	return nil
}
