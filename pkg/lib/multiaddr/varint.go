package multiaddr

import (
	"errors"
	"math"

	"github.com/multiformats/go-varint"
)

// ErrVarintOverflow 协议代码超出 32 位范围
var ErrVarintOverflow = errors.New("varint: protocol code overflows int32")

// codeToVarint 将协议代码转换为 varint 编码的字节
func codeToVarint(code int) []byte {
	if code < 0 || code > math.MaxInt32 {
		panic("invalid protocol code")
	}
	return varint.ToUvarint(uint64(code))
}

// readVarintCode 从字节流中读取 varint 编码的协议代码
// 返回：(code, bytes_read, error)
func readVarintCode(buf []byte) (int, int, error) {
	code, n, err := varint.FromUvarint(buf)
	if err != nil {
		return 0, 0, err
	}
	if code > math.MaxInt32 {
		// 只允许 32 位代码
		return 0, 0, ErrVarintOverflow
	}
	return int(code), n, nil
}

// uvarintEncode 编码长度前缀
func uvarintEncode(x uint64) []byte {
	return varint.ToUvarint(x)
}

// uvarintDecode 解码长度前缀
// 返回：(value, bytes_read, error)
func uvarintDecode(buf []byte) (uint64, int, error) {
	return varint.FromUvarint(buf)
}
