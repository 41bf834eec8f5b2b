package multiaddr

import (
	"fmt"
	"sort"
	"sync"
)

// LengthPrefixedVarSize 表示变长数据（使用 varint 长度前缀）
const LengthPrefixedVarSize = -1

// Codec 单个协议值的编解码器
//
// 编解码器是无状态的纯函数集合，可在任意 goroutine 中并发使用。
type Codec interface {
	// Size 数据位宽
	// >0 表示固定位数，LengthPrefixedVarSize 表示变长，0 表示无值（标志协议）
	Size() int

	// IsPath 是否为路径协议（消费字符串剩余全部片段）
	IsPath() bool

	// StringToBytes 将字符串值编码为二进制
	StringToBytes(p Protocol, s string) ([]byte, error)

	// BytesToString 将二进制值解码为字符串
	BytesToString(p Protocol, b []byte) (string, error)

	// ValidateBytes 校验二进制值
	ValidateBytes(b []byte) error
}

// CodecFactory 编解码器构造函数
type CodecFactory func() Codec

// 内置编解码器名称
const (
	CodecFlag     = ""
	CodecIP4      = "ip4"
	CodecIP6      = "ip6"
	CodecUint16BE = "uint16be"
	CodecUTF8     = "utf8"
	CodecIPCIDR   = "ipcidr"
	CodecDomain   = "domain"
	CodecCID      = "cid"
	CodecOnion    = "onion"
	CodecOnion3   = "onion3"
	CodecGarlic32 = "garlic32"
	CodecGarlic64 = "garlic64"
	CodecCerthash = "certhash"
	CodecFSPath   = "fspath"
	CodecHTTPPath = "http_path"
	CodecMemory   = "memory"
)

var (
	codecMu        sync.RWMutex
	codecFactories = map[string]CodecFactory{
		CodecFlag:     func() Codec { return flagCodec{} },
		CodecIP4:      func() Codec { return ip4Codec{} },
		CodecIP6:      func() Codec { return ip6Codec{} },
		CodecUint16BE: func() Codec { return uintCodec{bits: 16} },
		CodecIPCIDR:   func() Codec { return uintCodec{bits: 8} },
		CodecMemory:   func() Codec { return uintCodec{bits: 64} },
		CodecUTF8:     func() Codec { return utf8Codec{} },
		CodecDomain:   func() Codec { return newDomainCodec() },
		CodecCID:      func() Codec { return cidCodec{} },
		CodecOnion:    func() Codec { return onionCodec{addrLen: 16, rawLen: 10} },
		CodecOnion3:   func() Codec { return onionCodec{addrLen: 56, rawLen: 35} },
		CodecGarlic32: func() Codec { return garlic32Codec{} },
		CodecGarlic64: func() Codec { return garlic64Codec{} },
		CodecCerthash: func() Codec { return certhashCodec{} },
		CodecFSPath:   func() Codec { return fspathCodec{} },
		CodecHTTPPath: func() Codec { return httpPathCodec{} },
	}

	// codecCache 按名称缓存已构造的编解码器，进程生命周期内复用
	codecCache sync.Map
)

// CodecByName 按名称获取编解码器
//
// 编解码器在首次使用时构造并缓存。空名称返回标志协议编解码器。
func CodecByName(name string) (Codec, error) {
	if c, ok := codecCache.Load(name); ok {
		return c.(Codec), nil
	}

	codecMu.RLock()
	factory, ok := codecFactories[name]
	codecMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	c, _ := codecCache.LoadOrStore(name, factory())
	return c.(Codec), nil
}

// RegisterCodec 注册自定义编解码器
//
// 名称已存在时返回错误，内置编解码器不可替换。
func RegisterCodec(name string, factory CodecFactory) error {
	if factory == nil {
		return fmt.Errorf("codec %q: nil factory", name)
	}

	codecMu.Lock()
	defer codecMu.Unlock()

	if _, exists := codecFactories[name]; exists {
		return fmt.Errorf("codec %q already registered", name)
	}
	codecFactories[name] = factory
	return nil
}

// CodecNames 返回所有已注册的编解码器名称（已排序）
func CodecNames() []string {
	codecMu.RLock()
	defer codecMu.RUnlock()

	names := make([]string, 0, len(codecFactories))
	for name := range codecFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ============================================================================
//                              错误辅助
// ============================================================================

func stringValueError(p Protocol, s, msg string, cause error) error {
	return &StringParseError{Message: msg, String: s, Protocol: p.Name, Err: cause}
}

func binaryValueError(p Protocol, b []byte, msg string, cause error) error {
	return &BinaryParseError{Message: msg, Binary: b, Protocol: p.Name, Err: cause}
}

// ============================================================================
//                              标志协议
// ============================================================================

// flagCodec 无值协议（tls、quic、ws 等）
type flagCodec struct{}

func (flagCodec) Size() int    { return 0 }
func (flagCodec) IsPath() bool { return false }

func (flagCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	if s != "" {
		return nil, stringValueError(p, s, "protocol takes no value", nil)
	}
	return nil, nil
}

func (flagCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if len(b) != 0 {
		return "", binaryValueError(p, b, "protocol takes no value", nil)
	}
	return "", nil
}

func (flagCodec) ValidateBytes(b []byte) error {
	if len(b) != 0 {
		return fmt.Errorf("unexpected %d bytes for flag protocol", len(b))
	}
	return nil
}
