package multiaddr

import (
	"fmt"
	"strings"
)

// Protocol 描述一个 multiaddr 协议
type Protocol struct {
	// Name 协议名称（如 "ip4", "tcp"）
	Name string

	// Code 协议代码
	Code int

	// VCode 预计算的 varint 编码
	VCode []byte

	// CodecName 编解码器名称，空字符串表示标志协议
	CodecName string

	// Codec 编解码器
	Codec Codec

	// Size 协议数据大小（位）
	// 0 表示无数据
	// -1 表示变长（length-prefixed）
	Size int

	// Path 是否为路径协议（终端协议）
	Path bool
}

// NewProtocol 按代码、名称和编解码器名称构造协议描述
func NewProtocol(code int, name, codecName string) (Protocol, error) {
	if name == "" {
		return Protocol{}, fmt.Errorf("protocol code %d: empty name", code)
	}
	if strings.ContainsRune(name, '/') {
		return Protocol{}, fmt.Errorf("protocol name %q contains '/'", name)
	}
	if code < 0 {
		return Protocol{}, fmt.Errorf("protocol %s: negative code %d", name, code)
	}

	codec, err := CodecByName(codecName)
	if err != nil {
		return Protocol{}, fmt.Errorf("protocol %s: %w", name, err)
	}

	return Protocol{
		Name:      name,
		Code:      code,
		VCode:     codeToVarint(code),
		CodecName: codecName,
		Codec:     codec,
		Size:      codec.Size(),
		Path:      codec.IsPath(),
	}, nil
}

// mustProtocol 用于内置协议表
func mustProtocol(code int, name, codecName string) Protocol {
	p, err := NewProtocol(code, name, codecName)
	if err != nil {
		panic(err)
	}
	return p
}

// String 返回协议名称
func (p Protocol) String() string {
	return p.Name
}

// IsFlag 是否为无值协议
func (p Protocol) IsFlag() bool {
	return p.Size == 0
}

// 协议代码常量（与 multiformats/multicodec 对齐）
// 参考：https://github.com/multiformats/multicodec/blob/master/table.csv
const (
	P_IP4                = 0x0004
	P_TCP                = 0x0006
	P_DCCP               = 0x0021
	P_IP6                = 0x0029
	P_IP6ZONE            = 0x002A
	P_IPCIDR             = 0x002B
	P_DNS                = 0x0035
	P_DNS4               = 0x0036
	P_DNS6               = 0x0037
	P_DNSADDR            = 0x0038
	P_SCTP               = 0x0084
	P_UDP                = 0x0111
	P_P2P_WEBRTC_STAR    = 0x0113
	P_P2P_WEBRTC_DIRECT  = 0x0114
	P_WEBRTC_DIRECT      = 0x0118
	P_WEBRTC             = 0x0119
	P_P2P_CIRCUIT        = 0x0122
	P_UDT                = 0x012D
	P_UTP                = 0x012E
	P_UNIX               = 0x0190
	P_P2P                = 0x01A5
	P_IPFS               = P_P2P // 别名
	P_HTTPS              = 0x01BB
	P_ONION              = 0x01BC
	P_ONION3             = 0x01BD
	P_GARLIC64           = 0x01BE
	P_GARLIC32           = 0x01BF
	P_TLS                = 0x01C0
	P_SNI                = 0x01C1
	P_NOISE              = 0x01C6
	P_QUIC               = 0x01CC
	P_QUIC_V1            = 0x01CD
	P_WEBTRANSPORT       = 0x01D1
	P_CERTHASH           = 0x01D2
	P_WS                 = 0x01DD
	P_WSS                = 0x01DE
	P_P2P_WEBSOCKET_STAR = 0x01DF
	P_HTTP               = 0x01E0
	P_HTTP_PATH          = 0x01E1
	P_MEMORY             = 0x0309
)

// wellKnownProtocols 默认注册表中的协议（代码, 名称, 编解码器）
var wellKnownProtocols = []struct {
	code  int
	name  string
	codec string
}{
	{P_IP4, "ip4", CodecIP4},
	{P_TCP, "tcp", CodecUint16BE},
	{P_UDP, "udp", CodecUint16BE},
	{P_DCCP, "dccp", CodecUint16BE},
	{P_IP6, "ip6", CodecIP6},
	{P_IP6ZONE, "ip6zone", CodecUTF8},
	{P_IPCIDR, "ipcidr", CodecIPCIDR},
	{P_DNS, "dns", CodecDomain},
	{P_DNS4, "dns4", CodecDomain},
	{P_DNS6, "dns6", CodecDomain},
	{P_DNSADDR, "dnsaddr", CodecDomain},
	{P_SNI, "sni", CodecDomain},
	{P_NOISE, "noise", CodecFlag},
	{P_SCTP, "sctp", CodecUint16BE},
	{P_UDT, "udt", CodecFlag},
	{P_UTP, "utp", CodecFlag},
	{P_P2P, "p2p", CodecCID},
	{P_ONION, "onion", CodecOnion},
	{P_ONION3, "onion3", CodecOnion3},
	{P_GARLIC64, "garlic64", CodecGarlic64},
	{P_GARLIC32, "garlic32", CodecGarlic32},
	{P_QUIC, "quic", CodecFlag},
	{P_QUIC_V1, "quic-v1", CodecFlag},
	{P_HTTP, "http", CodecFlag},
	{P_HTTPS, "https", CodecFlag},
	{P_HTTP_PATH, "http-path", CodecHTTPPath},
	{P_TLS, "tls", CodecFlag},
	{P_WS, "ws", CodecFlag},
	{P_WSS, "wss", CodecFlag},
	{P_P2P_WEBSOCKET_STAR, "p2p-websocket-star", CodecFlag},
	{P_P2P_WEBRTC_STAR, "p2p-webrtc-star", CodecFlag},
	{P_P2P_WEBRTC_DIRECT, "p2p-webrtc-direct", CodecFlag},
	{P_P2P_CIRCUIT, "p2p-circuit", CodecFlag},
	{P_WEBTRANSPORT, "webtransport", CodecFlag},
	{P_UNIX, "unix", CodecFSPath},
	{P_WEBRTC_DIRECT, "webrtc-direct", CodecFlag},
	{P_WEBRTC, "webrtc", CodecFlag},
	{P_MEMORY, "memory", CodecMemory},
	{P_CERTHASH, "certhash", CodecCerthash},
}

// defaultRegistry 进程级只读注册表，包初始化时构建并锁定
var defaultRegistry = buildDefaultRegistry()

func buildDefaultRegistry() *Registry {
	b := NewRegistryBuilder()
	for _, wk := range wellKnownProtocols {
		if _, err := b.Add(mustProtocol(wk.code, wk.name, wk.codec)); err != nil {
			panic(err)
		}
	}
	if err := b.AddAliasName("p2p", "ipfs"); err != nil {
		panic(err)
	}
	return b.Lock()
}

// DefaultRegistry 返回默认（已锁定）协议注册表
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// ProtocolWithCode 在默认注册表中按代码查找协议
func ProtocolWithCode(code int) (Protocol, error) {
	return defaultRegistry.FindByCode(code)
}

// ProtocolWithName 在默认注册表中按名称查找协议
func ProtocolWithName(name string) (Protocol, error) {
	return defaultRegistry.FindByName(name)
}

// ProtocolsWithString 解析形如 "/ip4/tcp" 的协议名序列
func ProtocolsWithString(s string) ([]Protocol, error) {
	return defaultRegistry.ProtocolsWithString(s)
}
