package multiaddr

import (
	"net/netip"
)

// ============================================================================
//                              IP 类型判断工具
// ============================================================================

// AddrClass 地址类型
type AddrClass string

const (
	// ClassLoopback 回环地址
	ClassLoopback AddrClass = "loopback"
	// ClassPrivate 私网或链路本地地址
	ClassPrivate AddrClass = "private"
	// ClassPublic 公网地址
	ClassPublic AddrClass = "public"
	// ClassRelay 中继电路地址
	ClassRelay AddrClass = "relay"
	// ClassDNS 需要解析的 DNS 地址
	ClassDNS AddrClass = "dns"
	// ClassUnknown 无法判断
	ClassUnknown AddrClass = "unknown"
	// ClassInvalid 二进制非法的地址
	ClassInvalid AddrClass = "invalid"
)

// IP 返回首组件为 /ip4 或 /ip6 时的 IP 地址
//
// /ip6 后紧跟 /ip6zone 时带上 zone。
func IP(m Multiaddr) (netip.Addr, bool) {
	first, rest, ok := SplitFirst(m)
	if !ok || (first.Code() != P_IP4 && first.Code() != P_IP6) {
		return netip.Addr{}, false
	}
	ip, ok := netip.AddrFromSlice(first.RawValue())
	if !ok {
		return netip.Addr{}, false
	}
	if first.Code() == P_IP4 {
		return ip.Unmap(), true
	}

	if next, _, ok := SplitFirst(rest); ok && next.Code() == P_IP6ZONE {
		ip = ip.WithZone(next.Value())
	}
	return ip, true
}

// IsLoopback 判断地址是否以回环 IP 开头
//
// IsLoopback、IsPrivate、IsPublic 只检查首组件，不校验其后的字节。
func IsLoopback(m Multiaddr) bool {
	ip, ok := IP(m)
	return ok && ip.IsLoopback()
}

// IsPrivate 判断地址是否以私网 IP 开头
//
// 私网地址范围：
//   - 10.0.0.0/8
//   - 172.16.0.0/12
//   - 192.168.0.0/16
//   - fc00::/7 (IPv6 ULA)
//   - 169.254.0.0/16、fe80::/10 (链路本地)
func IsPrivate(m Multiaddr) bool {
	ip, ok := IP(m)
	return ok && (ip.IsPrivate() || ip.IsLinkLocalUnicast())
}

// IsPublic 判断地址是否以公网 IP 开头
//
// 公网地址：非回环、非私网、非链路本地的全局单播地址
func IsPublic(m Multiaddr) bool {
	ip, ok := IP(m)
	return ok && ip.IsGlobalUnicast() && !ip.IsPrivate() && !ip.IsLoopback()
}

// Classify 返回地址类型
//
// 中继判断优先于 DNS，DNS 优先于 IP 类型。Cast 得到的非法地址返回
// ClassInvalid，不做部分判断。
func Classify(m Multiaddr) AddrClass {
	switch {
	case m.IsEmpty():
		return ClassUnknown
	case m.Validate() != nil:
		return ClassInvalid
	case IsRelayMultiaddr(m):
		return ClassRelay
	case IsDNSMultiaddr(m):
		return ClassDNS
	case IsLoopback(m):
		return ClassLoopback
	case IsPrivate(m):
		return ClassPrivate
	case IsPublic(m):
		return ClassPublic
	default:
		return ClassUnknown
	}
}
