package multiaddr

import (
	"fmt"
)

// SplitFirst 分离多地址的第一个组件和剩余部分
// 空地址或非法地址返回 ok=false
func SplitFirst(m Multiaddr) (first Component, rest Multiaddr, ok bool) {
	r := newComponentReader(m.reg, m.b)
	if !r.more() {
		return Component{}, Multiaddr{}, false
	}
	c, err := r.next()
	if err != nil {
		return Component{}, Multiaddr{}, false
	}
	return c, Multiaddr{b: cloneBytes(m.b[r.off:]), reg: m.reg}, true
}

// SplitLast 分离多地址的最后一个组件和之前的部分
// 空地址或非法地址返回 ok=false
func SplitLast(m Multiaddr) (head Multiaddr, last Component, ok bool) {
	comps, err := m.Components()
	if err != nil || len(comps) == 0 {
		return Multiaddr{}, Component{}, false
	}
	last = comps[len(comps)-1]
	return Multiaddr{b: cloneBytes(m.b[:last.offset]), reg: m.reg}, last, true
}

// SplitPeerID 分离传输地址和末尾的 P2P 组件
// 输入：/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW...
// 输出：/ip4/1.2.3.4/tcp/4001, 12D3KooW...
//
// 只有最后一个组件是 /p2p 时才会分离，其余情况原样返回。
func SplitPeerID(m Multiaddr) (transport Multiaddr, peerID string) {
	head, last, ok := SplitLast(m)
	if !ok || last.Code() != P_P2P {
		return m, ""
	}
	return head, last.Value()
}

// GetPeerID 从多地址中提取目标 PeerID
func GetPeerID(m Multiaddr) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	id, ok := m.PeerID()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoPeerID, m)
	}
	return id, nil
}

// WithPeerID 为多地址添加或替换末尾的 PeerID
func WithPeerID(m Multiaddr, peerID string) (Multiaddr, error) {
	p2p, err := NewMultiaddrWithRegistry(m.reg, "/p2p/"+peerID)
	if err != nil {
		return Multiaddr{}, err
	}
	transport, _ := SplitPeerID(m)
	return transport.Encapsulate(p2p), nil
}

// WithoutPeerID 移除多地址末尾的 PeerID
func WithoutPeerID(m Multiaddr) Multiaddr {
	transport, _ := SplitPeerID(m)
	return transport
}

// FilterAddrs 过滤多地址列表
func FilterAddrs(addrs []Multiaddr, filter func(Multiaddr) bool) []Multiaddr {
	result := make([]Multiaddr, 0, len(addrs))
	for _, addr := range addrs {
		if filter(addr) {
			result = append(result, addr)
		}
	}
	return result
}

// UniqueAddrs 去重多地址列表（保持顺序）
func UniqueAddrs(addrs []Multiaddr) []Multiaddr {
	seen := make(map[string]struct{}, len(addrs))
	result := make([]Multiaddr, 0, len(addrs))

	for _, addr := range addrs {
		k := addr.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, addr)
	}

	return result
}

// HasProtocol 检查多地址是否包含指定协议
//
// 遍历在第一个非法组件处停止：Cast 得到的非法地址只检查此前的组件，
// 解析错误被忽略。下面的 Is*Multiaddr 谓词同样如此；需要区分“不包含”与
// “地址非法”时使用 ContainsProtocol。
func HasProtocol(m Multiaddr, code int) bool {
	found, _ := ContainsProtocol(m, code)
	return found
}

// ContainsProtocol 检查多地址是否包含指定协议，并返回遍历中的解析错误
//
// 在非法组件之前已找到协议时返回 true 和 nil。
func ContainsProtocol(m Multiaddr, code int) (bool, error) {
	found := false
	err := m.ForEach(func(c Component) bool {
		found = c.Code() == code
		return !found
	})
	if found {
		return true, nil
	}
	return false, err
}

// IsTCPMultiaddr 检查是否为 TCP 多地址
func IsTCPMultiaddr(m Multiaddr) bool {
	return HasProtocol(m, P_TCP)
}

// IsUDPMultiaddr 检查是否为 UDP 多地址
func IsUDPMultiaddr(m Multiaddr) bool {
	return HasProtocol(m, P_UDP)
}

// IsIP4Multiaddr 检查是否包含 IPv4
func IsIP4Multiaddr(m Multiaddr) bool {
	return HasProtocol(m, P_IP4)
}

// IsIP6Multiaddr 检查是否包含 IPv6
func IsIP6Multiaddr(m Multiaddr) bool {
	return HasProtocol(m, P_IP6)
}

// IsIPMultiaddr 检查是否包含 IP（IPv4 或 IPv6）
func IsIPMultiaddr(m Multiaddr) bool {
	return IsIP4Multiaddr(m) || IsIP6Multiaddr(m)
}

// IsDNSMultiaddr 检查首个组件是否为 dns/dns4/dns6/dnsaddr
func IsDNSMultiaddr(m Multiaddr) bool {
	first, _, ok := SplitFirst(m)
	if !ok {
		return false
	}
	switch first.Code() {
	case P_DNS, P_DNS4, P_DNS6, P_DNSADDR:
		return true
	}
	return false
}

// IsRelayMultiaddr 检查是否为中继地址
func IsRelayMultiaddr(m Multiaddr) bool {
	return HasProtocol(m, P_P2P_CIRCUIT)
}
