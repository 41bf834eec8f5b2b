package multiaddr

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// ErrNotThinWaist 地址不是 ip{4,6}/{tcp,udp} 形式
var ErrNotThinWaist = errors.New("multiaddr: not an ip/tcp or ip/udp address")

// thinWaist 解析地址开头的 IP 与传输端口
func (m Multiaddr) thinWaist() (netip.Addr, int, uint16, error) {
	comps, err := m.Components()
	if err != nil {
		return netip.Addr{}, 0, 0, err
	}

	if len(comps) == 0 || (comps[0].Code() != P_IP4 && comps[0].Code() != P_IP6) {
		return netip.Addr{}, 0, 0, fmt.Errorf("%w: no IP address in %s", ErrNotThinWaist, m)
	}
	ip, _ := netip.AddrFromSlice(comps[0].RawValue())
	i := 1

	// 可选 /ip6zone 紧随 /ip6
	if i < len(comps) && comps[i].Code() == P_IP6ZONE && ip.Is6() {
		ip = ip.WithZone(comps[i].Value())
		i++
	}

	if i >= len(comps) {
		return netip.Addr{}, 0, 0, fmt.Errorf("%w: no transport in %s", ErrNotThinWaist, m)
	}
	transport := comps[i].Code()
	if transport != P_TCP && transport != P_UDP {
		return netip.Addr{}, 0, 0, fmt.Errorf("%w: unsupported transport %s", ErrNotThinWaist, comps[i].Name())
	}

	port, err := strconv.ParseUint(comps[i].Value(), 10, 16)
	if err != nil {
		return netip.Addr{}, 0, 0, fmt.Errorf("invalid port: %w", err)
	}
	return ip, transport, uint16(port), nil
}

// ToTCPAddr 将多地址转换为 *net.TCPAddr
func (m Multiaddr) ToTCPAddr() (*net.TCPAddr, error) {
	ip, transport, port, err := m.thinWaist()
	if err != nil {
		return nil, err
	}
	if transport != P_TCP {
		return nil, fmt.Errorf("%w: no TCP port in %s", ErrNotThinWaist, m)
	}
	return net.TCPAddrFromAddrPort(netip.AddrPortFrom(ip, port)), nil
}

// ToUDPAddr 将多地址转换为 *net.UDPAddr
func (m Multiaddr) ToUDPAddr() (*net.UDPAddr, error) {
	ip, transport, port, err := m.thinWaist()
	if err != nil {
		return nil, err
	}
	if transport != P_UDP {
		return nil, fmt.Errorf("%w: no UDP port in %s", ErrNotThinWaist, m)
	}
	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(ip, port)), nil
}

// ToNetAddr 将多地址转换为 net.Addr（tcp、udp 或 unix）
func (m Multiaddr) ToNetAddr() (net.Addr, error) {
	var unixPath string
	if err := m.ForEach(func(c Component) bool {
		if c.Code() == P_UNIX {
			unixPath = string(c.RawValue())
			return false
		}
		return true
	}); err != nil {
		return nil, err
	}
	if unixPath != "" {
		return &net.UnixAddr{Name: unixPath, Net: "unix"}, nil
	}

	_, transport, _, err := m.thinWaist()
	if err != nil {
		return nil, err
	}
	if transport == P_TCP {
		return m.ToTCPAddr()
	}
	return m.ToUDPAddr()
}

// FromIP 从 IP 地址创建 /ip4 或 /ip6 多地址
func FromIP(ip net.IP) (Multiaddr, error) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return Multiaddr{}, fmt.Errorf("invalid IP address: %v", ip)
	}
	return fromAddr(addr.Unmap())
}

func fromAddr(addr netip.Addr) (Multiaddr, error) {
	var out []byte
	switch {
	case addr.Is4():
		out = append(out, codeToVarint(P_IP4)...)
		b := addr.As4()
		out = append(out, b[:]...)
	case addr.Is6():
		out = append(out, codeToVarint(P_IP6)...)
		b := addr.As16()
		out = append(out, b[:]...)
		if zone := addr.Zone(); zone != "" {
			out = append(out, codeToVarint(P_IP6ZONE)...)
			out = append(out, uvarintEncode(uint64(len(zone)))...)
			out = append(out, zone...)
		}
	default:
		return Multiaddr{}, fmt.Errorf("invalid IP address: %v", addr)
	}
	return Multiaddr{b: out}, nil
}

func fromAddrPort(ap netip.AddrPort, transport int) (Multiaddr, error) {
	ipma, err := fromAddr(ap.Addr().Unmap())
	if err != nil {
		return Multiaddr{}, err
	}
	port := make([]byte, 0, 4)
	port = append(port, codeToVarint(transport)...)
	port = append(port, byte(ap.Port()>>8), byte(ap.Port()))
	return ipma.Encapsulate(Multiaddr{b: port}), nil
}

// FromTCPAddr 从 *net.TCPAddr 创建多地址
func FromTCPAddr(addr *net.TCPAddr) (Multiaddr, error) {
	if addr == nil {
		return Multiaddr{}, errors.New("nil TCP address")
	}
	return fromAddrPort(addr.AddrPort(), P_TCP)
}

// FromUDPAddr 从 *net.UDPAddr 创建多地址
func FromUDPAddr(addr *net.UDPAddr) (Multiaddr, error) {
	if addr == nil {
		return Multiaddr{}, errors.New("nil UDP address")
	}
	return fromAddrPort(addr.AddrPort(), P_UDP)
}

// FromNetAddr 从 net.Addr 创建多地址
func FromNetAddr(addr net.Addr) (Multiaddr, error) {
	if addr == nil {
		return Multiaddr{}, errors.New("nil address")
	}

	switch a := addr.(type) {
	case *net.TCPAddr:
		return FromTCPAddr(a)
	case *net.UDPAddr:
		return FromUDPAddr(a)
	case *net.IPAddr:
		return FromIP(a.IP)
	case *net.UnixAddr:
		path := a.Name
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		out := codeToVarint(P_UNIX)
		out = append(out, uvarintEncode(uint64(len(path)))...)
		out = append(out, path...)
		return NewMultiaddrBytes(out)
	default:
		return Multiaddr{}, fmt.Errorf("unsupported address type: %T", addr)
	}
}
