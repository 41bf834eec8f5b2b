package multiaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIP(t *testing.T) {
	ip, ok := IP(StringCast("/ip4/10.0.0.1/tcp/1"))
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", ip.String())

	ip, ok = IP(StringCast("/ip6/fe80::1/ip6zone/eth0/udp/1"))
	assert.True(t, ok)
	assert.Equal(t, "fe80::1%eth0", ip.String())

	_, ok = IP(StringCast("/ip6zone/eth0/ip6/fe80::1/udp/1"))
	assert.False(t, ok)
	_, ok = IP(StringCast("/dns4/example.com"))
	assert.False(t, ok)
	_, ok = IP(Multiaddr{})
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		addr string
		want AddrClass
	}{
		{"/ip4/127.0.0.1/tcp/4001", ClassLoopback},
		{"/ip6/::1/udp/1/quic-v1", ClassLoopback},
		{"/ip4/192.168.1.10/tcp/1", ClassPrivate},
		{"/ip4/172.16.5.4/tcp/1", ClassPrivate},
		{"/ip4/169.254.1.1/tcp/1", ClassPrivate},
		{"/ip6/fd00::1/tcp/1", ClassPrivate},
		{"/ip4/8.8.8.8/udp/53", ClassPublic},
		{"/ip6/2001:4860::8888/tcp/1", ClassPublic},
		{"/dns4/example.com/tcp/443", ClassDNS},
		{"/dnsaddr/bootstrap.example.com", ClassDNS},
		{"/ip4/1.2.3.4/tcp/1/p2p/" + peerA + "/p2p-circuit/p2p/" + peerB, ClassRelay},
		{"/ip4/0.0.0.0/tcp/1", ClassUnknown},
		{"/unix/tmp/sock", ClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(StringCast(tt.addr)))
		})
	}
	assert.Equal(t, ClassUnknown, Classify(Multiaddr{}))
}

func TestIPPredicates(t *testing.T) {
	assert.True(t, IsLoopback(StringCast("/ip4/127.0.0.2")))
	assert.False(t, IsLoopback(StringCast("/ip4/10.0.0.1")))
	assert.True(t, IsPrivate(StringCast("/ip4/10.0.0.1")))
	assert.False(t, IsPrivate(StringCast("/ip4/8.8.4.4")))
	assert.True(t, IsPublic(StringCast("/ip4/8.8.4.4")))
	assert.False(t, IsPublic(StringCast("/ip4/127.0.0.1")))
	assert.False(t, IsPublic(StringCast("/dns/example.com")))
}

func TestClassify_Invalid(t *testing.T) {
	bad := Cast([]byte{0x04, 1, 2, 3, 4, 0x06, 0x00})
	assert.Equal(t, ClassInvalid, Classify(bad))
	assert.Equal(t, ClassInvalid, Classify(Cast([]byte{0x04})))
}
