package madns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// SystemBackend 基于 net.Resolver 的查询后端
type SystemBackend struct {
	resolver *net.Resolver
}

// NewSystemBackend 创建系统解析后端
//
// server 非空时（格式 "ip:port"）所有查询发往该服务器，否则使用系统默认解析器。
func NewSystemBackend(server string, timeout time.Duration) *SystemBackend {
	if server == "" {
		return &SystemBackend{resolver: net.DefaultResolver}
	}

	return &SystemBackend{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{
					Timeout: timeout,
				}
				return d.DialContext(ctx, network, server)
			},
		},
	}
}

// LookupTXT 查询 TXT 记录
func (b *SystemBackend) LookupTXT(ctx context.Context, name string) ([]string, error) {
	records, err := b.resolver.LookupTXT(ctx, name)
	if err != nil {
		return nil, b.convertErr(ctx, "TXT", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: TXT %s", ErrNoRecords, name)
	}
	return records, nil
}

// LookupA 查询 A 记录
func (b *SystemBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	return b.lookupIP(ctx, "ip4", "A", host)
}

// LookupAAAA 查询 AAAA 记录
func (b *SystemBackend) LookupAAAA(ctx context.Context, host string) ([]netip.Addr, error) {
	return b.lookupIP(ctx, "ip6", "AAAA", host)
}

func (b *SystemBackend) lookupIP(ctx context.Context, network, qtype, host string) ([]netip.Addr, error) {
	addrs, err := b.resolver.LookupNetIP(ctx, network, host)
	if err != nil {
		return nil, b.convertErr(ctx, qtype, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRecords, qtype, host)
	}
	for i := range addrs {
		if network == "ip4" {
			addrs[i] = addrs[i].Unmap()
		}
	}
	return addrs, nil
}

// convertErr 将 "no such host" 转换为 ErrNoRecords，保留 ctx 错误
func (b *SystemBackend) convertErr(ctx context.Context, qtype, name string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return fmt.Errorf("%w: %s %s", ErrNoRecords, qtype, name)
	}
	return err
}
