package madns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DefaultResolvConf 默认的系统 DNS 配置文件
const DefaultResolvConf = "/etc/resolv.conf"

// ClientBackend 基于 miekg/dns 的线协议查询后端
//
// 直接向指定 DNS 服务器发送查询，UDP 应答被截断时改用 TCP 重查。
type ClientBackend struct {
	server string
	udp    *dns.Client
	tcp    *dns.Client
}

// NewClientBackend 创建线协议后端
//
// server 格式为 "ip:port"，为空时读取 /etc/resolv.conf 的第一个服务器。
// timeout 为单次交换的超时，0 表示使用 miekg/dns 的默认值。
func NewClientBackend(server string, timeout time.Duration) (*ClientBackend, error) {
	if server == "" {
		cfg, err := dns.ClientConfigFromFile(DefaultResolvConf)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", DefaultResolvConf, err)
		}
		if len(cfg.Servers) == 0 {
			return nil, fmt.Errorf("no nameserver in %s", DefaultResolvConf)
		}
		server = net.JoinHostPort(cfg.Servers[0], cfg.Port)
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		return nil, fmt.Errorf("invalid DNS server %q: %w", server, err)
	}

	return &ClientBackend{
		server: server,
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
	}, nil
}

// Server 返回查询的 DNS 服务器地址
func (b *ClientBackend) Server() string {
	return b.server
}

// LookupTXT 查询 TXT 记录
func (b *ClientBackend) LookupTXT(ctx context.Context, name string) ([]string, error) {
	resp, err := b.query(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			// 超过 255 字节的记录被拆成多个字符串
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: TXT %s", ErrNoRecords, name)
	}
	return out, nil
}

// LookupA 查询 A 记录
func (b *ClientBackend) LookupA(ctx context.Context, host string) ([]netip.Addr, error) {
	resp, err := b.query(ctx, host, dns.TypeA)
	if err != nil {
		return nil, err
	}

	var out []netip.Addr
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			if addr, ok := netip.AddrFromSlice(a.A); ok {
				out = append(out, addr.Unmap())
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: A %s", ErrNoRecords, host)
	}
	return out, nil
}

// LookupAAAA 查询 AAAA 记录
func (b *ClientBackend) LookupAAAA(ctx context.Context, host string) ([]netip.Addr, error) {
	resp, err := b.query(ctx, host, dns.TypeAAAA)
	if err != nil {
		return nil, err
	}

	var out []netip.Addr
	for _, rr := range resp.Answer {
		if aaaa, ok := rr.(*dns.AAAA); ok {
			if addr, ok := netip.AddrFromSlice(aaaa.AAAA); ok {
				out = append(out, addr)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: AAAA %s", ErrNoRecords, host)
	}
	return out, nil
}

// query 发送一次查询并检查应答码
func (b *ClientBackend) query(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, err := b.exchange(ctx, b.udp, msg)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		if resp, err = b.exchange(ctx, b.tcp, msg); err != nil {
			return nil, err
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp, nil
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%w: %s %s", ErrNoRecords, dns.TypeToString[qtype], name)
	default:
		return nil, fmt.Errorf("%s %s: server returned %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode])
	}
}

type exchangeResult struct {
	msg *dns.Msg
	err error
}

// exchange 执行交换，ctx 取消时立即放弃正在进行的查询
func (b *ClientBackend) exchange(ctx context.Context, c *dns.Client, msg *dns.Msg) (*dns.Msg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan exchangeResult, 1)
	go func() {
		resp, _, err := c.ExchangeContext(ctx, msg.Copy(), b.server)
		ch <- exchangeResult{msg: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("exchange with %s: %w", b.server, res.err)
		}
		if res.msg == nil {
			return nil, errors.New("empty DNS response")
		}
		return res.msg, nil
	}
}
