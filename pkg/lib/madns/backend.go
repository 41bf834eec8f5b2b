package madns

import (
	"context"
	"net/netip"
)

// Backend DNS 查询后端
//
// 名称不存在或无对应记录时返回 ErrNoRecords（可被包装）。
// 实现必须在 ctx 取消后及时返回。
type Backend interface {
	// LookupTXT 查询 TXT 记录，每条记录的多个字符串已拼接
	LookupTXT(ctx context.Context, name string) ([]string, error)

	// LookupA 查询 A 记录
	LookupA(ctx context.Context, host string) ([]netip.Addr, error)

	// LookupAAAA 查询 AAAA 记录
	LookupAAAA(ctx context.Context, host string) ([]netip.Addr, error)
}
