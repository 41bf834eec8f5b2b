// Package madns 实现多地址的递归 DNS 解析
//
// 支持的协议：
//   - /dnsaddr/<host>: 查询 _dnsaddr.<host> 的 TXT 记录，解析 dnsaddr=<multiaddr> 条目，
//     对仍以 dns 类协议开头的候选递归解析
//   - /dns/<host>: 同时查询 A 与 AAAA
//   - /dns4/<host>, /dns6/<host>: 只查询 A 或 AAAA
//
// 解析后的 IP 地址会拼接原地址中 dns 组件之后的协议栈：
//
//	/dns4/example.com/tcp/443 -> /ip4/93.184.216.34/tcp/443
//
// 原地址带有 /p2p/<id> 时，dnsaddr 候选中 PeerID 不同（或缺失）的地址被丢弃。
//
// # 递归深度
//
// 每经过一跳 /dnsaddr，剩余深度减一，默认从 32 开始。剩余深度为 0 时再遇到
// /dnsaddr 返回 *RecursionLimitError，不会重试。
//
// # 错误语义
//
//   - 没有记录（NXDOMAIN / 无应答）：返回空结果，err 为 nil
//   - 查询失败（服务器错误、单次查询超时）：*ResolutionError
//   - 深度耗尽：*RecursionLimitError（同时匹配 ErrResolution 与 ErrRecursionLimit）
//   - 调用方取消或截止：原样返回 ctx.Err()
//
// # 后端
//
//   - SystemBackend: net.Resolver，可指定 DNS 服务器
//   - ClientBackend: miekg/dns 线协议客户端，UDP 截断时回退 TCP
//   - CachingBackend: 基于 expirable LRU 的应答缓存，可包装任意后端
//
// 使用示例：
//
//	r, err := madns.NewResolver(madns.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	addrs, err := r.ResolveString(ctx, "/dnsaddr/bootstrap.libp2p.io")
package madns
