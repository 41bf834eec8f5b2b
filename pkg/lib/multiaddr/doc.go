// Package multiaddr 提供多地址（Multiaddr）的实现
//
// Multiaddr 是一种自描述、可组合的网络地址格式。每个地址由若干组件构成，
// 组件 = 协议代码 + 可选值，同时拥有字符串与二进制两种表示。
//
// # 基本用法
//
//	// 创建多地址
//	ma, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
//	if err != nil {
//	    return err
//	}
//
//	// 获取字符串与二进制表示
//	fmt.Println(ma.String()) // /ip4/127.0.0.1/tcp/4001
//	raw := ma.Bytes()
//
//	// 封装另一个地址
//	p2p := multiaddr.StringCast("/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N")
//	full := ma.Encapsulate(p2p)
//
//	// 提取值
//	port, _ := full.ValueForProtocol(multiaddr.P_TCP)   // "4001"
//	peer, _ := full.PeerID()                            // "QmYyQ..."
//
// # 地址格式
//
// 字符串格式：
//
//	/ip4/127.0.0.1/tcp/4001
//	/ip6/::1/tcp/8080
//	/ip4/192.168.1.1/udp/4001/quic-v1
//	/dns/example.com/tcp/443/wss
//	/unix/tmp/node.sock
//
// /unix 之后的全部内容（包括斜杠）构成一个路径值。
//
// 二进制格式：
//
//	Address   := Component*
//	Component := varint(code) [varint(len)] payload
//
// 只有变长协议写入长度前缀，标志协议（tls、quic、ws 等）没有负载。
//
// # 协议注册表
//
// 默认注册表在包初始化时构建并锁定，可被任意 goroutine 并发读取。
// 需要自定义协议时，从默认注册表解锁出一个构建器，添加后重新锁定：
//
//	b := multiaddr.DefaultRegistry().Unlock()
//	p, _ := multiaddr.NewProtocol(0x300000, "my-proto", multiaddr.CodecUTF8)
//	b.Add(p)
//	reg := b.Lock()
//	ma, err := multiaddr.NewMultiaddrWithRegistry(reg, "/my-proto/hello")
//
// # 错误
//
// 字符串解析失败返回 *StringParseError，二进制解析失败返回 *BinaryParseError，
// 二者都满足 errors.Is(err, ErrParse)。地址合法但不包含请求的协议时返回
// *ProtocolLookupError。
//
// # 与 multiformats 对齐
//
// 所有协议代码与 multiformats/multicodec 完全对齐：
// https://github.com/multiformats/multicodec/blob/master/table.csv
package multiaddr
