// Package lib 包含多地址相关的公共库
//
//   - multiaddr: 多地址编解码、协议注册表与地址值类型
//   - madns: dns/dns4/dns6/dnsaddr 地址的递归解析
//
// 两者都不依赖 config 之外的内部包，可以单独引用：
//
//	import (
//	    "github.com/dep2p/go-multiaddr/pkg/lib/madns"
//	    "github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
//	)
package lib
