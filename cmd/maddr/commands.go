package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

// dispatch 按名称执行子命令
func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "parse":
		return a.cmdParse(args)
	case "decode":
		return a.cmdDecode(args)
	case "split":
		return a.cmdSplit(args)
	case "peer":
		return a.cmdPeer(args)
	case "resolve":
		return a.cmdResolve(ctx, args)
	case "protocols":
		return a.cmdProtocols()
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func requireArgs(cmd string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s requires at least %d argument(s)", errUsage, cmd, n)
	}
	return nil
}

// cmdParse 输出规范字符串、二进制、地址类型与组件
func (a *app) cmdParse(args []string) error {
	if err := requireArgs("parse", args, 1); err != nil {
		return err
	}
	for _, s := range args {
		m, err := multiaddr.NewMultiaddrWithRegistry(a.reg, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s\n", m)
		fmt.Fprintf(a.stdout, "  hex: %s\n", hex.EncodeToString(m.Bytes()))
		fmt.Fprintf(a.stdout, "  class: %s\n", multiaddr.Classify(m))
		if err := a.printComponents(m, "  "); err != nil {
			return err
		}
	}
	return nil
}

// cmdDecode 将 hex 编码的二进制还原为字符串
func (a *app) cmdDecode(args []string) error {
	if err := requireArgs("decode", args, 1); err != nil {
		return err
	}
	for _, h := range args {
		b, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
		if err != nil {
			return fmt.Errorf("%w: invalid hex %q: %v", errUsage, h, err)
		}
		m, err := multiaddr.NewMultiaddrBytesWithRegistry(a.reg, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, m.String())
	}
	return nil
}

// cmdSplit 逐行输出组件
func (a *app) cmdSplit(args []string) error {
	if err := requireArgs("split", args, 1); err != nil {
		return err
	}
	m, err := multiaddr.NewMultiaddrWithRegistry(a.reg, args[0])
	if err != nil {
		return err
	}
	return m.ForEach(func(c multiaddr.Component) bool {
		fmt.Fprintln(a.stdout, c.String())
		return true
	})
}

// cmdPeer 输出地址携带的 PeerID
func (a *app) cmdPeer(args []string) error {
	if err := requireArgs("peer", args, 1); err != nil {
		return err
	}
	m, err := multiaddr.NewMultiaddrWithRegistry(a.reg, args[0])
	if err != nil {
		return err
	}
	id, err := multiaddr.GetPeerID(m)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, id)
	return nil
}

// cmdResolve 递归解析地址并逐行输出结果
func (a *app) cmdResolve(ctx context.Context, args []string) error {
	if err := requireArgs("resolve", args, 1); err != nil {
		return err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	depth := a.resolver.MaxDepth()
	if a.depth > 0 {
		depth = a.depth
	}

	for _, s := range args {
		m, err := multiaddr.NewMultiaddrWithRegistry(a.reg, s)
		if err != nil {
			return err
		}
		results, err := a.resolver.ResolveWithDepth(ctx, m, depth)
		if err != nil {
			return err
		}
		log.Debug("解析完成", "addr", s, "results", len(results))
		for _, r := range results {
			fmt.Fprintln(a.stdout, r.String())
		}
	}
	return nil
}

// cmdProtocols 以表格列出注册表中的协议
func (a *app) cmdProtocols() error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tCODEC\tSIZE")
	for _, p := range a.reg.Protocols() {
		codec := p.CodecName
		if codec == "" {
			codec = "-"
		}
		fmt.Fprintf(w, "0x%x\t%s\t%s\t%d\n", p.Code, p.Name, codec, p.Size)
	}
	return w.Flush()
}

// printComponents 输出每个组件的协议、代码与值
func (a *app) printComponents(m multiaddr.Multiaddr, indent string) error {
	return m.ForEach(func(c multiaddr.Component) bool {
		if c.Protocol().IsFlag() {
			fmt.Fprintf(a.stdout, "%s%s (0x%x)\n", indent, c.Name(), c.Code())
		} else {
			fmt.Fprintf(a.stdout, "%s%s (0x%x): %s\n", indent, c.Name(), c.Code(), c.Value())
		}
		return true
	})
}
