// Package main 提供 maddr 命令行入口
//
// 用法：
//
//	maddr [-config file] [-depth n] [-timeout d] [-metrics] <command> [args]
//
// 命令：
//
//	parse <addr>...     解析字符串地址，输出二进制（hex）与组件
//	decode <hex>...     将二进制（hex）还原为字符串地址
//	split <addr>        逐个输出组件
//	peer <addr>         输出目标 PeerID
//	resolve <addr>...   递归解析 dns/dns4/dns6/dnsaddr 地址
//	protocols           列出注册表中的协议
//
// 输入不合法时退出码为 2，其他失败为 1。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-multiaddr/config"
	"github.com/dep2p/go-multiaddr/internal/util/logger"
	"github.com/dep2p/go-multiaddr/pkg/lib/madns"
	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

var log = logger.Logger("cli")

// 退出码
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage 命令行用法错误
var errUsage = errors.New("usage error")

// app 命令执行所需的依赖
type app struct {
	cfg      *config.Config
	reg      *multiaddr.Registry
	resolver *madns.Resolver
	depth    int
	timeout  time.Duration
	stdout   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 解析参数并执行命令，返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("maddr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "配置文件路径（JSON）")
	depth := fs.Int("depth", 0, "dnsaddr 最大递归深度（0 = 使用配置值）")
	timeout := fs.Duration("timeout", 30*time.Second, "resolve 命令的总超时")
	metrics := fs.Bool("metrics", false, "结束后向 stderr 输出 DNS 查询指标（Prometheus 文本格式）")
	quiet := fs.Bool("quiet", false, "不输出日志")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "用法: maddr [flags] <parse|decode|split|peer|resolve|protocols> [args]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	// 日志与错误信息同走 stderr，stdout 只输出结果
	if *quiet {
		logger.SetOutput(io.Discard)
	} else {
		logger.SetOutput(stderr)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitUsage
	}
	if err := cfg.Log.Apply(); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitUsage
	}

	var promReg *prometheus.Registry
	if *metrics {
		promReg = prometheus.NewRegistry()
	}

	a, err := newApp(cfg, promReg)
	if err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitFailure
	}
	a.depth = *depth
	a.timeout = *timeout
	a.stdout = stdout

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	log.Debug("执行命令", "cmd", cmd, "args", len(cmdArgs))

	err = a.dispatch(ctx, cmd, cmdArgs)
	if promReg != nil {
		if werr := writeMetrics(stderr, promReg); werr != nil {
			log.Warn("输出指标失败", "err", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// newApp 通过 fx 装配注册表与解析器
//
// promReg 非 nil 时解析器的查询指标注册到其中。
func newApp(cfg *config.Config, promReg *prometheus.Registry) (*app, error) {
	a := &app{cfg: cfg}
	opts := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(cfg),
		fx.Provide(func(c *config.Config) (*multiaddr.Registry, error) {
			return c.BuildRegistry()
		}),
		madns.Module,
		fx.Populate(&a.reg, &a.resolver),
	}
	if promReg != nil {
		opts = append(opts, fx.Provide(func() prometheus.Registerer { return promReg }))
	}

	fxApp := fx.New(opts...)
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("初始化失败: %w", err)
	}
	return a, nil
}

// writeMetrics 以 Prometheus 文本格式输出已注册的指标
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// exitCode 将错误映射为退出码
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, multiaddr.ErrParse),
		errors.Is(err, multiaddr.ErrProtocolNotFound):
		return exitUsage
	default:
		return exitFailure
	}
}
