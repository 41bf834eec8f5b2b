// Package logger 提供统一的日志接口
//
// 支持通过环境变量配置日志级别：
//   - MADDR_LOG_LEVEL: 设置日志级别，支持按子系统配置
//     格式: 子系统=级别,子系统=级别,默认级别
//     示例: madns=debug,warn
//   - MADDR_LOG_FORMAT: 日志格式 (text 或 json)
//   - MADDR_LOG_ADD_SOURCE: 是否输出源码位置 (true 或 false)
//
// 使用示例:
//
//	package madns
//
//	import "github.com/dep2p/go-multiaddr/internal/util/logger"
//
//	var log = logger.Logger("madns")
//
//	func foo() {
//	    log.Debug("查询 dnsaddr", "name", name, "depth", depth)
//	    log.Warn("跳过格式错误的 dnsaddr 记录", "record", record, "err", err)
//	}
//
// 环境变量配置:
//
//	# 默认 warn，madns 为 debug
//	MADDR_LOG_LEVEL=madns=debug,warn
//
//	# 使用 JSON 格式输出
//	MADDR_LOG_FORMAT=json
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLogLevel     = "MADDR_LOG_LEVEL"
	EnvLogFormat    = "MADDR_LOG_FORMAT"
	EnvLogAddSource = "MADDR_LOG_ADD_SOURCE"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// SubsystemLevels 各子系统的日志级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// LevelForSubsystem 获取指定子系统的日志级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

var (
	configCache *Config
	configOnce  sync.Once
)

// ConfigFromEnv 从环境变量解析配置，结果在进程内缓存
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		configCache = parseConfig(os.Getenv)
	})
	return configCache
}

// parseConfig 解析环境变量配置
func parseConfig(getenv func(string) string) *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelWarn,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
		AddSource:       false,
	}

	if levelStr := getenv(EnvLogLevel); levelStr != "" {
		parseLevelSpec(cfg, levelStr)
	}

	if strings.EqualFold(getenv(EnvLogFormat), "json") {
		cfg.Format = FormatJSON
	}

	if addSourceStr := getenv(EnvLogAddSource); addSourceStr != "" {
		cfg.AddSource = addSourceStr != "false" && addSourceStr != "0"
	}

	return cfg
}

// parseLevelSpec 解析日志级别配置字符串
// 格式: subsystem=level,subsystem=level,defaultLevel
// 返回是否包含默认级别以及无法识别的条目
func parseLevelSpec(cfg *Config, spec string) (hasDefault bool, bad []string) {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		subsystem, levelName, found := strings.Cut(part, "=")
		if !found {
			// 默认级别
			if level, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = level
				hasDefault = true
			} else {
				bad = append(bad, part)
			}
			continue
		}

		subsystem = strings.TrimSpace(subsystem)
		level, ok := ParseLevel(strings.TrimSpace(levelName))
		if subsystem == "" || !ok {
			bad = append(bad, part)
			continue
		}
		cfg.SubsystemLevels[subsystem] = level
	}
	return hasDefault, bad
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig 重置配置缓存（仅用于测试）
func ResetConfig() {
	configOnce = sync.Once{}
	configCache = nil
}
