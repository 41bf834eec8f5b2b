package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// levels 各子系统的动态级别
	levels sync.Map // map[string]*slog.LevelVar
)

// Logger 获取指定子系统的 Logger
//
// 级别取自 MADDR_LOG_LEVEL 环境变量，同一子系统多次调用返回同一实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := new(slog.LevelVar)
	lv.Set(cfg.LevelForSubsystem(subsystem))

	actualLevel, _ := levels.LoadOrStore(subsystem, lv)
	l := slog.New(newHandler(subsystem, actualLevel.(*slog.LevelVar), cfg))
	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

// SetLevel 动态设置子系统的日志级别
//
// 子系统尚未创建 Logger 时，级别在创建时生效。
func SetLevel(subsystem string, level slog.Level) {
	lv := new(slog.LevelVar)
	lv.Set(level)
	if actual, loaded := levels.LoadOrStore(subsystem, lv); loaded {
		actual.(*slog.LevelVar).Set(level)
	}
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	levels.Range(func(_, value any) bool {
		value.(*slog.LevelVar).Set(level)
		return true
	})
}

// ApplyLevelSpec 按 "subsystem=level,...,default" 格式调整级别
//
// 默认级别作用于所有已创建的子系统，随后各子系统级别覆盖。
func ApplyLevelSpec(spec string) error {
	cfg := &Config{SubsystemLevels: make(map[string]slog.Level)}
	hasDefault, bad := parseLevelSpec(cfg, spec)
	if len(bad) > 0 {
		return fmt.Errorf("invalid log level entries: %s", strings.Join(bad, ","))
	}
	if hasDefault {
		SetGlobalLevel(cfg.DefaultLevel)
	}
	for subsystem, level := range cfg.SubsystemLevels {
		SetLevel(subsystem, level)
	}
	return nil
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样写入新的目标。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
