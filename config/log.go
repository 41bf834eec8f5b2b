package config

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-multiaddr/internal/util/logger"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，格式同 MADDR_LOG_LEVEL: "subsystem=level,...,default"
	// 为空时沿用环境变量
	Level string `json:"level,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	for _, part := range strings.Split(c.Level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		if _, lvl, ok := strings.Cut(part, "="); ok {
			name = lvl
		}
		if _, ok := logger.ParseLevel(strings.TrimSpace(name)); !ok {
			return fmt.Errorf("log.level: invalid entry %q", part)
		}
	}
	return nil
}

// Apply 将日志级别应用到 logger 子系统
func (c LogConfig) Apply() error {
	if c.Level == "" {
		return nil
	}
	return logger.ApplyLevelSpec(c.Level)
}
