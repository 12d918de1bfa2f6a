// Package logger 构造全局 zap 日志器
//
// 非 verbose 模式下返回 zap.NewNop()，所有子系统的日志调用都是空操作。
package logger

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建根日志器
// verbose 为 true 时输出 Debug 级别的控制台日志到 stderr，否则静默
func New(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := build(developmentConfig(), uuid.NewString())
	if err != nil {
		// 配置是固定的，只有 stderr 不可用时才会失败
		return zap.NewNop()
	}
	return l
}

func developmentConfig() zap.Config {
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoder.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:       true,
		Encoding:          "console",
		EncoderConfig:     encoder,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
}

// build 按配置构造日志器并附加会话 ID
func build(cfg zap.Config, session string) (*zap.Logger, error) {
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.With(zap.String("session", session)), nil
}
