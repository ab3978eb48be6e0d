// Package logger 全局日志：彩色控制台输出 + 按天/大小轮转的 JSON 文件。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/readfiles-agent/pkg/config"
	"github.com/readfiles-agent/pkg/goid"
)

const timeLayout = "2006-01-02 15:04:05.000 -07:00"

var (
	mu         sync.RWMutex
	baseLogger *zap.Logger
)

// Init 根据配置初始化全局日志，可重复调用（后一次覆盖前一次）
func Init(cfg config.ZapLogConfig) error {
	l, err := New(cfg, os.Stdout)
	if err != nil {
		return err
	}
	mu.Lock()
	baseLogger = l
	mu.Unlock()
	return nil
}

// New 创建日志实例：stdout 写控制台格式（format=json 时写 JSON），cfg.Path 下写 JSON 轮转文件
func New(cfg config.ZapLogConfig, stdout io.Writer) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", cfg.Path, err)
	}

	writer, err := rotatelogs.New(
		filepath.Join(cfg.Path, "agent-%Y%m%d.log"),
		rotationOptions(cfg)...,
	)
	if err != nil {
		return nil, fmt.Errorf("open rotate log: %w", err)
	}

	jsonEncoder := zapcore.NewJSONEncoder(jsonEncoderConfig())
	stdoutEncoder := jsonEncoder
	if strings.EqualFold(cfg.Format, "console") {
		stdoutEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	}

	core := zapcore.NewTee(
		zapcore.NewCore(stdoutEncoder, zapcore.AddSync(stdout), level),
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(writer), level),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel 解析日志级别，兼容三字母缩写
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "dbg", "debug":
		return zapcore.DebugLevel, nil
	case "", "inf", "info":
		return zapcore.InfoLevel, nil
	case "war", "warn":
		return zapcore.WarnLevel, nil
	case "err", "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// rotationOptions MaxBackup>0 时按文件数清理，否则按天数清理
func rotationOptions(cfg config.ZapLogConfig) []rotatelogs.Option {
	opts := []rotatelogs.Option{
		rotatelogs.WithRotationTime(24 * time.Hour),
	}
	if cfg.MaxSize > 0 {
		opts = append(opts, rotatelogs.WithRotationSize(int64(cfg.MaxSize)*1024*1024))
	}
	switch {
	case cfg.MaxBackup > 0:
		opts = append(opts, rotatelogs.WithMaxAge(-1), rotatelogs.WithRotationCount(uint(cfg.MaxBackup)))
	case cfg.MaxAge > 0:
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	default:
		opts = append(opts, rotatelogs.WithMaxAge(-1))
	}
	return opts
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.ConsoleSeparator = " "
	cfg.EncodeLevel = coloredLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("\033[34m" + t.Format(timeLayout) + "\033[0m")
	}
	// Caller 两级路径
	cfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		rel := filepath.Join(filepath.Base(filepath.Dir(c.File)), filepath.Base(c.File))
		enc.AppendString(fmt.Sprintf("%s:%d", rel, c.Line))
	}
	return cfg
}

func coloredLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("\033[36mDEBUG\033[0m")
	case zapcore.InfoLevel:
		enc.AppendString("\033[32mINFO \033[0m")
	case zapcore.WarnLevel:
		enc.AppendString("\033[33mWARN \033[0m")
	case zapcore.ErrorLevel:
		enc.AppendString("\033[31mERROR\033[0m")
	default:
		enc.AppendString("\033[35m" + level.CapitalString() + "\033[0m")
	}
}

// L 返回全局日志，未初始化时返回 Nop 日志
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if baseLogger == nil {
		return zap.NewNop()
	}
	return baseLogger
}

// Named 带组件名的子日志
func Named(component string) *zap.Logger {
	return L().Named(component)
}

func log(level zapcore.Level, msg string, fields ...zap.Field) {
	l := L().WithOptions(zap.AddCallerSkip(2))
	if ce := l.Check(level, msg); ce != nil {
		ce.Write(append(fields, zap.Uint64("goid", goid.Get()))...)
	}
}

func Debug(msg string, fields ...zap.Field) { log(zapcore.DebugLevel, msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log(zapcore.InfoLevel, msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log(zapcore.WarnLevel, msg, fields...) }
func Error(msg string, fields ...zap.Field) { log(zapcore.ErrorLevel, msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log(zapcore.FatalLevel, msg, fields...) }

// Sync 刷新缓冲
func Sync() error {
	return L().Sync()
}
