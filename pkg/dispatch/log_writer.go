package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/readfiles-agent/pkg/readfiles"
)

// LogWriter 将每个样本写成一条结构化日志
type LogWriter struct {
	log *zap.Logger
}

var _ Writer = (*LogWriter)(nil)

func NewLogWriter(log *zap.Logger) *LogWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogWriter{log: log}
}

func (w *LogWriter) Name() string { return "log" }

func (w *LogWriter) Write(_ context.Context, s readfiles.Sample) error {
	w.log.Info("sample",
		zap.String("host", s.Host),
		zap.String("plugin", s.Identity.Plugin),
		zap.String("plugin_instance", s.Identity.PluginInstance),
		zap.String("type", string(s.Identity.Type)),
		zap.String("type_instance", s.Identity.TypeInstance),
		zap.Float64("value", s.Value),
		zap.Float64("interval", s.Interval),
		zap.Time("time", s.Time),
	)
	return nil
}
