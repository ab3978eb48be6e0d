package readfiles

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/readfiles-agent/pkg/goid"
)

// ErrAlreadyConfigured 插件只接受一次配置
var ErrAlreadyConfigured = errors.New("readfiles: plugin already configured")

// State 插件状态
type State int

const (
	Unconfigured State = iota // 尚未注册周期回调
	Active                    // 已注册，按间隔持续采集
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "unconfigured"
}

// Plugin 文件采集插件
// 每个采集周期为每个文件启动一个独立 goroutine（读取 -> 标识 -> 分发），不等待其结束；
// 单个文件的失败只记录日志，不影响其它文件，也不影响本轮采集。
type Plugin struct {
	sink    DispatchSink
	sampler *Sampler
	log     *zap.Logger
	stats   Stats
	now     func() time.Time

	mu       sync.RWMutex
	cfg      *SweepConfig
	hostname string
}

// Option 插件可选项
type Option func(*Plugin)

// WithFs 指定读取文件所用的文件系统
func WithFs(fs afero.Fs) Option {
	return func(p *Plugin) { p.sampler = NewSampler(fs) }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.log = l
		}
	}
}

func WithStats(s Stats) Option {
	return func(p *Plugin) {
		if s != nil {
			p.stats = s
		}
	}
}

// WithClock 替换样本时间戳来源（测试用）
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) { p.now = now }
}

// New 创建处于 Unconfigured 状态的插件
func New(sink DispatchSink, opts ...Option) *Plugin {
	p := &Plugin{
		sink:    sink,
		sampler: NewSampler(nil),
		log:     zap.NewNop(),
		stats:   nopStats{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name 插件模块名（用于宿主配置中的 plugins.<name>）
func (p *Plugin) Name() string { return DefaultPluginName }

// State 当前状态
func (p *Plugin) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cfg == nil {
		return Unconfigured
	}
	return Active
}

// Config 返回当前配置的副本；未配置时 ok 为 false
func (p *Plugin) Config() (cfg SweepConfig, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cfg == nil {
		return SweepConfig{}, false
	}
	return p.cfg.clone(), true
}

// Configure 解析配置并向宿主注册周期回调，成功后进入 Active 状态
func (p *Plugin) Configure(host Host, nodes []ConfigNode) error {
	cfg, warnings := ParseConfig(nodes)
	log := p.log.With(zap.String("plugin", cfg.PluginName))
	for _, w := range warnings {
		log.Warn("ignoring config option", zap.String("key", w.Key), zap.String("reason", w.Reason))
	}

	p.mu.Lock()
	if p.cfg != nil {
		p.mu.Unlock()
		log.Warn("plugin already configured, ignoring new configuration")
		return ErrAlreadyConfigured
	}
	p.cfg = &cfg
	p.hostname = host.Hostname()
	p.mu.Unlock()

	p.verbose(&cfg, log, "configured",
		zap.Strings("derive_metric_files", cfg.DeriveFiles),
		zap.Strings("gauge_metric_files", cfg.GaugeFiles),
		zap.Float64("interval", cfg.IntervalSeconds),
		zap.String("plugin_name", cfg.PluginName))

	if err := host.RegisterRead(cfg.PluginName, cfg.Interval(), p.OnTick); err != nil {
		p.mu.Lock()
		p.cfg = nil
		p.mu.Unlock()
		return fmt.Errorf("register read callback: %w", err)
	}
	return nil
}

// OnTick 宿主定时器回调入口
func (p *Plugin) OnTick(ctx context.Context) {
	p.runSweep(ctx)
}

// Close 插件退出通知
func (p *Plugin) Close() error {
	name := DefaultPluginName
	if cfg, ok := p.Config(); ok {
		name = cfg.PluginName
	}
	p.log.Warn("plugin has exited", zap.String("plugin", name))
	return nil
}

// runSweep 为每个文件启动一个独立的采集单元后立即返回，不等待、不收集结果
func (p *Plugin) runSweep(ctx context.Context) {
	p.mu.RLock()
	cfg, hostname := p.cfg, p.hostname
	p.mu.RUnlock()
	if cfg == nil {
		return
	}

	p.stats.SweepStarted(cfg.PluginName)
	log := p.log.With(zap.String("plugin", cfg.PluginName))

	for _, path := range cfg.DeriveFiles {
		p.verbose(cfg, log, "processing file", zap.String("file", path))
		go p.readAndDispatch(ctx, cfg, hostname, path, Derive)
	}
	for _, path := range cfg.GaugeFiles {
		p.verbose(cfg, log, "processing file", zap.String("file", path))
		go p.readAndDispatch(ctx, cfg, hostname, path, Gauge)
	}
}

// readAndDispatch 单个文件的采集单元，运行在独立 goroutine 中
func (p *Plugin) readAndDispatch(ctx context.Context, cfg *SweepConfig, hostname, path string, kind MetricType) {
	log := p.log.With(
		zap.String("plugin", cfg.PluginName),
		zap.String("file", path),
		zap.Uint64("goid", goid.Get()),
	)
	defer func() {
		if v := recover(); v != nil {
			log.Warn("file unit panicked, moving on", zap.Any("panic", v), zap.ByteString("stack", debug.Stack()))
		}
	}()

	p.verbose(cfg, log, "obtaining metric for file")
	value, err := p.sampler.SampleFile(path)
	if err != nil {
		var rerr *ReadError
		reason := OpenFailed
		if errors.As(err, &rerr) {
			reason = rerr.Kind
		}
		switch reason {
		case OpenFailed:
			log.Warn("unable to open file, moving on to next file", zap.Error(err))
		case EmptyRead:
			log.Warn("unable to read a value from file, moving on to next file", zap.Error(err))
		default:
			log.Warn("unable to parse value from file, moving on to next file", zap.Error(err))
		}
		p.stats.ReadFailed(cfg.PluginName, reason)
		return
	}

	sample := Sample{
		Identity: DeriveIdentity(path, kind, cfg.PluginName),
		Value:    value,
		Interval: cfg.IntervalSeconds,
		Host:     hostname,
		Time:     p.now(),
	}
	p.verbose(cfg, log, "dispatching value",
		zap.Float64("value", value),
		zap.Float64("interval", cfg.IntervalSeconds),
		zap.Stringer("identity", sample.Identity))

	if err := p.sink.Dispatch(ctx, sample); err != nil {
		log.Warn("dispatch failed", zap.Error(err))
		p.stats.DispatchFailed(cfg.PluginName)
		return
	}
	p.stats.SampleDispatched(cfg.PluginName, kind)
}

// verbose 仅在 Verbose 打开时输出；失败类告警不经过这里
func (p *Plugin) verbose(cfg *SweepConfig, log *zap.Logger, msg string, fields ...zap.Field) {
	if !cfg.Verbose {
		return
	}
	log.Info(msg, append(fields, zap.Bool("verbose", true))...)
}
