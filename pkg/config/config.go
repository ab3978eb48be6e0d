package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var valid = validator.New()

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Server  ServerConfig              `yaml:"server" mapstructure:"server" comment:"HTTP服务配置"`
	Agent   AgentConfig               `yaml:"agent" mapstructure:"agent" comment:"宿主进程配置"`
	Writers WritersConfig             `yaml:"writers" mapstructure:"writers" comment:"样本下游写入配置"`
	Log     ZapLogConfig              `yaml:"log" mapstructure:"log" comment:"日志配置"`
	Plugins map[string]map[string]any `yaml:"plugins" mapstructure:"plugins" comment:"插件配置块，键为插件名"`
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"required,gt=0" comment:"读取超时时间"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"required,gt=0" comment:"写入超时时间"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"required,gt=0" comment:"空闲连接超时时间"`
}

// AgentConfig 宿主进程配置
type AgentConfig struct {
	Hostname        string        `yaml:"hostname" mapstructure:"hostname" comment:"样本中的主机名，为空时自动探测"`
	Banner          bool          `yaml:"banner" mapstructure:"banner" comment:"启动时打印banner"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"required,gt=0" comment:"优雅关闭超时时间"`
}

// WritersConfig 已启用的下游 writer（至少启用一个）
type WritersConfig struct {
	Prometheus PrometheusWriterConfig `yaml:"prometheus" mapstructure:"prometheus"`
	Log        LogWriterConfig        `yaml:"log" mapstructure:"log"`
	HTTP       HTTPWriterConfig       `yaml:"http" mapstructure:"http"`
}

// PrometheusWriterConfig 通过 /metrics 导出样本
type PrometheusWriterConfig struct {
	Enable bool `yaml:"enable" mapstructure:"enable"`
}

// LogWriterConfig 每个样本写一条日志
type LogWriterConfig struct {
	Enable bool `yaml:"enable" mapstructure:"enable"`
}

// HTTPWriterConfig 以 JSON POST 推送样本
type HTTPWriterConfig struct {
	Enable  bool          `yaml:"enable" mapstructure:"enable"`
	URL     string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" validate:"required,oneof=json console" comment:"日志格式（json/console）" default:"json"`
	Path      string `yaml:"path" mapstructure:"path" validate:"required" comment:"日志存储路径" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" validate:"required,gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" validate:"gte=0" comment:"日志文件最大备份数，0表示按天数清理" default:"0"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" validate:"gte=0" comment:"日志文件最大保存天数" default:"7"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "0.0.0.0:9103",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Agent: AgentConfig{
			Hostname:        "",
			Banner:          true,
			ShutdownTimeout: 5 * time.Second,
		},
		Writers: WritersConfig{
			Prometheus: PrometheusWriterConfig{Enable: true},
			Log:        LogWriterConfig{Enable: false},
			HTTP:       HTTPWriterConfig{Enable: false, Timeout: 5 * time.Second},
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "json",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 0,
			MaxAge:    7,
		},
		Plugins: map[string]map[string]any{},
	}
}

// LoadConfigWithCli 加载配置（优先级：命令行 > 环境变量 > YAML > 默认值）
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper（未显式设置的 flag 只作为默认值）
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	// 2. 解析配置文件 (--config)
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// 3. 环境变量 (SERVER_ADDR -> server.addr)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. 解码到结构体（支持 time.Duration 与逗号分隔列表）
	if err := decode(v.AllSettings(), cfg); err != nil {
		return nil, err
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func decode(settings map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Plugin 返回插件配置块，未配置时 ok 为 false
func (c *Config) Plugin(name string) (block map[string]any, ok bool) {
	block, ok = c.Plugins[strings.ToLower(name)]
	return block, ok
}

// Validate 配置校验
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	// 1，校验Server服务配置
	if err := c.Server.Validate(); err != nil {
		return err
	}
	// 2，校验writer配置
	if err := c.Writers.Validate(); err != nil {
		return err
	}
	// 3，校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
