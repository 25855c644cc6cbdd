// Package config 提供了 Data Product Action 插件的配置管理功能。
// 该包负责从 YAML 配置文件加载配置，并支持通过环境变量覆盖敏感配置项（如访问令牌）。
// 配置包含了动作本身、事件源、元数据服务客户端、幂等防护、日志和指标等多个方面的设置。
package config

import (
	"os"
	"strings"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dedupe"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/emitter"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/events"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// Config 是应用程序的主配置结构体，包含所有子系统的配置。
// 该结构体通过 YAML 标签与配置文件进行映射，构造后只读。
type Config struct {
	// Action 动作配置，包括标识符前缀和存活 Worker 参数
	Action ActionConfig `yaml:"action"`
	// Events 事件源配置，包括 NATS 连接信息和订阅 subject
	Events events.Config `yaml:"events"`
	// Emitter 元数据服务客户端配置
	Emitter emitter.Config `yaml:"emitter"`
	// Dedupe 幂等防护配置
	Dedupe dedupe.Config `yaml:"dedupe"`
	// Server 管理服务配置，包括健康检查端口和指标端口
	Server ServerConfig `yaml:"server"`
	// Logging 日志配置，包括日志级别和格式
	Logging LoggingConfig `yaml:"logging"`
	// Metrics 指标配置，用于 Prometheus 监控
	Metrics MetricsConfig `yaml:"metrics"`
	// Telemetry 遥测配置，用于分布式追踪
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ActionConfig 动作配置结构体。
type ActionConfig struct {
	// WorkerName 存活 Worker 的标签
	// 默认值：dataproduct-worker
	WorkerName string `yaml:"worker_name"`
	// KeepProcessAlive 是否让存活 Worker 在主流程就绪后保持进程存活
	// 默认值：true
	KeepProcessAlive *bool `yaml:"keep_process_alive"`
	// WorkerIntervalSeconds 心跳间隔（秒），下限 0.1 秒
	// 默认值：60
	WorkerIntervalSeconds float64 `yaml:"worker_interval_seconds"`
	// IDPrefix 派生实体标识符时使用的前缀
	// 默认值：空字符串
	IDPrefix string `yaml:"id_prefix"`
}

// WorkerInterval 返回心跳间隔对应的 time.Duration。
func (a ActionConfig) WorkerInterval() time.Duration {
	return time.Duration(a.WorkerIntervalSeconds * float64(time.Second))
}

// KeepAlive 返回是否保持进程存活（未设置时为 true）。
func (a ActionConfig) KeepAlive() bool {
	if a.KeepProcessAlive == nil {
		return true
	}
	return *a.KeepProcessAlive
}

// ServerConfig 管理服务配置结构体。
type ServerConfig struct {
	// AdminPort 管理 API 端口，暴露健康检查和状态端点
	// 默认值：8081
	AdminPort int `yaml:"admin_port"`
	// MetricsPort 指标服务端口，用于 Prometheus 指标暴露
	// 默认值：9090
	MetricsPort int `yaml:"metrics_port"`
	// AdminToken 管理令牌，非空时状态端点要求 Bearer 认证
	AdminToken string `yaml:"admin_token"`
	// ShutdownTimeout 优雅关闭超时时间
	// 默认值：30 秒
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig 日志配置结构体。
type LoggingConfig struct {
	// Level 日志级别，可选值：debug、info、warn、error
	Level string `yaml:"level"`
	// Format 日志格式，可选值：json、text
	Format string `yaml:"format"`
}

// MetricsConfig 指标配置结构体。
type MetricsConfig struct {
	// Enabled 是否启用指标收集
	Enabled bool `yaml:"enabled"`
	// Namespace 指标命名空间前缀
	// 默认值：dataproduct_action
	Namespace string `yaml:"namespace"`
}

// Load 从指定路径加载配置文件。
// 该函数会读取 YAML 配置文件，应用默认值，并处理环境变量覆盖。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖。
// 访问令牌支持两种方式：
// 1. 直接设置环境变量 DATAHUB_ACTION_TOKEN
// 2. 通过 DATAHUB_ACTION_TOKEN_FILE 指定包含令牌的文件路径
// _FILE 方式优先级更高，适用于 Docker Secrets 等场景。
func (c *Config) applyEnvOverrides() {
	if v := readEnvOrFile("DATAHUB_ACTION_TOKEN", "DATAHUB_ACTION_TOKEN_FILE"); v != "" {
		c.Emitter.Token = v
	}
	if v := readEnvOrFile("DATAHUB_ACTION_REDIS_PASSWORD", "DATAHUB_ACTION_REDIS_PASSWORD_FILE"); v != "" {
		c.Dedupe.Password = v
	}
	if v := readEnvOrFile("DATAHUB_ACTION_ADMIN_TOKEN", "DATAHUB_ACTION_ADMIN_TOKEN_FILE"); v != "" {
		c.Server.AdminToken = v
	}
}

// readEnvOrFile 从环境变量或文件读取配置值。
// 优先从 fileKey 指定的文件路径读取，文件不存在或读取失败时
// 退回到 envKey 指定的环境变量。
func readEnvOrFile(envKey, fileKey string) string {
	if filePath := strings.TrimSpace(os.Getenv(fileKey)); filePath != "" {
		if b, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return ""
}

// ApplyDefaults 应用默认配置值。
// 该方法为未设置的配置项填充合理的默认值，确保应用可以正常运行。
func (c *Config) ApplyDefaults() {
	// Worker 标签默认为 dataproduct-worker
	if c.Action.WorkerName == "" {
		c.Action.WorkerName = "dataproduct-worker"
	}
	// 心跳间隔默认为 60 秒
	if c.Action.WorkerIntervalSeconds == 0 {
		c.Action.WorkerIntervalSeconds = 60
	}
	// 心跳间隔下限为 0.1 秒
	if c.Action.WorkerIntervalSeconds < 0.1 {
		c.Action.WorkerIntervalSeconds = 0.1
	}
	// 事件 subject 默认为 actionrequest.>
	if c.Events.Subject == "" {
		c.Events.Subject = "actionrequest.>"
	}
	// 持久化消费者名称默认为 dataproduct-action
	if c.Events.Durable == "" {
		c.Events.Durable = "dataproduct-action"
	}
	// GMS 地址默认为本机
	if c.Emitter.GMSURL == "" {
		c.Emitter.GMSURL = "http://localhost:8080"
	}
	// 单次提交超时默认为 30 秒
	if c.Emitter.Timeout == 0 {
		c.Emitter.Timeout = 30 * time.Second
	}
	// 已处理标记默认保留 24 小时
	if c.Dedupe.TTL == 0 {
		c.Dedupe.TTL = 24 * time.Hour
	}
	// 管理端口默认为 8081
	if c.Server.AdminPort == 0 {
		c.Server.AdminPort = 8081
	}
	// 指标端口默认为 9090
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	// 优雅关闭超时默认为 30 秒
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	// 指标命名空间默认为 dataproduct_action
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "dataproduct_action"
	}
	// 遥测服务名称默认为 dataproduct-action
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "dataproduct-action"
	}
}
