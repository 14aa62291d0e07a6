package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Merge     MergeConfig     `mapstructure:"merge"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

// ServerConfig 运维 HTTP 服务器配置（健康检查/就绪探针）
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置（创意导演用的大模型）
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置（通知发布 + 任务队列共用）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss, minio
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
	MinIO *MinIOConfig `mapstructure:"minio,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
}

// MinIOConfig MinIO 配置
// PublicEndpoint 是浏览器/外部厂商可达的地址，Endpoint 是进程内部可达的地址，
// 两者不同时需要在 URL 上做内外网改写
type MinIOConfig struct {
	Endpoint       string `mapstructure:"endpoint"`        // 内部端点 host:port
	PublicEndpoint string `mapstructure:"public_endpoint"` // 外部可达端点 host:port
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Bucket         string `mapstructure:"bucket"`
	UseSSL         bool   `mapstructure:"use_ssl"`
}

// WorkerConfig 任务执行配置
type WorkerConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`       // asynq worker 并发数
	PollInterval    time.Duration `mapstructure:"poll_interval"`     // 厂商轮询间隔
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`      // 单次生成的轮询时间预算
	SceneChainDelay time.Duration `mapstructure:"scene_chain_delay"` // 连贯故事场景之间的延迟（限流缓冲）
}

// MergeConfig 视频合成配置
type MergeConfig struct {
	FadeDuration float64 `mapstructure:"fade_duration"` // 交叉淡化时长（秒）
}

// ProvidersConfig 视频生成厂商配置
type ProvidersConfig struct {
	Kling    KlingConfig    `mapstructure:"kling"`
	Jimeng   JimengConfig   `mapstructure:"jimeng"`
	Vidu     ViduConfig     `mapstructure:"vidu"`
	CogVideo CogVideoConfig `mapstructure:"cogvideo"`
	ComfyUI  ComfyUIConfig  `mapstructure:"comfyui"`
}

// KlingConfig 可灵配置（AK/SK 签 JWT）
type KlingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// JimengConfig 即梦（Ark 内容生成）配置
type JimengConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ViduConfig Vidu 配置
type ViduConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// CogVideoConfig 智谱 CogVideo 配置
type CogVideoConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// ComfyUIConfig ComfyUI 配置（自托管，无凭证）
type ComfyUIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if c.Worker.PollInterval <= 0 || c.Worker.PollTimeout <= 0 {
		return errors.New("worker poll interval/timeout must be positive")
	}
	if c.Merge.FadeDuration <= 0 {
		return errors.New("merge fade duration must be positive")
	}

	return nil
}
