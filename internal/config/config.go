package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Bot     BotConfig     `mapstructure:"bot"`
	AI      AIConfig      `mapstructure:"ai"`
	Image   ImageConfig   `mapstructure:"image"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Exec    ExecConfig    `mapstructure:"exec"`
}

// ServerConfig HTTP 网关配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BotConfig 指令分发配置
type BotConfig struct {
	Prefix        string        `mapstructure:"prefix"`         // 指令前缀, 默认 "!"
	AdminIDs      []string      `mapstructure:"admin_ids"`      // 管理员白名单 (外部平台用户 ID)
	HistoryWindow int           `mapstructure:"history_window"` // 对话上下文窗口大小
	ReplyLimit    int           `mapstructure:"reply_limit"`    // 单条回复最大字符数
	ChatCooldown  time.Duration `mapstructure:"chat_cooldown"`  // 同一用户两次 AI 请求的最小间隔
}

// AIConfig 对话模型配置
type AIConfig struct {
	Provider   string          `mapstructure:"provider"` // openai / azure / ark
	APIKey     string          `mapstructure:"api_key"`
	Model      string          `mapstructure:"model"`
	BaseURL    string          `mapstructure:"base_url"`
	Modalities []string        `mapstructure:"modalities"` // 默认响应模态: text, image
	Options    AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig 模型采样参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ImageConfig 图片生成配置 (Ark)
type ImageConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	Size      string `mapstructure:"size"`
	Watermark bool   `mapstructure:"watermark"`
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

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 网关客户端认证配置
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`   // JWT 密钥
	TokenExpiry time.Duration `mapstructure:"token_expiry"` // 客户端 Token 过期时间
}

// StorageConfig 附件归档存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // none, local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础 URL（用于生成访问 URL）
}

// OSSConfig 阿里云 OSS 配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"` // 预签名 URL 过期时间（秒）
}

// ExecConfig 外部进程执行限制
type ExecConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`    // 单次执行墙钟上限
	MaxOutput int           `mapstructure:"max_output"` // 输出字节上限
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

	if c.Bot.Prefix == "" {
		return errors.New("bot prefix must not be empty")
	}
	if c.Bot.HistoryWindow <= 0 {
		return errors.New("bot history window must be positive")
	}
	if c.Bot.ReplyLimit <= 0 {
		return errors.New("bot reply limit must be positive")
	}

	return nil
}

// IsAdmin 判断用户是否在管理员白名单内
func (c *BotConfig) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
