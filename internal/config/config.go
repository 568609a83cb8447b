package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultBackendURL = "https://ai-mentor-backend-w5gs.onrender.com"

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Log       LogConfig
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ConfigPath string    `mapstructure:"-"`
	Overrides  Overrides `mapstructure:"-"`
}

// Overrides 命令行覆盖项，优先级高于配置文件，热加载后重新应用
type Overrides struct {
	BackendURL string
	Port       string
}

type ServerConfig struct {
	Port string
	Mode string
}

// BackendConfig 远程学习平台后端
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig 会话令牌的本地持久化槽位
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite | mysql | redis
	DSN      string `mapstructure:"dsn"`
	TokenKey string `mapstructure:"token_key"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level      string `mapstructure:"level"` // 为空时按 server.mode 决定
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type DashboardConfig struct {
	SuccessBannerTTL time.Duration `mapstructure:"success_banner_ttl"`
	// 单次操作（可能包含获取与生成两次后端调用）的总时限，不随调用方断开而取消
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("backend.base_url", DefaultBackendURL)
	v.SetDefault("backend.timeout", 60*time.Second)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "data/session.db")
	v.SetDefault("storage.token_key", "token")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("dashboard.success_banner_ttl", 3*time.Second)
	v.SetDefault("dashboard.request_timeout", 2*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

// LoadConfig 从目录 path 读取 config.yaml；文件不存在时使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	// .env 不存在不视为错误
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("AI_MENTOR")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Backend
	v.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	v.BindEnv("backend.timeout", "BACKEND_TIMEOUT")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.dsn", "STORAGE_DSN")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Storage.DSN); dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				os.MkdirAll(dir, 0755)
			}
		}
	}

	return &cfg, nil
}

// ApplyOverrides 记录并应用命令行覆盖项
func (c *Config) ApplyOverrides(o Overrides) error {
	c.Overrides = o
	if o.BackendURL != "" {
		c.Backend.BaseURL = o.BackendURL
	}
	if o.Port != "" {
		c.Server.Port = o.Port
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base_url %q", c.Backend.BaseURL)
	}

	switch c.Storage.Driver {
	case "sqlite", "mysql", "redis":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if c.Storage.TokenKey == "" {
		return fmt.Errorf("storage token_key must not be empty")
	}
	return nil
}
