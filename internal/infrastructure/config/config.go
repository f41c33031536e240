package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Sheet     SheetConfig     `mapstructure:"sheet"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	LogLevel  string          `mapstructure:"log_level"`
	LogDir    string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// AnthropicConfig Anthropic Messages API 配置
type AnthropicConfig struct {
	APIKey               string `mapstructure:"api_key"`
	Model                string `mapstructure:"model"`
	BaseURL              string `mapstructure:"base_url"`
	Version              string `mapstructure:"version"`
	ExtractionMaxTokens  int    `mapstructure:"extraction_max_tokens"`
	StructuringMaxTokens int    `mapstructure:"structuring_max_tokens"`
}

// FetchConfig 連結抓取配置
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// UploadConfig 上傳圖片配置
type UploadConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
}

// SheetConfig 技術表模板與輸出配置
type SheetConfig struct {
	TemplatePath string `mapstructure:"template_path"`
	Worksheet    string `mapstructure:"worksheet"`
	OutputDir    string `mapstructure:"output_dir"`
}

// PromptConfig 提示詞配置，SystemPromptPath 為空時使用內建提示詞
type PromptConfig struct {
	SystemPromptPath string `mapstructure:"system_prompt_path"`
}

// CacheConfig 結構化結果緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// LoadConfig 載入設定（.env 不存在時只讀環境變數）
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"anthropic.api_key":         "ANTHROPIC_API_KEY",
		"anthropic.model":           "ANTHROPIC_MODEL",
		"anthropic.base_url":        "ANTHROPIC_BASE_URL",
		"server.port":               "PORT",
		"log_level":                 "LOG_LEVEL",
		"cache.enabled":             "CACHE_ENABLED",
		"cache.backend":             "CACHE_BACKEND",
		"cache.redis_addr":          "REDIS_ADDR",
		"rate_limit.enabled":        "RATE_LIMIT_ENABLED",
		"rate_limit.requests":       "RATE_LIMIT_REQUESTS",
		"rate_limit.window":         "RATE_LIMIT_WINDOW",
		"sheet.template_path":       "TEMPLATE_PATH",
		"sheet.output_dir":          "OUTPUT_DIR",
		"upload.dir":                "UPLOAD_DIR",
		"prompt.system_prompt_path": "SYSTEM_PROMPT_PATH",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-sheet")

	// 伺服器設定
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "150s")
	v.SetDefault("server.max_body_bytes", 12<<20)

	// Anthropic 設定
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("anthropic.version", "2023-06-01")
	v.SetDefault("anthropic.extraction_max_tokens", 2000)
	v.SetDefault("anthropic.structuring_max_tokens", 4000)

	// 連結抓取設定
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	// 上傳設定
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size_bytes", 10*1024*1024) // 10MB

	// 技術表設定
	v.SetDefault("sheet.template_path", "template/Modelo_FT_2026.xlsx")
	v.SetDefault("sheet.worksheet", "Planilha1")
	v.SetDefault("sheet.output_dir", "output")

	v.SetDefault("prompt.system_prompt_path", "")

	// 快取設定
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Upload.Dir == "" {
		return fmt.Errorf("upload dir is required")
	}
	if config.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid upload max size")
	}

	if config.Sheet.TemplatePath == "" {
		return fmt.Errorf("sheet template path is required")
	}
	if config.Sheet.OutputDir == "" {
		return fmt.Errorf("sheet output dir is required")
	}
	if config.Sheet.Worksheet == "" {
		return fmt.Errorf("sheet worksheet is required")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheBackendMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.TTL <= 0 {
				return fmt.Errorf("invalid cache ttl")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheBackendRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
