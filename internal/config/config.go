package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// OpenRouterConfig 出站 chat-completion 接口配置，启动时读取一次后传入 model.NewChatModel
type OpenRouterConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Temperature  float32       `mapstructure:"temperature"`
	SiteURL      string        `mapstructure:"site_url"`
	AppTitle     string        `mapstructure:"app_title"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DebugRequest bool          `mapstructure:"debug_request"`
}

type GitHubConfig struct {
	EnrichMetadata bool          `mapstructure:"enrich_metadata"`
	Token          string        `mapstructure:"token"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel             = "openai/gpt-oss-20b"
	DefaultTemperature       = 0.7
)

// 兼容原部署使用的环境变量名
var envBindings = map[string]string{
	"openrouter.api_key":   "OPENROUTER_API_KEY",
	"openrouter.site_url":  "OPENROUTER_SITE_URL",
	"openrouter.app_title": "OPENROUTER_APP_TITLE",
	"openrouter.model":     "OPENROUTER_MODEL",
	"github.token":         "GITHUB_TOKEN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	// 一次 /generate 串行调用三次上游，每次最长 60s
	v.SetDefault("server.write_timeout", 200*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", DefaultOpenRouterBaseURL)
	v.SetDefault("openrouter.model", DefaultModel)
	v.SetDefault("openrouter.temperature", DefaultTemperature)
	v.SetDefault("openrouter.timeout", 60*time.Second)
	v.SetDefault("openrouter.site_url", "")
	v.SetDefault("openrouter.app_title", "")
	v.SetDefault("openrouter.debug_request", false)

	v.SetDefault("github.enrich_metadata", false)
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load 读取配置：默认值 < 配置文件 < 环境变量。
// configPath 为空或文件不存在时只使用默认值与环境变量；工作目录下的 .env 会先被加载。
func Load(configPath string) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SAGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "SAGA_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config %s: %w", configPath, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate 检查取值范围。缺少 API Key 不在此报错：它只影响到达上游的请求，由调用方回退处理。
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.OpenRouter.Temperature < 0 || c.OpenRouter.Temperature > 2 {
		return fmt.Errorf("openrouter.temperature must be within [0, 2], got %v", c.OpenRouter.Temperature)
	}
	if c.OpenRouter.Timeout <= 0 {
		return fmt.Errorf("openrouter.timeout must be positive")
	}
	if c.OpenRouter.BaseURL == "" {
		return fmt.Errorf("openrouter.base_url is required")
	}
	return nil
}
