package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	OpenAIAPIKey            string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL           string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel             string `mapstructure:"OPENAI_MODEL"`
	CompletionTimeout       int    `mapstructure:"COMPLETION_TIMEOUT"`
	GenerationRatePerMinute int    `mapstructure:"GENERATION_RATE_PER_MINUTE"`

	WPSiteURL      string `mapstructure:"WP_SITE_URL"`
	WPUsername     string `mapstructure:"WP_USERNAME"`
	WPAppPassword  string `mapstructure:"WP_APP_PASSWORD"`
	PublishTimeout int    `mapstructure:"PUBLISH_TIMEOUT"`

	FetchMode       string `mapstructure:"FETCH_MODE"`
	FetchTimeout    int    `mapstructure:"FETCH_TIMEOUT"`
	FetchMaxBytes   int64  `mapstructure:"FETCH_MAX_BYTES"`
	AmazonUserAgent string `mapstructure:"AMAZON_USER_AGENT"`
	HTTPProxies     string `mapstructure:"HTTP_PROXIES"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	DraftTTLHours int    `mapstructure:"DRAFT_TTL_HOURS"`
}

// Load reads configuration from the given env file and environment variables.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing file is fine, everything can come from the environment.
	_ = v.ReadInConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4")
	v.SetDefault("COMPLETION_TIMEOUT", 120) // in seconds
	v.SetDefault("GENERATION_RATE_PER_MINUTE", 0)
	v.SetDefault("WP_SITE_URL", "")
	v.SetDefault("WP_USERNAME", "")
	v.SetDefault("WP_APP_PASSWORD", "")
	v.SetDefault("PUBLISH_TIMEOUT", 30)
	v.SetDefault("FETCH_MODE", "http")
	v.SetDefault("FETCH_TIMEOUT", 30)
	v.SetDefault("FETCH_MAX_BYTES", 10<<20)
	v.SetDefault("AMAZON_USER_AGENT", "Mozilla/5.0")
	v.SetDefault("HTTP_PROXIES", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DRAFT_TTL_HOURS", 24)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Config) CompletionTimeoutDuration() time.Duration {
	return time.Duration(c.CompletionTimeout) * time.Second
}

func (c *Config) PublishTimeoutDuration() time.Duration {
	return time.Duration(c.PublishTimeout) * time.Second
}

// DraftRequestTimeout bounds one draft request end to end: page fetch, image
// probe, the wait for a generation slot, the completion call and some slack.
func (c *Config) DraftRequestTimeout() time.Duration {
	d := 2*c.FetchTimeoutDuration() + c.CompletionTimeoutDuration() + 10*time.Second
	if c.GenerationRatePerMinute > 0 {
		d += time.Minute / time.Duration(c.GenerationRatePerMinute)
	}
	return d
}

func (c *Config) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLHours) * time.Hour
}

// Proxies returns the configured proxy URLs, skipping blanks.
func (c *Config) Proxies() []string {
	var out []string
	for _, p := range strings.Split(c.HTTPProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
