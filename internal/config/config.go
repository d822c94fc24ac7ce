// Package config provides configuration loading and validation for the gateway.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the gateway configuration. Values come from environment variables,
// optionally layered over a YAML file.
type Config struct {
	Port int `mapstructure:"port"`

	// Backend services
	APIBaseURL string        `mapstructure:"api_base_url"` // Auth/profile/prompt backend
	APITimeout time.Duration `mapstructure:"api_timeout"`

	// Compile route
	CompileURL      string        `mapstructure:"compile_url"` // Forwarding URL; empty disables forwarding
	CompileTimeout  time.Duration `mapstructure:"compile_timeout"`
	PDFLatexEnabled bool          `mapstructure:"pdflatex_enabled"`

	// AI and translation
	TranslateAPIKey string `mapstructure:"google_translate_api_key"`
	PromptProvider  string `mapstructure:"prompt_provider"` // "api" or "gemini"
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`

	// Sessions
	RedisAddr     string        `mapstructure:"redis_addr"` // Empty selects the in-memory store
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// Rate limiting
	RateLimitEnabled         bool          `mapstructure:"rate_limit_enabled"`
	RateLimitDefaultLimit    int           `mapstructure:"rate_limit_default_limit"`
	RateLimitDefaultWindow   time.Duration `mapstructure:"rate_limit_default_window"`
	RateLimitCleanupInterval time.Duration `mapstructure:"rate_limit_cleanup_interval"`
	RateLimitWhitelist       []string      `mapstructure:"rate_limit_whitelist"`
	RateLimitBlacklist       []string      `mapstructure:"rate_limit_blacklist"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var keys = []string{
	"port", "api_base_url", "api_timeout",
	"compile_url", "compile_timeout", "pdflatex_enabled",
	"google_translate_api_key", "prompt_provider", "gemini_api_key",
	"redis_addr", "redis_password", "redis_db", "session_ttl", "cookie_secure",
	"cors_allowed_origins", "log_level", "log_format",
	"rate_limit_enabled", "rate_limit_default_limit", "rate_limit_default_window",
	"rate_limit_cleanup_interval", "rate_limit_whitelist", "rate_limit_blacklist",
}

// Load reads configuration from the environment and, when path is non-empty,
// from a YAML file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range keys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Env values are split on commas but not trimmed.
	cfg.CORSAllowedOrigins = splitList(strings.Join(cfg.CORSAllowedOrigins, ","))
	cfg.RateLimitWhitelist = splitList(strings.Join(cfg.RateLimitWhitelist, ","))
	cfg.RateLimitBlacklist = splitList(strings.Join(cfg.RateLimitBlacklist, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("api_timeout", 30*time.Second)
	v.SetDefault("compile_timeout", 30*time.Second)
	v.SetDefault("pdflatex_enabled", false)
	v.SetDefault("prompt_provider", "api")
	v.SetDefault("redis_db", 0)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_default_limit", 1000)
	v.SetDefault("rate_limit_default_window", time.Minute)
	v.SetDefault("rate_limit_cleanup_interval", 5*time.Minute)
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}

	if err := checkURL("api_base_url", c.APIBaseURL, true); err != nil {
		return err
	}
	if err := checkURL("compile_url", c.CompileURL, false); err != nil {
		return err
	}

	switch c.PromptProvider {
	case "api":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: 'gemini_api_key' is required when prompt_provider is gemini")
		}
	default:
		return fmt.Errorf("config error: unknown prompt_provider %q", c.PromptProvider)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("config error: 'api_timeout' must be positive")
	}
	if c.CompileTimeout <= 0 {
		return fmt.Errorf("config error: 'compile_timeout' must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitDefaultLimit <= 0 || c.RateLimitDefaultWindow <= 0) {
		return fmt.Errorf("config error: rate limit default limit and window must be positive")
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("config error: 'session_ttl' must be at least 1m, got %s", c.SessionTTL)
	}

	return nil
}

func checkURL(name, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("config error: '%s' is required", name)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: '%s' is not an absolute URL: %q", name, raw)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
