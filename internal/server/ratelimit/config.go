package ratelimit

import (
	"time"
)

// EndpointConfig represents rate limiting configuration for a group of routes.
type EndpointConfig struct {
	Tier   string        // Buckets are shared by routes in the same tier
	Path   string        // Exact path, or a prefix when it ends in "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

func (e *EndpointConfig) key() string {
	if e.Tier != "" {
		return e.Tier
	}
	return e.Method + " " + e.Path
}

// Settings is the operator-tunable part of Config.
type Settings struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       []string
	Blacklist       []string
}

// NewConfig builds a Config with the default endpoint tiers.
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential endpoints
		{Tier: "auth", Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Tier: "auth", Path: "/auth/signup", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Tier: "auth", Path: "/auth/forgot-password", Method: "POST", Limit: 5, Window: time.Minute, Burst: 2},
		{Tier: "auth", Path: "/auth/reset-password", Method: "POST", Limit: 5, Window: time.Minute, Burst: 2},

		// PDF compilation
		{Tier: "compile", Path: "/api/compile", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Tier: "compile", Path: "/resume/compile", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Tier: "compile", Path: "/resume/download", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Tier: "upload", Path: "/resume/upload", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},

		// Model-backed endpoints
		{Tier: "assistant", Path: "/explore/messages", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Tier: "assistant", Path: "/resume/enhance", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Tier: "assistant", Path: "/roadmap", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},

		// Google Tasks writes
		{Tier: "sync", Path: "/roadmap/", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
	}
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip != "" {
			out[ip] = true
		}
	}
	return out
}
