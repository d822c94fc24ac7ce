package ratelimit

import (
	"strings"
)

// unlimited covers probes and scrapes.
var unlimited = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact paths win over prefixes. Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		return &EndpointConfig{Tier: "unlimited"}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
