// Package llm answers chat prompts with Google Gemini when the gateway is
// configured to call the model directly instead of the backend's /prompt API.
package llm

import (
	"fmt"
	"strings"

	"github.com/akshayks13/genai-frontend-sub000/internal/prompts"
)

// Provider selects the prompt backend.
type Provider string

const (
	// ProviderAPI forwards prompts to the backend's /prompt endpoint.
	ProviderAPI Provider = "api"
	// ProviderGemini calls Google Gemini directly.
	ProviderGemini Provider = "gemini"
)

// ParseProvider maps a configuration value to a Provider. Empty means API.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderAPI:
		return ProviderAPI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown prompt provider %q (want %q or %q)", s, ProviderAPI, ProviderGemini)
	}
}

// Config holds the Gemini model settings.
type Config struct {
	Model             string
	Temperature       float32
	SystemInstruction string
}

// DefaultConfig returns the settings used for the explore chat.
func DefaultConfig() *Config {
	return &Config{
		Model:             "gemini-2.5-flash",
		Temperature:       0.7,
		SystemInstruction: prompts.MustSystemInstruction(),
	}
}

// WithModel returns a copy of c using model.
func (c *Config) WithModel(model string) *Config {
	next := *c
	next.Model = model
	return &next
}
