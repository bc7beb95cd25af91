package llm

import (
	"fmt"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderNone       = "none"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures a single LLM provider.
type Config struct {
	// Provider is one of the Provider* constants. Empty or "none" disables
	// AI features.
	Provider string

	// Model is a friendly alias (see the per-provider model tables) or a
	// raw provider model ID. Empty selects the provider default.
	Model string

	APIKey string

	// BaseURL overrides the provider endpoint, e.g. for a gateway.
	BaseURL string

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration

	Retry RetryConfig
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetry is used when no retry policy is configured.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	InitialWait: 1 * time.Second,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// DefaultTimeout bounds review generation.
const DefaultTimeout = 45 * time.Second

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// withDefaults fills in the timeout and retry policy.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = DefaultRetry
	}
	return c
}

// standardKeys lists the conventional API key variables in lookup order.
var standardKeys = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// Discover fills in a missing provider or API key from the conventional
// vendor variables (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OPENROUTER_API_KEY). lookup is usually os.Getenv.
func Discover(c Config, lookup func(string) string) Config {
	if c.Provider == ProviderNone || c.Provider == ProviderMock {
		return c
	}
	for _, k := range standardKeys {
		if c.Provider != "" && c.Provider != k.provider {
			continue
		}
		if c.APIKey != "" {
			break
		}
		if v := lookup(k.env); v != "" {
			c.Provider = k.provider
			c.APIKey = v
			break
		}
	}
	return c
}

// Validate checks that the selected provider is known and has its key.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderNone, ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s provider (set PATHFINDER_LLM_API_KEY)", c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
}
