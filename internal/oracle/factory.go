package oracle

import (
	"context"
	"fmt"
	"time"
)

// Config selects and configures the oracle backend.
type Config struct {
	Provider string // gemini|openai|static
	Model    string
	Timeout  time.Duration

	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	Retry RetryConfig
}

// New creates an Oracle from configuration. AI-backed providers are
// wrapped with the retry decorator.
func New(ctx context.Context, cfg Config) (Oracle, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)
	case "static":
		return NewStatic(), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return NewAI(WithRetry(base, cfg.Retry), cfg.Timeout), nil
}
