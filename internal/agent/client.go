package agent

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Client sends a single prompt to a configured agent endpoint and returns
// its free-text response. Implementations differ only in request/response
// shaping; retry and timeout behavior is shared.
type Client interface {
	Invoke(ctx context.Context, prompt string) (*Response, error)
}

// Response is a successful agent reply. Elapsed covers only the attempt
// that succeeded, not time spent on failed attempts or retry waits.
type Response struct {
	Text    string
	Elapsed time.Duration
}

// Config describes one agent endpoint and its call policy.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	return nil
}

// NewClient creates an agent client for the given variant.
// "generate" targets a single-shot generation endpoint, "chat" an
// OpenAI-style chat-completions endpoint.
func NewClient(kind string, cfg Config) (Client, error) {
	switch kind {
	case "generate":
		return NewGenerateClient(cfg)
	case "chat":
		return NewChatClient(cfg)
	default:
		return nil, fmt.Errorf("unknown agent kind: %s", kind)
	}
}
