package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/unlonely/backend/internal/config"
)

// Sampling parameters shared by every provider.
const (
	Temperature      float32 = 0.7
	TopP             float32 = 0.9
	FrequencyPenalty float32 = 0.1
	PresencePenalty  float32 = 0.1
	MaxTokens                = 300
)

// ErrMalformedResponse means the provider answered 2xx without a usable choice.
var ErrMalformedResponse = errors.New("provider response has no completion content")

// Provider sends exactly one chat completion request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []*schema.Message) (*Completion, error)
}

// Completion is the first choice of a provider response. Usage is the raw
// usage object, nil when the provider reported none.
type Completion struct {
	Content string
	Usage   json.RawMessage
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// NewProvider selects the provider named in cfg. It returns a nil Provider when
// the credentials are missing so the relay can refuse before any network call.
func NewProvider(ctx context.Context, cfg config.ChatConfig) (Provider, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	if cfg.Provider == config.ProviderArk {
		provider, err := NewArk(ctx, cfg.Ark)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	return NewOpenRouter(cfg), nil
}
