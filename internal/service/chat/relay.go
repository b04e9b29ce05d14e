package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
	"github.com/zhouzirui/unlonely/backend/internal/service/ai"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 30 * time.Second

// Relay forwards a conversation to the completion provider under the fixed persona.
// It is a single-shot proxy: no retries, no queueing.
type Relay struct {
	provider ai.Provider
	prompts  *ai.PromptBuilder
	persona  persona.Persona
	timeout  time.Duration
	logger   *log.Logger
}

// NewRelay wires the relay. A nil provider means the deployment has no
// credentials; every Reply then fails with KindConfiguration.
func NewRelay(provider ai.Provider, p persona.Persona, timeout time.Duration, logger *log.Logger) *Relay {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		provider: provider,
		prompts:  ai.NewPromptBuilder(),
		persona:  p,
		timeout:  timeout,
		logger:   logger.WithPrefix("chat"),
	}
}

// Configured reports whether a provider is available.
func (r *Relay) Configured() bool {
	return r.provider != nil
}

// Reply validates the conversation, prepends the persona and returns the assistant's answer.
// The caller's cancellation is deliberately not propagated; only the fixed deadline applies.
func (r *Relay) Reply(ctx context.Context, messages []chat.Message) (*chat.Reply, error) {
	if err := validate(messages); err != nil {
		return nil, err
	}

	if r.provider == nil {
		return nil, &Error{Kind: KindConfiguration, Message: "Chat provider API key not configured"}
	}

	prompt, err := r.prompts.Build(ctx, r.persona, messages)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: "Internal server error", Err: err}
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	started := time.Now()
	completion, err := r.provider.Complete(callCtx, prompt)
	if err != nil {
		relayErr := classify(callCtx, err)
		r.logger.Error("provider call failed",
			"provider", r.provider.Name(),
			"kind", relayErr.Kind,
			"status", relayErr.Status,
			"elapsed", time.Since(started),
			"err", err,
		)
		return nil, relayErr
	}

	r.logger.Debug("provider call succeeded",
		"provider", r.provider.Name(),
		"elapsed", time.Since(started),
		"length", len(completion.Content),
	)
	return &chat.Reply{Message: completion.Content, Usage: completion.Usage}, nil
}

func validate(messages []chat.Message) error {
	if len(messages) == 0 {
		return validationError("Messages array is required")
	}
	for i, msg := range messages {
		if !chat.ValidRole(msg.Role) {
			return validationError(fmt.Sprintf("messages[%d].role must be user, assistant or system", i))
		}
	}
	return nil
}

// classify maps a provider failure onto the relay taxonomy. Expiry of our own
// deadline wins over whatever shape the transport error took.
func classify(callCtx context.Context, err error) *Error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "Request timeout. Please try again with a shorter message.", Err: err}
	}

	if errors.Is(err, ai.ErrMalformedResponse) {
		return &Error{Kind: KindMalformedResponse, Message: "Invalid response from AI", Err: err}
	}

	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			return &Error{Kind: KindAuth, Status: statusErr.StatusCode, Message: "Invalid API key. Please check your chat provider API key.", Err: err}
		case http.StatusPaymentRequired:
			return &Error{Kind: KindQuota, Status: statusErr.StatusCode, Message: "Insufficient credits. Please add credits to your provider account.", Err: err}
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimit, Status: statusErr.StatusCode, Message: "Rate limit exceeded. Please try again in a moment.", Err: err}
		case http.StatusRequestTimeout:
			return &Error{Kind: KindTimeout, Status: statusErr.StatusCode, Message: "Request timeout. The AI is taking longer than usual. Please try again.", Err: err}
		default:
			return &Error{Kind: KindProvider, Status: statusErr.StatusCode, Message: fmt.Sprintf("Chat provider error: %d", statusErr.StatusCode), Err: err}
		}
	}

	return &Error{Kind: KindProvider, Message: "Internal server error", Err: err}
}
