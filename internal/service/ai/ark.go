package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/unlonely/backend/internal/config"
	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
)

// Ark relays through a Volcengine Ark chat model. The SDK does not expose HTTP
// status codes, so failures other than the deadline surface as provider errors.
type Ark struct {
	chatModel model.ChatModel
}

// NewArk creates the Ark-backed provider.
func NewArk(ctx context.Context, cfg config.ArkConfig) (*Ark, error) {
	chatModel, err := cfg.NewChatModel(ctx, Temperature, TopP, MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return &Ark{chatModel: chatModel}, nil
}

// NewArkWithModel wraps an existing chat model.
func NewArkWithModel(chatModel model.ChatModel) *Ark {
	return &Ark{chatModel: chatModel}
}

// Name implements Provider.
func (a *Ark) Name() string { return config.ProviderArk }

// Complete implements Provider.
func (a *Ark) Complete(ctx context.Context, messages []*schema.Message) (*Completion, error) {
	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("ark generate failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return nil, ErrMalformedResponse
	}

	completion := &Completion{Content: resp.Content}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		usage := resp.ResponseMeta.Usage
		raw, err := json.Marshal(chat.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		})
		if err == nil {
			completion.Usage = raw
		}
	}
	return completion, nil
}
