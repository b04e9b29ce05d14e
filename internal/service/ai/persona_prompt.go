package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
)

// PromptBuilder renders the persona instruction ahead of the caller's conversation.
type PromptBuilder struct {
	template prompt.ChatTemplate
}

// NewPromptBuilder creates the system + history template. History messages are
// passed through verbatim, so braces in user content are never interpreted.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{instruction}"),
			schema.MessagesPlaceholder("history", false),
		),
	}
}

// Build returns exactly one system message followed by history in order.
func (b *PromptBuilder) Build(ctx context.Context, p persona.Persona, history []chat.Message) ([]*schema.Message, error) {
	converted := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		converted = append(converted, &schema.Message{
			Role:    schema.RoleType(msg.Role),
			Content: msg.Content,
		})
	}

	messages, err := b.template.Format(ctx, map[string]any{
		"instruction": p.Instruction,
		"history":     converted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render persona prompt: %w", err)
	}
	return messages, nil
}
