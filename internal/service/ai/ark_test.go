package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	resp *schema.Message
	err  error
	got  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = input
	return f.resp, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestArkCompleteMapsUsage(t *testing.T) {
	fake := &fakeChatModel{resp: &schema.Message{
		Role:    schema.Assistant,
		Content: "hello",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3},
		},
	}}

	completion, err := NewArkWithModel(fake).Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if completion.Content != "hello" {
		t.Fatalf("unexpected completion: %+v", completion)
	}
	if got := string(completion.Usage); got != `{"prompt_tokens":2,"completion_tokens":1,"total_tokens":3}` {
		t.Fatalf("unexpected usage: %s", got)
	}
	if len(fake.got) != 1 {
		t.Fatalf("expected messages to be forwarded, got %d", len(fake.got))
	}
}

func TestArkCompleteEmptyContent(t *testing.T) {
	fake := &fakeChatModel{resp: &schema.Message{Role: schema.Assistant}}
	if _, err := NewArkWithModel(fake).Complete(context.Background(), nil); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestArkCompleteWrapsErrors(t *testing.T) {
	fake := &fakeChatModel{err: context.DeadlineExceeded}
	if _, err := NewArkWithModel(fake).Complete(context.Background(), nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
}
