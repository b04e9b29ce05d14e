package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/unlonely/backend/internal/config"
)

// AppTitle is sent as X-Title so the provider can attribute traffic.
const AppTitle = "UnLonely - AI Companion"

// OpenRouter talks to an OpenAI-compatible chat completion endpoint.
type OpenRouter struct {
	client *openai.Client
	model  string
}

// NewOpenRouter builds the provider. The deadline is owned by the caller's
// context, so the HTTP client itself carries no timeout.
func NewOpenRouter(cfg config.ChatConfig) *OpenRouter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Transport: &identifyingTransport{
			base:    http.DefaultTransport,
			referer: cfg.SiteURL,
			title:   AppTitle,
		},
	}

	return &OpenRouter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Name implements Provider.
func (p *OpenRouter) Name() string { return config.ProviderOpenRouter }

// Complete implements Provider.
func (p *OpenRouter) Complete(ctx context.Context, messages []*schema.Message) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:            p.model,
		Messages:         make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature:      Temperature,
		TopP:             TopP,
		FrequencyPenalty: FrequencyPenalty,
		PresencePenalty:  PresencePenalty,
		MaxTokens:        MaxTokens,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	capture := &usageCapture{}
	resp, err := p.client.CreateChatCompletion(context.WithValue(ctx, usageCaptureKey{}, capture), req)
	if err != nil {
		return nil, translateOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrMalformedResponse
	}

	return &Completion{Content: resp.Choices[0].Message.Content, Usage: capture.raw}, nil
}

func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	return fmt.Errorf("chat completion request failed: %w", err)
}

type identifyingTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

// usageCapture receives the response's usage object untouched; go-openai's
// typed Usage would drop provider extras such as cost.
type usageCapture struct {
	raw json.RawMessage
}

type usageCaptureKey struct{}

func (t *identifyingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	capture, ok := req.Context().Value(usageCaptureKey{}).(*usageCapture)
	if !ok || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	var envelope struct {
		Usage json.RawMessage `json:"usage"`
	}
	if json.Unmarshal(data, &envelope) == nil && len(envelope.Usage) > 0 && string(envelope.Usage) != "null" {
		capture.raw = envelope.Usage
	}
	return resp, nil
}
