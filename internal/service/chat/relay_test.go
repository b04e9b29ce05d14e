package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/unlonely/backend/internal/config"
	"github.com/zhouzirui/unlonely/backend/internal/logger"
	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
	"github.com/zhouzirui/unlonely/backend/internal/service/ai"
)

type fakeProvider struct {
	completion *ai.Completion
	err        error
	block      bool
	calls      int
	got        []*schema.Message
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, messages []*schema.Message) (*ai.Completion, error) {
	f.calls++
	f.got = messages
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.completion, f.err
}

func newRelay(provider ai.Provider, timeout time.Duration) *Relay {
	return NewRelay(provider, persona.Seed()[0], timeout, logger.Discard())
}

var hi = []chat.Message{{Role: chat.RoleUser, Content: "hi"}}

func kindOf(t *testing.T, err error) *Error {
	t.Helper()
	var relayErr *Error
	require.True(t, errors.As(err, &relayErr), "expected *Error, got %T: %v", err, err)
	return relayErr
}

func TestReplySuccess(t *testing.T) {
	provider := &fakeProvider{completion: &ai.Completion{
		Content: "Hi! I'm here for you.",
		Usage:   json.RawMessage(`{"prompt_tokens":10,"completion_tokens":6,"total_tokens":16}`),
	}}

	reply, err := newRelay(provider, time.Second).Reply(context.Background(), hi)
	require.NoError(t, err)
	assert.Equal(t, "Hi! I'm here for you.", reply.Message)
	assert.JSONEq(t, `{"prompt_tokens":10,"completion_tokens":6,"total_tokens":16}`, string(reply.Usage))

	require.Len(t, provider.got, 2)
	assert.Equal(t, schema.System, provider.got[0].Role)
	assert.Equal(t, "hi", provider.got[1].Content)
}

func TestReplyValidation(t *testing.T) {
	provider := &fakeProvider{}
	relay := newRelay(provider, time.Second)

	for name, messages := range map[string][]chat.Message{
		"nil":      nil,
		"empty":    {},
		"bad role": {{Role: "tool", Content: "x"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := relay.Reply(context.Background(), messages)
			relayErr := kindOf(t, err)
			assert.Equal(t, KindValidation, relayErr.Kind)
			assert.Equal(t, http.StatusBadRequest, relayErr.HTTPStatus())
		})
	}
	assert.Zero(t, provider.calls, "validation must precede the provider call")
}

func TestReplyWithoutAPIKeyNeverCallsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	provider, err := ai.NewProvider(context.Background(), config.ChatConfig{
		Provider: config.ProviderOpenRouter,
		BaseURL:  server.URL,
	})
	require.NoError(t, err)
	require.Nil(t, provider)

	relay := NewRelay(nil, persona.Seed()[0], time.Second, logger.Discard())
	assert.False(t, relay.Configured())

	_, err = relay.Reply(context.Background(), hi)
	relayErr := kindOf(t, err)
	assert.Equal(t, KindConfiguration, relayErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, relayErr.HTTPStatus())
	assert.Zero(t, hits.Load())
}

func TestReplyTimeout(t *testing.T) {
	relay := newRelay(&fakeProvider{block: true}, 20*time.Millisecond)

	started := time.Now()
	_, err := relay.Reply(context.Background(), hi)
	relayErr := kindOf(t, err)
	assert.Equal(t, KindTimeout, relayErr.Kind)
	assert.Equal(t, http.StatusRequestTimeout, relayErr.HTTPStatus())
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestReplyIgnoresCallerCancellation(t *testing.T) {
	provider := &fakeProvider{completion: &ai.Completion{Content: "still here"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := newRelay(provider, time.Second).Reply(ctx, hi)
	require.NoError(t, err)
	assert.Equal(t, "still here", reply.Message)
}

func TestReplyClassifiesProviderStatus(t *testing.T) {
	cases := []struct {
		status   int
		kind     Kind
		httpCode int
	}{
		{http.StatusUnauthorized, KindAuth, http.StatusUnauthorized},
		{http.StatusPaymentRequired, KindQuota, http.StatusPaymentRequired},
		{http.StatusTooManyRequests, KindRateLimit, http.StatusTooManyRequests},
		{http.StatusRequestTimeout, KindTimeout, http.StatusRequestTimeout},
		{http.StatusServiceUnavailable, KindProvider, http.StatusServiceUnavailable},
		{http.StatusBadRequest, KindProvider, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			provider := &fakeProvider{err: &ai.StatusError{StatusCode: tc.status}}
			_, err := newRelay(provider, time.Second).Reply(context.Background(), hi)
			relayErr := kindOf(t, err)
			assert.Equal(t, tc.kind, relayErr.Kind)
			assert.Equal(t, tc.httpCode, relayErr.HTTPStatus())
			assert.Equal(t, 1, provider.calls, "relay must not retry")
		})
	}
}

func TestReplyMalformedAndUnexpected(t *testing.T) {
	_, err := newRelay(&fakeProvider{err: ai.ErrMalformedResponse}, time.Second).Reply(context.Background(), hi)
	assert.Equal(t, KindMalformedResponse, kindOf(t, err).Kind)

	_, err = newRelay(&fakeProvider{err: errors.New("connection reset")}, time.Second).Reply(context.Background(), hi)
	relayErr := kindOf(t, err)
	assert.Equal(t, KindProvider, relayErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, relayErr.HTTPStatus())
}
