// Package client talks to the UnLonely API and keeps mood entries locally when
// the server asks it to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// DefaultServer is the address the API listens on in development.
const DefaultServer = "http://localhost:8080"

// APIError is a non-2xx response decoded from {"error", "code"}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// MoodList is the GET /api/mood body.
type MoodList struct {
	UseClientStorage bool         `json:"useClientStorage"`
	Entries          []mood.Entry `json:"entries"`
}

// MoodCreated is the POST /api/mood body.
type MoodCreated struct {
	UseClientStorage bool        `json:"useClientStorage"`
	Entry            *mood.Entry `json:"entry"`
}

// Client is a thin JSON client for the API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A nil httpClient gets one whose transport
// gives up on the server well after the relay's own 30s deadline.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 45 * time.Second,
			},
		}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Chat sends the whole conversation and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, messages []chat.Message) (*chat.Reply, error) {
	var reply chat.Reply
	body := struct {
		Messages []chat.Message `json:"messages"`
	}{Messages: messages}
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListMoods returns the server's entries, or an empty list with
// UseClientStorage set when the caller should read its local cache.
func (c *Client) ListMoods(ctx context.Context) (*MoodList, error) {
	var list MoodList
	if err := c.do(ctx, http.MethodGet, "/api/mood", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateMood submits one entry. The mood is validated by the server.
func (c *Client) CreateMood(ctx context.Context, m string, note *string) (*MoodCreated, error) {
	var created MoodCreated
	body := struct {
		Mood string  `json:"mood"`
		Note *string `json:"note,omitempty"`
	}{Mood: m, Note: note}
	if err := c.do(ctx, http.MethodPost, "/api/mood", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MoodSuggestion is the POST /api/mood/suggest body.
type MoodSuggestion struct {
	Mood  mood.Mood `json:"mood"`
	Score int       `json:"score"`
}

// SuggestMood asks the server which mood a note sounds like.
func (c *Client) SuggestMood(ctx context.Context, text string) (*MoodSuggestion, error) {
	var suggestion MoodSuggestion
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	if err := c.do(ctx, http.MethodPost, "/api/mood/suggest", body, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(http.StatusText(status))}
	}
	return &APIError{Status: status, Code: body.Code, Message: body.Error}
}
