package chat

import "encoding/json"

// Roles accepted in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a conversation. It is never persisted server-side.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role is one of user, assistant or system.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Usage is the token accounting for providers that do not hand back raw JSON.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Reply is what the relay hands back to callers. Usage is the provider's
// usage object exactly as received, or null when it sent none.
type Reply struct {
	Message string          `json:"message"`
	Usage   json.RawMessage `json:"usage"`
}
