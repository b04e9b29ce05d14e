package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	chatService "github.com/zhouzirui/unlonely/backend/internal/service/chat"
	"github.com/zhouzirui/unlonely/backend/pkg/utils"
)

// Handler 聊天中转的HTTP处理器
type Handler struct {
	relay *chatService.Relay
}

// New 创建聊天处理器
func New(relay *chatService.Relay) *Handler {
	return &Handler{relay: relay}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

// handleChat 将对话转发给模型并返回回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorCode(w, http.StatusBadRequest, string(chatService.KindValidation), "invalid request body")
		return
	}

	messages, err := decodeMessages(payload.Messages)
	if err != nil {
		respondRelayError(w, err)
		return
	}

	reply, err := h.relay.Reply(r.Context(), messages)
	if err != nil {
		respondRelayError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// decodeMessages 要求 messages 字段存在且为数组
func decodeMessages(raw json.RawMessage) ([]chat.Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &chatService.Error{Kind: chatService.KindValidation, Message: "Messages array is required"}
	}

	var messages []chat.Message
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return nil, &chatService.Error{Kind: chatService.KindValidation, Message: "Messages must be {role, content} objects", Err: err}
	}
	return messages, nil
}

func respondRelayError(w http.ResponseWriter, err error) {
	var relayErr *chatService.Error
	if errors.As(err, &relayErr) {
		utils.RespondErrorCode(w, relayErr.HTTPStatus(), string(relayErr.Kind), relayErr.Message)
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
}
