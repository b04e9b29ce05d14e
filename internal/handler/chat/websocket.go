package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	chatService "github.com/zhouzirui/unlonely/backend/internal/service/chat"
)

const (
	wsReadLimit    = 64 << 10
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type outgoingMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Usage   json.RawMessage `json:"usage,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Status  int             `json:"status,omitempty"`
}

// handleWebSocket 每个文本帧都是一次完整的 /api/chat 请求
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		out := h.relayFrame(r, data)

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(out); err != nil {
			log.Warn("websocket write failed", "err", err)
			return
		}
	}
}

func (h *Handler) relayFrame(r *http.Request, data []byte) outgoingMessage {
	var payload chatRequest
	if err := json.Unmarshal(data, &payload); err != nil {
		return errorFrame(&chatService.Error{Kind: chatService.KindValidation, Message: "invalid request body", Err: err})
	}

	messages, err := decodeMessages(payload.Messages)
	if err != nil {
		return errorFrame(err)
	}

	reply, err := h.relay.Reply(r.Context(), messages)
	if err != nil {
		return errorFrame(err)
	}
	return outgoingMessage{Type: "message", Message: reply.Message, Usage: reply.Usage}
}

func errorFrame(err error) outgoingMessage {
	var relayErr *chatService.Error
	if errors.As(err, &relayErr) {
		return outgoingMessage{
			Type:   "error",
			Error:  relayErr.Message,
			Code:   string(relayErr.Kind),
			Status: relayErr.HTTPStatus(),
		}
	}
	return outgoingMessage{Type: "error", Error: "Internal server error", Status: http.StatusInternalServerError}
}
