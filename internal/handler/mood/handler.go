package mood

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/unlonely/backend/internal/analysis/emotion"
	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
	moodService "github.com/zhouzirui/unlonely/backend/internal/service/mood"
	"github.com/zhouzirui/unlonely/backend/pkg/utils"
)

// 错误码，与聊天接口保持同一套格式
const (
	codeValidation  = "validation_error"
	codeUnavailable = "persistence_unavailable"
	codePersistence = "persistence_error"
)

// Handler 心情日志的HTTP处理器
type Handler struct {
	service *moodService.Service
}

// New 创建心情日志处理器
func New(service *moodService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册心情日志相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/mood", h.handleList)
	r.Post("/mood", h.handleCreate)
	r.Post("/mood/suggest", h.handleSuggest)
}

type createRequest struct {
	Mood string  `json:"mood"`
	Note *string `json:"note"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleCreate 即使回退到客户端存储也返回 201，由 useClientStorage 告知调用方
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorCode(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	result, err := h.service.Create(r.Context(), payload.Mood, payload.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, result)
}

type suggestRequest struct {
	Text string `json:"text"`
}

// handleSuggest 根据备注文字推荐一个心情，不读写数据库
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var payload suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorCode(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondErrorCode(w, http.StatusBadRequest, codeValidation, "Text is required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, emotion.Suggest(payload.Text))
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mood.ErrMoodRequired), errors.Is(err, mood.ErrInvalidMood):
		utils.RespondErrorCode(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, moodService.ErrUnavailable):
		utils.RespondErrorCode(w, http.StatusServiceUnavailable, codeUnavailable, moodService.ErrUnavailable.Error())
	default:
		utils.RespondErrorCode(w, http.StatusInternalServerError, codePersistence, "Internal server error")
	}
}
