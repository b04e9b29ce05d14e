package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/unlonely/backend/internal/handler/chat"
	"github.com/zhouzirui/unlonely/backend/internal/handler/mood"
	"github.com/zhouzirui/unlonely/backend/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/unlonely/backend/internal/middleware"
	personaModel "github.com/zhouzirui/unlonely/backend/internal/model/persona"
	chatService "github.com/zhouzirui/unlonely/backend/internal/service/chat"
	moodService "github.com/zhouzirui/unlonely/backend/internal/service/mood"
	"github.com/zhouzirui/unlonely/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, relay *chatService.Relay, moods *moodService.Service, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas)
	chatHandler := chat.New(relay)
	moodHandler := mood.New(moods)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		moodHandler.RegisterRoutes(api)

		// 健康检查始终返回 200，具体依赖状态放在响应体里
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			database := "unavailable"
			if moods.Available(r.Context()) {
				database = "available"
			}
			chatStatus := "unconfigured"
			if relay.Configured() {
				chatStatus = "configured"
			}
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":   "ok",
				"database": database,
				"chat":     chatStatus,
			})
		})
	})

	return r
}
