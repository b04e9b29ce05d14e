package middleware

import (
	"net/http"

	"github.com/charmbracelet/log"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger sends chi's access log lines through the process logger.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	std := logger.WithPrefix("http").StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	return chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: std, NoColor: true})
}
