package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Ayu-zh/placement-connector/internal/api/apierr"
	"github.com/Ayu-zh/placement-connector/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics become JSON internal errors.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
