package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

const pingTimeout = 2 * time.Second

type Handler struct {
	checks map[string]PingFunc
}

// NewHandler builds the health handler; checks are keyed by dependency name.
func NewHandler(checks map[string]PingFunc) *Handler {
	return &Handler{checks: checks}
}

// Health answers 200 when every dependency answers its ping, 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": results,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
