// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/store/sqlstore"
)

type HealthHandler struct {
	store *sqlstore.Store
}

func NewHealthHandler(st *sqlstore.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

// Health handles GET /health. It reports 503 while the database is
// unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.DB().PingContext(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		w.Header().Set("Retry-After", retryAfter)
		middleware.JSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
