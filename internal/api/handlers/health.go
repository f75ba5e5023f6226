package handlers

import (
	"context"
	"net/http"
	"time"

	"pomodoro/internal/api/respond"

	"go.uber.org/zap"
)

type healthResponse struct {
	Message  string `json:"message"`
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health always answers 200 so the container stays up while the database
// recovers; the database field reports what the ping saw.
func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Message:  "Pomodoro Task Manager API is running",
		Status:   "healthy",
		Database: "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check database ping failed", zap.Error(err))
		res.Database = "unavailable"
	}

	respond.JSON(w, http.StatusOK, res)
}
