package respond

import (
	"encoding/json"
	"net/http"

	"pomodoro/internal/apperror"

	"go.uber.org/zap"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err in the API error envelope. Anything that is not an
// *apperror.Error is logged and reported as a 500 without details.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e, ok := apperror.As(err)
	if !ok {
		log.Error("unhandled error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	JSON(w, e.Status, e.Body())
}
