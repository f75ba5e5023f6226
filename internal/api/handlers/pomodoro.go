package handlers

import (
	"net/http"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/dto"
	"pomodoro/internal/services/pomodoro"
)

// CreateSession answers 201 with today's session, whether it was just
// created or already existed.
func (h *handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.pomodoroService.Create(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.NewSession(*session))
}

func (h *handlers) TodaySession(w http.ResponseWriter, r *http.Request) {
	session, err := h.pomodoroService.Today(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewSession(*session))
}

func (h *handlers) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Pomodoro session")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.UpdateSessionRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.pomodoroService.UpdateSession(r.Context(), currentUser(r), id, pomodoro.SessionPatch{
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewSession(*session))
}

func (h *handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Pomodoro session")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.pomodoroService.DeleteSession(r.Context(), currentUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.DeleteResponse{
		OK:      true,
		ID:      id,
		Message: "Pomodoro session deleted successfully",
	})
}

func (h *handlers) UpdateRound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Pomodoro round")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.UpdateRoundRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	round, err := h.pomodoroService.UpdateRound(r.Context(), currentUser(r), id, pomodoro.RoundPatch{
		IsCompleted:  req.IsCompleted,
		TotalSeconds: req.TotalSeconds,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewRound(*round))
}
