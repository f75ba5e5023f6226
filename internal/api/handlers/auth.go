package handlers

import (
	"net/http"
	"time"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/apperror"
	"pomodoro/internal/dto"
	"pomodoro/internal/security"
)

func (h *handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	pair, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	respond.JSON(w, http.StatusCreated, dto.AuthResponse{AccessToken: pair.AccessToken})
}

func (h *handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	respond.JSON(w, http.StatusOK, dto.AuthResponse{AccessToken: pair.AccessToken})
}

// RefreshAccessToken trades the refresh cookie for a new token pair.
func (h *handlers) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.configs.Peek().JWT.RefreshCookie)
	if err != nil {
		h.fail(w, r, apperror.Unauthorized("Refresh token missing"))
		return
	}

	pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		h.fail(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	respond.JSON(w, http.StatusOK, dto.AuthResponse{AccessToken: pair.AccessToken})
}

func (h *handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

func (h *handlers) setRefreshCookie(w http.ResponseWriter, pair security.Pair) {
	cfg := h.configs.Peek()

	http.SetCookie(w, &http.Cookie{
		Name:     cfg.JWT.RefreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(pair.RefreshTTL / time.Second),
		Expires:  time.Now().Add(pair.RefreshTTL),
		HttpOnly: true,
		Secure:   !cfg.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handlers) clearRefreshCookie(w http.ResponseWriter) {
	cfg := h.configs.Peek()

	http.SetCookie(w, &http.Cookie{
		Name:     cfg.JWT.RefreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   !cfg.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}
