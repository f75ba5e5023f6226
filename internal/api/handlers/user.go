package handlers

import (
	"net/http"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/dto"
	"pomodoro/internal/services/user"
)

func (h *handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.Profile(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewProfile(profile.User, profile.Stats))
}

func (h *handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.userService.Update(r.Context(), currentUser(r), user.Patch{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		WorkInterval:  req.WorkInterval,
		BreakInterval: req.BreakInterval,
		IntervalCount: req.IntervalCount,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.UpdateUserResponse{OK: true, UserResponse: dto.NewUser(*u)})
}

// DeleteUser removes the account and everything it owns, and ends the
// refresh session.
func (h *handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := currentUser(r)
	if err := h.userService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	respond.JSON(w, http.StatusOK, dto.DeleteResponse{OK: true, ID: id, Message: "User deleted successfully"})
}
