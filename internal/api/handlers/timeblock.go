package handlers

import (
	"net/http"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/dto"
	"pomodoro/internal/services/timeblock"
)

func (h *handlers) ListTimeBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.timeBlockService.List(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.ListTimeBlocksResponse{OK: true, TimeBlocks: dto.NewTimeBlocks(blocks)})
}

func (h *handlers) CreateTimeBlock(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTimeBlockRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	b, err := h.timeBlockService.Create(r.Context(), currentUser(r), timeblock.Input{
		Name:     req.Name,
		Color:    req.Color,
		Duration: req.Duration,
		Order:    req.Order,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.TimeBlockResponse{OK: true, TimeBlock: dto.NewTimeBlock(*b)})
}

func (h *handlers) UpdateTimeBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Time block")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.UpdateTimeBlockRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	b, err := h.timeBlockService.Update(r.Context(), currentUser(r), id, timeblock.Patch{
		Name:     req.Name,
		Color:    req.Color,
		Duration: req.Duration,
		Order:    req.Order,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.TimeBlockResponse{OK: true, TimeBlock: dto.NewTimeBlock(*b)})
}

func (h *handlers) DeleteTimeBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Time block")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.timeBlockService.Delete(r.Context(), currentUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.DeleteResponse{OK: true, ID: id})
}

// UpdateTimeBlockOrder renumbers the user's blocks in the order given.
func (h *handlers) UpdateTimeBlockOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateOrderRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	userID := currentUser(r)
	if err := h.timeBlockService.UpdateOrder(r.Context(), userID, req.IDs); err != nil {
		h.fail(w, r, err)
		return
	}

	blocks, err := h.timeBlockService.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.ListTimeBlocksResponse{OK: true, TimeBlocks: dto.NewTimeBlocks(blocks)})
}
