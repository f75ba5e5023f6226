package handlers

import (
	"net/http"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/dto"
	"pomodoro/internal/services/task"
)

func (h *handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.ListTasksResponse{OK: true, Tasks: dto.NewTasks(tasks)})
}

func (h *handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.taskService.Create(r.Context(), currentUser(r), task.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.TaskResponse{OK: true, Task: dto.NewTask(*t)})
}

func (h *handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Task")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.UpdateTaskRequest
	if err := dto.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.taskService.Update(r.Context(), currentUser(r), id, task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.TaskResponse{OK: true, Task: dto.NewTask(*t)})
}

func (h *handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Task")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), currentUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.DeleteResponse{OK: true, ID: id})
}
