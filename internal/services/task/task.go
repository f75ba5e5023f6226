package task

import (
	"context"
	"errors"

	"pomodoro/internal/apperror"
	"pomodoro/internal/dto"
	"pomodoro/internal/repositories/task"
	"pomodoro/internal/repositories/utils"
	"pomodoro/internal/services/hub"
	sanitize "pomodoro/internal/services/utils"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

const (
	EventCreated = "task.created"
	EventUpdated = "task.updated"
	EventDeleted = "task.deleted"
)

type Service interface {
	List(ctx context.Context, userID string) ([]task.Task, error)
	Create(ctx context.Context, userID string, in Input) (*task.Task, error)
	Update(ctx context.Context, userID, id string, patch Patch) (*task.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type service struct {
	taskRepository task.Repository
	hub            hub.Service
}

type Params struct {
	fx.In
	TaskRepository task.Repository
	Hub            hub.Service
}

func New(p Params) Service {
	return &service{
		taskRepository: p.TaskRepository,
		hub:            p.Hub,
	}
}

type Input struct {
	Title       string
	Description *string
	Priority    *string
	IsCompleted bool
}

type Patch struct {
	Title       *string
	Description *string
	Priority    *string
	IsCompleted *bool
}

func cleanTitle(title string) (string, error) {
	clean := sanitize.Sanitize(title)
	if clean == "" {
		return "", apperror.Validation("Title must not be empty", []apperror.FieldError{
			{Field: "title", Tag: "required", Message: "title must contain text"},
		})
	}

	return clean, nil
}

func (s *service) List(ctx context.Context, userID string) ([]task.Task, error) {
	return s.taskRepository.ListByUser(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, in Input) (*task.Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}

	t := task.Task{
		UserID:      userID,
		Title:       title,
		Description: sanitize.SanitizePtr(in.Description),
		Priority:    in.Priority,
		IsCompleted: in.IsCompleted,
	}

	if err := s.taskRepository.Create(ctx, &t); err != nil {
		return nil, err
	}

	s.hub.Publish(userID, EventCreated, dto.NewTask(t))

	return &t, nil
}

func (s *service) Update(ctx context.Context, userID, id string, patch Patch) (*task.Task, error) {
	t, err := s.taskRepository.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, id)
	}

	if patch.Title != nil {
		if t.Title, err = cleanTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		t.Description = sanitize.SanitizePtr(patch.Description)
	}
	if patch.Priority != nil {
		t.Priority = patch.Priority
	}
	if patch.IsCompleted != nil {
		t.IsCompleted = *patch.IsCompleted
	}

	if err := s.taskRepository.Update(ctx, t); err != nil {
		return nil, notFound(err, id)
	}

	s.hub.Publish(userID, EventUpdated, dto.NewTask(*t))

	return t, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := s.taskRepository.Delete(ctx, userID, id); err != nil {
		return notFound(err, id)
	}

	s.hub.Publish(userID, EventDeleted, dto.DeleteResponse{OK: true, ID: id})

	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, utils.ErrNotFound) {
		return apperror.NotFound("Task", id)
	}

	return err
}
