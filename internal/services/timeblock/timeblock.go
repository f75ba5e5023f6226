package timeblock

import (
	"context"
	"errors"

	"pomodoro/internal/apperror"
	"pomodoro/internal/repositories/timeblock"
	"pomodoro/internal/repositories/utils"
	sanitize "pomodoro/internal/services/utils"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Service interface {
	List(ctx context.Context, userID string) ([]timeblock.TimeBlock, error)
	Create(ctx context.Context, userID string, in Input) (*timeblock.TimeBlock, error)
	Update(ctx context.Context, userID, id string, patch Patch) (*timeblock.TimeBlock, error)
	Delete(ctx context.Context, userID, id string) error
	UpdateOrder(ctx context.Context, userID string, ids []string) error
}

type service struct {
	timeBlockRepository timeblock.Repository
}

type Params struct {
	fx.In
	TimeBlockRepository timeblock.Repository
}

func New(p Params) Service {
	return &service{
		timeBlockRepository: p.TimeBlockRepository,
	}
}

type Input struct {
	Name     string
	Color    *string
	Duration int
	Order    *int
}

type Patch struct {
	Name     *string
	Color    *string
	Duration *int
	Order    *int
}

func cleanName(name string) (string, error) {
	clean := sanitize.Sanitize(name)
	if clean == "" {
		return "", apperror.Validation("Name must not be empty", []apperror.FieldError{
			{Field: "name", Tag: "required", Message: "name must contain text"},
		})
	}

	return clean, nil
}

func (s *service) List(ctx context.Context, userID string) ([]timeblock.TimeBlock, error) {
	return s.timeBlockRepository.ListByUser(ctx, userID)
}

// Create appends the block after the user's last one unless an order is given.
func (s *service) Create(ctx context.Context, userID string, in Input) (*timeblock.TimeBlock, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}

	b := timeblock.TimeBlock{
		UserID:   userID,
		Name:     name,
		Color:    in.Color,
		Duration: in.Duration,
	}

	if in.Order != nil {
		b.Order = *in.Order
	} else if b.Order, err = s.timeBlockRepository.NextOrder(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.timeBlockRepository.Create(ctx, &b); err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *service) Update(ctx context.Context, userID, id string, patch Patch) (*timeblock.TimeBlock, error) {
	b, err := s.timeBlockRepository.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, id)
	}

	if patch.Name != nil {
		if b.Name, err = cleanName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Color != nil {
		b.Color = patch.Color
	}
	if patch.Duration != nil {
		b.Duration = *patch.Duration
	}
	if patch.Order != nil {
		b.Order = *patch.Order
	}

	if err := s.timeBlockRepository.Update(ctx, b); err != nil {
		return nil, notFound(err, id)
	}

	return b, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := s.timeBlockRepository.Delete(ctx, userID, id); err != nil {
		return notFound(err, id)
	}

	return nil
}

func (s *service) UpdateOrder(ctx context.Context, userID string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return apperror.Validation("Time block ids must be unique", []apperror.FieldError{
				{Field: "ids", Tag: "unique", Message: "duplicate id " + id},
			})
		}
		seen[id] = struct{}{}
	}

	if err := s.timeBlockRepository.UpdateOrder(ctx, userID, ids); err != nil {
		return notFound(err, "")
	}

	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, utils.ErrNotFound) {
		return apperror.NotFound("Time block", id)
	}

	return err
}
