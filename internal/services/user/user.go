package user

import (
	"context"
	"errors"
	"time"

	"pomodoro/internal/apperror"
	"pomodoro/internal/datetime"
	"pomodoro/internal/repositories/user"
	"pomodoro/internal/repositories/utils"
	"pomodoro/internal/security"
	"pomodoro/internal/services/auth"
	"pomodoro/pkg/config"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Service interface {
	Profile(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, id string, patch Patch) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	userRepository user.Repository
	location       *time.Location
	now            func() time.Time
}

type Params struct {
	fx.In
	UserRepository user.Repository
	Configs        config.Configs
}

func New(p Params) Service {
	return &service{
		userRepository: p.UserRepository,
		location:       datetime.Location(p.Configs.Peek().Timezone),
		now:            time.Now,
	}
}

type Profile struct {
	User  user.User
	Stats user.Stats
}

// Patch holds the fields to change; nil means leave as is.
type Patch struct {
	Email         *string
	Password      *string
	Name          *string
	WorkInterval  *int
	BreakInterval *int
	IntervalCount *int
}

func (s *service) get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.userRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, apperror.NotFound("User", id)
		}
		return nil, err
	}

	return u, nil
}

// Profile returns the user with task statistics, where "today" and "week"
// are measured from local midnight in the configured timezone.
func (s *service) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats, err := s.userRepository.TaskStatistics(ctx, id,
		datetime.StartOfToday(now, s.location),
		datetime.StartOfWeekAgo(now, s.location))
	if err != nil {
		return nil, err
	}

	return &Profile{User: *u, Stats: stats}, nil
}

func (s *service) Update(ctx context.Context, id string, patch Patch) (*user.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := auth.NormalizeEmail(*patch.Email)
		if email != u.Email {
			other, err := s.userRepository.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != u.ID:
				return nil, apperror.Conflict("Email already registered", "email")
			case err != nil && !errors.Is(err, utils.ErrNotFound):
				return nil, err
			}
		}
		u.Email = email
	}
	if patch.Password != nil {
		hash, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if patch.Name != nil {
		u.Name = patch.Name
	}
	if patch.WorkInterval != nil {
		u.WorkInterval = *patch.WorkInterval
	}
	if patch.BreakInterval != nil {
		u.BreakInterval = *patch.BreakInterval
	}
	if patch.IntervalCount != nil {
		u.IntervalCount = *patch.IntervalCount
	}

	if err := s.userRepository.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, utils.ErrAlreadyExists):
			return nil, apperror.Conflict("Email already registered", "email")
		case errors.Is(err, utils.ErrNotFound):
			return nil, apperror.NotFound("User", id)
		}
		return nil, err
	}

	return u, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.userRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return apperror.NotFound("User", id)
		}
		return err
	}

	return nil
}
