package pomodoro

import (
	"context"
	"errors"
	"time"

	"pomodoro/internal/apperror"
	"pomodoro/internal/datetime"
	"pomodoro/internal/dto"
	"pomodoro/internal/repositories/pomodoro"
	"pomodoro/internal/repositories/user"
	"pomodoro/internal/repositories/utils"
	"pomodoro/internal/services/hub"
	"pomodoro/pkg/config"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

const (
	EventSessionCreated = "pomodoro.session.created"
	EventSessionUpdated = "pomodoro.session.updated"
	EventSessionDeleted = "pomodoro.session.deleted"
	EventRoundUpdated   = "pomodoro.round.updated"
)

type Service interface {
	Create(ctx context.Context, userID string) (*pomodoro.Session, error)
	Today(ctx context.Context, userID string) (*pomodoro.Session, error)
	UpdateSession(ctx context.Context, userID, id string, patch SessionPatch) (*pomodoro.Session, error)
	UpdateRound(ctx context.Context, userID, roundID string, patch RoundPatch) (*pomodoro.Round, error)
	DeleteSession(ctx context.Context, userID, id string) error
}

type service struct {
	pomodoroRepository pomodoro.Repository
	userRepository     user.Repository
	hub                hub.Service
	location           *time.Location
	now                func() time.Time
}

type Params struct {
	fx.In
	PomodoroRepository pomodoro.Repository
	UserRepository     user.Repository
	Hub                hub.Service
	Configs            config.Configs
}

func New(p Params) Service {
	return &service{
		pomodoroRepository: p.PomodoroRepository,
		userRepository:     p.UserRepository,
		hub:                p.Hub,
		location:           datetime.Location(p.Configs.Peek().Timezone),
		now:                time.Now,
	}
}

type SessionPatch struct {
	IsCompleted *bool
}

type RoundPatch struct {
	IsCompleted  *bool
	TotalSeconds *int
}

func (s *service) today() time.Time {
	return datetime.Date(s.now(), s.location)
}

// Create returns the user's session for today, creating it with one round per
// configured interval when there is none yet.
func (s *service) Create(ctx context.Context, userID string) (*pomodoro.Session, error) {
	date := s.today()

	existing, err := s.pomodoroRepository.GetSessionByDate(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	u, err := s.userRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, apperror.NotFound("User", userID)
		}
		return nil, err
	}

	session := pomodoro.Session{
		UserID:      userID,
		SessionDate: date,
		Rounds:      make([]pomodoro.Round, u.IntervalCount),
	}

	err = s.pomodoroRepository.CreateSession(ctx, &session)
	if errors.Is(err, utils.ErrAlreadyExists) {
		// a concurrent request created it first
		return s.pomodoroRepository.GetSessionByDate(ctx, userID, date)
	}
	if err != nil {
		return nil, err
	}

	s.hub.Publish(userID, EventSessionCreated, dto.NewSession(session))

	return &session, nil
}

func (s *service) Today(ctx context.Context, userID string) (*pomodoro.Session, error) {
	session, err := s.pomodoroRepository.GetSessionByDate(ctx, userID, s.today())
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, apperror.NotFound("Pomodoro session", "")
		}
		return nil, err
	}

	return session, nil
}

func (s *service) UpdateSession(ctx context.Context, userID, id string, patch SessionPatch) (*pomodoro.Session, error) {
	session, err := s.pomodoroRepository.GetSession(ctx, userID, id)
	if err != nil {
		return nil, sessionNotFound(err, id)
	}

	if patch.IsCompleted != nil {
		session.IsCompleted = *patch.IsCompleted
	}

	if err := s.pomodoroRepository.UpdateSession(ctx, session); err != nil {
		return nil, sessionNotFound(err, id)
	}

	s.hub.Publish(userID, EventSessionUpdated, dto.NewSession(*session))

	return session, nil
}

// UpdateRound only touches rounds that belong to one of userID's sessions.
func (s *service) UpdateRound(ctx context.Context, userID, roundID string, patch RoundPatch) (*pomodoro.Round, error) {
	round, err := s.pomodoroRepository.GetRound(ctx, userID, roundID)
	if err != nil {
		return nil, roundNotFound(err, roundID)
	}

	if patch.IsCompleted != nil {
		round.IsCompleted = *patch.IsCompleted
	}
	if patch.TotalSeconds != nil {
		round.TotalSeconds = patch.TotalSeconds
	}

	if err := s.pomodoroRepository.UpdateRound(ctx, round); err != nil {
		return nil, roundNotFound(err, roundID)
	}

	s.hub.Publish(userID, EventRoundUpdated, dto.NewRound(*round))

	return round, nil
}

func (s *service) DeleteSession(ctx context.Context, userID, id string) error {
	if err := s.pomodoroRepository.DeleteSession(ctx, userID, id); err != nil {
		return sessionNotFound(err, id)
	}

	s.hub.Publish(userID, EventSessionDeleted, dto.DeleteResponse{OK: true, ID: id})

	return nil
}

func sessionNotFound(err error, id string) error {
	if errors.Is(err, utils.ErrNotFound) {
		return apperror.NotFound("Pomodoro session", id)
	}

	return err
}

func roundNotFound(err error, id string) error {
	if errors.Is(err, utils.ErrNotFound) {
		return apperror.NotFound("Pomodoro round", id)
	}

	return err
}
