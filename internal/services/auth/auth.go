package auth

import (
	"context"
	"errors"
	"strings"

	"pomodoro/internal/apperror"
	"pomodoro/internal/repositories/user"
	"pomodoro/internal/repositories/utils"
	"pomodoro/internal/security"
	"pomodoro/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

const (
	defaultWorkInterval  = 50
	defaultBreakInterval = 10
	defaultIntervalCount = 7
)

type Service interface {
	Register(ctx context.Context, email, password string) (security.Pair, error)
	Login(ctx context.Context, email, password string) (security.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (security.Pair, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

type service struct {
	userRepository user.Repository
	tokens         security.TokenManager
	logger         logger.Logger
}

type Params struct {
	fx.In
	UserRepository user.Repository
	Tokens         security.TokenManager
	Logger         logger.Logger
}

func New(p Params) Service {
	return &service{
		userRepository: p.UserRepository,
		tokens:         p.Tokens,
		logger:         p.Logger,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, email, password string) (security.Pair, error) {
	email = NormalizeEmail(email)

	_, err := s.userRepository.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return security.Pair{}, apperror.Conflict("Email already registered", "email")
	case !errors.Is(err, utils.ErrNotFound):
		return security.Pair{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return security.Pair{}, err
	}

	u := user.User{
		Email:         email,
		Password:      hash,
		WorkInterval:  defaultWorkInterval,
		BreakInterval: defaultBreakInterval,
		IntervalCount: defaultIntervalCount,
	}

	if err := s.userRepository.Create(ctx, &u); err != nil {
		if errors.Is(err, utils.ErrAlreadyExists) {
			return security.Pair{}, apperror.Conflict("Email already registered", "email")
		}
		return security.Pair{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID))

	return s.tokens.IssuePair(u.ID)
}

func (s *service) Login(ctx context.Context, email, password string) (security.Pair, error) {
	u, err := s.userRepository.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return security.Pair{}, apperror.Unauthorized("Invalid credentials")
		}
		return security.Pair{}, err
	}

	if !security.CheckPasswordHash(password, u.Password) {
		return security.Pair{}, apperror.Unauthorized("Invalid credentials")
	}

	return s.tokens.IssuePair(u.ID)
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (s *service) Refresh(ctx context.Context, refreshToken string) (security.Pair, error) {
	if refreshToken == "" {
		return security.Pair{}, apperror.Unauthorized("Refresh token not found")
	}

	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return security.Pair{}, apperror.Unauthorized("Invalid refresh token")
	}

	if _, err := s.userRepository.GetByID(ctx, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return security.Pair{}, apperror.Unauthorized("Invalid refresh token")
		}
		return security.Pair{}, err
	}

	return s.tokens.IssuePair(userID)
}

// Authenticate resolves an access token to a user id.
func (s *service) Authenticate(ctx context.Context, accessToken string) (string, error) {
	userID, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return "", apperror.Unauthorized("Invalid or expired token")
	}

	return userID, nil
}
