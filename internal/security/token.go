package security

import (
	"errors"
	"fmt"
	"time"

	"pomodoro/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

var ErrInvalidToken = errors.New("invalid token")

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type Pair struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	IssuePair(userID string) (Pair, error)
	ParseAccess(token string) (string, error)
	ParseRefresh(token string) (string, error)
}

type tokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Params struct {
	fx.In
	Configs config.Configs
}

func New(p Params) TokenManager {
	return NewTokenManager(p.Configs.Peek().JWT)
}

func NewTokenManager(cfg config.JWT) TokenManager {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &tokenManager{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

func (m *tokenManager) IssuePair(userID string) (Pair, error) {
	access, err := m.sign(userID, TypeAccess, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := m.sign(userID, TypeRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh, RefreshTTL: m.refreshTTL}, nil
}

func (m *tokenManager) ParseAccess(token string) (string, error) {
	return m.parse(token, TypeAccess)
}

func (m *tokenManager) ParseRefresh(token string) (string, error) {
	return m.parse(token, TypeRefresh)
}

func (m *tokenManager) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}

	return signed, nil
}

func (m *tokenManager) parse(token, typ string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Type != typ || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
