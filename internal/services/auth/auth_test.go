package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"pomodoro/internal/apperror"
	"pomodoro/internal/repositories/user"
	"pomodoro/internal/repositories/utils"
	"pomodoro/internal/security"
	"pomodoro/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	user.Repository

	mu      sync.Mutex
	byID    map[string]*user.User
	raceDup bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*user.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.raceDup {
		return utils.ErrAlreadyExists
	}
	u.ID = uuid.NewString()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func newService(users *fakeUsers) (Service, security.TokenManager) {
	tokens := security.NewTokenManager(config.JWT{
		Secret:     "secret",
		Algorithm:  "HS256",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})

	return New(Params{UserRepository: users, Tokens: tokens, Logger: zap.NewNop()}), tokens
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	assert.Equal(t, status, appErr.Status)
}

func TestRegisterHashesAndIssuesTokens(t *testing.T) {
	users := newFakeUsers()
	svc, tokens := newService(users)

	pair, err := svc.Register(context.Background(), " Ann@Example.COM ", "secret123")
	require.NoError(t, err)

	id, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", stored.Email)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, security.CheckPasswordHash("secret123", stored.Password))
	assert.Equal(t, 50, stored.WorkInterval)
	assert.Equal(t, 10, stored.BreakInterval)
	assert.Equal(t, 7, stored.IntervalCount)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	svc, _ := newService(users)

	_, err := svc.Register(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ANN@example.com", "other123")
	requireStatus(t, err, http.StatusConflict)
}

func TestRegisterLosesInsertRace(t *testing.T) {
	users := newFakeUsers()
	users.raceDup = true
	svc, _ := newService(users)

	_, err := svc.Register(context.Background(), "ann@example.com", "secret123")
	requireStatus(t, err, http.StatusConflict)
}

func TestLogin(t *testing.T) {
	users := newFakeUsers()
	svc, _ := newService(users)

	_, err := svc.Register(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.Login(context.Background(), "ann@example.com", "wrong-pass")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefresh(t *testing.T) {
	users := newFakeUsers()
	svc, tokens := newService(users)

	pair, err := svc.Register(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	_, err = tokens.ParseAccess(next.AccessToken)
	assert.NoError(t, err)

	_, err = svc.Refresh(context.Background(), "")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshForDeletedUser(t *testing.T) {
	users := newFakeUsers()
	svc, tokens := newService(users)

	pair, err := tokens.IssuePair("ghost")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthenticate(t *testing.T) {
	svc, tokens := newService(newFakeUsers())

	pair, err := tokens.IssuePair("u1")
	require.NoError(t, err)

	id, err := svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = svc.Authenticate(context.Background(), "garbage")
	requireStatus(t, err, http.StatusUnauthorized)
}
