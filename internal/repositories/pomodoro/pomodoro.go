package pomodoro

import (
	"context"
	"time"

	"pomodoro/internal/db"
	"pomodoro/internal/repositories/utils"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Repository interface {
	GetSessionByDate(ctx context.Context, userID string, date time.Time) (*Session, error)
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, userID, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, userID, id string) error
	GetRound(ctx context.Context, userID, roundID string) (*Round, error)
	UpdateRound(ctx context.Context, r *Round) error
}

type repository struct {
	db db.Database
}

type Params struct {
	fx.In
	DB db.Database
}

func New(p Params) Repository {
	return &repository{
		db: p.DB,
	}
}

type Session struct {
	ID          string
	UserID      string
	IsCompleted bool
	SessionDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Rounds []Round
}

type Round struct {
	ID           string
	SessionID    string
	IsCompleted  bool
	TotalSeconds *int
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	sessionColumns = `id, user_id, is_completed, session_date, created_at, updated_at`
	roundColumns   = `r.id, r.pomodoro_session_id, r.is_completed, r.total_seconds, r.position, r.created_at, r.updated_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.IsCompleted, &s.SessionDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	return &s, nil
}

func scanRound(row scanner) (*Round, error) {
	var r Round
	if err := row.Scan(&r.ID, &r.SessionID, &r.IsCompleted, &r.TotalSeconds, &r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *repository) GetSessionByDate(ctx context.Context, userID string, date time.Time) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions WHERE user_id = $1 AND session_date = $2`

	return r.getSession(ctx, query, userID, date)
}

func (r *repository) GetSession(ctx context.Context, userID, id string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions WHERE user_id = $1 AND id = $2`

	return r.getSession(ctx, query, userID, id)
}

func (r *repository) getSession(ctx context.Context, query string, args ...any) (*Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, utils.Translate(err)
	}

	s.Rounds, err = r.rounds(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *repository) rounds(ctx context.Context, sessionID string) ([]Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM pomodoro_rounds r
		WHERE r.pomodoro_session_id = $1
		ORDER BY r.position
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]Round, 0)
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *rd)
	}

	return rounds, rows.Err()
}

// CreateSession stores the session and its rounds in one transaction. When
// the user already has a session for s.SessionDate nothing is written and
// ErrAlreadyExists is returned.
func (r *repository) CreateSession(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	for i := range s.Rounds {
		rd := &s.Rounds[i]
		if rd.ID == "" {
			rd.ID = uuid.NewString()
		}
		rd.SessionID = s.ID
		rd.Position = i + 1
		rd.CreatedAt, rd.UpdatedAt = now, now
	}

	return r.db.WithTx(ctx, func(tx db.Querier) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO pomodoro_sessions(`+sessionColumns+`)
			VALUES($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, session_date) DO NOTHING
		`, s.ID, s.UserID, s.IsCompleted, s.SessionDate, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return utils.Translate(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return utils.ErrAlreadyExists
		}

		for _, rd := range s.Rounds {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO pomodoro_rounds(id, pomodoro_session_id, is_completed, total_seconds, position, created_at, updated_at)
				VALUES($1, $2, $3, $4, $5, $6, $7)
			`, rd.ID, rd.SessionID, rd.IsCompleted, rd.TotalSeconds, rd.Position, rd.CreatedAt, rd.UpdatedAt)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) UpdateSession(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pomodoro_sessions
		SET is_completed = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.IsCompleted, s.UpdatedAt)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

// DeleteSession removes the session; its rounds are dropped by ON DELETE CASCADE.
func (r *repository) DeleteSession(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pomodoro_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

// GetRound only finds rounds whose session belongs to userID.
func (r *repository) GetRound(ctx context.Context, userID, roundID string) (*Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM pomodoro_rounds r
		JOIN pomodoro_sessions s ON s.id = r.pomodoro_session_id
		WHERE r.id = $1 AND s.user_id = $2
	`

	rd, err := scanRound(r.db.QueryRowContext(ctx, query, roundID, userID))
	if err != nil {
		return nil, utils.Translate(err)
	}

	return rd, nil
}

func (r *repository) UpdateRound(ctx context.Context, rd *Round) error {
	rd.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pomodoro_rounds
		SET is_completed = $2, total_seconds = $3, updated_at = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, rd.ID, rd.IsCompleted, rd.TotalSeconds, rd.UpdatedAt)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}
