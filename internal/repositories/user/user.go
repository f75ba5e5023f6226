package user

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
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	TaskStatistics(ctx context.Context, userID string, todayStart, weekStart time.Time) (Stats, error)
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

type User struct {
	ID            string
	Email         string
	Password      string
	Name          *string
	WorkInterval  int
	BreakInterval int
	IntervalCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Stats struct {
	Total     int
	Completed int
	Today     int
	Week      int
}

const columns = `id, email, password, name, work_interval, break_interval, interval_count, created_at, updated_at`

func (r *repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	query := `
		INSERT INTO users(` + columns + `)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Password, u.Name,
		u.WorkInterval, u.BreakInterval, u.IntervalCount,
		u.CreatedAt, u.UpdatedAt)

	return utils.Translate(err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + columns + ` FROM users WHERE id = $1`

	return r.get(ctx, query, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + columns + ` FROM users WHERE email = $1`

	return r.get(ctx, query, email)
}

func (r *repository) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Password, &u.Name,
		&u.WorkInterval, &u.BreakInterval, &u.IntervalCount,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, utils.Translate(err)
	}

	return &u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $2, password = $3, name = $4,
			work_interval = $5, break_interval = $6, interval_count = $7,
			updated_at = $8
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Password, u.Name,
		u.WorkInterval, u.BreakInterval, u.IntervalCount, u.UpdatedAt)
	if err != nil {
		return utils.Translate(err)
	}

	return utils.ExpectAffected(res)
}

// Delete removes the user; tasks, sessions and time blocks go with it via ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

func (r *repository) TaskStatistics(ctx context.Context, userID string, todayStart, weekStart time.Time) (Stats, error) {
	var s Stats

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM tasks
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID, todayStart, weekStart).
		Scan(&s.Total, &s.Completed, &s.Today, &s.Week)
	if err != nil {
		return Stats{}, err
	}

	return s, nil
}
