package task

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
	Create(ctx context.Context, t *Task) error
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	GetByID(ctx context.Context, userID, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, userID, id string) error
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

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Priority    *string
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const columns = `id, user_id, title, description, priority, is_completed, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	query := `
		INSERT INTO tasks(` + columns + `)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Priority, t.IsCompleted, t.CreatedAt, t.UpdatedAt)

	return utils.Translate(err)
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*Task, error) {
	query := `SELECT ` + columns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scan(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, utils.Translate(err)
	}

	return t, nil
}

func (r *repository) Update(ctx context.Context, t *Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, is_completed = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Priority, t.IsCompleted, t.UpdatedAt)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}
