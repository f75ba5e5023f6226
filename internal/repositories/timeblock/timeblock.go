package timeblock

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
	Create(ctx context.Context, b *TimeBlock) error
	ListByUser(ctx context.Context, userID string) ([]TimeBlock, error)
	GetByID(ctx context.Context, userID, id string) (*TimeBlock, error)
	Update(ctx context.Context, b *TimeBlock) error
	Delete(ctx context.Context, userID, id string) error
	NextOrder(ctx context.Context, userID string) (int, error)
	UpdateOrder(ctx context.Context, userID string, ids []string) error
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

type TimeBlock struct {
	ID        string
	UserID    string
	Name      string
	Color     *string
	Duration  int
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

const columns = `id, user_id, name, color, duration, "order", created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*TimeBlock, error) {
	var b TimeBlock
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Color, &b.Duration, &b.Order, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *TimeBlock) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	query := `
		INSERT INTO time_blocks(` + columns + `)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.Name, b.Color, b.Duration, b.Order, b.CreatedAt, b.UpdatedAt)

	return utils.Translate(err)
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]TimeBlock, error) {
	query := `
		SELECT ` + columns + `
		FROM time_blocks
		WHERE user_id = $1
		ORDER BY "order", created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]TimeBlock, 0)
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}

	return blocks, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*TimeBlock, error) {
	query := `SELECT ` + columns + ` FROM time_blocks WHERE id = $1 AND user_id = $2`

	b, err := scan(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, utils.Translate(err)
	}

	return b, nil
}

func (r *repository) Update(ctx context.Context, b *TimeBlock) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE time_blocks
		SET name = $3, color = $4, duration = $5, "order" = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, b.ID, b.UserID, b.Name, b.Color, b.Duration, b.Order, b.UpdatedAt)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	return utils.ExpectAffected(res)
}

// NextOrder is one past the highest order the user has, 1 for an empty list.
func (r *repository) NextOrder(ctx context.Context, userID string) (int, error) {
	var next int

	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX("order"), 0) + 1 FROM time_blocks WHERE user_id = $1`, userID).Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

// UpdateOrder sets each block's order to its index in ids plus one. Either
// every id belongs to userID and all rows change, or nothing does.
func (r *repository) UpdateOrder(ctx context.Context, userID string, ids []string) error {
	now := time.Now().UTC()

	return r.db.WithTx(ctx, func(tx db.Querier) error {
		for i, id := range ids {
			res, err := tx.ExecContext(ctx, `
				UPDATE time_blocks
				SET "order" = $3, updated_at = $4
				WHERE id = $1 AND user_id = $2
			`, id, userID, i+1, now)
			if err != nil {
				return err
			}
			if err := utils.ExpectAffected(res); err != nil {
				return err
			}
		}

		return nil
	})
}
