package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(connect),
)

// Querier is satisfied by both Database and the transaction handed to WithTx,
// so repositories can run the same statements inside and outside a transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Rows is the part of *sql.Rows repositories iterate with.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type Database interface {
	Querier
	WithTx(ctx context.Context, fn func(tx Querier) error) error
	Ping(ctx context.Context) error
	CloseConnection() error
}

type database struct {
	db      *sql.DB
	limiter chan struct{} // limit amount of simultaneous calls to db
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Configs   config.Configs
	Logger    logger.Logger
	DB        *sql.DB
}

func New(p Params) Database {
	d := Wrap(p.DB, p.Configs.Peek().Database.MaxConcurrent)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("closing database connection")
			return d.CloseConnection()
		},
	})

	return d
}

// Wrap builds a Database around an existing pool.
func Wrap(db *sql.DB, maxConcurrent int) Database {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &database{
		db:      db,
		limiter: make(chan struct{}, maxConcurrent),
	}
}

func connect(cfg config.Configs, log logger.Logger) (*sql.DB, error) {
	dbCfg := cfg.Peek().Database

	db, err := Open(dbCfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("successfully connected to database",
		zap.Int("max_open_conns", dbCfg.MaxOpenConns),
		zap.Int("max_idle_conns", dbCfg.MaxIdleConns))

	return db, nil
}

// Open opens a postgres pool with the configured limits. It does not ping.
func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func (d *database) CloseConnection() error {
	return d.db.Close()
}

func (d *database) Ping(ctx context.Context) error {
	if err := d.acquire(ctx); err != nil {
		return err
	}
	defer d.release()

	return d.db.PingContext(ctx)
}

func (d *database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if err := d.acquire(ctx); err != nil {
		// ctx is already done, so the driver reports ctx.Err() through the row.
		return d.db.QueryRowContext(ctx, query, args...)
	}
	defer d.release()

	return d.db.QueryRowContext(ctx, query, args...)
}

// QueryContext keeps its limiter slot until the returned rows are closed or
// fully read, so open result sets count against the limit.
func (d *database) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		d.release()
		return nil, err
	}

	return &heldRows{Rows: rows, release: d.release}, nil
}

func (d *database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()

	return d.db.ExecContext(ctx, query, args...)
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on error or panic.
func (d *database) WithTx(ctx context.Context, fn func(tx Querier) error) error {
	if err := d.acquire(ctx); err != nil {
		return err
	}
	defer d.release()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txQuerier{tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (d *database) acquire(ctx context.Context) error {
	select {
	case d.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *database) release() {
	<-d.limiter
}

type heldRows struct {
	*sql.Rows
	once    sync.Once
	release func()
}

func (r *heldRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	// database/sql closes exhausted rows itself
	r.once.Do(r.release)
	return false
}

func (r *heldRows) Close() error {
	err := r.Rows.Close()
	r.once.Do(r.release)
	return err
}

// txQuerier runs statements on a transaction that already holds a slot.
type txQuerier struct {
	tx *sql.Tx
}

func (q txQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return q.tx.QueryRowContext(ctx, query, args...)
}

func (q txQuerier) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (q txQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.tx.ExecContext(ctx, query, args...)
}
