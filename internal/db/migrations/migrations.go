// Package migrations owns the versioned database schema. SQL files live in
// sql/ as NNNN_name_up.sql / NNNN_name_down.sql pairs and are embedded into
// the binary; schema_migrations records which versions have been applied.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/db"

	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedded embed.FS

var ErrNoApplied = errors.New("no migrations to roll back")

var fileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)_(up|down)\.sql$`)

type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

type Status struct {
	Migration
	Applied   bool
	AppliedAt *time.Time
}

// Embedded returns the migrations compiled into the binary.
func Embedded() ([]Migration, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}

	return Load(sub)
}

// Load reads every migration pair at the root of fsys, sorted by version.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := fileName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		version, _ := strconv.Atoi(m[1])
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		}
		if mig.Name != m[2] {
			return nil, fmt.Errorf("migration version %d used by %q and %q", version, mig.Name, m[2])
		}

		if m[3] == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if strings.TrimSpace(mig.Up) == "" || strings.TrimSpace(mig.Down) == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", mig.Version)
		}
		migrations = append(migrations, *mig)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

type Migrator struct {
	db         db.Database
	migrations []Migration
	logger     *zap.Logger
}

func NewMigrator(database db.Database, migrations []Migration, logger *zap.Logger) *Migrator {
	return &Migrator{db: database, migrations: migrations, logger: logger}
}

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    BIGINT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Up applies every pending migration in version order, each in its own
// transaction. Running it again once everything is applied is a no-op.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.db.WithTx(ctx, func(tx db.Querier) error {
			if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}

		m.logger.Info("migration applied", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		done = append(done, mig)
	}

	return done, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) (*Migration, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, ErrNoApplied
	}

	latest := -1
	for v := range applied {
		if v > latest {
			latest = v
		}
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == latest {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("applied migration version %d is unknown to this build", latest)
	}

	err = m.db.WithTx(ctx, func(tx db.Querier) error {
		if _, err := tx.ExecContext(ctx, target.Down); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, target.Version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("roll back migration %04d_%s: %w", target.Version, target.Name, err)
	}

	m.logger.Info("migration rolled back", zap.Int("version", target.Version), zap.String("name", target.Name))

	return target, nil
}

func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		s := Status{Migration: mig}
		if at, ok := applied[mig.Version]; ok {
			s.Applied = true
			s.AppliedAt = &at
		}
		out = append(out, s)
	}

	return out, nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		applied[version] = at
	}

	return applied, rows.Err()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Create writes an empty up/down pair for message into dir, numbered one past
// the highest version already there.
func Create(dir, message string) (up, down string, err error) {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(message), "_"), "_")
	if slug == "" {
		return "", "", errors.New("migration message must contain letters or digits")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", err
	}

	next := 1
	for _, entry := range entries {
		if m := fileName.FindStringSubmatch(entry.Name()); m != nil {
			if v, _ := strconv.Atoi(m[1]); v >= next {
				next = v + 1
			}
		}
	}

	base := fmt.Sprintf("%04d_%s", next, slug)
	up = filepath.Join(dir, base+"_up.sql")
	down = filepath.Join(dir, base+"_down.sql")

	header := fmt.Sprintf("-- %s\n", message)
	if err := os.WriteFile(up, []byte(header), 0o644); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(down, []byte(header), 0o644); err != nil {
		return "", "", err
	}

	return up, down, nil
}
