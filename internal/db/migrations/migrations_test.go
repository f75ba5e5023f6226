package migrations

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"pomodoro/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testFS = fstest.MapFS{
	"0001_create_users_up.sql":   {Data: []byte("CREATE TABLE users (id UUID)")},
	"0001_create_users_down.sql": {Data: []byte("DROP TABLE users")},
	"0002_create_tasks_up.sql":   {Data: []byte("CREATE TABLE tasks (id UUID)")},
	"0002_create_tasks_down.sql": {Data: []byte("DROP TABLE tasks")},
	"README.md":                  {Data: []byte("ignored")},
}

func newMigrator(t *testing.T) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	migs, err := Load(testFS)
	require.NoError(t, err)

	return NewMigrator(db.Wrap(sqlDB, 1), migs, zap.NewNop()), mock
}

func expectApplied(mock sqlmock.Sqlmock, versions ...int) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"version", "applied_at"})
	for _, v := range versions {
		rows.AddRow(v, time.Now())
	}
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").WillReturnRows(rows)
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	migs, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, migs)

	for i, m := range migs {
		assert.Equal(t, i+1, m.Version, "versions must be contiguous")
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}
}

func TestLoadRejectsIncompletePair(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"0001_init_up.sql": {Data: []byte("CREATE TABLE x (id INT)")},
	})
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateVersion(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"0001_a_up.sql":   {Data: []byte("SELECT 1")},
		"0001_a_down.sql": {Data: []byte("SELECT 1")},
		"0001_b_up.sql":   {Data: []byte("SELECT 1")},
		"0001_b_down.sql": {Data: []byte("SELECT 1")},
	})
	assert.Error(t, err)
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(1, "create_users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(2, "create_tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	done, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpTwiceIsNoop(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock, 1, 2)

	done, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpStopsOnFailure(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock, 1)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE tasks").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	done, err := m.Up(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownRollsBackLatest(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock, 1, 2)
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mig, err := m.Down(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mig.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownWithNothingApplied(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock)

	_, err := m.Down(context.Background())
	assert.ErrorIs(t, err, ErrNoApplied)
}

func TestStatus(t *testing.T) {
	m, mock := newMigrator(t)

	expectApplied(mock, 1)

	statuses, err := m.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.NotNil(t, statuses[0].AppliedAt)
	assert.False(t, statuses[1].Applied)
}

func TestCreateNumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0007_old_up.sql"), []byte("SELECT 1"), 0o644))

	up, down, err := Create(dir, "Add task Due-Date!")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "0008_add_task_due_date_up.sql"), up)
	assert.Equal(t, filepath.Join(dir, "0008_add_task_due_date_down.sql"), down)
	assert.FileExists(t, up)
	assert.FileExists(t, down)
}

func TestCreateRejectsEmptyMessage(t *testing.T) {
	_, _, err := Create(t.TempDir(), "  !! ")
	assert.Error(t, err)
}
