package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T, maxConcurrent int) (Database, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return Wrap(sqlDB, maxConcurrent), mock
}

func TestWithTxCommits(t *testing.T) {
	d, mock := newMock(t, 2)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := d.WithTx(context.Background(), func(tx Querier) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE tasks SET title = $1", "x")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	d, mock := newMock(t, 2)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := d.WithTx(context.Background(), func(tx Querier) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	d, mock := newMock(t, 2)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = d.WithTx(context.Background(), func(tx Querier) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiterHonorsContext(t *testing.T) {
	d, _ := newMock(t, 1)
	require.NoError(t, impl(d).acquire(context.Background()))
	defer impl(d).release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.ExecContext(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.Canceled)

	err = d.WithTx(ctx, func(tx Querier) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryHoldsSlotUntilRowsClosed(t *testing.T) {
	d, mock := newMock(t, 1)

	mock.ExpectQuery("SELECT id FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	rows, err := d.QueryContext(context.Background(), "SELECT id FROM tasks")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = d.ExecContext(ctx, "UPDATE tasks SET title = 'x'")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, rows.Close())
	require.NoError(t, rows.Close())

	require.NoError(t, impl(d).acquire(context.Background()))
	impl(d).release()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryReleasesSlotWhenExhausted(t *testing.T) {
	d, mock := newMock(t, 1)

	mock.ExpectQuery("SELECT id FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a"))
	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := d.QueryContext(context.Background(), "SELECT id FROM tasks")
	require.NoError(t, err)

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a"}, ids)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = d.ExecContext(ctx, "UPDATE tasks SET title = 'x'")
	require.NoError(t, err)

	require.NoError(t, rows.Close())
	assert.Len(t, impl(d).limiter, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorReleasesSlot(t *testing.T) {
	d, mock := newMock(t, 1)
	boom := errors.New("boom")

	mock.ExpectQuery("SELECT id FROM tasks").WillReturnError(boom)

	rows, err := d.QueryContext(context.Background(), "SELECT id FROM tasks")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, rows)
	assert.Len(t, impl(d).limiter, 0)
}

func TestTxQueryErrorIsNilRows(t *testing.T) {
	d, mock := newMock(t, 1)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM tasks").WillReturnError(boom)
	mock.ExpectRollback()

	err := d.WithTx(context.Background(), func(tx Querier) error {
		rows, err := tx.QueryContext(context.Background(), "SELECT id FROM tasks")
		assert.Nil(t, rows)
		return err
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func impl(d Database) *database {
	return d.(*database)
}
