package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return Wrap(sqlx.NewDb(conn, "postgres")), mock
}

func TestWithTransaction_Commit(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM events`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := db.WithTransaction(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`DELETE FROM events`)
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Rollback(t *testing.T) {
	db, mock := setupMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.WithTransaction(context.Background(), func(*sqlx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginFails(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err := db.WithTransaction(context.Background(), func(*sqlx.Tx) error { return nil })

	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestPing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectPing()

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConnectionInfo(t *testing.T) {
	db, _ := setupMockDB(t)

	info := db.GetConnectionInfo()

	assert.Contains(t, info, "open_connections")
	assert.Contains(t, info, "wait_duration")
}
