package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/database"
)

func setupMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return database.Wrap(sqlx.NewDb(conn, "postgres")), mock
}

var eventColumns = []string{"id", "title", "date", "description", "status", "created_at", "updated_at"}

func TestEventSQLRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(eventColumns).
		AddRow("e-1", "Standup", now, nil, "upcoming", now, now).
		AddRow("e-2", "Retro", now, "weekly", "in_progress", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(selectEventsQuery)).WillReturnRows(rows)

	events, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e-1", events[0].ID)
	assert.Nil(t, events[0].Description)
	assert.Equal(t, entities.EventStatusInProgress, events[1].Status)
	require.NotNil(t, events[1].Description)
	assert.Equal(t, "weekly", *events[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_ListEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsQuery)).WillReturnRows(sqlmock.NewRows(eventColumns))

	events, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventSQLRepository_ListError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsQuery)).WillReturnError(errors.New("database connection failed"))

	events, err := repo.List(context.Background())

	assert.Nil(t, events)
	assert.ErrorContains(t, err, "database connection failed")
}

func TestEventSQLRepository_GetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(getEventQuery)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, entities.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)
	event := newTestEvent("e-1", "Standup")

	mock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).
		WithArgs("e-1", "Standup", event.Date, nil, "upcoming", event.CreatedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_UpdateNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(updateEventQuery)).
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), newTestEvent("missing", "x"))

	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(deleteEventQuery)).WithArgs("e-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteEventQuery)).WithArgs("e-1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "e-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "e-1"), entities.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_ReplaceAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteAllEventsQuery)).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).WithArgs("a", "A", sqlmock.AnyArg(), nil, "upcoming", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).WithArgs("b", "B", sqlmock.AnyArg(), nil, "upcoming", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.ReplaceAll(context.Background(), []*entities.Event{newTestEvent("a", "A"), newTestEvent("b", "B")})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSQLRepository_ReplaceAllRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventSQLRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteAllEventsQuery)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []*entities.Event{newTestEvent("a", "A")})

	assert.ErrorContains(t, err, "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

var taskColumns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

func TestTaskSQLRepository_ListAndGet(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskSQLRepository(db)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectTasksQuery)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("t-1", "Write report", nil, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(getTaskQuery)).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("t-1", "Write report", nil, true, now, now))

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	task, err := repo.Get(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskSQLRepository_Mutations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskSQLRepository(db)
	now := time.Now().UTC()
	task := &entities.Task{ID: "t-1", Title: "Write report", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta(insertTaskQuery)).
		WithArgs("t-1", "Write report", nil, false, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateTaskQuery)).
		WithArgs("t-1", "Write report", nil, true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteTaskQuery)).WithArgs("t-2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteAllTasksQuery)).WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, task))
	task.Completed = true
	require.NoError(t, repo.Update(ctx, task))
	assert.ErrorIs(t, repo.Delete(ctx, "t-2"), entities.ErrTaskNotFound)
	require.NoError(t, repo.DeleteAll(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
