package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/database"
)

const (
	selectEventsQuery = `
		SELECT id, title, date, description, status, created_at, updated_at
		FROM events
		ORDER BY seq`

	getEventQuery = `
		SELECT id, title, date, description, status, created_at, updated_at
		FROM events
		WHERE id = $1`

	insertEventQuery = `
		INSERT INTO events (id, title, date, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateEventQuery = `
		UPDATE events
		SET title = $2, date = $3, description = $4, status = $5, created_at = $6, updated_at = $7
		WHERE id = $1`

	deleteEventQuery     = `DELETE FROM events WHERE id = $1`
	deleteAllEventsQuery = `DELETE FROM events`
)

// EventSQLRepository implements ports.EventRepository on PostgreSQL
type EventSQLRepository struct {
	db *database.DB
}

// NewEventSQLRepository creates a new event repository
func NewEventSQLRepository(db *database.DB) *EventSQLRepository {
	return &EventSQLRepository{db: db}
}

func (r *EventSQLRepository) List(ctx context.Context) ([]*entities.Event, error) {
	events := []*entities.Event{}
	if err := r.db.DB.SelectContext(ctx, &events, selectEventsQuery); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventSQLRepository) Get(ctx context.Context, id string) (*entities.Event, error) {
	var event entities.Event
	if err := r.db.DB.GetContext(ctx, &event, getEventQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *EventSQLRepository) Create(ctx context.Context, event *entities.Event) error {
	if err := insertEvent(ctx, r.db.DB, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventSQLRepository) Update(ctx context.Context, event *entities.Event) error {
	result, err := r.db.DB.ExecContext(ctx, updateEventQuery,
		event.ID, event.Title, event.Date, event.Description,
		event.Status, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(result, entities.ErrEventNotFound)
}

func (r *EventSQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, deleteEventQuery, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(result, entities.ErrEventNotFound)
}

func (r *EventSQLRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.DB.ExecContext(ctx, deleteAllEventsQuery); err != nil {
		return fmt.Errorf("delete all events: %w", err)
	}
	return nil
}

func (r *EventSQLRepository) ReplaceAll(ctx context.Context, events []*entities.Event) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteAllEventsQuery); err != nil {
			return fmt.Errorf("replace events: %w", err)
		}
		for _, event := range events {
			if err := insertEvent(ctx, tx, event); err != nil {
				return fmt.Errorf("replace events: %w", err)
			}
		}
		return nil
	})
}

func (r *EventSQLRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func insertEvent(ctx context.Context, exec sqlx.ExecerContext, event *entities.Event) error {
	_, err := exec.ExecContext(ctx, insertEventQuery,
		event.ID, event.Title, event.Date, event.Description,
		event.Status, event.CreatedAt, event.UpdatedAt,
	)
	return err
}

const (
	selectTasksQuery = `
		SELECT id, title, description, completed, created_at, updated_at
		FROM tasks
		ORDER BY seq`

	getTaskQuery = `
		SELECT id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	insertTaskQuery = `
		INSERT INTO tasks (id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateTaskQuery = `
		UPDATE tasks
		SET title = $2, description = $3, completed = $4, created_at = $5, updated_at = $6
		WHERE id = $1`

	deleteTaskQuery     = `DELETE FROM tasks WHERE id = $1`
	deleteAllTasksQuery = `DELETE FROM tasks`
)

// TaskSQLRepository implements ports.TaskRepository on PostgreSQL
type TaskSQLRepository struct {
	db *database.DB
}

// NewTaskSQLRepository creates a new task repository
func NewTaskSQLRepository(db *database.DB) *TaskSQLRepository {
	return &TaskSQLRepository{db: db}
}

func (r *TaskSQLRepository) List(ctx context.Context) ([]*entities.Task, error) {
	tasks := []*entities.Task{}
	if err := r.db.DB.SelectContext(ctx, &tasks, selectTasksQuery); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskSQLRepository) Get(ctx context.Context, id string) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.DB.GetContext(ctx, &task, getTaskQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (r *TaskSQLRepository) Create(ctx context.Context, task *entities.Task) error {
	if err := insertTask(ctx, r.db.DB, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskSQLRepository) Update(ctx context.Context, task *entities.Task) error {
	result, err := r.db.DB.ExecContext(ctx, updateTaskQuery,
		task.ID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskSQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, deleteTaskQuery, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskSQLRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.DB.ExecContext(ctx, deleteAllTasksQuery); err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

func (r *TaskSQLRepository) ReplaceAll(ctx context.Context, tasks []*entities.Task) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteAllTasksQuery); err != nil {
			return fmt.Errorf("replace tasks: %w", err)
		}
		for _, task := range tasks {
			if err := insertTask(ctx, tx, task); err != nil {
				return fmt.Errorf("replace tasks: %w", err)
			}
		}
		return nil
	})
}

func (r *TaskSQLRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func insertTask(ctx context.Context, exec sqlx.ExecerContext, task *entities.Task) error {
	_, err := exec.ExecContext(ctx, insertTaskQuery,
		task.ID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	return err
}

func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
