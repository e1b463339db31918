package ports

import (
	"context"

	"github.com/taskmaster/tracker/internal/domain/entities"
)

// Entity is a record addressable by a string identifier
type Entity interface {
	Key() string
}

// Repository defines the storage contract every persistence adapter satisfies.
// Lookups of a missing id return the adapter's not-found error, which wraps
// entities.ErrNotFound.
type Repository[T Entity] interface {
	// List returns every record in insertion order. An absent store is an empty collection.
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	// ReplaceAll atomically overwrites the whole collection.
	ReplaceAll(ctx context.Context, records []T) error
	Ping(ctx context.Context) error
}

// EventRepository stores events
type EventRepository = Repository[*entities.Event]

// TaskRepository stores tasks
type TaskRepository = Repository[*entities.Task]

// Publisher announces that a collection changed
type Publisher interface {
	Publish(ctx context.Context, name string)
}

// Notification names published after successful mutations
const (
	EventAdded         = "event_added"
	EventUpdated       = "event_updated"
	EventStatusChanged = "event_status_changed"
	EventDeleted       = "event_deleted"
	EventsCleared      = "events_cleared"

	TaskAdded    = "task_added"
	TaskUpdated  = "task_updated"
	TaskToggled  = "task_toggled"
	TaskDeleted  = "task_deleted"
	TasksCleared = "tasks_cleared"
)

// NotificationNames lists every name the services publish
var NotificationNames = []string{
	EventAdded, EventUpdated, EventStatusChanged, EventDeleted, EventsCleared,
	TaskAdded, TaskUpdated, TaskToggled, TaskDeleted, TasksCleared,
}
