package ports

import (
	"context"
	"time"

	"github.com/taskmaster/tracker/internal/domain/entities"
)

// EventService interface for event lifecycle operations
type EventService interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*entities.Event, error)
	GetEvent(ctx context.Context, id string) (*entities.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*entities.Event, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*entities.Event, error)
	AdvanceStatus(ctx context.Context, id string, status entities.EventStatus) (*entities.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	DeleteAllEvents(ctx context.Context) error
	Summary(ctx context.Context) (*entities.EventSummary, error)
}

// TaskService interface for task operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	ListTasks(ctx context.Context) ([]*entities.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error)
	ToggleTask(ctx context.Context, id string) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteAllTasks(ctx context.Context) error
}

// Request/Response Types

// Event related types
type CreateEventRequest struct {
	Title       string               `json:"title" validate:"required"`
	Date        *time.Time           `json:"date" validate:"required"`
	Description *string              `json:"description"`
	Status      entities.EventStatus `json:"status" validate:"omitempty,oneof=upcoming in_progress completed"`
}

type UpdateEventRequest struct {
	Title       *string               `json:"title"`
	Date        *time.Time            `json:"date"`
	Description *string               `json:"description"`
	Status      *entities.EventStatus `json:"status" validate:"omitempty,oneof=upcoming in_progress completed"`
}

type AdvanceStatusRequest struct {
	Status entities.EventStatus `json:"status" validate:"required,oneof=upcoming in_progress completed"`
}

type EventFilter struct {
	Status *entities.EventStatus `validate:"omitempty,oneof=upcoming in_progress completed"`
}

// Task related types
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// MessageResponse is the body of delete confirmations and errors
type MessageResponse struct {
	Message string `json:"message"`
}
