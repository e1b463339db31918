package entities

import (
	"time"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusUpcoming   EventStatus = "upcoming"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
)

// EventStatuses lists every valid status in lifecycle order
var EventStatuses = []EventStatus{
	EventStatusUpcoming,
	EventStatusInProgress,
	EventStatusCompleted,
}

// IsValid reports whether s is one of the enumerated statuses
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusInProgress, EventStatusCompleted:
		return true
	default:
		return false
	}
}

// Next returns the status the UI offers after s. Completed events have no next status.
func (s EventStatus) Next() (EventStatus, bool) {
	switch s {
	case EventStatusUpcoming:
		return EventStatusInProgress, true
	case EventStatusInProgress:
		return EventStatusCompleted, true
	default:
		return "", false
	}
}

// Event represents a scheduled event
type Event struct {
	ID          string      `json:"id" db:"id" gorm:"primaryKey;size:36"`
	Title       string      `json:"title" db:"title" gorm:"not null"`
	Date        time.Time   `json:"date" db:"date" gorm:"not null"`
	Description *string     `json:"description,omitempty" db:"description"`
	Status      EventStatus `json:"status" db:"status" gorm:"size:16;not null;default:upcoming;index"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime:false"`
}

// Key returns the event identifier
func (e *Event) Key() string { return e.ID }

// TableName returns the table name for Event
func (Event) TableName() string { return "events" }

// Task represents a to-do item
type Task struct {
	ID          string    `json:"id" db:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" db:"title" gorm:"not null"`
	Description *string   `json:"description,omitempty" db:"description"`
	Completed   bool      `json:"completed" db:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime:false"`
}

// Key returns the task identifier
func (t *Task) Key() string { return t.ID }

// TableName returns the table name for Task
func (Task) TableName() string { return "tasks" }

// EventSummary counts events per status
type EventSummary struct {
	Upcoming   int `json:"upcoming"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// Add counts one event with status s
func (s *EventSummary) Add(status EventStatus) {
	switch status {
	case EventStatusUpcoming:
		s.Upcoming++
	case EventStatusInProgress:
		s.InProgress++
	case EventStatusCompleted:
		s.Completed++
	}
	s.Total++
}
