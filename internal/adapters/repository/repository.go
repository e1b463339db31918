// Package repository holds the persistence adapters behind ports.Repository:
// a JSON file store, PostgreSQL (sqlx), SQLite (GORM) and Redis.
package repository

import (
	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

var (
	_ ports.EventRepository = (*JSONFileStore[*entities.Event])(nil)
	_ ports.TaskRepository  = (*JSONFileStore[*entities.Task])(nil)
	_ ports.EventRepository = (*EventSQLRepository)(nil)
	_ ports.TaskRepository  = (*TaskSQLRepository)(nil)
	_ ports.EventRepository = (*GormStore[entities.Event, *entities.Event])(nil)
	_ ports.TaskRepository  = (*GormStore[entities.Task, *entities.Task])(nil)
	_ ports.EventRepository = (*RedisStore[*entities.Event])(nil)
	_ ports.TaskRepository  = (*RedisStore[*entities.Task])(nil)
)
