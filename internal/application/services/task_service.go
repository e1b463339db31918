package services

import (
	"context"
	"strings"
	"time"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	core
	repo ports.TaskRepository
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService creates a new task service
func NewTaskService(repo ports.TaskRepository, publisher ports.Publisher, log *logger.Logger, opts ...Option) *TaskService {
	return &TaskService{
		core: newCore(publisher, log, "task_service", opts),
		repo: repo,
	}
}

// CreateTask creates a new, not yet completed task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	now := s.stamp(time.Time{})
	task := &entities.Task{
		ID:          s.newID(),
		Title:       req.Title,
		Description: trimOptional(req.Description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sctx, cancel := s.storageContext(ctx)
	defer cancel()
	if err := s.repo.Create(sctx, task); err != nil {
		return nil, s.storageError("create task", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title)
	s.publish(ctx, ports.TaskAdded)
	return task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	task, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get task", err)
	}
	return task, nil
}

// ListTasks returns every task in insertion order
func (s *TaskService) ListTasks(ctx context.Context) ([]*entities.Task, error) {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	tasks, err := s.repo.List(sctx)
	if err != nil {
		return nil, s.storageError("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask replaces the fields present in req
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var title string
	if req.Title != nil {
		t, err := requireTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}

	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	task, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get task", err)
	}

	if req.Title != nil {
		task.Title = title
	}
	if req.Description != nil {
		task.Description = trimOptional(req.Description)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.UpdatedAt = s.stamp(task.UpdatedAt)

	if err := s.repo.Update(sctx, task); err != nil {
		return nil, s.storageError("update task", err)
	}

	s.logger.Infow("Task updated", "task_id", task.ID)
	s.publish(ctx, ports.TaskUpdated)
	return task, nil
}

// ToggleTask flips the task's completion flag
func (s *TaskService) ToggleTask(ctx context.Context, id string) (*entities.Task, error) {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	task, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get task", err)
	}

	task.Completed = !task.Completed
	task.UpdatedAt = s.stamp(task.UpdatedAt)

	if err := s.repo.Update(sctx, task); err != nil {
		return nil, s.storageError("toggle task", err)
	}

	s.logger.Infow("Task toggled", "task_id", task.ID, "completed", task.Completed)
	s.publish(ctx, ports.TaskToggled)
	return task, nil
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.repo.Delete(sctx, id); err != nil {
		return s.storageError("delete task", err)
	}

	s.logger.Infow("Task deleted", "task_id", id)
	s.publish(ctx, ports.TaskDeleted)
	return nil
}

// DeleteAllTasks empties the collection
func (s *TaskService) DeleteAllTasks(ctx context.Context) error {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.repo.DeleteAll(sctx); err != nil {
		return s.storageError("delete all tasks", err)
	}

	s.logger.Info("All tasks deleted")
	s.publish(ctx, ports.TasksCleared)
	return nil
}
