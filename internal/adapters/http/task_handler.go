package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/tracker/internal/ports"
)

// TaskHandler handles task requests
type TaskHandler struct {
	tasks ports.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.tasks.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// ToggleTask handles PATCH /tasks/:id/toggle
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	task, err := h.tasks.ToggleTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.tasks.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}

func (h *TaskHandler) DeleteAllTasks(c echo.Context) error {
	if err := h.tasks.DeleteAllTasks(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "All tasks deleted successfully"})
}
