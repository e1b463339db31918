package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

// EventHandler handles event requests
type EventHandler struct {
	events ports.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events ports.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents handles GET /events, optionally filtered by ?status=
func (h *EventHandler) ListEvents(c echo.Context) error {
	var filter ports.EventFilter
	if status := c.QueryParam("status"); status != "" {
		s := entities.EventStatus(status)
		filter.Status = &s
	}

	events, err := h.events.ListEvents(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Summary handles GET /events/summary
func (h *EventHandler) Summary(c echo.Context) error {
	summary, err := h.events.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.events.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req ports.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	event, err := h.events.CreateEvent(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent handles PUT and PATCH /events/:id
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	var req ports.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	event, err := h.events.UpdateEvent(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// AdvanceStatus handles PATCH /events/:id/status
func (h *EventHandler) AdvanceStatus(c echo.Context) error {
	var req ports.AdvanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.events.AdvanceStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.events.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Event deleted successfully"})
}

// DeleteAllEvents handles DELETE /events
func (h *EventHandler) DeleteAllEvents(c echo.Context) error {
	if err := h.events.DeleteAllEvents(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "All events deleted successfully"})
}
