package services

import (
	"context"
	"strings"
	"time"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

var errInvalidStatus = entities.NewValidationError("status", "status must be one of: upcoming, in_progress, completed")

// EventService handles event lifecycle operations
type EventService struct {
	core
	repo ports.EventRepository
}

var _ ports.EventService = (*EventService)(nil)

// NewEventService creates a new event service
func NewEventService(repo ports.EventRepository, publisher ports.Publisher, log *logger.Logger, opts ...Option) *EventService {
	return &EventService{
		core: newCore(publisher, log, "event_service", opts),
		repo: repo,
	}
}

// CreateEvent validates and stores a new event. Status defaults to upcoming.
func (s *EventService) CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*entities.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = entities.EventStatusUpcoming
	}

	now := s.stamp(time.Time{})
	event := &entities.Event{
		ID:          s.newID(),
		Title:       req.Title,
		Date:        req.Date.UTC().Truncate(time.Microsecond),
		Description: trimOptional(req.Description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sctx, cancel := s.storageContext(ctx)
	defer cancel()
	if err := s.repo.Create(sctx, event); err != nil {
		return nil, s.storageError("create event", err)
	}

	s.logger.Infow("Event created", "event_id", event.ID, "title", event.Title)
	s.publish(ctx, ports.EventAdded)
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, id string) (*entities.Event, error) {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	event, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get event", err)
	}
	return event, nil
}

// ListEvents returns events in insertion order, optionally narrowed to one status
func (s *EventService) ListEvents(ctx context.Context, filter ports.EventFilter) ([]*entities.Event, error) {
	if err := s.validateStruct(filter); err != nil {
		return nil, err
	}

	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	events, err := s.repo.List(sctx)
	if err != nil {
		return nil, s.storageError("list events", err)
	}

	if filter.Status == nil {
		return events, nil
	}
	filtered := make([]*entities.Event, 0, len(events))
	for _, e := range events {
		if e.Status == *filter.Status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// UpdateEvent replaces the fields present in req
func (s *EventService) UpdateEvent(ctx context.Context, id string, req ports.UpdateEventRequest) (*entities.Event, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, errInvalidStatus
	}

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

	event, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get event", err)
	}

	previous := event.Status
	if req.Title != nil {
		event.Title = title
	}
	if req.Date != nil {
		event.Date = req.Date.UTC().Truncate(time.Microsecond)
	}
	if req.Description != nil {
		event.Description = trimOptional(req.Description)
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	event.UpdatedAt = s.stamp(event.UpdatedAt)

	if err := s.repo.Update(sctx, event); err != nil {
		return nil, s.storageError("update event", err)
	}

	s.logger.Infow("Event updated", "event_id", event.ID)
	s.publish(ctx, ports.EventUpdated)
	if event.Status != previous {
		s.publish(ctx, ports.EventStatusChanged)
	}
	return event, nil
}

// AdvanceStatus sets the event's status to any enumerated value. Order is not enforced.
func (s *EventService) AdvanceStatus(ctx context.Context, id string, status entities.EventStatus) (*entities.Event, error) {
	if !status.IsValid() {
		return nil, errInvalidStatus
	}

	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	event, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, s.storageError("get event", err)
	}

	previous := event.Status
	event.Status = status
	event.UpdatedAt = s.stamp(event.UpdatedAt)

	if err := s.repo.Update(sctx, event); err != nil {
		return nil, s.storageError("update event status", err)
	}

	s.logger.Infow("Event status changed", "event_id", event.ID, "from", previous, "to", status)
	s.publish(ctx, ports.EventStatusChanged)
	return event, nil
}

// DeleteEvent removes an event
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.repo.Delete(sctx, id); err != nil {
		return s.storageError("delete event", err)
	}

	s.logger.Infow("Event deleted", "event_id", id)
	s.publish(ctx, ports.EventDeleted)
	return nil
}

// DeleteAllEvents empties the collection
func (s *EventService) DeleteAllEvents(ctx context.Context) error {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.repo.DeleteAll(sctx); err != nil {
		return s.storageError("delete all events", err)
	}

	s.logger.Info("All events deleted")
	s.publish(ctx, ports.EventsCleared)
	return nil
}

// Summary counts events per status
func (s *EventService) Summary(ctx context.Context) (*entities.EventSummary, error) {
	events, err := s.ListEvents(ctx, ports.EventFilter{})
	if err != nil {
		return nil, err
	}

	summary := &entities.EventSummary{}
	for _, e := range events {
		summary.Add(e.Status)
	}
	return summary, nil
}
