package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

// DefaultStorageTimeout bounds every repository call unless WithTimeout says otherwise
const DefaultStorageTimeout = 5 * time.Second

// Option configures a service
type Option func(*core)

// WithClock replaces time.Now
func WithClock(clock func() time.Time) Option {
	return func(c *core) { c.clock = clock }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(newID func() string) Option {
	return func(c *core) { c.newID = newID }
}

// WithTimeout bounds each repository call
func WithTimeout(d time.Duration) Option {
	return func(c *core) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// core carries what every domain service needs
type core struct {
	validate  *validator.Validate
	publisher ports.Publisher
	logger    *logger.Logger
	clock     func() time.Time
	newID     func() string
	timeout   time.Duration
}

func newCore(publisher ports.Publisher, log *logger.Logger, component string, opts []Option) core {
	c := core{
		validate:  NewValidator(),
		publisher: publisher,
		logger:    log.WithComponent(component),
		clock:     time.Now,
		newID:     uuid.NewString,
		timeout:   DefaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewValidator returns a validator reporting fields by their JSON names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// stamp returns the current time, strictly after prev when prev is set
func (c *core) stamp(prev time.Time) time.Time {
	now := c.clock().UTC().Truncate(time.Microsecond)
	if !prev.IsZero() && !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (c *core) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// storageError keeps domain errors and hides everything else behind StorageError
func (c *core) storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, entities.ErrNotFound) || errors.Is(err, entities.ErrValidation) {
		return err
	}
	c.logger.WithError(err).Errorw("Storage operation failed", "op", op)
	return entities.NewStorageError(op, err)
}

func (c *core) publish(ctx context.Context, name string) {
	if c.publisher != nil {
		c.publisher.Publish(ctx, name)
	}
}

func (c *core) validateStruct(req interface{}) error {
	return TranslateValidationError(c.validate.Struct(req))
}

// TranslateValidationError turns validator output into a *entities.ValidationError
// describing the first failing field
func TranslateValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return translateFieldError(fieldErrs[0])
	}
	return entities.NewValidationError("", err.Error())
}

func translateFieldError(fe validator.FieldError) *entities.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return entities.NewValidationError(field, field+" is required")
	case "oneof":
		return entities.NewValidationError(field, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return entities.NewValidationError(field, field+" is invalid")
	}
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", entities.NewValidationError("title", "title is required")
	}
	return title, nil
}

// trimOptional trims s and treats a blank value as absent
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
