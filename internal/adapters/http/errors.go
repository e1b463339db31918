package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/tracker/internal/application/services"
	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

const internalErrorMessage = "internal server error"

// CustomValidator wraps go-playground/validator for echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the echo validator
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: services.NewValidator()}
}

// Validate reports the first failing field as a *entities.ValidationError
func (cv *CustomValidator) Validate(i interface{}) error {
	return services.TranslateValidationError(cv.validator.Struct(i))
}

// StatusFor maps an error onto the HTTP status and the message sent to the client.
// Storage and unknown failures never expose their cause.
func StatusFor(err error) (int, string) {
	var (
		validationErr *entities.ValidationError
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &httpErr):
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return httpErr.Code, message
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// ErrorHandler renders every error as {"message": "..."}
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	log = log.WithComponent("http")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := StatusFor(err)
		if code >= http.StatusInternalServerError {
			log.WithError(err).Errorw("Request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", code,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, ports.MessageResponse{Message: message})
		}
		if sendErr != nil {
			log.WithError(sendErr).Warn("Failed to write error response")
		}
	}
}

// errInvalidBody reports a body echo could not bind
var errInvalidBody = entities.NewValidationError("body", "invalid request body")
