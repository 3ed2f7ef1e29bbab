package httpx

import (
	"errors"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var statusByKind = map[apperr.Kind]int{
	apperr.Validation:    fiber.StatusBadRequest,
	apperr.NotFound:      fiber.StatusNotFound,
	apperr.Unauthorized:  fiber.StatusUnauthorized,
	apperr.Forbidden:     fiber.StatusForbidden,
	apperr.LimitExceeded: fiber.StatusBadRequest,
	apperr.Conflict:      fiber.StatusBadRequest,
	apperr.Internal:      fiber.StatusInternalServerError,
}

// Map picks the status and public message for err.
func Map(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return statusByKind[appErr.Kind], appErr.Message
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.StatusBadRequest, "Duplicate field value entered"
	}
	return fiber.StatusInternalServerError, "Server error"
}

// ErrorHandler is installed as fiber's ErrorHandler so every failure leaves as an
// envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := Map(err)
	if status >= fiber.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(status).JSON(Envelope{Success: false, Message: msg})
}
