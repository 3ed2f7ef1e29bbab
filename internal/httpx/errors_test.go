package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validationf("Invalid venue id"), 400, "Invalid venue id"},
		{apperr.NotFoundf("No venue with the id of 9"), 404, "No venue with the id of 9"},
		{apperr.Unauthorizedf("nope"), 401, "nope"},
		{apperr.Forbiddenf("role"), 403, "role"},
		{apperr.LimitExceededf("cap"), 400, "cap"},
		{apperr.Conflictf("dup"), 400, "dup"},
		{fmt.Errorf("svc: %w", apperr.Wrap(errors.New("db down"), "Cannot list venues")), 500, "Cannot list venues"},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), 405, "Method Not Allowed"},
		{gorm.ErrDuplicatedKey, 400, "Duplicate field value entered"},
		{errors.New("secret internals"), 500, "Server error"},
	}
	for _, tt := range tests {
		status, msg := Map(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg)
	}
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error {
		return apperr.NotFoundf("No reservation with the id of %d", 4)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No reservation with the id of 4", body["message"])
	assert.NotContains(t, body, "data")
}

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
	Open  string `json:"openTime" validate:"omitempty,clock"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&sample{Name: "abc", Open: "09:30"}))

	err := Validate(&sample{})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "name is required")

	err = Validate(&sample{Name: "toolong", Email: "x", Open: "25:00"})
	require.Error(t, err)
	msg := err.(*apperr.Error).Message
	assert.Contains(t, msg, "name can not be more than 5 characters")
	assert.Contains(t, msg, "Please provide a valid email address")
	assert.Contains(t, msg, "Please provide valid openTime format (HH:MM)")
}
