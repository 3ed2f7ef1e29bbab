// Package httpx holds the JSON envelope, request binding and error mapping shared by
// every handler.
package httpx

import (
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"

	"github.com/gofiber/fiber/v2"
)

type Envelope struct {
	Success    bool              `json:"success"`
	Token      string            `json:"token,omitempty"`
	Message    string            `json:"message,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Total      *int64            `json:"total,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data,omitempty"`
}

func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

func Message(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: msg})
}

// List writes a list result. Pagination is always present, empty when there is no
// neighbouring page.
func List[T any](c *fiber.Ctx, res *query.Result[T]) error {
	data, err := res.Data()
	if err != nil {
		return err
	}
	count := res.Count
	total := res.Total
	pagination := res.Pagination
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Count:      &count,
		Total:      &total,
		Pagination: &pagination,
		Data:       data,
	})
}

// QueryValues returns every query parameter, keeping repeated keys.
func QueryValues(c *fiber.Ctx) map[string][]string {
	values := map[string][]string{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		values[key] = append(values[key], string(v))
	})
	return values
}
