package audit

import (
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var Schema = &query.Schema{
	Fields: map[string]query.Field{
		"id":          {Column: "id", Type: query.Int},
		"userId":      {Column: "user_id", Type: query.Int},
		"entityType":  {Column: "entity_type", Type: query.String},
		"entityId":    {Column: "entity_id", Type: query.Int},
		"action":      {Column: "action", Type: query.String},
		"description": {Column: "description", Type: query.String},
		"beforeData":  {Column: "before_data", Type: query.String},
		"afterData":   {Column: "after_data", Type: query.String},
		"createdAt":   {Column: "created_at", Type: query.Time},
	},
	Always:      []string{"id"},
	DefaultSort: "-createdAt",
}

// GET /api/v1/audit-logs?entityType=reservation&entityId=1
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values := httpx.QueryValues(c)
		filter, err := query.Translate(values, Schema)
		if err != nil {
			return err
		}
		params, err := query.ParseParams(values, Schema)
		if err != nil {
			return err
		}

		res, err := query.Execute[models.AuditLog](c.UserContext(), db, Schema, query.Plan{Filter: filter, Params: params})
		if err != nil {
			return apperr.Wrap(err, "Cannot list audit logs")
		}
		return httpx.List(c, res)
	}
}
