package venue

import (
	"strings"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultOpenTime  = "09:00"
	defaultCloseTime = "22:00"
)

var Schema = &query.Schema{
	Fields: map[string]query.Field{
		"id":         {Column: "id", Type: query.Int},
		"name":       {Column: "name", Type: query.String},
		"address":    {Column: "address", Type: query.String},
		"district":   {Column: "district", Type: query.String},
		"province":   {Column: "province", Type: query.String},
		"postalCode": {Column: "postal_code", Type: query.String},
		"tel":        {Column: "tel", Type: query.String},
		"region":     {Column: "region", Type: query.String},
		"openTime":   {Column: "open_time", Type: query.String},
		"closeTime":  {Column: "close_time", Type: query.String},
		"createdAt":  {Column: "created_at", Type: query.Time},
		"updatedAt":  {Column: "updated_at", Type: query.Time},
	},
	Always:      []string{"id"},
	DefaultSort: "-createdAt",
}

type CreateVenueRequest struct {
	Name       string `json:"name" validate:"required,max=50"`
	Address    string `json:"address" validate:"required,max=255"`
	District   string `json:"district" validate:"required,max=100"`
	Province   string `json:"province" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=5"`
	Tel        string `json:"tel" validate:"max=50"`
	Region     string `json:"region" validate:"required,max=100"`
	OpenTime   string `json:"openTime" validate:"omitempty,clock"`
	CloseTime  string `json:"closeTime" validate:"omitempty,clock"`
}

type UpdateVenueRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	District   *string `json:"district" validate:"omitempty,max=100"`
	Province   *string `json:"province" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=5"`
	Tel        *string `json:"tel" validate:"omitempty,max=50"`
	Region     *string `json:"region" validate:"omitempty,max=100"`
	OpenTime   *string `json:"openTime" validate:"omitempty,clock"`
	CloseTime  *string `json:"closeTime" validate:"omitempty,clock"`
}

func CreateVenueHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, _, err := auth.Caller(c)
		if err != nil {
			return err
		}

		var body CreateVenueRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validationf("Invalid request body")
		}
		for _, f := range []*string{&body.Name, &body.Address, &body.District, &body.Province,
			&body.PostalCode, &body.Tel, &body.Region, &body.OpenTime, &body.CloseTime} {
			*f = strings.TrimSpace(*f)
		}
		if err := httpx.Validate(&body); err != nil {
			return err
		}

		v := models.Venue{
			Name:       body.Name,
			Address:    body.Address,
			District:   body.District,
			Province:   body.Province,
			PostalCode: body.PostalCode,
			Tel:        body.Tel,
			Region:     body.Region,
			OpenTime:   body.OpenTime,
			CloseTime:  body.CloseTime,
		}
		if v.OpenTime == "" {
			v.OpenTime = defaultOpenTime
		}
		if v.CloseTime == "" {
			v.CloseTime = defaultCloseTime
		}

		if err := save(c.UserContext(), db, &v, actorID, models.AuditActionCreate, nil); err != nil {
			return err
		}
		return httpx.Created(c, v)
	}
}

func ListVenuesHandler(db *gorm.DB) fiber.Handler {
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

		res, err := query.Execute[models.Venue](c.UserContext(), db, Schema, query.Plan{Filter: filter, Params: params})
		if err != nil {
			return apperr.Wrap(err, "Cannot list venues")
		}
		return httpx.List(c, res)
	}
}

func GetVenueHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validationf("Invalid venue id")
		}

		v, err := Find(db.WithContext(c.UserContext()), uint(id))
		if err != nil {
			return err
		}
		return httpx.OK(c, v)
	}
}

func UpdateVenueHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, _, err := auth.Caller(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validationf("Invalid venue id")
		}

		var body UpdateVenueRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		v, err := Find(db.WithContext(c.UserContext()), uint(id))
		if err != nil {
			return err
		}
		before := *v

		// tel is optional and may be cleared; every other field must stay non-empty
		for _, f := range []struct {
			dst   *string
			src   *string
			field string
		}{
			{&v.Name, body.Name, "name"},
			{&v.Address, body.Address, "address"},
			{&v.District, body.District, "district"},
			{&v.Province, body.Province, "province"},
			{&v.PostalCode, body.PostalCode, "postalCode"},
			{&v.Tel, body.Tel, "tel"},
			{&v.Region, body.Region, "region"},
			{&v.OpenTime, body.OpenTime, "openTime"},
			{&v.CloseTime, body.CloseTime, "closeTime"},
		} {
			if f.src == nil {
				continue
			}
			val := strings.TrimSpace(*f.src)
			if val == "" && f.field != "tel" {
				return apperr.Validationf("%s is required", f.field)
			}
			*f.dst = val
		}

		if err := save(c.UserContext(), db, v, actorID, models.AuditActionUpdate, &before); err != nil {
			return err
		}
		return httpx.OK(c, v)
	}
}

func DeleteVenueHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, _, err := auth.Caller(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validationf("Invalid venue id")
		}

		if _, err := Delete(c.UserContext(), db, uint(id), actorID); err != nil {
			return err
		}
		return httpx.OK(c, fiber.Map{})
	}
}
