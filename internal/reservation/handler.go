package reservation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/export"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CreateReservationRequest struct {
	ResvDate string `json:"resvDate" validate:"required"`
}

type UpdateReservationRequest struct {
	ResvDate *string `json:"resvDate"`
	VenueID  *uint   `json:"venueId" validate:"omitempty,gt=0"`
}

func actorFrom(c *fiber.Ctx) (Actor, error) {
	id, role, err := auth.Caller(c)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: role}, nil
}

func idParam(c *fiber.Ctx, name, label string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("Invalid %s id", label)
	}
	return uint(id), nil
}

func parseDate(raw string) (time.Time, error) {
	t, ok := query.ParseTime(raw)
	if !ok {
		return time.Time{}, apperr.Validationf("Please provide a valid resvDate")
	}
	return t, nil
}

// ListReservationsHandler serves both /reservations and /venues/:venueId/reservations.
func ListReservationsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}

		var parentID *uint
		if c.Params("venueId") != "" {
			id, err := idParam(c, "venueId", "venue")
			if err != nil {
				return err
			}
			parentID = &id
		}

		res, err := List(c.UserContext(), db, actor, parentID, httpx.QueryValues(c))
		if err != nil {
			return err
		}
		return httpx.List(c, res)
	}
}

func CreateReservationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}
		venueID, err := idParam(c, "venueId", "venue")
		if err != nil {
			return err
		}

		var body CreateReservationRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		resvDate, err := parseDate(body.ResvDate)
		if err != nil {
			return err
		}

		r, err := Create(c.UserContext(), db, actor, venueID, resvDate)
		if err != nil {
			return err
		}
		return httpx.OK(c, r)
	}
}

func GetReservationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "id", "reservation")
		if err != nil {
			return err
		}

		r, err := Get(c.UserContext(), db, actor, id)
		if err != nil {
			return err
		}
		return httpx.OK(c, r)
	}
}

func UpdateReservationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "id", "reservation")
		if err != nil {
			return err
		}

		var body UpdateReservationRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		in := UpdateInput{VenueID: body.VenueID}
		if body.ResvDate != nil {
			t, err := parseDate(*body.ResvDate)
			if err != nil {
				return err
			}
			in.ResvDate = &t
		}

		r, err := Update(c.UserContext(), db, actor, id, in)
		if err != nil {
			return err
		}
		return httpx.OK(c, r)
	}
}

func DeleteReservationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "id", "reservation")
		if err != nil {
			return err
		}

		if err := Delete(c.UserContext(), db, actor, id); err != nil {
			return err
		}
		return httpx.OK(c, fiber.Map{})
	}
}

// ExportReservationsHandler streams every reservation matching the query filters as xlsx.
func ExportReservationsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return err
		}

		rows, err := ListAll(c.UserContext(), db, actor, httpx.QueryValues(c))
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.WriteReservations(&buf, rows); err != nil {
			return apperr.Wrap(err, "Cannot export reservations")
		}
		logger.Infof("user %d exported %d reservations", actor.ID, len(rows))

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="reservations-%s.xlsx"`, time.Now().UTC().Format("20060102")))
		return c.Status(fiber.StatusOK).Send(buf.Bytes())
	}
}
