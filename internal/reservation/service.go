package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/audit"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/venue"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var Schema = &query.Schema{
	Fields: map[string]query.Field{
		"id":        {Column: "id", Type: query.Int},
		"userId":    {Column: "user_id", Type: query.Int},
		"venueId":   {Column: "venue_id", Type: query.Int},
		"resvDate":  {Column: "resv_date", Type: query.Time},
		"createdAt": {Column: "created_at", Type: query.Time},
		"updatedAt": {Column: "updated_at", Type: query.Time},
	},
	// foreign keys stay selected so the venue can still be populated
	Always:      []string{"id", "user_id", "venue_id"},
	DefaultSort: "-createdAt",
}

var venuePreload = query.Preload{
	Association: "Venue",
	Columns:     []string{"id", "name", "province", "tel"},
}

type Actor struct {
	ID   uint
	Role models.UserRole
}

type UpdateInput struct {
	ResvDate *time.Time
	VenueID  *uint
}

func plan(actor Actor, parentID *uint, values map[string][]string) (query.Plan, error) {
	filter, err := query.Translate(values, Schema)
	if err != nil {
		return query.Plan{}, err
	}
	params, err := query.ParseParams(values, Schema)
	if err != nil {
		return query.Plan{}, err
	}
	scope := query.Scope{Role: actor.Role, UserID: actor.ID, ParentID: parentID}
	return query.Plan{
		Filter:   scope.Apply(filter, "userId", "venueId"),
		Params:   params,
		Preloads: []query.Preload{venuePreload},
	}, nil
}

// List returns one page of the reservations the actor may see.
func List(ctx context.Context, db *gorm.DB, actor Actor, parentID *uint, values map[string][]string) (*query.Result[models.Reservation], error) {
	p, err := plan(actor, parentID, values)
	if err != nil {
		return nil, err
	}
	res, err := query.Execute[models.Reservation](ctx, db, Schema, p)
	if err != nil {
		return nil, apperr.Wrap(err, "Cannot find reservations")
	}
	return res, nil
}

// ListAll is List without pagination, with the owner populated as well.
func ListAll(ctx context.Context, db *gorm.DB, actor Actor, values map[string][]string) ([]models.Reservation, error) {
	p, err := plan(actor, nil, values)
	if err != nil {
		return nil, err
	}
	p.Preloads = append(p.Preloads, query.Preload{Association: "User", Columns: []string{"id", "name", "email", "telephone"}})
	rows, err := query.All[models.Reservation](ctx, db, Schema, p)
	if err != nil {
		return nil, apperr.Wrap(err, "Cannot find reservations")
	}
	return rows, nil
}

// Create books venueID for the actor. The owner's user row is locked for the whole
// transaction, so concurrent creates by one user are serialized against the cap.
func Create(ctx context.Context, db *gorm.DB, actor Actor, venueID uint, resvDate time.Time) (*models.Reservation, error) {
	var r models.Reservation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&owner, actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorizedf("User not authenticated")
			}
			return apperr.Wrap(err, "Cannot create reservation")
		}

		if _, err := venue.Find(tx, venueID); err != nil {
			return err
		}

		if !actor.Role.IsAdmin() {
			var count int64
			if err := tx.Model(&models.Reservation{}).Where("user_id = ?", actor.ID).Count(&count).Error; err != nil {
				return apperr.Wrap(err, "Cannot create reservation")
			}
			if count >= models.MaxActiveReservations {
				return apperr.LimitExceededf("The user with ID %d has already made %d reservations", actor.ID, models.MaxActiveReservations)
			}
		}

		r = models.Reservation{UserID: actor.ID, VenueID: venueID, ResvDate: resvDate.UTC()}
		if err := tx.Create(&r).Error; err != nil {
			return apperr.Wrap(err, "Cannot create reservation")
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.ID,
			EntityType:  audit.EntityReservation,
			EntityID:    r.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Reserved venue %d", venueID),
			After:       r,
		}); err != nil {
			return err
		}
		return load(tx, r.ID, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Get returns a reservation its owner or an admin asked for.
func Get(ctx context.Context, db *gorm.DB, actor Actor, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := load(db.WithContext(ctx), id, &r); err != nil {
		return nil, err
	}
	if !auth.CanAccess(actor.ID, actor.Role, r.UserID) {
		return nil, apperr.Unauthorizedf("User %d is not authorized to view this reservation", actor.ID)
	}
	return &r, nil
}

func Update(ctx context.Context, db *gorm.DB, actor Actor, id uint, in UpdateInput) (*models.Reservation, error) {
	var r models.Reservation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := load(tx, id, &r); err != nil {
			return err
		}
		if !auth.CanAccess(actor.ID, actor.Role, r.UserID) {
			return apperr.Unauthorizedf("User %d is not authorized to update this reservation", actor.ID)
		}
		before := r

		updates := map[string]any{}
		if in.ResvDate != nil {
			if in.ResvDate.IsZero() {
				return apperr.Validationf("resvDate is required")
			}
			updates["resv_date"] = in.ResvDate.UTC()
		}
		if in.VenueID != nil {
			if _, err := venue.Find(tx, *in.VenueID); err != nil {
				return err
			}
			updates["venue_id"] = *in.VenueID
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Reservation{ID: r.ID}).Updates(updates).Error; err != nil {
				return apperr.Wrap(err, "Cannot update reservation")
			}
		}

		var after models.Reservation
		if err := load(tx, id, &after); err != nil {
			return err
		}
		r = after
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.ID,
			EntityType:  audit.EntityReservation,
			EntityID:    r.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Updated reservation %d", r.ID),
			Before:      before,
			After:       r,
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func Delete(ctx context.Context, db *gorm.DB, actor Actor, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := load(tx, id, &r); err != nil {
			return err
		}
		if !auth.CanAccess(actor.ID, actor.Role, r.UserID) {
			return apperr.Unauthorizedf("User %d is not authorized to delete this reservation", actor.ID)
		}

		if err := tx.Delete(&models.Reservation{}, r.ID).Error; err != nil {
			return apperr.Wrap(err, "Cannot delete reservation")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.ID,
			EntityType:  audit.EntityReservation,
			EntityID:    r.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted reservation %d", r.ID),
			Before:      r,
		})
	})
}

func load(db *gorm.DB, id uint, r *models.Reservation) error {
	err := db.Preload(venuePreload.Association, func(tx *gorm.DB) *gorm.DB {
		return tx.Select(venuePreload.Columns)
	}).First(r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("No reservation with the id of %d", id)
		}
		return apperr.Wrap(err, "Cannot find reservation")
	}
	return nil
}
