package venue

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/audit"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"gorm.io/gorm"
)

// Find loads a venue or reports NotFound.
func Find(db *gorm.DB, id uint) (*models.Venue, error) {
	var v models.Venue
	if err := db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("No venue with the id of %d", id)
		}
		return nil, apperr.Wrap(err, "Cannot find venue")
	}
	return &v, nil
}

// Delete removes the venue and every reservation referencing it in one transaction.
func Delete(ctx context.Context, db *gorm.DB, id, actorID uint) (int64, error) {
	var removed int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := Find(tx, id)
		if err != nil {
			return err
		}

		res := tx.Where("venue_id = ?", v.ID).Delete(&models.Reservation{})
		if res.Error != nil {
			return apperr.Wrap(res.Error, "Cannot delete venue reservations")
		}
		removed = res.RowsAffected

		if err := tx.Delete(v).Error; err != nil {
			return apperr.Wrap(err, "Cannot delete venue")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actorID,
			EntityType:  audit.EntityVenue,
			EntityID:    v.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted venue %s with %d reservations", v.Name, removed),
			Before:      v,
		})
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func save(ctx context.Context, db *gorm.DB, v *models.Venue, actorID uint, action models.AuditAction, before *models.Venue) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Venue{}).Where("name = ? AND id <> ?", v.Name, v.ID).Count(&count).Error; err != nil {
			return apperr.Wrap(err, "Cannot save venue")
		}
		if count > 0 {
			return apperr.Conflictf("Venue name '%s' already exists", v.Name)
		}

		if err := tx.Save(v).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("Venue name '%s' already exists", v.Name)
			}
			return apperr.Wrap(err, "Cannot save venue")
		}

		opts := audit.LogOptions{
			UserID:      actorID,
			EntityType:  audit.EntityVenue,
			EntityID:    v.ID,
			Action:      action,
			Description: fmt.Sprintf("%s venue %s", action, v.Name),
			After:       v,
		}
		if before != nil {
			opts.Before = before
		}
		return audit.WriteLog(tx, opts)
	})
}
