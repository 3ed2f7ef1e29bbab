package audit

import (
	"fmt"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

const (
	EntityReservation = "reservation"
	EntityVenue       = "venue"
)

type LogOptions struct {
	UserID      uint
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// snapshot encodes v for a jsonb column. jsonb rejects empty strings, so absent or
// unencodable values are stored as JSON null.
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// WriteLog records one change. Pass the transaction the change runs in so both commit
// together.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// CleanOldLogs deletes audit rows created before now minus retentionDays.
func CleanOldLogs(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	res := db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("clean audit logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
