// Package jobs holds the periodic maintenance tasks run by the serve command.
package jobs

import (
	"context"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/audit"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const defaultRetentionDays = 90

// PurgeResetTokensJob clears password reset tokens that have expired unused.
type PurgeResetTokensJob struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPurgeResetTokensJob(db *gorm.DB) *PurgeResetTokensJob {
	return &PurgeResetTokensJob{db: db, now: time.Now}
}

func (j *PurgeResetTokensJob) Run() {
	n, err := auth.PurgeExpiredResetTokens(context.Background(), j.db, j.now())
	if err != nil {
		logger.Warningf("purge reset tokens: %v", err)
		return
	}
	if n > 0 {
		logger.Debugf("purged %d expired reset tokens", n)
	}
}

// AuditCleanupJob deletes audit rows past the retention window.
type AuditCleanupJob struct {
	db            *gorm.DB
	retentionDays int
	now           func() time.Time
}

func NewAuditCleanupJob(db *gorm.DB, retentionDays int) *AuditCleanupJob {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &AuditCleanupJob{db: db, retentionDays: retentionDays, now: time.Now}
}

func (j *AuditCleanupJob) Run() {
	logger.Debug("audit cleanup job started")
	n, err := audit.CleanOldLogs(j.db, j.retentionDays, j.now())
	if err != nil {
		logger.Warningf("failed to clean old audit logs: %v", err)
		return
	}
	logger.Debugf("audit cleanup removed %d rows (retention: %d days)", n, j.retentionDays)
}

// Start schedules every job and starts the scheduler. The caller stops it.
func Start(db *gorm.DB, retentionDays int) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddJob("@every 10m", NewPurgeResetTokensJob(db)); err != nil {
		return nil, err
	}
	if _, err := c.AddJob("@daily", NewAuditCleanupJob(db, retentionDays)); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
