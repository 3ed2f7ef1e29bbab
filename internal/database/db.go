package database

import (
	"fmt"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models is the migration list, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Venue{},
		&models.Reservation{},
		&models.AuditLog{},
	}
}

// GormConfig is shared by the postgres connection and the test database.
func GormConfig(debug bool) *gorm.Config {
	l := gormlogger.Discard
	if debug {
		l = gormlogger.Default
	}
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
	}
}

// Open connects to postgres once; the handle is shared for the process lifetime.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), GormConfig(cfg.LogLevel == "debug"))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database migration completed")
	return nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warning("closing database:", err)
	}
}
