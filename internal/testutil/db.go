// Package testutil provides an isolated in-memory database for tests.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/database"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const TestSecret = "test-secret-test-secret-test-secret-0123"

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// PostgresDSNEnv names the variable that enables tests against a real postgres.
const PostgresDSNEnv = "TEST_POSTGRES_DSN"

// NewPostgresDB opens the postgres at TEST_POSTGRES_DSN inside a fresh schema that is
// dropped on cleanup. The test is skipped when the variable is unset.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	admin, err := gorm.Open(postgres.Open(dsn), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := gorm.Open(postgres.Open(withSearchPath(dsn, schema)), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() {
		_ = sqlDB.Close()
		_ = admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error
		if adminDB, err := admin.DB(); err == nil {
			_ = adminDB.Close()
		}
	})

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func withSearchPath(dsn, schema string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&search_path=" + schema
	}
	return dsn + "?search_path=" + schema
}

func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Name:         "user-" + uuid.NewString()[:8],
		Email:        fmt.Sprintf("test-%s@test.com", uuid.NewString()[:8]),
		Telephone:    "0812345678",
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateVenue(t *testing.T, db *gorm.DB, name string) *models.Venue {
	t.Helper()
	v := &models.Venue{
		Name:       name,
		Address:    "1 Main Road",
		District:   "Pathum Wan",
		Province:   "Bangkok",
		PostalCode: "10330",
		Tel:        "02-000-0000",
		Region:     "Central",
		OpenTime:   "09:00",
		CloseTime:  "22:00",
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create venue: %v", err)
	}
	return v
}
