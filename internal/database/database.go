package database

import (
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"servicehub/internal/domain"
)

// Connect opens PostgreSQL for postgres:// DSNs and falls back to the
// CGO-free sqlite driver for anything else (local dev and tests).
func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ServiceProvider{},
		&domain.ProfilePhoto{},
		&domain.JobCategory{},
		&domain.Service{},
		&domain.ServiceImage{},
		&domain.Booking{},
		&domain.Notification{},
		&domain.Message{},
	)
}
