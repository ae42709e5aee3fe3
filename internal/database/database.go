package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"festreg/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates tables and the partial unique indexes that back the
// one-successful-registration-per-person invariant. A plain unique index would
// also block retries of failed attempts, so the uniqueness is scoped to rows
// with payment_status = 'success'. Both PostgreSQL and SQLite support the
// WHERE clause on CREATE UNIQUE INDEX.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Competition{},
		&domain.Registration{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_success_email ON registrations (email) WHERE payment_status = 'success'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_success_mobile ON registrations (mobile) WHERE payment_status = 'success'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_success_aadhaar ON registrations (aadhaar_number) WHERE payment_status = 'success'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
