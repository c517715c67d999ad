package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"mechbook/internal/domain"
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

// Migrate creates or updates all tables. Postgres deployments normally run
// SQL migrations instead; this keeps sqlite dev/test setups working.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Service{},
		&domain.Booking{},
		&domain.StatusHistoryEntry{},
		&domain.AdditionalCharge{},
		&domain.Payment{},
	); err != nil {
		return err
	}

	// One active booking per mechanic per date. The partial index is the
	// arbiter under concurrent writes; the service-level count is only a
	// fast path. Partial indexes work on both postgres and sqlite.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_no_overbooking
		ON bookings (mechanic_id, scheduled_date)
		WHERE status IN ('pending','confirmed','in_progress')`).Error
}
