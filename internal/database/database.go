// Package database opens the application's SQLite store and hosts the
// per-aggregate repositories in its subpackages.
package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// migratedEntities is every table the schema migration manages, in
// dependency order.
var migratedEntities = []any{
	&entities.User{},
	&entities.Book{},
	&entities.Loan{},
	&entities.Reservation{},
	&entities.Fine{},
	&entities.Announcement{},
	&entities.Setting{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if absent) the SQLite file at dbPath and runs
// the schema migration. The busy timeout keeps concurrent writers from
// failing immediately with SQLITE_BUSY.
func NewDatabase(dbPath string) (*Database, error) {
	dsn := dbPath + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(migratedEntities...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)
	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
