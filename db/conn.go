// Package db opens the database connection and keeps the schema migrated
package db

import (
	"fmt"
	"gamine/blog-api/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the configured database (sqlite or postgres) and migrates
// the schema. Unique indexes on users.username and users.email are part
// of the schema, so racing registrations can't both win regardless of
// what the application code checks.
func New() (*gorm.DB, error) {
	dsn := viper.GetString("storage.dsn")

	var dialector gorm.Dialector

	switch viper.GetString("storage.driver") {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	// Raw driver errors are kept as-is so unique violations still name
	// the offending column or index
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Post{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
