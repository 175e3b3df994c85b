package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Asgar77/goodminds-app/internal/config"
	logging "github.com/Asgar77/goodminds-app/internal/logging"
	"github.com/Asgar77/goodminds-app/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database and runs migrations.
func Open(log *zap.Logger, dbConf config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(dbConf)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.", zap.String("driver", dbConf.Driver))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully.")
	return db, nil
}

func dialectorFor(dbConf config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbConf.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)
		return postgres.Open(dsn), nil
	case "sqlite":
		if dir := filepath.Dir(dbConf.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("could not create database directory: %w", err)
			}
		}
		return sqlite.Open(dbConf.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConf.Driver)
	}
}

// Migrate creates the users and documents tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Document{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
