package dbtest

import (
	"fmt"
	"testing"

	"github.com/Asgar77/goodminds-app/internal/database"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated, private in-memory sqlite database for tests.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	// Keep one connection so the shared in-memory database lives until cleanup.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
