package models

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for table := range tableModels {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestColumnMismatchReport(t *testing.T) {
	db := openTestDB(t)

	report, err := ColumnMismatchReport(db)
	if err != nil {
		t.Fatalf("ColumnMismatchReport before migrate: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("expected missing tables to be skipped, got %v", report)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.Exec("ALTER TABLE posts ADD COLUMN legacy_views integer").Error; err != nil {
		t.Fatalf("add column: %v", err)
	}

	report, err = ColumnMismatchReport(db)
	if err != nil {
		t.Fatalf("ColumnMismatchReport: %v", err)
	}

	if got := report["posts"]; len(got) != 1 || got[0] != "legacy_views" {
		t.Errorf("posts mismatches = %v, want [legacy_views]", got)
	}
	if got := report["tags"]; len(got) != 0 {
		t.Errorf("tags mismatches = %v, want none", got)
	}
	if got := report["post_tags"]; len(got) != 0 {
		t.Errorf("post_tags mismatches = %v, want none", got)
	}

	if err := LogColumnMismatchReport(db); err != nil {
		t.Errorf("LogColumnMismatchReport: %v", err)
	}
}
