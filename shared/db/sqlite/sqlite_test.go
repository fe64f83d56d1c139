package sqlite

import (
	"path/filepath"
	"testing"
)

func TestSQLiteDB_ConnectAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	sqliteDB := NewSQLiteDB(&SQLiteConfig{Path: dbPath})

	if err := sqliteDB.Connect(); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	if sqliteDB.DB() == nil {
		t.Error("Expected non-nil *sql.DB after Connect")
	}

	if err := sqliteDB.Close(); err != nil {
		t.Errorf("Failed to close: %v", err)
	}

	if sqliteDB.DB() != nil {
		t.Error("Expected nil *sql.DB after Close")
	}
}

func TestSQLiteDB_DoubleConnectFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	sqliteDB := NewSQLiteDB(&SQLiteConfig{Path: dbPath})

	if err := sqliteDB.Connect(); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer sqliteDB.Close()

	if err := sqliteDB.Connect(); err == nil {
		t.Error("Expected error on second Connect, got nil")
	}
}

func TestSQLiteDB_MigrationsCreateImagesTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	sqliteDB := NewSQLiteDB(&SQLiteConfig{Path: dbPath})

	if err := sqliteDB.Connect(); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer sqliteDB.Close()

	var name string
	err := sqliteDB.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='images'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("Expected images table to exist: %v", err)
	}
}

func TestSQLiteDB_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Connect twice against the same file; the second run must be a no-op
	for i := 0; i < 2; i++ {
		sqliteDB := NewSQLiteDB(&SQLiteConfig{Path: dbPath})
		if err := sqliteDB.Connect(); err != nil {
			t.Fatalf("Connect #%d failed: %v", i+1, err)
		}

		var version int
		err := sqliteDB.DB().QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
		if err != nil {
			t.Fatalf("Failed to read schema version: %v", err)
		}
		if version != len(migrations) {
			t.Errorf("Schema version = %d, want %d", version, len(migrations))
		}

		sqliteDB.Close()
	}
}
