package repository_test

import (
	"database/sql"
	"testing"

	"github.com/artur/tubegrab/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}

	// Every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	dbWrapper := &database.DB{DB: db}
	if err := dbWrapper.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}
