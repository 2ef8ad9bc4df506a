package repository_test

import (
	"testing"

	"github.com/artur/tubegrab/internal/database/models"
	"github.com/artur/tubegrab/internal/database/repository"
)

func TestInfoRequestRepository_Record(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewInfoRequestRepository(db)

	entries := []*models.VideoInfoRequest{
		{RequestID: "a", UserIP: "127.0.0.1", VideoURL: "", Status: models.StatusFailed, ErrorMessage: "URL required"},
		{RequestID: "b", UserIP: "127.0.0.1", VideoURL: "https://youtu.be/abc", Status: models.StatusSuccess, UserAgent: "Mozilla/5.0"},
	}
	for _, e := range entries {
		if err := repo.Record(e); err != nil {
			t.Fatalf("Failed to record info request: %v", err)
		}
	}

	recent, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(recent))
	}

	// newest first
	if recent[0].RequestID != "b" || recent[0].Status != models.StatusSuccess || recent[0].ErrorMessage != "" {
		t.Errorf("Unexpected first row: %+v", recent[0])
	}
	if recent[1].ErrorMessage != "URL required" || recent[1].Status != models.StatusFailed {
		t.Errorf("Unexpected second row: %+v", recent[1])
	}
}

func TestInfoRequestRepository_AppendOnly(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewInfoRequestRepository(db)
	repo.Record(&models.VideoInfoRequest{RequestID: "a", UserIP: "127.0.0.1", Status: models.StatusSuccess})

	if _, err := db.Exec(`UPDATE video_info_requests SET error_message = 'x'`); err == nil {
		t.Error("Expected update to be rejected")
	}
	if _, err := db.Exec(`DELETE FROM video_info_requests`); err == nil {
		t.Error("Expected delete to be rejected")
	}
}

func TestInfoRequestRepository_ListRecentLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewInfoRequestRepository(db)
	for i := 0; i < 5; i++ {
		repo.Record(&models.VideoInfoRequest{RequestID: "x", UserIP: "127.0.0.1", Status: models.StatusSuccess})
	}

	recent, err := repo.ListRecent(3)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(recent))
	}
}
