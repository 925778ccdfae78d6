package storage_test

import (
	"path/filepath"
	"testing"

	"expensetracker/internal/storage"
	"expensetracker/internal/storage/storagetest"
)

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "expenses.db"))
		if err != nil {
			t.Fatalf("new repository: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestSQLiteRepositoryReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Second open runs migrations again and must be a no-op.
	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	repo.Close()
}
