package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *UserRepository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return NewUserRepository(db)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	user := &User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("expected assigned ID after create")
	}

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found == nil || found.Name != "Ada" {
		t.Errorf("FindByEmail() = %+v, want Ada", found)
	}

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() miss error = %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &User{Name: "A", Email: "dup@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, &User{Name: "B", Email: "dup@example.com", PasswordHash: "y"}); err == nil {
		t.Error("expected unique index violation for duplicate email")
	}
}

func TestSummaryRepository(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	for _, jobID := range []string{"job-1", "job-2"} {
		err := repo.Save(ctx, &Summary{
			JobID:     jobID,
			SourceURL: "https://youtu.be/x",
			Title:     "Video Summary",
			Body:      "summary for " + jobID,
		})
		if err != nil {
			t.Fatalf("Save(%s) error = %v", jobID, err)
		}
	}

	found, err := repo.FindByJobID(ctx, "job-2")
	if err != nil {
		t.Fatalf("FindByJobID() error = %v", err)
	}
	if found == nil || found.Body != "summary for job-2" {
		t.Errorf("FindByJobID() = %+v", found)
	}

	recent, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("ListRecent() returned %d rows, want 2", len(recent))
	}
}
