package task

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rnwolfe/rack/internal/store"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStorePutGetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	s := NewStore(db.Conn())
	ctx := context.Background()

	created := time.Date(2025, 3, 14, 9, 30, 15, 123456789, time.UTC)
	started := created.Add(time.Hour)
	in := ratedTask(4, 3, 2, 1, 0, 2, 60, ConfidenceMedium)
	in.ID = NewID()
	in.Status = StatusToday
	in.ScheduledFor = "2025-03-14"
	in.DueDate = "2025-03-20"
	in.IsTop3, in.Top3Order, in.Top3Date, in.Top3Locked = true, 2, "2025-03-14", true
	in.Recurrence, in.RecurrenceDay = RecurrenceWeekly, IntPtr(3)
	in.Tag = "Learning"
	in.CreatedAt, in.UpdatedAt, in.StartedAt = created, created, &started

	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Description != in.Description || got.Status != in.Status || *got.Impact != 4 || *got.TimeCriticality != 2 ||
		*got.Estimate != 60 || got.Confidence != ConfidenceMedium || got.Actual != nil ||
		got.ScheduledFor != in.ScheduledFor || got.DueDate != in.DueDate ||
		!got.IsTop3 || got.Top3Order != 2 || got.Top3Date != in.Top3Date || !got.Top3Locked ||
		got.Recurrence != RecurrenceWeekly || *got.RecurrenceDay != 3 || got.Tag != "Learning" || got.ParentID != "" {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, in)
	}
	if !got.CreatedAt.Equal(created) || got.StartedAt == nil || !got.StartedAt.Equal(started) || got.CompletedAt != nil {
		t.Errorf("timestamps: %v %v %v", got.CreatedAt, got.StartedAt, got.CompletedAt)
	}
}

func TestStoreNotFound(t *testing.T) {
	db := setupTestDB(t)
	s := NewStore(db.Conn())
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: err = %v, want ErrNotFound", err)
	}
}

func TestStoreAllCacheInvalidatedOnWrite(t *testing.T) {
	db := setupTestDB(t)
	s := NewStore(db.Conn())
	ctx := context.Background()

	if all, err := s.All(ctx); err != nil || len(all) != 0 {
		t.Fatalf("All on empty store = %v, %v", all, err)
	}

	a := Task{ID: "a", Description: "a", Status: StatusInbox, CreatedAt: time.Now()}
	if err := s.Put(ctx, a); err != nil {
		t.Fatal(err)
	}
	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("All after put = %d tasks", len(all))
	}

	// Mutating the returned slice must not leak into the cache.
	all[0].Description = "changed"
	again, _ := s.All(ctx)
	if again[0].Description != "a" {
		t.Error("All returned the cached slice itself")
	}

	// Writes that bypass the store are invisible until Invalidate.
	if _, err := db.Conn().Exec(`DELETE FROM tasks`); err != nil {
		t.Fatal(err)
	}
	if cached, _ := s.All(ctx); len(cached) != 1 {
		t.Fatal("expected the cached snapshot")
	}
	s.Invalidate()
	if fresh, _ := s.All(ctx); len(fresh) != 0 {
		t.Errorf("after Invalidate = %d tasks", len(fresh))
	}
}

func TestStoreByTag(t *testing.T) {
	db := setupTestDB(t)
	s := NewStore(db.Conn())
	ctx := context.Background()

	for _, tk := range []Task{
		{ID: "1", Description: "w", Status: StatusInbox, Tag: "Work"},
		{ID: "2", Description: "o", Status: StatusInbox},
		{ID: "3", Description: "h", Status: StatusInbox, Tag: "Home"},
	} {
		if err := s.Put(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}
	work, _ := s.ByTag(ctx, "Work")
	other, _ := s.ByTag(ctx, DefaultTag)
	if len(work) != 1 || work[0].ID != "1" {
		t.Errorf("ByTag(Work) = %v", work)
	}
	if len(other) != 1 || other[0].ID != "2" {
		t.Errorf("untagged tasks should count as %s: %v", DefaultTag, other)
	}
}

func TestStoreReplaceAllTx(t *testing.T) {
	db := setupTestDB(t)
	s := NewStore(db.Conn())
	ctx := context.Background()

	_ = s.Put(ctx, Task{ID: "old", Description: "old", Status: StatusInbox})
	_, _ = s.All(ctx)

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.ReplaceAllTx(ctx, tx, []Task{
			{ID: "n1", Description: "n1", Status: StatusNext},
			{ID: "n2", Description: "n2", Status: StatusSomeday},
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	all, _ := s.All(ctx)
	if len(all) != 2 {
		t.Fatalf("All after replace = %d", len(all))
	}
	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Error("old task survived replace")
	}
}

func TestCalibrationStore(t *testing.T) {
	db := setupTestDB(t)
	s := NewCalibrationStore(db.Conn())
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Add(ctx, CalibrationEntry{Tag: "Work", Estimate: 30, Actual: 30 + i, CompletedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Add(ctx, CalibrationEntry{Tag: "Home", Estimate: 15, Actual: 20, CompletedAt: base})

	recent, err := s.Recent(ctx, "Work", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 || recent[0].Actual != 34 || recent[2].Actual != 32 {
		t.Errorf("Recent = %+v", recent)
	}
	if recent[0].ID == "" {
		t.Error("Add should assign an id")
	}

	all, _ := s.All(ctx)
	if len(all) != 6 || all[0].CompletedAt.After(all[len(all)-1].CompletedAt) {
		t.Errorf("All = %+v", all)
	}
}
