package history

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenAt(filepath.Join(t.TempDir(), "test_journal.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOpenAt(t *testing.T) {
	store := setupTestStore(t)

	if store == nil {
		t.Fatal("OpenAt() returned nil")
	}
}

func TestRecord(t *testing.T) {
	store := setupTestStore(t)

	entry := NewEntry(OpInstall)
	entry.Installed = []string{"vim 9.1", "git 2.46"}
	entry.MarkSuccess()

	err := store.Record(entry)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestRecordSameTimestamp(t *testing.T) {
	store := setupTestStore(t)

	// Entries recorded in the same instant must not overwrite each other.
	now := time.Now()
	for _, name := range []string{"vim 9.1", "git 2.46", "nano 8.0"} {
		entry := NewEntry(OpInstall)
		entry.Timestamp = now
		entry.Installed = []string{name}
		entry.MarkSuccess()
		if err := store.Record(entry); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	count, _ := store.Count()
	if count != 3 {
		t.Fatalf("expected 3 entries, got %d", count)
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if entries[0].Installed[0] != "nano 8.0" {
		t.Errorf("newest entry = %v, want the last recorded one", entries[0].Installed)
	}
}

func TestList(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 5; i++ {
		entry := NewEntry(OpInstall)
		entry.Installed = []string{"pkg" + string(rune('a'+i)) + " 1.0"}
		entry.MarkSuccess()
		store.Record(entry)
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(entries))
	}

	limitedEntries, err := store.List(3)
	if err != nil {
		t.Fatalf("List(3) error: %v", err)
	}
	if len(limitedEntries) != 3 {
		t.Errorf("expected 3 entries with limit, got %d", len(limitedEntries))
	}

	// Newest first, by insertion order.
	if len(entries) >= 2 {
		if entries[0].Installed[0] != "pkge 1.0" || entries[4].Installed[0] != "pkga 1.0" {
			t.Errorf("List() order = %v ... %v, want newest first", entries[0].Installed, entries[4].Installed)
		}
	}
}

func TestCount(t *testing.T) {
	store := setupTestStore(t)

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0 for empty store, got %d", count)
	}

	for i := 0; i < 3; i++ {
		store.Record(NewEntry(OpInstall))
	}

	count, err = store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestClear(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 3; i++ {
		store.Record(NewEntry(OpInstall))
	}

	err := store.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0 after Clear(), got %d", count)
	}
}

func TestPrune(t *testing.T) {
	store := setupTestStore(t)

	oldEntry := &Entry{
		ID:        "old-entry",
		Timestamp: time.Now().Add(-48 * time.Hour),
		Operation: OpInstall,
		Installed: []string{"old-pkg 1.0"},
		Success:   true,
	}
	store.Record(oldEntry)

	newEntry := NewEntry(OpInstall)
	store.Record(newEntry)

	deleted, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	if deleted != 1 {
		t.Errorf("expected 1 deleted entry, got %d", deleted)
	}

	count, _ := store.Count()
	if count != 1 {
		t.Errorf("expected 1 entry after prune, got %d", count)
	}
}

func TestClose(t *testing.T) {
	store := setupTestStore(t)

	err := store.Close()
	if err != nil {
		t.Errorf("Close() error: %v", err)
	}

	// Close again should not error
	_ = store.Close()
}
