package repositories

import (
	"database/sql"
	"testing"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewStoredPlaylist(0, "Morning Mix", "file:///music/morning.m3u", 3)

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if playlist.ID() == "" {
			t.Error("playlist ID should be set after creation")
		}
		if playlist.Sequence() == 0 {
			t.Error("playlist sequence should be assigned after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewStoredPlaylist(0, "Morning Mix", "file:///music/morning.m3u", 3)
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name() != "Morning Mix" {
			t.Errorf("expected name Morning Mix, got %s", retrieved.Name())
		}
		if retrieved.URI() != "file:///music/morning.m3u" {
			t.Errorf("unexpected URI %s", retrieved.URI())
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if _, err := repo.Get("no-such-id"); err == nil {
			t.Error("expected error for missing playlist")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewStoredPlaylist(0, "Morning Mix", "file:///music/morning.m3u", 3)
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.SetName("Evening Mix")
		playlist.SetEntryCount(5)
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name() != "Evening Mix" {
			t.Errorf("expected updated name, got %s", retrieved.Name())
		}
		if retrieved.EntryCount() != 5 {
			t.Errorf("expected entry count 5, got %d", retrieved.EntryCount())
		}
	})

	t.Run("SoftDelete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewStoredPlaylist(0, "Morning Mix", "file:///music/morning.m3u", 3)
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.Delete(playlist.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if _, err := repo.Get(playlist.ID()); err == nil {
			t.Error("deleted playlist should not be retrievable")
		}
		if err := repo.Delete(playlist.ID()); err == nil {
			t.Error("double delete should fail")
		}
	})

	t.Run("ListOrdersBySequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		names := []string{"first", "second", "third"}
		for _, name := range names {
			p := models.NewStoredPlaylist(0, name, "file:///"+name+".m3u", 0)
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create playlist %s: %v", name, err)
			}
		}

		playlists, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(playlists))
		}
		for i, name := range names {
			if playlists[i].Name() != name {
				t.Errorf("position %d: expected %s, got %s", i, name, playlists[i].Name())
			}
		}
	})

	t.Run("ReplaceAndListEntries", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewStoredPlaylist(0, "Morning Mix", "file:///music/morning.m3u", 0)
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		entries := []models.Entry{
			{URI: "file:///music/one.wav", Title: "One", Artist: "A", LengthMS: 1000},
			{URI: "file:///music/two.wav", Title: "Two", Artist: "B", LengthMS: 2000},
		}
		if err := repo.ReplaceEntries(playlist.ID(), entries); err != nil {
			t.Fatalf("failed to replace entries: %v", err)
		}

		got, err := repo.Entries(playlist.ID())
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].Title != "One" || got[1].Title != "Two" {
			t.Errorf("entries out of order: %+v", got)
		}

		// Replacing again drops the old listing.
		if err := repo.ReplaceEntries(playlist.ID(), entries[:1]); err != nil {
			t.Fatalf("failed to replace entries: %v", err)
		}
		got, err = repo.Entries(playlist.ID())
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 entry after replace, got %d", len(got))
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.EntryCount() != 1 {
			t.Errorf("entry count = %d, want 1", retrieved.EntryCount())
		}
	})
}

func TestHistoryRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := models.NewPlayRecord(0, "file:///music/one.wav", "One", "wav", 1000)

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
		if record.ID() == "" {
			t.Error("record ID should be set after creation")
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if retrieved.URI() != "file:///music/one.wav" {
			t.Errorf("unexpected URI %s", retrieved.URI())
		}
		if retrieved.Provider() != "wav" {
			t.Errorf("unexpected provider %s", retrieved.Provider())
		}
	})

	t.Run("UpdateDuration", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := models.NewPlayRecord(0, "file:///music/one.wav", "One", "wav", 0)
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		record.SetDurationMS(90000)
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if retrieved.DurationMS() != 90000 {
			t.Errorf("duration = %d, want 90000", retrieved.DurationMS())
		}
	})

	t.Run("RecentNewestFirst", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		for _, uri := range []string{"file:///a.wav", "file:///b.wav", "file:///c.wav"} {
			if err := repo.Create(models.NewPlayRecord(0, uri, "", "wav", 0)); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		records, err := repo.Recent(2)
		if err != nil {
			t.Fatalf("failed to list recent: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := models.NewPlayRecord(0, "file:///a.wav", "", "wav", 0)
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete record: %v", err)
		}
		if _, err := repo.Get(record.ID()); err == nil {
			t.Error("deleted record should not be retrievable")
		}
	})

	t.Run("ListFiltersByURI", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		for _, uri := range []string{"file:///a.wav", "file:///a.wav", "file:///b.wav"} {
			if err := repo.Create(models.NewPlayRecord(0, uri, "", "wav", 0)); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		records, err := repo.List(map[string]any{"uri": "file:///a.wav"})
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})
}
