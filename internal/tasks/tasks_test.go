package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/plugin"
)

// fakeIO is an in-memory PlaylistIO backed by a URI-keyed map.
type fakeIO struct {
	mu        sync.Mutex
	playlists map[string]fakePlaylist
	loadErr   map[string]error
	saveErr   error
	saved     []string
}

type fakePlaylist struct {
	title   string
	entries []plugin.Entry
}

func newFakeIO() *fakeIO {
	return &fakeIO{
		playlists: make(map[string]fakePlaylist),
		loadErr:   make(map[string]error),
	}
}

func (f *fakeIO) IsPlaylist(uri string) bool { return true }

func (f *fakeIO) Load(uri string) (string, []plugin.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadErr[uri]; err != nil {
		return "", nil, err
	}
	pl, ok := f.playlists[uri]
	if !ok {
		return "", nil, fmt.Errorf("no playlist at %s", uri)
	}
	return pl.title, pl.entries, nil
}

func (f *fakeIO) Save(uri, title string, entries []plugin.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.playlists[uri] = fakePlaylist{title: title, entries: entries}
	f.saved = append(f.saved, uri)
	return nil
}

// fakeLibrary records Create and ReplaceEntries calls.
type fakeLibrary struct {
	mu      sync.Mutex
	created []*models.StoredPlaylist
	entries map[string][]models.Entry
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{entries: make(map[string][]models.Entry)}
}

func (l *fakeLibrary) Create(playlist *models.StoredPlaylist) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	playlist.SetID(fmt.Sprintf("lib-%d", len(l.created)+1))
	l.created = append(l.created, playlist)
	return nil
}

func (l *fakeLibrary) ReplaceEntries(playlistID string, entries []models.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[playlistID] = entries
	return nil
}

func entriesFixture() []plugin.Entry {
	return []plugin.Entry{
		{URI: "file:///music/one.wav", Tuple: plugin.Tuple{Title: "One", Artist: "Alpha", LengthMS: 1000}},
		{URI: "file:///music/two.wav", Tuple: plugin.Tuple{Title: "Two", Artist: "Beta", LengthMS: 2000}},
	}
}

func TestConvert(t *testing.T) {
	t.Run("CopiesEntriesAndTitle", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///src.pls"] = fakePlaylist{title: "Mix", entries: entriesFixture()}

		engine := NewConvertEngine(io, nil)
		result, err := engine.Convert(context.Background(), nil, "file:///src.pls", "file:///dst.m3u")
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}

		if result.Title != "Mix" {
			t.Errorf("title = %s, want Mix", result.Title)
		}
		if len(result.Entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(result.Entries))
		}
		saved, ok := io.playlists["file:///dst.m3u"]
		if !ok {
			t.Fatal("destination playlist not saved")
		}
		if saved.title != "Mix" || len(saved.entries) != 2 {
			t.Errorf("saved playlist mismatch: %+v", saved)
		}
	})

	t.Run("TitleFallsBackToFilename", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///music/morning.pls"] = fakePlaylist{entries: entriesFixture()}

		engine := NewConvertEngine(io, nil)
		result, err := engine.Convert(context.Background(), nil, "file:///music/morning.pls", "file:///dst.m3u")
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if result.Title != "morning" {
			t.Errorf("title = %s, want morning", result.Title)
		}
	})

	t.Run("RecordsInLibrary", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///src.pls"] = fakePlaylist{title: "Mix", entries: entriesFixture()}
		lib := newFakeLibrary()

		engine := NewConvertEngine(io, lib)
		result, err := engine.Convert(context.Background(), nil, "file:///src.pls", "file:///dst.m3u")
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if result.LibraryID == "" {
			t.Fatal("library ID not set")
		}
		if len(lib.created) != 1 {
			t.Fatalf("expected 1 library record, got %d", len(lib.created))
		}
		if lib.created[0].URI() != "file:///dst.m3u" {
			t.Errorf("library record URI = %s", lib.created[0].URI())
		}
		if len(lib.entries[result.LibraryID]) != 2 {
			t.Errorf("library entries = %d, want 2", len(lib.entries[result.LibraryID]))
		}
	})

	t.Run("LoadFailure", func(t *testing.T) {
		io := newFakeIO()
		io.loadErr["file:///src.pls"] = errors.New("corrupt")

		engine := NewConvertEngine(io, nil)
		if _, err := engine.Convert(context.Background(), nil, "file:///src.pls", "file:///dst.m3u"); err == nil {
			t.Error("expected load error")
		}
	})

	t.Run("SaveFailure", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///src.pls"] = fakePlaylist{title: "Mix", entries: entriesFixture()}
		io.saveErr = errors.New("disk full")

		engine := NewConvertEngine(io, nil)
		if _, err := engine.Convert(context.Background(), nil, "file:///src.pls", "file:///dst.m3u"); err == nil {
			t.Error("expected save error")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///src.pls"] = fakePlaylist{title: "Mix", entries: entriesFixture()}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewConvertEngine(io, nil)
		if _, err := engine.Convert(ctx, nil, "file:///src.pls", "file:///dst.m3u"); err == nil {
			t.Error("expected context error")
		}
	})

	t.Run("EmitsProgress", func(t *testing.T) {
		io := newFakeIO()
		io.playlists["file:///src.pls"] = fakePlaylist{title: "Mix", entries: entriesFixture()}

		progress := make(chan ProgressUpdate, 16)
		engine := NewConvertEngine(io, nil)
		if _, err := engine.Convert(context.Background(), progress, "file:///src.pls", "file:///dst.m3u"); err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
		}
		if !phases[LoadSource] || !phases[WriteDest] {
			t.Errorf("missing expected phases: %v", phases)
		}
	})
}

func TestDiff(t *testing.T) {
	io := newFakeIO()
	io.playlists["file:///a.m3u"] = fakePlaylist{title: "A", entries: []plugin.Entry{
		{URI: "file:///one.wav"},
		{URI: "file:///two.wav"},
		{URI: "file:///three.wav"},
	}}
	io.playlists["file:///b.m3u"] = fakePlaylist{title: "B", entries: []plugin.Entry{
		{URI: "file:///two.wav"},
		{URI: "file:///four.wav"},
	}}

	engine := NewConvertEngine(io, nil)
	result, err := engine.Diff(context.Background(), nil, "file:///a.m3u", "file:///b.m3u")
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}

	if result.MatchedCount != 1 {
		t.Errorf("matched = %d, want 1", result.MatchedCount)
	}
	if len(result.MissingInDest) != 2 {
		t.Errorf("missing = %d, want 2", len(result.MissingInDest))
	}
	if len(result.ExtraInDest) != 1 || result.ExtraInDest[0].URI != "file:///four.wav" {
		t.Errorf("extra = %+v", result.ExtraInDest)
	}
}

func TestBulkConvert(t *testing.T) {
	io := newFakeIO()
	io.playlists["file:///a.pls"] = fakePlaylist{title: "A", entries: entriesFixture()}
	io.playlists["file:///b.pls"] = fakePlaylist{title: "B", entries: entriesFixture()}
	io.loadErr["file:///bad.pls"] = errors.New("corrupt")

	engine := NewConvertEngine(io, nil)
	opts := BulkConvertOpts{
		TargetExt: "m3u",
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	}

	progress := make(chan ProgressUpdate, 64)
	result, err := engine.BulkConvert(context.Background(), progress, []string{"file:///a.pls", "file:///b.pls", "file:///bad.pls"}, opts)
	if err != nil {
		t.Fatalf("BulkConvert() error: %v", err)
	}

	if result.TotalPlaylists != 3 {
		t.Errorf("total = %d, want 3", result.TotalPlaylists)
	}
	if result.Successful != 2 {
		t.Errorf("successful = %d, want 2", result.Successful)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.ManifestPath == "" {
		t.Error("manifest path not set")
	}
	if len(result.Results) != 3 {
		t.Errorf("results = %d, want 3", len(result.Results))
	}
}
