package tasks

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/shared"
)

// PlaylistIO is the slice of the playlist coordinator the engine needs.
// Satisfied by playlistio.Coordinator.
type PlaylistIO interface {
	IsPlaylist(uri string) bool
	Load(uri string) (string, []plugin.Entry, error)
	Save(uri, title string, entries []plugin.Entry) error
}

// Library records converted playlists. Satisfied by
// repositories.PlaylistRepository; nil disables recording.
type Library interface {
	Create(playlist *models.StoredPlaylist) error
	ReplaceEntries(playlistID string, entries []models.Entry) error
}

// ConvertResult contains all data from a single conversion.
type ConvertResult struct {
	Title     string         // Playlist title carried over
	Entries   []models.Entry // The converted listing
	SourceURI string         // Where the playlist was read from
	DestURI   string         // Where it was written
	LibraryID string         // Library record ID, empty when recording is off
}

// ComparisonResult contains entry comparison details between two playlists.
type ComparisonResult struct {
	SourceTitle   string         // Source playlist title
	DestTitle     string         // Destination playlist title
	MatchedCount  int            // Entries found in both
	MissingInDest []models.Entry // Entries in source but not in dest
	ExtraInDest   []models.Entry // Entries in dest but not in source
}

// ConvertEngine orchestrates playlist conversions through the provider core.
type ConvertEngine struct {
	io      PlaylistIO
	library Library
}

// NewConvertEngine creates a ConvertEngine. library may be nil.
func NewConvertEngine(io PlaylistIO, library Library) *ConvertEngine {
	return &ConvertEngine{io: io, library: library}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ConvertEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Convert loads the playlist at srcURI and saves it to dstURI, letting the
// destination extension pick the output format. The library record, when
// enabled, reflects the converted listing.
func (e *ConvertEngine) Convert(ctx context.Context, progress chan<- ProgressUpdate, srcURI, dstURI string) (*ConvertResult, error) {
	if e.io == nil {
		return nil, fmt.Errorf("%w: playlist coordinator not initialized", shared.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, loadSourceUpdate(1, 1, srcURI))

	title, entries, err := e.io.Load(srcURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", srcURI, err)
	}
	if title == "" {
		title = titleFromURI(srcURI)
	}

	e.sendProgress(progress, loadedPlaylistUpdate(1, 1, title, len(entries)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, writeDestUpdate(1, 1, dstURI))
	if err := e.io.Save(dstURI, title, entries); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", dstURI, err)
	}

	result := &ConvertResult{
		Title:     title,
		Entries:   toModelEntries(entries),
		SourceURI: srcURI,
		DestURI:   dstURI,
	}

	if e.library != nil {
		e.sendProgress(progress, storeLibraryUpdate(1, 1, title))
		stored := models.NewStoredPlaylist(0, title, dstURI, len(entries))
		if err := e.library.Create(stored); err != nil {
			return result, fmt.Errorf("converted but failed to record in library: %w", err)
		}
		if err := e.library.ReplaceEntries(stored.ID(), result.Entries); err != nil {
			return result, fmt.Errorf("converted but failed to record entries: %w", err)
		}
		result.LibraryID = stored.ID()
	}

	return result, nil
}

// Diff compares two playlists and identifies differences. Entries match on
// URI; metadata differences do not count as missing.
func (e *ConvertEngine) Diff(ctx context.Context, progress chan<- ProgressUpdate, srcURI, dstURI string) (*ComparisonResult, error) {
	if e.io == nil {
		return nil, fmt.Errorf("%w: playlist coordinator not initialized", shared.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, loadSourceUpdate(1, 2, srcURI))
	srcTitle, srcEntries, err := e.io.Load(srcURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load source playlist: %w", err)
	}

	e.sendProgress(progress, loadDestUpdate(2, 2, dstURI))
	dstTitle, dstEntries, err := e.io.Load(dstURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination playlist: %w", err)
	}

	e.sendProgress(progress, compareUpdate(1, 1))

	result := &ComparisonResult{
		SourceTitle: srcTitle,
		DestTitle:   dstTitle,
	}

	dstSet := make(map[string]struct{}, len(dstEntries))
	for _, entry := range dstEntries {
		dstSet[entry.URI] = struct{}{}
	}
	for _, entry := range srcEntries {
		if _, found := dstSet[entry.URI]; found {
			result.MatchedCount++
		} else {
			result.MissingInDest = append(result.MissingInDest, toModelEntry(entry))
		}
	}

	srcSet := make(map[string]struct{}, len(srcEntries))
	for _, entry := range srcEntries {
		srcSet[entry.URI] = struct{}{}
	}
	for _, entry := range dstEntries {
		if _, found := srcSet[entry.URI]; !found {
			result.ExtraInDest = append(result.ExtraInDest, toModelEntry(entry))
		}
	}

	return result, nil
}

// titleFromURI derives a display title from the playlist filename.
func titleFromURI(uri string) string {
	base := path.Base(uri)
	return strings.TrimSuffix(base, path.Ext(base))
}

func toModelEntry(entry plugin.Entry) models.Entry {
	return models.Entry{
		URI:      entry.URI,
		Title:    entry.Tuple.Title,
		Artist:   entry.Tuple.Artist,
		Album:    entry.Tuple.Album,
		LengthMS: entry.Tuple.LengthMS,
	}
}

func toModelEntries(entries []plugin.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, entry := range entries {
		out[i] = toModelEntry(entry)
	}
	return out
}
