package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Ionic/audacious/internal/formatter"
	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/repositories"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/Ionic/audacious/internal/tasks"
	"github.com/urfave/cli/v3"
)

func toListingEntries(entries []plugin.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[i] = models.Entry{
			URI:      e.URI,
			Title:    e.Tuple.Title,
			Artist:   e.Tuple.Artist,
			Album:    e.Tuple.Album,
			LengthMS: e.Tuple.LengthMS,
		}
	}
	return out
}

// PlaylistShow loads a playlist through the provider chain and prints its entries.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: uri argument required", shared.ErrMissingArgument)
	}

	c := r.buildCore()
	defer c.registry.CleanupAll()

	title, entries, err := c.coordinator.Load(uri)
	if err != nil {
		return err
	}
	if title == "" {
		title = filepath.Base(uri)
	}

	listing := &formatter.Listing{
		Title:   title,
		URI:     uri,
		Entries: toListingEntries(entries),
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteListing(listing, cmd.String("format"), path)
		if err != nil {
			return err
		}
		r.writePlain("✓ Listing written to %s\n", written)
		return nil
	}

	rendered, err := formatter.Render(listing, cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePlain("%s", rendered)
}

// printConvertProgress drains a progress channel to plain output.
func (r *Runner) printConvertProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.LoadSource, tasks.LoadDest:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.WriteDest:
			r.writePlain("📝 %s\n", update.Message)
		case tasks.StoreLibrary:
			r.writePlain("💾 %s\n", update.Message)
		case tasks.ConvertPlaylist:
			r.writePlain("   %s\n", update.Message)
		}
	}
}

// PlaylistConvert converts one playlist, optionally recording it in the library.
func (r *Runner) PlaylistConvert(ctx context.Context, cmd *cli.Command) error {
	srcURI := cmd.String("source")
	dstURI := cmd.String("dest")

	c := r.buildCore()
	defer c.registry.CleanupAll()

	var library tasks.Library
	if cmd.Bool("store") {
		db, err := r.openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()
		library = repositories.NewPlaylistRepository(db)
	}

	engine := tasks.NewConvertEngine(c.coordinator, library)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.printConvertProgress(progressCh)

	result, err := engine.Convert(ctx, progressCh, srcURI, dstURI)
	close(progressCh)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Converted %q (%d entries)", result.Title, len(result.Entries))
	r.writePlain("  %s → %s\n", result.SourceURI, result.DestURI)
	if result.LibraryID != "" {
		r.writePlain("  Library record: %s\n", result.LibraryID)
	}
	return nil
}

// PlaylistBulkConvert converts multiple playlists through the worker pool.
func (r *Runner) PlaylistBulkConvert(ctx context.Context, cmd *cli.Command) error {
	uris := cmd.StringArgs("uris")
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one playlist uri required", shared.ErrMissingArgument)
	}

	c := r.buildCore()
	defer c.registry.CleanupAll()

	engine := tasks.NewConvertEngine(c.coordinator, nil)

	opts := tasks.BulkConvertOpts{
		TargetExt:  cmd.String("ext"),
		OutputDir:  cmd.String("out"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(cmd.Int("rate")),
	}

	progressCh := make(chan tasks.ProgressUpdate, 100)
	go r.printConvertProgress(progressCh)

	start := time.Now()
	result, err := engine.BulkConvert(ctx, progressCh, uris, opts)
	close(progressCh)
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Bulk Conversion Complete")
	r.writePlain("Converted: %d/%d playlists in %v\n", result.Successful, result.TotalPlaylists, time.Since(start).Round(time.Millisecond))
	r.writePlain("Output directory: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed playlists:\n")
		for _, pr := range result.Results {
			if pr.ErrorText != "" {
				r.writePlain("  ✗ %s: %s\n", pr.SourceURI, pr.ErrorText)
			}
		}
	}
	return nil
}

// PlaylistDiff compares the entry listings of two playlists.
func (r *Runner) PlaylistDiff(ctx context.Context, cmd *cli.Command) error {
	c := r.buildCore()
	defer c.registry.CleanupAll()

	engine := tasks.NewConvertEngine(c.coordinator, nil)

	result, err := engine.Diff(ctx, nil, cmd.String("source"), cmd.String("dest"))
	if err != nil {
		return err
	}

	r.writePlainHeader("Playlist Comparison")
	r.writePlain("Source: %s\n", result.SourceTitle)
	r.writePlain("Destination: %s\n", result.DestTitle)
	r.writePlain("Matched: %d entries\n", result.MatchedCount)

	if len(result.MissingInDest) > 0 {
		r.writePlainln("Missing in destination (%d):", len(result.MissingInDest))
		for _, e := range result.MissingInDest {
			r.writePlain("  - %s\n", e.URI)
		}
	}
	if len(result.ExtraInDest) > 0 {
		r.writePlainln("Extra in destination (%d):", len(result.ExtraInDest))
		for _, e := range result.ExtraInDest {
			r.writePlain("  + %s\n", e.URI)
		}
	}
	return nil
}

// storedPlaylistInfo is the serializable view of a library playlist.
type storedPlaylistInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	EntryCount int       `json:"entry_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PlaylistList prints playlists recorded in the library.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewPlaylistRepository(db)
	playlists, err := repo.List(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		infos := make([]storedPlaylistInfo, len(playlists))
		for i, pl := range playlists {
			infos[i] = storedPlaylistInfo{
				ID:         pl.ID(),
				Name:       pl.Name(),
				URI:        pl.URI(),
				EntryCount: pl.EntryCount(),
				UpdatedAt:  pl.UpdatedAt(),
			}
		}
		return r.writeJSON(infos, true)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists in the library. Use 'playlist convert --store' to add one.\n")
		return nil
	}

	r.writePlainHeader("Library Playlists")
	for _, pl := range playlists {
		r.writePlain("%-24s %4d entries  %s\n", pl.Name(), pl.EntryCount(), pl.URI())
	}
	return nil
}
