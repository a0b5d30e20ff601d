package main

import (
	"context"
	"time"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/repositories"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/urfave/cli/v3"
)

// recordPlay stores one finished decode session in the history table.
func (r *Runner) recordPlay(uri, title, provider string, durationMS int, startedAt time.Time) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	record := models.NewPlayRecord(0, uri, title, provider, durationMS)
	record.SetStartedAt(startedAt)

	repo := repositories.NewHistoryRepository(db)
	return repo.Create(record)
}

// playRecordInfo is the serializable view of a history record.
type playRecordInfo struct {
	URI        string    `json:"uri"`
	Title      string    `json:"title"`
	Provider   string    `json:"provider"`
	DurationMS int       `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// HistoryRecent prints the most recent plays, newest first.
func (r *Runner) HistoryRecent(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewHistoryRepository(db)
	records, err := repo.Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		infos := make([]playRecordInfo, len(records))
		for i, rec := range records {
			infos[i] = playRecordInfo{
				URI:        rec.URI(),
				Title:      rec.Title(),
				Provider:   rec.Provider(),
				DurationMS: rec.DurationMS(),
				StartedAt:  rec.StartedAt(),
			}
		}
		return r.writeJSON(infos, true)
	}

	if len(records) == 0 {
		r.writePlain("No plays recorded yet.\n")
		return nil
	}

	r.writePlainHeader("Recent Plays")
	for _, rec := range records {
		r.writePlain("%s  %-32s %8s  (%s)\n",
			rec.StartedAt().Format("2006-01-02 15:04"),
			rec.Title(),
			shared.FormatDuration(rec.DurationMS()),
			rec.Provider(),
		)
	}
	return nil
}
