package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.StoredPlaylist]
// for the playlist library.
//
// Handles playlist CRUD with soft delete support plus persistence of each
// playlist's entry listing in the entries table.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.StoredPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	playlist.SetSequence(sequence)

	id := shared.GenerateID()
	playlist.SetID(id)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, name, uri, entry_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		playlist.Name(),
		playlist.URI(),
		playlist.EntryCount(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.StoredPlaylist, error) {
	query := `
		SELECT id, sequence, name, uri, entry_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByURI retrieves the playlist most recently saved from the given URI
func (r *PlaylistRepository) GetByURI(uri string) (*models.StoredPlaylist, error) {
	query := `
		SELECT id, sequence, name, uri, entry_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE uri = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, uri))
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.StoredPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, entry_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		playlist.Name(),
		playlist.EntryCount(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", playlist.ID())
	}

	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.StoredPlaylist, error) {
	query := `
		SELECT id, sequence, name, uri, entry_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	if uri, ok := criteria["uri"].(string); ok && uri != "" {
		query += " AND uri = ?"
		args = append(args, uri)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.StoredPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// ReplaceEntries swaps a playlist's entry listing for the given one, in a
// single transaction. Positions follow slice order.
func (r *PlaylistRepository) ReplaceEntries(playlistID string, entries []models.Entry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	query := `
		INSERT INTO entries (id, playlist_id, position, uri, title, artist, album, length_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, entry := range entries {
		_, err := tx.Exec(query,
			shared.GenerateID(),
			playlistID,
			i,
			entry.URI,
			entry.Title,
			entry.Artist,
			entry.Album,
			entry.LengthMS,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if _, err := tx.Exec("UPDATE playlists SET entry_count = ? WHERE id = ?", len(entries), playlistID); err != nil {
		return fmt.Errorf("failed to update entry count: %w", err)
	}

	return tx.Commit()
}

// Entries retrieves a playlist's entry listing in position order.
func (r *PlaylistRepository) Entries(playlistID string) ([]models.Entry, error) {
	query := `
		SELECT uri, title, artist, album, length_ms
		FROM entries
		WHERE playlist_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.URI, &e.Title, &e.Artist, &e.Album, &e.LengthMS); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// scanOne scans a single row into a [models.StoredPlaylist]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.StoredPlaylist, error) {
	playlist, err := scanPlaylistRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	return playlist, err
}

// scanPlaylist scans a row from [sql.Rows] into a [models.StoredPlaylist]
func scanPlaylist(rows *sql.Rows) (*models.StoredPlaylist, error) {
	return scanPlaylistRow(rows.Scan)
}

func scanPlaylistRow(scan func(...any) error) (*models.StoredPlaylist, error) {
	var (
		id         string
		sequence   int
		name       string
		uri        string
		entryCount int
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := scan(&id, &sequence, &name, &uri, &entryCount, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewStoredPlaylist(sequence, name, uri, entryCount)
	playlist.SetID(id)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
