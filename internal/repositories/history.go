package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
)

// HistoryRepository implements models.Repository[*models.PlayRecord] for the
// playback session log. History is append-mostly; records are deleted hard,
// not soft.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new play record into the database with generated ID and sequence
func (r *HistoryRepository) Create(record *models.PlayRecord) error {
	sequence, err := NextSequence(r.db, "history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	record.SetSequence(sequence)

	id := shared.GenerateID()
	record.SetID(id)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO history (id, sequence, uri, title, provider, duration_ms, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		record.URI(),
		record.Title(),
		record.Provider(),
		record.DurationMS(),
		record.StartedAt(),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play record: %w", err)
	}

	return nil
}

// Get retrieves a play record by ID
func (r *HistoryRepository) Get(id string) (*models.PlayRecord, error) {
	query := `
		SELECT id, sequence, uri, title, provider, duration_ms, started_at, updated_at
		FROM history
		WHERE id = ?
	`

	record, err := scanRecord(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("play record not found: %s", id)
	}
	return record, err
}

// Update modifies an existing play record, typically to set the final
// session duration once playback ends.
func (r *HistoryRepository) Update(record *models.PlayRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE history
		SET title = ?, duration_ms = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, record.Title(), record.DurationMS(), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update play record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("play record not found: %s", record.ID())
	}

	return nil
}

// Delete removes a play record by ID
func (r *HistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete play record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("play record not found: %s", id)
	}

	return nil
}

// List retrieves all play records matching the given criteria
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.PlayRecord, error) {
	query := `
		SELECT id, sequence, uri, title, provider, duration_ms, started_at, updated_at
		FROM history
		WHERE 1 = 1
	`

	args := []any{}

	if uri, ok := criteria["uri"].(string); ok && uri != "" {
		query += " AND uri = ?"
		args = append(args, uri)
	}

	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		query += " AND provider = ?"
		args = append(args, provider)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Recent retrieves the most recent play records, newest first.
func (r *HistoryRepository) Recent(limit int) ([]*models.PlayRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, uri, title, provider, duration_ms, started_at, updated_at
		FROM history
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func scanRecord(scan func(...any) error) (*models.PlayRecord, error) {
	var (
		id         string
		sequence   int
		uri        string
		title      string
		provider   string
		durationMS int
		startedAt  time.Time
		updatedAt  time.Time
	)

	err := scan(&id, &sequence, &uri, &title, &provider, &durationMS, &startedAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play record: %w", err)
	}

	record := models.NewPlayRecord(sequence, uri, title, provider, durationMS)
	record.SetID(id)
	record.SetStartedAt(startedAt)
	record.SetUpdatedAt(updatedAt)

	return record, nil
}
