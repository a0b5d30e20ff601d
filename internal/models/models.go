// package models defines the data model for the playlist library
package models

import (
	"errors"
	"time"
)

// Model defines the base interface for all persistent models in the library.
// Implementations include StoredPlaylist and PlayRecord.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Entry is one playlist line: a playable URI plus whatever metadata the
// playlist format carried for it.
type Entry struct {
	URI      string
	Title    string
	Artist   string
	Album    string
	LengthMS int
}

// base carries the lifecycle fields shared by all persistent entities.
type base struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func newBase() base {
	now := time.Now()
	return base{createdAt: now, updatedAt: now}
}

func (b *base) ID() string { return b.id }
func (b *base) SetID(id string) { b.id = id }
func (b *base) CreatedAt() time.Time { return b.createdAt }
func (b *base) UpdatedAt() time.Time { return b.updatedAt }
func (b *base) SetUpdatedAt(t time.Time) { b.updatedAt = t }
func (b *base) DeletedAt() *time.Time { return b.deletedAt }
func (b *base) SetDeletedAt(t *time.Time) { b.deletedAt = t }

// StoredPlaylist is a playlist saved to the library: its display name, the
// URI it was loaded from, and how many entries it held when saved.
type StoredPlaylist struct {
	base
	sequence   int
	name       string
	uri        string
	entryCount int
}

// NewStoredPlaylist creates a playlist record. Sequence 0 means not yet
// assigned; the repository assigns one on Create.
func NewStoredPlaylist(sequence int, name, uri string, entryCount int) *StoredPlaylist {
	return &StoredPlaylist{
		base:       newBase(),
		sequence:   sequence,
		name:       name,
		uri:        uri,
		entryCount: entryCount,
	}
}

func (p *StoredPlaylist) Sequence() int { return p.sequence }
func (p *StoredPlaylist) SetSequence(seq int) { p.sequence = seq }
func (p *StoredPlaylist) Name() string { return p.name }
func (p *StoredPlaylist) SetName(name string) { p.name = name }
func (p *StoredPlaylist) URI() string { return p.uri }
func (p *StoredPlaylist) EntryCount() int { return p.entryCount }
func (p *StoredPlaylist) SetEntryCount(n int) { p.entryCount = n }

// Validate checks that required fields are present.
func (p *StoredPlaylist) Validate() error {
	if p.id == "" {
		return errors.New("playlist ID is required")
	}
	if p.name == "" {
		return errors.New("playlist name is required")
	}
	if p.uri == "" {
		return errors.New("playlist URI is required")
	}
	if p.entryCount < 0 {
		return errors.New("entry count cannot be negative")
	}
	return nil
}

// PlayRecord is one playback session in the history log.
type PlayRecord struct {
	base
	sequence   int
	uri        string
	title      string
	provider   string
	durationMS int
	startedAt  time.Time
}

// NewPlayRecord creates a history record for a session that started now.
func NewPlayRecord(sequence int, uri, title, provider string, durationMS int) *PlayRecord {
	return &PlayRecord{
		base:       newBase(),
		sequence:   sequence,
		uri:        uri,
		title:      title,
		provider:   provider,
		durationMS: durationMS,
		startedAt:  time.Now(),
	}
}

func (r *PlayRecord) Sequence() int { return r.sequence }
func (r *PlayRecord) SetSequence(seq int) { r.sequence = seq }
func (r *PlayRecord) URI() string { return r.uri }
func (r *PlayRecord) Title() string { return r.title }
func (r *PlayRecord) Provider() string { return r.provider }
func (r *PlayRecord) DurationMS() int { return r.durationMS }
func (r *PlayRecord) SetDurationMS(ms int) { r.durationMS = ms }
func (r *PlayRecord) StartedAt() time.Time { return r.startedAt }
func (r *PlayRecord) SetStartedAt(t time.Time) { r.startedAt = t }

// Validate checks that required fields are present.
func (r *PlayRecord) Validate() error {
	if r.id == "" {
		return errors.New("record ID is required")
	}
	if r.uri == "" {
		return errors.New("record URI is required")
	}
	if r.durationMS < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}
