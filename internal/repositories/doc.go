// Package repositories implements SQLite persistence for the playlist
// library.
//
// Each repository handles CRUD operations with atomic sequence generation
// for human-readable ordering. Playlists support soft deletes via deleted_at
// timestamps and deleted records are excluded from queries by default.
//
// Key Implementations:
//   - [PlaylistRepository] : Saved playlists with their full entry listings
//   - [HistoryRepository] : Playback session log with recency queries
//
// Sequence numbers provide stable, human-readable ordering (e.g., playlist
// #15) independent of UUIDs and creation timestamps. The [NextSequence]
// function atomically increments per-table sequence counters in dedicated
// sequence tables.
package repositories
