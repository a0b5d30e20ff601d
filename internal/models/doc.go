// Package models defines domain entities and persistence interfaces for the
// playlist library.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between layers
//   - [Entry] : One playlist line with its metadata
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [StoredPlaylist] : A playlist saved to the library with its source URI
//   - [PlayRecord] : One playback session in the history log
//
// All persistent entities implement the Model interface providing ID
// generation, timestamps, validation, and soft delete support. The
// Repository[T] interface defines standard CRUD operations for database
// access.
package models
