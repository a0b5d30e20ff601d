// Package tasks implements long-running playlist operations on top of the
// provider core.
//
// The core abstraction is [ConvertEngine], which orchestrates playlist
// format conversions, comparisons, and bulk exports. Operations emit
// progress updates via channels for non-blocking status reporting to the
// CLI and TUI layers.
//
// Key Operations:
//   - [ConvertEngine.Convert] : Load a playlist and save it through another format provider
//   - [ConvertEngine.Diff] : Compare two playlists by entry URI
//   - [ConvertEngine.BulkConvert] : Convert many playlists concurrently with rate limiting
//
// All operations accept a context for cancellation and an optional progress
// channel. Progress sends never block; a full channel drops the update.
package tasks
