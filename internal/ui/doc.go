// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the playlist library
// and playing entries:
//  1. [PlaylistListView] : Browse playlists saved in the library
//  2. [EntryListView] : Preview a playlist's entries
//  3. [ConfirmView] : Confirm playback of the selected entry
//  4. [PlayingView] : Monitor elapsed output time during playback
//  5. [ResultView] : Display the session outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Playback runs in a background goroutine; the view polls the
// player's output clock on a tick.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
