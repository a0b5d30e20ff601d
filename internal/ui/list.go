package ui

import (
	"fmt"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = entryItem{}
)

// playlistItem wraps [models.StoredPlaylist] to implement [list.Item].
type playlistItem struct {
	playlist *models.StoredPlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name() }
func (i playlistItem) Title() string       { return i.playlist.Name() }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d entries • %s", i.playlist.EntryCount(), i.playlist.URI())
}

// entryItem wraps [models.Entry] to implement [list.Item].
type entryItem struct {
	entry models.Entry
}

func (i entryItem) FilterValue() string {
	if i.entry.Title != "" {
		return i.entry.Title
	}
	return i.entry.URI
}

func (i entryItem) Title() string {
	if i.entry.Title != "" {
		return i.entry.Title
	}
	return i.entry.URI
}

func (i entryItem) Description() string {
	desc := i.entry.Artist
	if i.entry.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Album)
	}
	if i.entry.LengthMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.entry.LengthMS))
	}
	return desc
}
