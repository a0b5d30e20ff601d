package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	EntryListView
	ConfirmView
	PlayingView
	ResultView
)

// Library is the slice of the playlist store the TUI needs. Satisfied by
// repositories.PlaylistRepository.
type Library interface {
	List(criteria map[string]any) ([]*models.StoredPlaylist, error)
	Entries(playlistID string) ([]models.Entry, error)
}

// Player runs one playback session at a time. Start blocks until the
// session ends; OutputTime and Stop may be called concurrently.
type Player interface {
	Start(ctx context.Context, uri string) error
	OutputTime() int
	Stop()
}

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	library          Library
	player           Player
	width            int
	height           int
	playlistList     list.Model
	entryList        list.Model
	selectedPlaylist *models.StoredPlaylist
	selectedEntry    *models.Entry
	playDone         chan error
	elapsed          int
	err              error
	help             help.Model
	keys             keyMap
}

type playlistsLoadedMsg struct {
	playlists []*models.StoredPlaylist
	err       error
}

type entriesLoadedMsg struct {
	entries []models.Entry
	err     error
}

type playTickMsg struct{}

type playDoneMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, library Library, player Player) *Model {
	playlists := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Library Playlists"
	entries := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		library:      library,
		player:       player,
		playlistList: playlists,
		entryList:    entries,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by loading playlists from the library.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.entryList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case PlayingView:
			return m.handlePlayingKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		return m, m.playlistList.SetItems(items)

	case entriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = entryItem{entry: entry}
		}
		m.entryList.Title = fmt.Sprintf("Entries in '%s'", m.selectedPlaylist.Name())
		m.view = EntryListView
		return m, m.entryList.SetItems(items)

	case playTickMsg:
		if m.view != PlayingView {
			return m, nil
		}
		m.elapsed = m.player.OutputTime()
		return m, tea.Batch(m.tick(), m.waitForPlayDone())

	case playDoneMsg:
		if m.view == PlayingView {
			m.err = msg.err
			m.view = ResultView
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case EntryListView:
		return m.renderEntryList()
	case ConfirmView:
		return m.renderConfirm()
	case PlayingView:
		return m.renderPlaying()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				m.selectedPlaylist = pl.playlist
				return m, m.loadEntries(pl.playlist.ID())
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		selected := m.entryList.SelectedItem()
		if selected != nil {
			if it, ok := selected.(entryItem); ok {
				entry := it.entry
				m.selectedEntry = &entry
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = EntryListView
		return m, nil
	case "y", "enter":
		m.view = PlayingView
		return m, m.startPlayback()
	}
	return m, nil
}

func (m *Model) handlePlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "s", "esc":
		m.player.Stop()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selectedEntry = nil
		m.elapsed = 0
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.library.List(map[string]any{})
		return playlistsLoadedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) loadEntries(playlistID string) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.library.Entries(playlistID)
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m *Model) startPlayback() tea.Cmd {
	m.elapsed = 0
	m.playDone = make(chan error, 1)
	uri := m.selectedEntry.URI

	go func() {
		m.playDone <- m.player.Start(m.ctx, uri)
	}()

	return tea.Batch(m.tick(), m.waitForPlayDone())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return playTickMsg{}
	})
}

func (m *Model) waitForPlayDone() tea.Cmd {
	done := m.playDone
	return func() tea.Msg {
		select {
		case err := <-done:
			return playDoneMsg{err: err}
		case <-time.After(150 * time.Millisecond):
			return nil
		}
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderEntryList() string {
	playKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play"),
	)
	helpKeys := []key.Binding{playKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.entryList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	label := m.selectedEntry.Title
	if label == "" {
		label = m.selectedEntry.URI
	}
	title := styles.title.Render(fmt.Sprintf("Play '%s'?", label))
	info := fmt.Sprintf("\nURI: %s\n", m.selectedEntry.URI)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderPlaying() string {
	label := m.selectedEntry.Title
	if label == "" {
		label = m.selectedEntry.URI
	}
	title := styles.title.Render("Now Playing")
	info := fmt.Sprintf("\n%s\n%s", label, shared.FormatDuration(m.elapsed))
	if m.selectedEntry.LengthMS > 0 {
		info = fmt.Sprintf("%s / %s", info, shared.FormatDuration(m.selectedEntry.LengthMS))
	}

	helpKeys := []key.Binding{m.keys.stop, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Playback failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	title := styles.ok.Render("✓ Playback finished")
	info := fmt.Sprintf("\nPlayed for %s", shared.FormatDuration(m.elapsed))

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", title, info, helpView)
}
