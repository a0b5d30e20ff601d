// package playlistio loads and saves playlist documents through
// playlist-capable providers.
//
// The coordinator owns provider selection and handle management only; the
// on-disk byte formats belong entirely to the providers.
package playlistio

import (
	"fmt"

	"github.com/Ionic/audacious/internal/dispatch"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/Ionic/audacious/internal/vfs"
	"github.com/charmbracelet/log"
)

// Coordinator routes playlist load/save requests to matching providers.
type Coordinator struct {
	dispatcher *dispatch.Dispatcher
	opener     *vfs.Opener
	logger     *log.Logger
}

// New creates a Coordinator.
func New(d *dispatch.Dispatcher, opener *vfs.Opener, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		dispatcher: d,
		opener:     opener,
		logger:     logger.With("component", "playlistio"),
	}
}

// IsPlaylist reports whether any admitted playlist provider declares the
// URI's extension.
func (c *Coordinator) IsPlaylist(uri string) bool {
	return len(c.dispatcher.Matches(plugin.Playlist, uri)) > 0
}

// Load reads the playlist at uri. Matching providers are tried in
// priority order until one succeeds; a failed provider falls through to
// the next candidate, but an unopenable handle stops the chain.
//
// The returned error distinguishes three conditions: no provider declares
// the extension (ErrUnsupportedFormat), the handle could not be opened
// (ErrOpenFailure), or every matching provider declared failure
// (ErrProviderFailure).
func (c *Coordinator) Load(uri string) (string, []plugin.Entry, error) {
	candidates := c.dispatcher.Matches(plugin.Playlist, uri)
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("%w: cannot load %s: unsupported file extension", shared.ErrUnsupportedFormat, uri)
	}

	c.logger.Debug("loading playlist", "uri", uri, "candidates", len(candidates))

	var lastErr error
	for _, desc := range candidates {
		pp, ok := desc.Playlist()
		if !ok {
			continue
		}

		h, err := c.opener.Open(uri, plugin.ModeRead)
		if err != nil {
			// Nothing downstream can do better with an unopenable file.
			return "", nil, err
		}

		title, entries, err := pp.Load(uri, h)
		h.Close()
		if err == nil {
			return title, entries, nil
		}
		c.logger.Debug("playlist provider failed", "provider", desc.Name(), "err", err)
		lastErr = err
	}

	return "", nil, fmt.Errorf("%w: cannot load %s: %v", shared.ErrProviderFailure, uri, lastErr)
}

// Save writes the playlist to uri through exactly one provider: the first
// match in priority order. There is no retry chain and no partial-success
// guarantee; the provider is responsible for the consistency of what it
// writes. A provider lacking save capability fails before any I/O.
func (c *Coordinator) Save(uri, title string, entries []plugin.Entry) error {
	desc, err := c.dispatcher.Select(plugin.Playlist, uri, false)
	if err != nil {
		return fmt.Errorf("%w: cannot save %s: unsupported file extension", shared.ErrUnsupportedFormat, uri)
	}

	pp, ok := desc.Playlist()
	if !ok {
		return fmt.Errorf("%w: cannot save %s", shared.ErrUnsupportedFormat, uri)
	}
	saver, ok := pp.(plugin.PlaylistSaver)
	if !ok {
		return fmt.Errorf("%w: %s cannot save %s", shared.ErrNoSaveSupport, desc.Name(), uri)
	}

	h, err := c.opener.Open(uri, plugin.ModeWrite)
	if err != nil {
		return err
	}
	defer h.Close()

	c.logger.Debug("saving playlist", "uri", uri, "provider", desc.Name(), "entries", len(entries))

	if err := saver.Save(uri, h, title, entries); err != nil {
		return fmt.Errorf("%w: cannot save %s: %v", shared.ErrProviderFailure, uri, err)
	}
	return nil
}
