// package vfs opens byte-stream handles for URIs, dispatching to
// transport providers for schemes the host does not handle itself.
package vfs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/registry"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/charmbracelet/log"
)

// Opener turns URIs into open handles. Local paths and file:// URIs hit
// the filesystem directly; any other scheme is routed to an admitted
// transport provider declaring it.
type Opener struct {
	registry *registry.Registry
	logger   *log.Logger
}

// New creates an Opener backed by the given registry.
func New(reg *registry.Registry, logger *log.Logger) *Opener {
	if logger == nil {
		logger = log.Default()
	}
	return &Opener{registry: reg, logger: logger.With("component", "vfs")}
}

// Open returns a non-seekable handle for the URI. Mode selects the
// direction; read handles are read-only and write handles truncate.
func (o *Opener) Open(uri string, mode plugin.OpenMode) (io.ReadWriteCloser, error) {
	scheme := shared.URIScheme(uri)

	if scheme == "" || scheme == "file" {
		return o.openLocal(uri, mode)
	}

	for _, d := range o.registry.ProvidersOf(plugin.Transport) {
		if !d.HasScheme(scheme) {
			continue
		}
		tp, ok := d.Transport()
		if !ok {
			continue
		}
		h, err := tp.Open(uri, mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrOpenFailure, uri, err)
		}
		return h, nil
	}

	return nil, fmt.Errorf("%w: no transport for scheme %q", shared.ErrUnsupportedFormat, scheme)
}

func (o *Opener) openLocal(uri string, mode plugin.OpenMode) (io.ReadWriteCloser, error) {
	path := LocalPath(uri)

	var f *os.File
	var err error
	if mode == plugin.ModeWrite {
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrOpenFailure, path, err)
	}
	return &stream{f: f}, nil
}

// LocalPath strips a file:// prefix, returning a filesystem path. Plain
// paths pass through unchanged.
func LocalPath(uri string) string {
	if strings.HasPrefix(strings.ToLower(uri), "file://") {
		return uri[len("file://"):]
	}
	return uri
}

// stream hides the seekable half of *os.File; playlist and input
// providers receive plain byte streams.
type stream struct {
	f *os.File
}

func (s *stream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *stream) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s *stream) Close() error                { return s.f.Close() }
