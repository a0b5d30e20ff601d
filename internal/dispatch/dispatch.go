// package dispatch selects the provider that should handle a given file
// or stream.
package dispatch

import (
	"fmt"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/registry"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/Ionic/audacious/internal/vfs"
	"github.com/charmbracelet/log"
)

// Dispatcher resolves URIs to descriptors. Matching runs in three rounds:
// declared extension, declared URI scheme, then an optional content probe
// in ascending priority. Overlapping declarations are disambiguated purely
// by priority, then admission order, so a given input always resolves to
// the same provider.
type Dispatcher struct {
	registry *registry.Registry
	opener   *vfs.Opener
	logger   *log.Logger
}

// New creates a Dispatcher over the given registry. The opener is only
// needed when content sniffing is requested; it may be nil otherwise.
func New(reg *registry.Registry, opener *vfs.Opener, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		registry: reg,
		opener:   opener,
		logger:   logger.With("component", "dispatch"),
	}
}

// Select returns the descriptor of capability type t that should handle
// uri, or ErrUnsupportedFormat when no admitted provider matches. When
// sniff is true and neither extension nor scheme yields a candidate,
// input providers are probed against the open stream in priority order,
// stopping at the first affirmative recognition.
func (d *Dispatcher) Select(t plugin.Type, uri string, sniff bool) (*plugin.Descriptor, error) {
	providers := d.registry.ProvidersOf(t)

	if ext := shared.URIExtension(uri); ext != "" {
		for _, desc := range providers {
			if desc.HasExtension(ext) {
				return desc, nil
			}
		}
	}

	if scheme := shared.URIScheme(uri); scheme != "" && scheme != "file" {
		for _, desc := range providers {
			if desc.HasScheme(scheme) {
				return desc, nil
			}
		}
	}

	if sniff && t == plugin.Input {
		desc, err := d.probe(uri, providers)
		if err != nil {
			return nil, err
		}
		if desc != nil {
			return desc, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, uri)
}

// Matches returns every provider of type t whose declared extensions or
// schemes cover uri, in the same deterministic order Select uses. Callers
// that fall through failing providers (playlist loading) walk this list.
func (d *Dispatcher) Matches(t plugin.Type, uri string) []*plugin.Descriptor {
	var out []*plugin.Descriptor
	providers := d.registry.ProvidersOf(t)

	ext := shared.URIExtension(uri)
	scheme := shared.URIScheme(uri)

	for _, desc := range providers {
		switch {
		case ext != "" && desc.HasExtension(ext):
			out = append(out, desc)
		case scheme != "" && scheme != "file" && desc.HasScheme(scheme):
			out = append(out, desc)
		}
	}
	return out
}

// SelectByMime matches a declared MIME type, in priority order.
func (d *Dispatcher) SelectByMime(t plugin.Type, mime string) (*plugin.Descriptor, error) {
	for _, desc := range d.registry.ProvidersOf(t) {
		if desc.HasMime(mime) {
			return desc, nil
		}
	}
	return nil, fmt.Errorf("%w: mime %s", shared.ErrUnsupportedFormat, mime)
}

// probe opens a fresh read handle per candidate; the handles are not
// seekable, so a consumed stream cannot be reused across providers. An
// open failure aborts the probe and surfaces to the caller; no provider
// could have answered differently on an unopenable handle.
func (d *Dispatcher) probe(uri string, providers []*plugin.Descriptor) (*plugin.Descriptor, error) {
	if d.opener == nil {
		return nil, nil
	}
	for _, desc := range providers {
		in, ok := desc.Input()
		if !ok {
			continue
		}
		h, err := d.opener.Open(uri, plugin.ModeRead)
		if err != nil {
			d.logger.Debug("probe open failed", "uri", uri, "err", err)
			return nil, err
		}
		recognized := in.Recognize(uri, h)
		h.Close()
		if recognized {
			d.logger.Debug("content probe matched", "uri", uri, "provider", desc.Name())
			return desc, nil
		}
	}
	return nil, nil
}
