package plugin

import "fmt"

// Magic bytes identifying a provider header. A header carrying anything
// else was not built against this host and is never admitted.
const Magic uint32 = 0x8EAC8DE2

// API version window. Providers are stamped with a version at build time.
// Version is the current API version; VersionMin is the oldest version the
// host remains backward compatible with. Providers stamped older than
// VersionMin or newer than Version are not admitted.
const (
	VersionMin = 46
	Version    = 48
)

// Type is the capability type of a provider. Each provider declares
// exactly one.
type Type int

const (
	Transport Type = iota // URI scheme handlers that own their own I/O
	Playlist              // playlist document codecs
	Input                 // decoders
	Effect                // ordered audio processors
	Output                // audio sinks
	Vis                   // visualizers (main thread only)
	General               // general extensions (main thread only)
	Iface                 // user interfaces (main thread only)
	numTypes
)

// String returns the lowercase capability name.
func (t Type) String() string {
	switch t {
	case Transport:
		return "transport"
	case Playlist:
		return "playlist"
	case Input:
		return "input"
	case Effect:
		return "effect"
	case Output:
		return "output"
	case Vis:
		return "vis"
	case General:
		return "general"
	case Iface:
		return "iface"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Valid reports whether t names a known capability type.
func (t Type) Valid() bool {
	return t >= Transport && t < numTypes
}

// Header is the stable descriptor metadata every provider exposes.
// It is copied at admission and never mutated afterwards.
type Header struct {
	Magic   uint32
	Version int
	Type    Type

	Name  string
	About string

	// Priority ranks providers during content-sniffing probes and output
	// selection; lower values are tried first (0 to 10).
	Priority int

	// Order positions an effect in the processing chain; lower values are
	// applied first (0 to 9). Ignored for other capability types.
	Order int

	// Declared selection inputs: file extensions (lowercase, no leading
	// period), MIME types, and URI schemes (no "://").
	Extensions []string
	Mimes      []string
	Schemes    []string
}

// Plugin is the base function table shared by all capability types.
//
// Init and Cleanup may be called from any single goroutine but are never
// concurrent with any other call into the same provider instance.
type Plugin interface {
	Header() *Header

	Init() error
	Cleanup()
}

// MessageHandler is implemented by providers that accept bus messages.
// TakeMessage must return -1 for unrecognized codes, 0 for success; other
// non-negative values are provider-defined. The data slice belongs to the
// sender and must not be retained past the call.
type MessageHandler interface {
	TakeMessage(code string, data []byte) int
}

// Descriptor pairs an admitted provider's immutable header copy with its
// function table. Descriptors are created and owned by the registry.
type Descriptor struct {
	Header Header
	Impl   Plugin
}

// NewDescriptor copies the provider's header and binds it to the
// implementation. The copy keeps the registry's view immutable even if a
// badly behaved provider mutates its own header later.
func NewDescriptor(p Plugin) *Descriptor {
	h := *p.Header()
	h.Extensions = append([]string(nil), h.Extensions...)
	h.Mimes = append([]string(nil), h.Mimes...)
	h.Schemes = append([]string(nil), h.Schemes...)
	return &Descriptor{Header: h, Impl: p}
}

// Name returns the provider's declared name.
func (d *Descriptor) Name() string { return d.Header.Name }

// Type returns the provider's declared capability type.
func (d *Descriptor) Type() Type { return d.Header.Type }

// Playlist returns the playlist function table, or false when the
// descriptor does not declare the Playlist capability.
func (d *Descriptor) Playlist() (PlaylistPlugin, bool) {
	if d.Header.Type != Playlist {
		return nil, false
	}
	p, ok := d.Impl.(PlaylistPlugin)
	return p, ok
}

// Input returns the input function table, or false when the descriptor
// does not declare the Input capability.
func (d *Descriptor) Input() (InputPlugin, bool) {
	if d.Header.Type != Input {
		return nil, false
	}
	p, ok := d.Impl.(InputPlugin)
	return p, ok
}

// Effect returns the effect function table, or false when the descriptor
// does not declare the Effect capability.
func (d *Descriptor) Effect() (EffectPlugin, bool) {
	if d.Header.Type != Effect {
		return nil, false
	}
	p, ok := d.Impl.(EffectPlugin)
	return p, ok
}

// Output returns the output function table, or false when the descriptor
// does not declare the Output capability.
func (d *Descriptor) Output() (OutputPlugin, bool) {
	if d.Header.Type != Output {
		return nil, false
	}
	p, ok := d.Impl.(OutputPlugin)
	return p, ok
}

// Transport returns the transport function table, or false when the
// descriptor does not declare the Transport capability.
func (d *Descriptor) Transport() (TransportPlugin, bool) {
	if d.Header.Type != Transport {
		return nil, false
	}
	p, ok := d.Impl.(TransportPlugin)
	return p, ok
}

// HasExtension reports whether the descriptor declares the given
// extension. The comparison is case-insensitive; ext carries no period.
func (d *Descriptor) HasExtension(ext string) bool {
	return containsFold(d.Header.Extensions, ext)
}

// HasScheme reports whether the descriptor declares the given URI scheme.
func (d *Descriptor) HasScheme(scheme string) bool {
	return containsFold(d.Header.Schemes, scheme)
}

// HasMime reports whether the descriptor declares the given MIME type.
func (d *Descriptor) HasMime(mime string) bool {
	return containsFold(d.Header.Mimes, mime)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if equalFold(v, s) {
			return true
		}
	}
	return false
}

// equalFold is an ASCII-only case-insensitive comparison; declared
// extensions and schemes are ASCII by construction.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
