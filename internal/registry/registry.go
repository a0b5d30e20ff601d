// package registry holds admitted provider descriptors grouped by
// capability type and enforces the version-window admission rule.
package registry

import (
	"sort"
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/charmbracelet/log"
)

// Registry stores validated descriptors. Admission is serialized; lookups
// are read-mostly and only take a read lock.
type Registry struct {
	logger *log.Logger

	mu       sync.RWMutex
	byType   map[plugin.Type][]*plugin.Descriptor
	admitted map[plugin.Plugin]*plugin.Descriptor
	disabled map[*plugin.Descriptor]bool
}

// New creates an empty Registry. A nil logger falls back to the default.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		logger:   logger.With("component", "registry"),
		byType:   make(map[plugin.Type][]*plugin.Descriptor),
		admitted: make(map[plugin.Plugin]*plugin.Descriptor),
		disabled: make(map[*plugin.Descriptor]bool),
	}
}

// Admit validates the provider header and stores a descriptor for it.
// Returns false when the magic tag mismatches, the version falls outside
// [plugin.VersionMin, plugin.Version], the capability type is unknown, or
// the same provider instance was already admitted. Rejection is silent
// toward callers of dispatch; it is only logged here.
func (r *Registry) Admit(p plugin.Plugin) bool {
	h := p.Header()

	if h.Magic != plugin.Magic {
		r.logger.Debug("rejecting provider: bad magic", "name", h.Name)
		return false
	}
	if h.Version < plugin.VersionMin || h.Version > plugin.Version {
		r.logger.Debug("rejecting provider: version outside window",
			"name", h.Name, "version", h.Version,
			"min", plugin.VersionMin, "max", plugin.Version)
		return false
	}
	if !h.Type.Valid() {
		r.logger.Debug("rejecting provider: unknown capability type", "name", h.Name, "type", int(h.Type))
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.admitted[p]; dup {
		r.logger.Debug("ignoring duplicate admission", "name", h.Name)
		return false
	}

	d := plugin.NewDescriptor(p)
	r.admitted[p] = d
	r.byType[d.Header.Type] = append(r.byType[d.Header.Type], d)

	r.logger.Debug("admitted provider", "name", d.Name(), "type", d.Type().String(), "priority", d.Header.Priority)
	return true
}

// ProvidersOf returns enabled descriptors of the given capability type in
// ascending priority, stable by admission order on ties. The returned
// slice is a copy; callers may reorder it freely.
func (r *Registry) ProvidersOf(t plugin.Type) []*plugin.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*plugin.Descriptor, 0, len(r.byType[t]))
	for _, d := range r.byType[t] {
		if !r.disabled[d] {
			list = append(list, d)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Header.Priority < list[j].Header.Priority
	})
	return list
}

// AllOf returns every admitted descriptor of the given type, enabled or
// not, in admission order.
func (r *Registry) AllOf(t plugin.Type) []*plugin.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*plugin.Descriptor(nil), r.byType[t]...)
}

// Find returns the admitted descriptor with the given type and name, or
// nil when absent.
func (r *Registry) Find(t plugin.Type, name string) *plugin.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.byType[t] {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// SetEnabled toggles a descriptor's participation in dispatch.
func (r *Registry) SetEnabled(d *plugin.Descriptor, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enabled {
		delete(r.disabled, d)
	} else {
		r.disabled[d] = true
	}
}

// Enabled reports whether the descriptor participates in dispatch.
func (r *Registry) Enabled(d *plugin.Descriptor) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled[d]
}

// InitAll runs Init on every admitted provider in admission order. A
// provider whose Init fails is disabled and skipped by dispatch; the error
// never aborts the host.
func (r *Registry) InitAll() {
	for t := plugin.Transport; t <= plugin.Iface; t++ {
		for _, d := range r.AllOf(t) {
			if err := d.Impl.Init(); err != nil {
				r.logger.Warn("provider init failed, disabling", "name", d.Name(), "err", err)
				r.SetEnabled(d, false)
			}
		}
	}
}

// CleanupAll runs Cleanup on every admitted provider in reverse type
// order. Init/Cleanup never overlap other calls into the same provider;
// callers sequence CleanupAll after all sessions are closed.
func (r *Registry) CleanupAll() {
	for t := plugin.Iface; t >= plugin.Transport; t-- {
		for _, d := range r.AllOf(t) {
			d.Impl.Cleanup()
		}
	}
}
