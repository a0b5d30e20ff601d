package main

import (
	"context"
	"fmt"

	"github.com/Ionic/audacious/internal/bus"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/urfave/cli/v3"
)

// providerInfo is the serializable view of an admitted provider.
type providerInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Version    int      `json:"version"`
	Priority   int      `json:"priority"`
	Order      int      `json:"order,omitempty"`
	About      string   `json:"about,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
	Schemes    []string `json:"schemes,omitempty"`
	Enabled    bool     `json:"enabled"`
}

// parseType maps a capability name to its plugin.Type.
func parseType(s string) (plugin.Type, error) {
	for t := plugin.Transport; t.Valid(); t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown capability type %q", shared.ErrInvalidFlag, s)
}

// ProvidersList prints every admitted provider, optionally filtered by type.
func (r *Runner) ProvidersList(ctx context.Context, cmd *cli.Command) error {
	c := r.buildCore()
	defer c.registry.CleanupAll()

	types := []plugin.Type{
		plugin.Transport, plugin.Playlist, plugin.Input,
		plugin.Effect, plugin.Output,
	}
	if filter := cmd.String("type"); filter != "" {
		t, err := parseType(filter)
		if err != nil {
			return err
		}
		types = []plugin.Type{t}
	}

	var infos []providerInfo
	for _, t := range types {
		for _, d := range c.registry.AllOf(t) {
			infos = append(infos, providerInfo{
				Name:       d.Name(),
				Type:       d.Type().String(),
				Version:    d.Header.Version,
				Priority:   d.Header.Priority,
				Order:      d.Header.Order,
				About:      d.Header.About,
				Extensions: d.Header.Extensions,
				Schemes:    d.Header.Schemes,
				Enabled:    c.registry.Enabled(d),
			})
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Admitted Providers")
	for _, info := range infos {
		state := ""
		if !info.Enabled {
			state = " (disabled)"
		}
		r.writePlain("%-12s %-9s prio %d%s\n", info.Name, info.Type, info.Priority, state)
		if info.About != "" {
			r.writePlain("             %s\n", info.About)
		}
	}
	return nil
}

// ProvidersMatch shows the selection chain dispatch would try for a URI.
func (r *Runner) ProvidersMatch(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: uri argument required", shared.ErrMissingArgument)
	}

	t, err := parseType(cmd.String("type"))
	if err != nil {
		return err
	}

	c := r.buildCore()
	defer c.registry.CleanupAll()

	matches := c.dispatcher.Matches(t, uri)
	if len(matches) == 0 {
		r.writePlain("No %s provider claims %s\n", t.String(), uri)
		return nil
	}

	r.writePlain("Providers claiming %s (in selection order):\n", uri)
	for i, d := range matches {
		r.writePlain("%d. %s (priority %d)\n", i+1, d.Name(), d.Header.Priority)
	}
	return nil
}

// ProvidersMessage sends a single bus message to a named provider.
func (r *Runner) ProvidersMessage(ctx context.Context, cmd *cli.Command) error {
	t, err := parseType(cmd.String("type"))
	if err != nil {
		return err
	}

	c := r.buildCore()
	defer c.registry.CleanupAll()

	b := bus.New(r.logger)
	code, payload := cmd.String("code"), []byte(cmd.String("data"))

	if cmd.Bool("broadcast") {
		handled := b.Broadcast(c.registry.AllOf(t), code, payload)
		r.writePlain("%d %s provider(s) handled %q\n", handled, t.String(), code)
		return nil
	}

	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name or --broadcast required", shared.ErrMissingArgument)
	}
	target := c.registry.Find(t, name)
	if target == nil {
		return fmt.Errorf("%w: no %s provider named %q", shared.ErrInvalidArgument, t.String(), name)
	}

	result := b.Send(target, code, payload)

	switch result {
	case bus.Unhandled:
		r.writePlain("✗ %s did not handle %q\n", name, code)
	case bus.OK:
		r.writePlain("✓ %s handled %q\n", name, code)
	default:
		r.writePlain("%s returned %d for %q\n", name, result, code)
	}
	return nil
}
