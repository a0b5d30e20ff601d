package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Ionic/audacious/internal/pipeline"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/providers/eq"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/urfave/cli/v3"
)

// player runs decode sessions through an assembled pipeline. It implements
// ui.Player so the TUI can drive the same playback path as the play command.
type player struct {
	core *core
	pipe *pipeline.Pipeline
}

// Start selects an input provider for uri, opens its stream and runs the
// decode session to completion. Cancelling ctx stops the session.
func (p *player) Start(ctx context.Context, uri string) error {
	desc, err := p.core.dispatcher.Select(plugin.Input, uri, true)
	if err != nil {
		return err
	}

	h, err := p.core.opener.Open(uri, plugin.ModeRead)
	if err != nil {
		return err
	}
	defer h.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.pipe.Stop()
		case <-done:
		}
	}()

	return p.pipe.Play(desc, uri, h)
}

// OutputTime reports the output clock in milliseconds.
func (p *player) OutputTime() int {
	return p.pipe.OutputTime()
}

// Stop aborts the running decode session.
func (p *player) Stop() {
	p.pipe.Stop()
}

// Play decodes a single URI through the effect chain to the configured
// output backend, recording the session in the play history.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: uri argument required", shared.ErrMissingArgument)
	}

	c := r.buildCore()
	defer c.registry.CleanupAll()

	if path := cmd.String("eq-preset"); path != "" {
		presets, err := eq.LoadPresetFile(path)
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			return fmt.Errorf("%w: no presets in %s", shared.ErrInvalidInput, path)
		}
		c.equalizer.Apply(presets[0])
	}

	backend := cmd.String("backend")
	if backend == "" {
		backend = r.config.Output.Backend
	}
	pipe, err := r.buildPipeline(c, backend)
	if err != nil {
		return err
	}
	defer pipe.Close()

	desc, err := c.dispatcher.Select(plugin.Input, uri, true)
	if err != nil {
		return err
	}

	// Read the tuple from a separate handle; decoding gets a fresh stream.
	title, durationMS := uri, 0
	if in, ok := desc.Input(); ok {
		if h, err := c.opener.Open(uri, plugin.ModeRead); err == nil {
			if tuple, err := in.ReadTuple(uri, h); err == nil {
				if tuple.Title != "" {
					title = tuple.Title
				}
				durationMS = tuple.LengthMS
			}
			h.Close()
		}
	}

	r.writePlain("▶ %s (%s via %s)\n", title, desc.Name(), backendName(backend))

	startedAt := time.Now()
	pl := &player{core: c, pipe: pipe}
	if err := pl.Start(ctx, uri); err != nil {
		return err
	}
	pipe.Drain()

	played := pipe.OutputTime()
	if played == 0 {
		played = durationMS
	}
	r.writePlain("✓ Finished after %s\n", shared.FormatDuration(played))

	if !cmd.Bool("no-record") {
		if err := r.recordPlay(uri, title, desc.Name(), played, startedAt); err != nil {
			r.logger.Warn("failed to record play history", "error", err)
		}
	}
	return nil
}
