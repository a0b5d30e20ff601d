package main

import (
	"context"
	"fmt"

	"github.com/Ionic/audacious/internal/repositories"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/Ionic/audacious/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing and playing the library.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/audacious-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	c := r.buildCore()
	defer c.registry.CleanupAll()

	backend := cmd.String("backend")
	if backend == "" {
		backend = r.config.Output.Backend
	}
	pipe, err := r.buildPipeline(c, backend)
	if err != nil {
		return err
	}
	defer pipe.Close()

	library := repositories.NewPlaylistRepository(db)
	model := ui.NewModel(ctx, library, &player{core: c, pipe: pipe})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
