package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/Ionic/audacious/internal/dispatch"
	"github.com/Ionic/audacious/internal/pipeline"
	"github.com/Ionic/audacious/internal/playlistio"
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/providers/device"
	"github.com/Ionic/audacious/internal/providers/eq"
	"github.com/Ionic/audacious/internal/providers/m3u"
	"github.com/Ionic/audacious/internal/providers/pls"
	"github.com/Ionic/audacious/internal/providers/sink"
	"github.com/Ionic/audacious/internal/providers/stereo"
	"github.com/Ionic/audacious/internal/providers/wavdec"
	"github.com/Ionic/audacious/internal/registry"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/Ionic/audacious/internal/vfs"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, providersCommand, playlistCommand, playCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// core bundles the provider registry and the coordinators built on top of it.
type core struct {
	registry    *registry.Registry
	opener      *vfs.Opener
	dispatcher  *dispatch.Dispatcher
	coordinator *playlistio.Coordinator
	equalizer   *eq.Provider
}

// buildCore admits the built-in providers and wires the dispatch stack.
//
// Every output backend is admitted; the configured one is selected later by
// name when a pipeline is assembled. Providers whose Init fails (a sound
// device backend without hardware, typically) are disabled by InitAll and
// silently skipped by dispatch.
func (r *Runner) buildCore() *core {
	reg := registry.New(r.logger)

	equalizer := eq.New()

	reg.Admit(m3u.New())
	reg.Admit(pls.New())
	reg.Admit(wavdec.New())
	reg.Admit(equalizer)
	reg.Admit(stereo.New(2))
	reg.Admit(device.New(r.config.Output.BufferMS, r.config.Output.ForceReopen))
	reg.Admit(sink.NewNull(r.config.Output.BufferMS, r.config.Output.ForceReopen))
	reg.Admit(sink.NewFile(r.config.Output.FilePath, r.config.Output.ForceReopen))

	reg.InitAll()

	if r.config.Equalizer.Enabled {
		equalizer.SetPreamp(r.config.Equalizer.Preamp)
		var bands [eq.NBands]float64
		copy(bands[:], r.config.Equalizer.Bands)
		equalizer.SetBands(bands)
	} else if d := reg.Find(plugin.Effect, "equalizer"); d != nil {
		reg.SetEnabled(d, false)
	}

	opener := vfs.New(reg, r.logger)
	dispatcher := dispatch.New(reg, opener, r.logger)
	coordinator := playlistio.New(dispatcher, opener, r.logger)

	return &core{
		registry:    reg,
		opener:      opener,
		dispatcher:  dispatcher,
		coordinator: coordinator,
		equalizer:   equalizer,
	}
}

// backendName maps a config backend keyword to the provider name it selects.
func backendName(backend string) string {
	switch backend {
	case "", "device":
		return "miniaudio"
	case "file":
		return "filewriter"
	default:
		return backend
	}
}

// buildPipeline assembles a pipeline targeting the named output backend,
// falling back to priority order when the backend is unavailable.
func (r *Runner) buildPipeline(c *core, backend string) (*pipeline.Pipeline, error) {
	name := backendName(backend)

	out := c.registry.Find(plugin.Output, name)
	if out == nil || !c.registry.Enabled(out) {
		r.logger.Warn("output backend unavailable, falling back", "backend", name)
		return pipeline.New(c.registry, r.logger)
	}

	var effects []*plugin.Descriptor
	for _, d := range c.registry.ProvidersOf(plugin.Effect) {
		effects = append(effects, d)
	}
	return pipeline.Assemble(out, effects, r.logger)
}

// openDatabase opens the playlist library database and applies pool settings.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
