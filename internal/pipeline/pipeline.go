// package pipeline chains an input provider, ordered effect providers and
// one output provider, managing format negotiation, buffering,
// backpressure and the playback clock.
package pipeline

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/registry"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/charmbracelet/log"
)

// State is the lifecycle position of a pipeline instance.
type State int

const (
	Idle State = iota
	Open
	Playing
	Paused
	Flushing
	Closed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Open:
		return "open"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Flushing:
		return "flushing"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// playToken serializes Play across all input providers: only one decode
// session runs in the whole process at a time. This is a compatibility
// shim for legacy decoders that cannot handle simultaneous play calls;
// new providers must not depend on it.
var playToken sync.Mutex

// stage wraps one effect with its one-at-a-time instance lock.
type stage struct {
	desc *plugin.Descriptor
	fx   plugin.EffectPlugin
	mu   sync.Mutex
}

// Pipeline drives audio from a decoder through the effect chain into a
// single output. One goroutine (the playback thread) calls Open, Write,
// Finish, Drain and Close; Flush, Pause, OutputTime and Volume may be
// called concurrently from other goroutines.
type Pipeline struct {
	id     string
	logger *log.Logger

	outDesc *plugin.Descriptor
	out     plugin.OutputPlugin
	outMu   sync.Mutex // serializes the output write path

	effects []*stage

	mu        sync.Mutex
	state     State
	inFormat  plugin.AudioFormat // format handed to Open
	outFormat plugin.AudioFormat // format after effect Start rewrites

	stopped atomic.Bool
}

// New assembles a pipeline from the registry: the enabled output with the
// lowest priority and every enabled effect, ordered ascending by declared
// order with ties broken by admission order.
func New(reg *registry.Registry, logger *log.Logger) (*Pipeline, error) {
	outputs := reg.ProvidersOf(plugin.Output)
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: no output provider admitted", shared.ErrUnsupportedFormat)
	}

	var effects []*plugin.Descriptor
	for _, d := range reg.AllOf(plugin.Effect) {
		if reg.Enabled(d) {
			effects = append(effects, d)
		}
	}

	return Assemble(outputs[0], effects, logger)
}

// Assemble builds a pipeline from explicit descriptors. The effect slice
// may arrive in any order; it is stable-sorted by declared order here.
func Assemble(output *plugin.Descriptor, effects []*plugin.Descriptor, logger *log.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = log.Default()
	}

	out, ok := output.Output()
	if !ok {
		return nil, fmt.Errorf("%w: %s does not implement the output table", shared.ErrInvalidArgument, output.Name())
	}

	p := &Pipeline{
		id:      shared.GenerateID(),
		logger:  logger.With("component", "pipeline", "output", output.Name()),
		outDesc: output,
		out:     out,
		state:   Idle,
	}

	ordered := append([]*plugin.Descriptor(nil), effects...)
	// Stable sort keeps admission order on equal declared orders.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Header.Order < ordered[j-1].Header.Order; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	for _, d := range ordered {
		fx, ok := d.Effect()
		if !ok {
			return nil, fmt.Errorf("%w: %s does not implement the effect table", shared.ErrInvalidArgument, d.Name())
		}
		p.effects = append(p.effects, &stage{desc: d, fx: fx})
	}

	return p, nil
}

// ID returns the unique identifier of this pipeline instance.
func (p *Pipeline) ID() string { return p.id }

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OutputFormat returns the format negotiated with the output stage. Only
// meaningful while the pipeline is open.
func (p *Pipeline) OutputFormat() plugin.AudioFormat {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outFormat
}

// Open negotiates format with the output stage and starts the effect
// chain. Effects may rewrite channel count and rate at this point only;
// the rewritten format propagates to output negotiation.
//
// When the output declares ForceReopen, any current stream is fully
// closed and reopened even if format equals the one already open. Without
// it an equal format keeps the stream open (gapless continuation). An
// output failure reverts the pipeline to Closed.
func (p *Pipeline) Open(format plugin.AudioFormat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	opened := p.state == Open || p.state == Playing || p.state == Paused || p.state == Flushing
	if opened {
		if !p.out.ForceReopen() && format == p.inFormat {
			p.logger.Debug("gapless continuation", "rate", format.Rate, "channels", format.Channels)
			return nil
		}
		p.outMu.Lock()
		p.out.CloseAudio()
		p.outMu.Unlock()
		p.state = Idle
	}

	channels := format.Channels
	rate := format.Rate
	for _, st := range p.effects {
		st.mu.Lock()
		st.fx.Start(&channels, &rate)
		st.mu.Unlock()
	}

	negotiated := plugin.AudioFormat{Sample: format.Sample, Rate: rate, Channels: channels}

	p.outMu.Lock()
	err := p.out.OpenAudio(negotiated)
	p.outMu.Unlock()
	if err != nil {
		p.state = Closed
		return fmt.Errorf("%w: %v", shared.ErrFormatNegotiation, err)
	}

	p.inFormat = format
	p.outFormat = negotiated
	p.state = Open
	p.stopped.Store(false)
	p.logger.Debug("pipeline open", "rate", rate, "channels", channels, "effects", len(p.effects))
	return nil
}

// Write runs samples through the effect chain in ascending order and
// hands the result to the output, honoring its free-buffer bound. Blocks
// on backpressure; returns early when Stop or a concurrent flush aborts
// the session.
func (p *Pipeline) Write(samples []float32) error {
	return p.process(samples, false, false)
}

// Finish is Write plus an effect drain: each effect flushes its internal
// buffering into the stream. Called at end of song; endOfPlaylist marks
// the final call of the last song.
func (p *Pipeline) Finish(samples []float32, endOfPlaylist bool) error {
	return p.process(samples, true, endOfPlaylist)
}

func (p *Pipeline) process(samples []float32, finish, endOfPlaylist bool) error {
	p.mu.Lock()
	switch p.state {
	case Open, Playing, Paused, Flushing:
		p.state = Playing
	default:
		p.mu.Unlock()
		return shared.ErrPipelineClosed
	}
	format := p.outFormat
	p.mu.Unlock()

	data := samples
	for _, st := range p.effects {
		st.mu.Lock()
		if finish {
			data = st.fx.Finish(data, endOfPlaylist)
		} else {
			data = st.fx.Process(data)
		}
		st.mu.Unlock()
	}

	return p.writeOut(pcmBytes(data, format.Sample))
}

// writeOut feeds the output without ever exceeding the most recently
// observed BufferFree result. PeriodWait is the backpressure primitive;
// the output must return from it early on a concurrent flush.
func (p *Pipeline) writeOut(data []byte) error {
	p.outMu.Lock()
	defer p.outMu.Unlock()

	for len(data) > 0 {
		if p.stopped.Load() {
			return shared.ErrPipelineClosed
		}
		free := p.out.BufferFree()
		if free <= 0 {
			p.out.PeriodWait()
			continue
		}
		n := free
		if n > len(data) {
			n = len(data)
		}
		p.out.WriteAudio(data[:n])
		data = data[n:]
	}
	return nil
}

// Flush discards buffered audio across the chain on seek or stop and
// resets the playback clock to timeMS.
//
// Effects are flushed in processing order as a short-circuiting fold: an
// effect answering FlushStop handles the flush itself (a crossfade, for
// example) and stops propagation to downstream effects. force overrides
// every such answer. The output flush always runs, unblocking any
// concurrent PeriodWait.
func (p *Pipeline) Flush(timeMS int, force bool) error {
	p.mu.Lock()
	if p.state == Idle || p.state == Closed {
		p.mu.Unlock()
		return shared.ErrPipelineClosed
	}
	prev := p.state
	p.state = Flushing
	p.mu.Unlock()

	var foldErr error
	for _, st := range p.effects {
		st.mu.Lock()
		dec := st.fx.Flush(force)
		st.mu.Unlock()
		if force {
			continue
		}
		if dec == plugin.FlushStop {
			break
		}
		if dec == plugin.FlushStopWithError {
			foldErr = fmt.Errorf("%w: effect %s failed to flush", shared.ErrProviderFailure, st.desc.Name())
			break
		}
	}

	// Output flush is unconditional: it discards device buffers, resets
	// the clock, and wakes PeriodWait.
	p.out.Flush(timeMS)

	p.mu.Lock()
	if prev == Paused {
		p.state = Paused
	} else {
		p.state = Open
	}
	p.mu.Unlock()

	return foldErr
}

// Pause freezes or resumes the output clock and consumption.
func (p *Pipeline) Pause(paused bool) {
	p.mu.Lock()
	if paused && p.state == Playing {
		p.state = Paused
	} else if !paused && p.state == Paused {
		p.state = Playing
	}
	p.mu.Unlock()
	p.out.Pause(paused)
}

// Drain blocks until all buffered audio has been heard.
func (p *Pipeline) Drain() {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	p.out.Drain()
}

// OutputTime returns the playback clock in milliseconds: monotonic
// non-decreasing while playing, frozen while paused, reset only by Flush.
func (p *Pipeline) OutputTime() int {
	return p.out.OutputTime()
}

// Delay translates an output-domain latency back through the effect chain
// into the input time domain, adding each effect's read-ahead. The fold
// runs in reverse processing order, from the stage nearest the output
// back to the input.
func (p *Pipeline) Delay(outputDelayMS int) int {
	delay := outputDelayMS
	for i := len(p.effects) - 1; i >= 0; i-- {
		st := p.effects[i]
		st.mu.Lock()
		delay = st.fx.AdjustDelay(delay)
		st.mu.Unlock()
	}
	return delay
}

// Volume returns the output stage's channel volumes.
func (p *Pipeline) Volume() plugin.StereoVolume { return p.out.Volume() }

// SetVolume changes the output stage's channel volumes.
func (p *Pipeline) SetVolume(v plugin.StereoVolume) { p.out.SetVolume(v) }

// Stop aborts any in-flight decode session: Write returns promptly, the
// output is flushed, and the pipeline returns to Open for reuse.
func (p *Pipeline) Stop() {
	p.stopped.Store(true)
	p.mu.Lock()
	opened := p.state != Idle && p.state != Closed
	p.mu.Unlock()
	if opened {
		// force: every effect must discard its buffers on a hard stop.
		p.Flush(0, true)
	}
}

// Close shuts the output stream and retires the pipeline instance.
func (p *Pipeline) Close() {
	p.stopped.Store(true)
	p.mu.Lock()
	opened := p.state != Idle && p.state != Closed
	p.state = Closed
	p.mu.Unlock()
	if opened {
		p.out.Flush(0)
		p.outMu.Lock()
		p.out.CloseAudio()
		p.outMu.Unlock()
	}
}

// Play runs a full decode session for uri through the given input
// provider. The session holds the process-wide play token for its entire
// duration (see playToken). The reader may be nil for providers that own
// their I/O via a declared scheme.
func (p *Pipeline) Play(desc *plugin.Descriptor, uri string, r io.Reader) error {
	in, ok := desc.Input()
	if !ok {
		return fmt.Errorf("%w: %s is not an input provider", shared.ErrInvalidArgument, desc.Name())
	}

	playToken.Lock()
	defer playToken.Unlock()

	p.stopped.Store(false)
	p.logger.Debug("decode session start", "uri", uri, "provider", desc.Name())

	if err := in.Play(uri, r, &sink{p: p}); err != nil {
		if p.stopped.Load() {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", shared.ErrProviderFailure, uri, err)
	}
	return nil
}
