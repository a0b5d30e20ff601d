// package device implements the hardware output provider on top of
// miniaudio via malgo. PCM is staged in a ring buffer and pulled by the
// device's data callback; underruns play silence.
package device

import (
	"fmt"
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"
)

var header = plugin.Header{
	Magic:    plugin.Magic,
	Version:  plugin.Version,
	Type:     plugin.Output,
	Name:     "miniaudio",
	About:    "hardware audio output (miniaudio)",
	Priority: 1,
}

// Provider plays audio on the default playback device.
type Provider struct {
	logger   *log.Logger
	bufferMS int
	reopen   bool

	volMu sync.Mutex
	vol   plugin.StereoVolume

	mu     sync.Mutex
	cond   *sync.Cond
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	rb     *ringbuffer.RingBuffer
	format plugin.AudioFormat
	open   bool
	paused bool
	gen    int

	timeBaseMS int
	played     int // bytes handed to the device since the last flush
}

// New creates a hardware output with the given buffer depth.
func New(bufferMS int, forceReopen bool) *Provider {
	if bufferMS <= 0 {
		bufferMS = 500
	}
	p := &Provider{
		logger:   shared.NewLogger(nil),
		bufferMS: bufferMS,
		reopen:   forceReopen,
		vol:      plugin.StereoVolume{Left: 100, Right: 100},
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *Provider) Header() *plugin.Header { return &header }

// Init brings up the miniaudio context. Failure keeps the provider out of
// the enabled set so a fallback output gets picked instead.
func (p *Provider) Init() error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("initializing audio context: %w", err)
	}
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	return nil
}

func (p *Provider) Cleanup() {
	p.CloseAudio()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx != nil {
		p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}

func (p *Provider) ForceReopen() bool { return p.reopen }

func (p *Provider) Volume() plugin.StereoVolume {
	p.volMu.Lock()
	defer p.volMu.Unlock()
	return p.vol
}

func (p *Provider) SetVolume(v plugin.StereoVolume) {
	p.volMu.Lock()
	p.vol = v
	p.volMu.Unlock()

	p.mu.Lock()
	device := p.device
	p.mu.Unlock()
	if device != nil {
		// miniaudio takes a single linear gain; use the louder side.
		gain := v.Left
		if v.Right > gain {
			gain = v.Right
		}
		device.SetVolume(float32(gain) / 100)
	}
}

func malgoFormat(s plugin.SampleFormat) malgo.FormatType {
	if s == plugin.FmtFloat32 {
		return malgo.FormatF32
	}
	return malgo.FormatS16
}

func (p *Provider) OpenAudio(format plugin.AudioFormat) error {
	p.CloseAudio()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil {
		return fmt.Errorf("audio context not initialized")
	}

	bps := format.Rate * format.Channels * format.Sample.BytesPerSample()
	capacity := bps * p.bufferMS / 1000
	if capacity < 1 {
		capacity = 1
	}
	p.rb = ringbuffer.New(capacity)
	p.format = format
	p.paused = false
	p.timeBaseMS = 0
	p.played = 0
	p.gen++

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgoFormat(format.Sample)
	cfg.Playback.Channels = uint32(format.Channels)
	cfg.SampleRate = uint32(format.Rate)

	callbacks := malgo.DeviceCallbacks{
		Data: p.onPull,
	}
	device, err := malgo.InitDevice(p.ctx.Context, cfg, callbacks)
	if err != nil {
		p.rb = nil
		return fmt.Errorf("opening playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		p.rb = nil
		return fmt.Errorf("starting playback device: %w", err)
	}
	p.device = device
	p.open = true
	p.logger.Debug("playback device opened",
		"rate", format.Rate, "channels", format.Channels, "buffer_bytes", capacity)
	return nil
}

// onPull feeds the device from the ring buffer. Underruns and pauses play
// silence; miniaudio zeroes the output buffer before each callback.
func (p *Provider) onPull(out, _ []byte, frameCount uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open || p.paused || p.rb.Length() == 0 {
		return
	}
	n, _ := p.rb.Read(out)
	p.played += n
	p.cond.Broadcast()
}

func (p *Provider) CloseAudio() {
	p.mu.Lock()
	device := p.device
	p.device = nil
	p.open = false
	p.rb = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	// Uninit outside the lock; the data callback may be mid-flight.
	if device != nil {
		device.Uninit()
	}
}

func (p *Provider) BufferFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return 0
	}
	return p.rb.Free()
}

func (p *Provider) PeriodWait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.gen
	for p.open && p.gen == gen && p.rb.Free() == 0 {
		p.cond.Wait()
	}
}

func (p *Provider) WriteAudio(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	p.rb.Write(data)
	p.cond.Broadcast()
}

func (p *Provider) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.gen
	for p.open && p.gen == gen && p.rb.Length() > 0 {
		p.cond.Wait()
	}
}

func (p *Provider) OutputTime() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	bps := p.format.Rate * p.format.Channels * p.format.Sample.BytesPerSample()
	if bps == 0 {
		return p.timeBaseMS
	}
	return p.timeBaseMS + p.played*1000/bps
}

func (p *Provider) Pause(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
	p.cond.Broadcast()
}

func (p *Provider) Flush(timeMS int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rb != nil {
		p.rb.Reset()
	}
	p.timeBaseMS = timeMS
	p.played = 0
	p.gen++
	p.cond.Broadcast()
}
