// package eq implements the built-in ten band equalizer effect.
package eq

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/Ionic/audacious/internal/plugin"
)

// NBands is the number of equalizer bands.
const NBands = 10

// MaxGain bounds band and preamp gain to +/- 12 dB.
const MaxGain = 12

// bandFreqs are the ISO octave band centers, in Hz.
var bandFreqs = [NBands]float64{
	31.25, 62.5, 125, 250, 500, 1000, 2000, 4000, 8000, 16000,
}

const bandQ = 1.2247

var header = plugin.Header{
	Magic:   plugin.Magic,
	Version: plugin.Version,
	Type:    plugin.Effect,
	Name:    "equalizer",
	About:   "10-band graphic equalizer",
	Order:   0,
}

// Preset is a named snapshot of equalizer settings.
type Preset struct {
	Name   string          `toml:"name"`
	Preamp float64         `toml:"preamp"`
	Bands  [NBands]float64 `toml:"bands"`
}

// presetFile is the on-disk shape: one or more presets per file.
type presetFile struct {
	Presets []Preset `toml:"preset"`
}

// LoadPresetFile reads all presets stored in a TOML file.
func LoadPresetFile(path string) ([]Preset, error) {
	var pf presetFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, fmt.Errorf("loading presets from %s: %w", path, err)
	}
	return pf.Presets, nil
}

// SavePresetFile writes presets to a TOML file, replacing its contents.
func SavePresetFile(path string, presets []Preset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving presets to %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(presetFile{Presets: presets}); err != nil {
		return fmt.Errorf("saving presets to %s: %w", path, err)
	}
	return nil
}

// biquad is one second order peaking filter with its running state.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// peakingCoeffs computes the filter for one band at the given rate.
func peakingCoeffs(freq, gainDB float64, rate int) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / float64(rate)
	alpha := math.Sin(w0) / (2 * bandQ)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha/a
	return biquad{
		b0: (1 + alpha*a) / a0,
		b1: -2 * cosw0 / a0,
		b2: (1 - alpha*a) / a0,
		a1: -2 * cosw0 / a0,
		a2: (1 - alpha/a) / a0,
	}
}

func clampGain(g float64) float64 {
	return math.Max(-MaxGain, math.Min(MaxGain, g))
}

// Provider applies a cascade of peaking filters, one per band, to every
// channel independently.
type Provider struct {
	mu sync.Mutex

	preamp float64
	bands  [NBands]float64

	channels int
	rate     int
	// filters[channel][band]
	filters [][]biquad
}

// New creates an equalizer with flat settings.
func New() *Provider { return &Provider{} }

func (p *Provider) Header() *plugin.Header { return &header }

func (p *Provider) Init() error { return nil }

func (p *Provider) Cleanup() {}

// SetBand sets one band's gain in dB, clamped to the legal range.
func (p *Provider) SetBand(band int, gainDB float64) {
	if band < 0 || band >= NBands {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bands[band] = clampGain(gainDB)
	p.rebuild()
}

// Band returns one band's gain in dB.
func (p *Provider) Band(band int) float64 {
	if band < 0 || band >= NBands {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bands[band]
}

// SetBands replaces all band gains at once.
func (p *Provider) SetBands(gains [NBands]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, g := range gains {
		p.bands[i] = clampGain(g)
	}
	p.rebuild()
}

// Bands returns a copy of all band gains.
func (p *Provider) Bands() [NBands]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bands
}

// SetPreamp sets the overall gain in dB, clamped to the legal range.
func (p *Provider) SetPreamp(gainDB float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preamp = clampGain(gainDB)
}

// Preamp returns the overall gain in dB.
func (p *Provider) Preamp() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preamp
}

// Apply installs a preset's preamp and band gains.
func (p *Provider) Apply(preset Preset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preamp = clampGain(preset.Preamp)
	for i, g := range preset.Bands {
		p.bands[i] = clampGain(g)
	}
	p.rebuild()
}

// Snapshot captures the current settings as a preset.
func (p *Provider) Snapshot(name string) Preset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Preset{Name: name, Preamp: p.preamp, Bands: p.bands}
}

// rebuild recomputes every filter for the current format. Filter state is
// discarded. Callers hold p.mu.
func (p *Provider) rebuild() {
	if p.channels == 0 || p.rate == 0 {
		p.filters = nil
		return
	}
	p.filters = make([][]biquad, p.channels)
	nyquist := float64(p.rate) / 2
	for ch := range p.filters {
		p.filters[ch] = make([]biquad, 0, NBands)
		for band, freq := range bandFreqs {
			if freq >= nyquist || p.bands[band] == 0 {
				continue
			}
			p.filters[ch] = append(p.filters[ch], peakingCoeffs(freq, p.bands[band], p.rate))
		}
	}
}

func (p *Provider) Start(channels, rate *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = *channels
	p.rate = *rate
	p.rebuild()
}

func (p *Provider) Process(data []float32) []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channels == 0 {
		return data
	}

	gain := float32(math.Pow(10, p.preamp/20))
	for i := range data {
		s := float64(data[i] * gain)
		chain := p.filters[i%p.channels]
		for b := range chain {
			s = chain[b].process(s)
		}
		data[i] = float32(s)
	}
	return data
}

func (p *Provider) Finish(data []float32, endOfPlaylist bool) []float32 {
	return p.Process(data)
}

func (p *Provider) Flush(force bool) plugin.FlushDecision {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.filters {
		for b := range p.filters[ch] {
			p.filters[ch][b].reset()
		}
	}
	return plugin.FlushPropagate
}

func (p *Provider) AdjustDelay(delayMS int) int { return delayMS }

func (p *Provider) PreservesFormat() bool { return true }

// TakeMessage accepts bus messages: "eq:reset" zeroes all gains,
// "eq:preset" applies the first preset in the file named by the payload.
func (p *Provider) TakeMessage(code string, data []byte) int {
	switch code {
	case "eq:reset":
		p.Apply(Preset{})
		return 0
	case "eq:preset":
		presets, err := LoadPresetFile(string(data))
		if err != nil || len(presets) == 0 {
			return 1
		}
		p.Apply(presets[0])
		return 0
	default:
		return -1
	}
}
