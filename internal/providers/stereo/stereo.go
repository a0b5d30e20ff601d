// package stereo implements a channel mixing effect. It remixes the stream
// to a fixed channel count: mono sources are duplicated up, multichannel
// sources are averaged down.
package stereo

import (
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
)

var header = plugin.Header{
	Magic:   plugin.Magic,
	Version: plugin.Version,
	Type:    plugin.Effect,
	Name:    "mixer",
	About:   "channel mixer",
	Order:   5,
}

// Provider remixes audio to a target channel count.
type Provider struct {
	mu     sync.Mutex
	target int

	in  int
	out int
	buf []float32
}

// New creates a mixer producing the given channel count. Counts below one
// fall back to stereo.
func New(target int) *Provider {
	if target < 1 {
		target = 2
	}
	return &Provider{target: target}
}

func (p *Provider) Header() *plugin.Header { return &header }

func (p *Provider) Init() error { return nil }

func (p *Provider) Cleanup() {}

// Start records the source layout and rewrites the channel count seen by
// the next stage.
func (p *Provider) Start(channels, rate *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in = *channels
	p.out = p.target
	*channels = p.target
}

func (p *Provider) Process(data []float32) []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.in == p.out || p.in == 0 {
		return data
	}

	frames := len(data) / p.in
	need := frames * p.out
	if cap(p.buf) < need {
		p.buf = make([]float32, need)
	}
	out := p.buf[:need]

	switch {
	case p.in == 1:
		// Duplicate the single source channel.
		for f := 0; f < frames; f++ {
			s := data[f]
			for c := 0; c < p.out; c++ {
				out[f*p.out+c] = s
			}
		}
	case p.out == 1:
		// Average all source channels.
		scale := 1 / float32(p.in)
		for f := 0; f < frames; f++ {
			var sum float32
			for c := 0; c < p.in; c++ {
				sum += data[f*p.in+c]
			}
			out[f] = sum * scale
		}
	default:
		// General case: map source channels onto target channels,
		// averaging where several sources land on the same target.
		for i := range out {
			out[i] = 0
		}
		counts := make([]int, p.out)
		for c := 0; c < p.in; c++ {
			t := c
			if t >= p.out {
				t = p.out - 1
			}
			counts[t]++
		}
		for f := 0; f < frames; f++ {
			for c := 0; c < p.in; c++ {
				t := c
				if t >= p.out {
					t = p.out - 1
				}
				out[f*p.out+t] += data[f*p.in+c]
			}
			for t := 0; t < p.out; t++ {
				if counts[t] > 1 {
					out[f*p.out+t] /= float32(counts[t])
				}
			}
		}
	}
	return out
}

func (p *Provider) Finish(data []float32, endOfPlaylist bool) []float32 {
	return p.Process(data)
}

func (p *Provider) Flush(force bool) plugin.FlushDecision {
	return plugin.FlushPropagate
}

func (p *Provider) AdjustDelay(delayMS int) int { return delayMS }

func (p *Provider) PreservesFormat() bool { return false }
