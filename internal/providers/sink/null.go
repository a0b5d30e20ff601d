package sink

import (
	"sync"
	"time"

	"github.com/Ionic/audacious/internal/plugin"
)

const nullTick = 10 * time.Millisecond

var nullHeader = plugin.Header{
	Magic:    plugin.Magic,
	Version:  plugin.Version,
	Type:     plugin.Output,
	Name:     "null",
	About:    "clocked null output",
	Priority: 10,
}

// Null discards audio while consuming it in real time, so playback
// position, buffering, and drains behave as they would on hardware.
type Null struct {
	ring   *ring
	vol    *volume
	reopen bool

	bufferMS int

	mu   sync.Mutex
	done chan struct{}
}

// NewNull creates a null output with the given buffer depth.
func NewNull(bufferMS int, forceReopen bool) *Null {
	if bufferMS <= 0 {
		bufferMS = 500
	}
	return &Null{
		ring:     newRing(),
		vol:      newVolume(),
		reopen:   forceReopen,
		bufferMS: bufferMS,
	}
}

func (n *Null) Header() *plugin.Header { return &nullHeader }

func (n *Null) Init() error { return nil }

func (n *Null) Cleanup() { n.CloseAudio() }

func (n *Null) ForceReopen() bool { return n.reopen }

func (n *Null) Volume() plugin.StereoVolume { return n.vol.get() }

func (n *Null) SetVolume(v plugin.StereoVolume) { n.vol.set(v) }

func (n *Null) OpenAudio(format plugin.AudioFormat) error {
	n.CloseAudio()

	bps := format.Rate * format.Channels * format.Sample.BytesPerSample()
	capacity := bps * n.bufferMS / 1000
	if capacity < 1 {
		capacity = 1
	}
	n.ring.openBuffer(format, capacity)

	n.mu.Lock()
	n.done = make(chan struct{})
	done := n.done
	n.mu.Unlock()

	go n.consumeLoop(bps, done)
	return nil
}

// consumeLoop eats buffered bytes at the stream's real-time rate.
func (n *Null) consumeLoop(bytesPerSecond int, done chan struct{}) {
	perTick := bytesPerSecond * int(nullTick/time.Millisecond) / 1000
	if perTick < 1 {
		perTick = 1
	}
	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n.ring.consume(perTick)
		}
	}
}

func (n *Null) CloseAudio() {
	n.mu.Lock()
	if n.done != nil {
		close(n.done)
		n.done = nil
	}
	n.mu.Unlock()
	n.ring.closeBuffer()
}

func (n *Null) BufferFree() int { return n.ring.free() }

func (n *Null) PeriodWait() { n.ring.periodWait() }

func (n *Null) WriteAudio(data []byte) { n.ring.write(data) }

func (n *Null) Drain() { n.ring.drain() }

func (n *Null) OutputTime() int { return n.ring.outputTime() }

func (n *Null) Pause(paused bool) { n.ring.pause(paused) }

func (n *Null) Flush(timeMS int) { n.ring.flush(timeMS) }
