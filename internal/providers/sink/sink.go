// package sink implements the built-in output providers: a clocked null
// output for silent playback and a file output that renders the stream to
// a WAV file.
package sink

import (
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/smallnest/ringbuffer"
)

// ring buffers PCM between the pipeline's writer and an output's consumer.
// All waiting is condition based; a flush bumps the generation so waiters
// parked in PeriodWait or Drain return promptly.
type ring struct {
	mu   sync.Mutex
	cond *sync.Cond

	rb     *ringbuffer.RingBuffer
	open   bool
	paused bool
	gen    int

	format     plugin.AudioFormat
	timeBaseMS int
	consumed   int // bytes consumed since the last flush
}

func newRing() *ring {
	r := &ring{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *ring) openBuffer(format plugin.AudioFormat, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rb = ringbuffer.New(capacity)
	r.format = format
	r.open = true
	r.paused = false
	r.timeBaseMS = 0
	r.consumed = 0
	r.gen++
	r.cond.Broadcast()
}

func (r *ring) closeBuffer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = false
	r.rb = nil
	r.cond.Broadcast()
}

func (r *ring) bytesPerSecond() int {
	return r.format.Rate * r.format.Channels * r.format.Sample.BytesPerSample()
}

func (r *ring) free() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return 0
	}
	return r.rb.Free()
}

// periodWait blocks until space frees up, the buffer closes, or a flush
// intervenes.
func (r *ring) periodWait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.gen
	for r.open && r.gen == gen && r.rb.Free() == 0 {
		r.cond.Wait()
	}
}

func (r *ring) write(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return
	}
	r.rb.Write(data)
	r.cond.Broadcast()
}

// consume pulls up to max buffered bytes for the output's consumer. It
// returns nil when paused, closed, or empty.
func (r *ring) consume(max int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open || r.paused || r.rb.Length() == 0 {
		return nil
	}
	n := r.rb.Length()
	if n > max {
		n = max
	}
	buf := make([]byte, n)
	read, _ := r.rb.Read(buf)
	r.consumed += read
	r.cond.Broadcast()
	return buf[:read]
}

// drain blocks until the buffer empties, interruptible by flush or close.
func (r *ring) drain() {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.gen
	for r.open && r.gen == gen && r.rb.Length() > 0 {
		r.cond.Wait()
	}
}

func (r *ring) flush(timeMS int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rb != nil {
		r.rb.Reset()
	}
	r.timeBaseMS = timeMS
	r.consumed = 0
	r.gen++
	r.cond.Broadcast()
}

func (r *ring) pause(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = paused
	r.cond.Broadcast()
}

func (r *ring) outputTime() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	bps := r.bytesPerSecond()
	if bps == 0 {
		return r.timeBaseMS
	}
	return r.timeBaseMS + r.consumed*1000/bps
}

// volume is the shared left/right gain state of the built-in outputs.
type volume struct {
	mu sync.Mutex
	v  plugin.StereoVolume
}

func newVolume() *volume {
	return &volume{v: plugin.StereoVolume{Left: 100, Right: 100}}
}

func (s *volume) get() plugin.StereoVolume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

func (s *volume) set(v plugin.StereoVolume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
}
