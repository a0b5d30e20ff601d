package sink

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var fileHeader = plugin.Header{
	Magic:    plugin.Magic,
	Version:  plugin.Version,
	Type:     plugin.Output,
	Name:     "filewriter",
	About:    "WAV file writer output",
	Priority: 20,
}

// fileBufferFree is what the file writer reports as writable per call. It
// consumes synchronously, so any reasonable chunk size works.
const fileBufferFree = 64 * 1024

// File renders the stream to a 16-bit WAV file. Writes are synchronous so
// there is no buffering to drain or wait on.
type File struct {
	path   string
	vol    *volume
	reopen bool

	mu         sync.Mutex
	f          *os.File
	enc        *wav.Encoder
	format     plugin.AudioFormat
	paused     bool
	timeBaseMS int
	written    int // bytes accepted since the last flush
}

// NewFile creates a file output writing to the given path. Reopening
// truncates the file, so force reopen splits nothing and is usually off.
func NewFile(path string, forceReopen bool) *File {
	if path == "" {
		path = "audacious-out.wav"
	}
	return &File{path: path, vol: newVolume(), reopen: forceReopen}
}

func (w *File) Header() *plugin.Header { return &fileHeader }

func (w *File) Init() error { return nil }

func (w *File) Cleanup() { w.CloseAudio() }

func (w *File) ForceReopen() bool { return w.reopen }

func (w *File) Volume() plugin.StereoVolume { return w.vol.get() }

func (w *File) SetVolume(v plugin.StereoVolume) { w.vol.set(v) }

func (w *File) OpenAudio(format plugin.AudioFormat) error {
	w.CloseAudio()

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", w.path, err)
	}
	w.f = f
	w.enc = wav.NewEncoder(f, format.Rate, 16, format.Channels, 1)
	w.format = format
	w.paused = false
	w.timeBaseMS = 0
	w.written = 0
	return nil
}

func (w *File) CloseAudio() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc != nil {
		w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		w.f.Close()
		w.f = nil
	}
}

func (w *File) BufferFree() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return 0
	}
	return fileBufferFree
}

func (w *File) PeriodWait() {}

func (w *File) WriteAudio(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return
	}

	samples := w.toInts(data)
	if len(samples) == 0 {
		return
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.format.Channels, SampleRate: w.format.Rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := w.enc.Write(buf); err != nil {
		return
	}
	w.written += len(data)
}

// toInts converts raw PCM bytes into 16-bit sample values.
func (w *File) toInts(data []byte) []int {
	switch w.format.Sample {
	case plugin.FmtS16:
		out := make([]int, len(data)/2)
		for i := range out {
			out[i] = int(int16(binary.LittleEndian.Uint16(data[2*i:])))
		}
		return out
	case plugin.FmtFloat32:
		out := make([]int, len(data)/4)
		for i := range out {
			s := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			out[i] = int(s * 32767)
		}
		return out
	}
	return nil
}

func (w *File) Drain() {}

func (w *File) OutputTime() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	bps := w.format.Rate * w.format.Channels * w.format.Sample.BytesPerSample()
	if bps == 0 {
		return w.timeBaseMS
	}
	return w.timeBaseMS + w.written*1000/bps
}

func (w *File) Pause(paused bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = paused
}

func (w *File) Flush(timeMS int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeBaseMS = timeMS
	w.written = 0
}
