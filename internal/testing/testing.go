// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"sync"

	"github.com/Ionic/audacious/internal/plugin"
)

// NewHeader builds a valid provider header for test doubles.
func NewHeader(t plugin.Type, name string, priority int) plugin.Header {
	return plugin.Header{
		Magic:    plugin.Magic,
		Version:  plugin.Version,
		Type:     t,
		Name:     name,
		Priority: priority,
	}
}

// Base gives test doubles the lifecycle half of [plugin.Plugin].
type Base struct {
	Hdr     plugin.Header
	InitErr error

	InitCalls    int
	CleanupCalls int
}

func (b *Base) Header() *plugin.Header { return &b.Hdr }

func (b *Base) Init() error {
	b.InitCalls++
	return b.InitErr
}

func (b *Base) Cleanup() { b.CleanupCalls++ }

// FakePlaylist is a configurable playlist provider double.
type FakePlaylist struct {
	Base

	LoadTitle   string
	LoadEntries []plugin.Entry
	LoadErr     error
	SaveErr     error

	LoadCalls int
	SaveCalls int
	SavedURI  string
	Saved     []plugin.Entry
}

func (f *FakePlaylist) Load(uri string, r io.Reader) (string, []plugin.Entry, error) {
	f.LoadCalls++
	if f.LoadErr != nil {
		return "", nil, f.LoadErr
	}
	return f.LoadTitle, f.LoadEntries, nil
}

func (f *FakePlaylist) Save(uri string, w io.Writer, title string, entries []plugin.Entry) error {
	f.SaveCalls++
	f.SavedURI = uri
	f.Saved = append([]plugin.Entry(nil), entries...)
	return f.SaveErr
}

// FakeLoadOnlyPlaylist is a playlist provider without save capability.
type FakeLoadOnlyPlaylist struct {
	Base
}

func (f *FakeLoadOnlyPlaylist) Load(uri string, r io.Reader) (string, []plugin.Entry, error) {
	return "", nil, nil
}

// FakeInput is a configurable input provider double.
type FakeInput struct {
	Base

	Recognized bool
	Tuple      plugin.Tuple
	TupleErr   error
	PlayErr    error

	// PlayFunc, when set, replaces the default Play behavior.
	PlayFunc func(uri string, r io.Reader, sink plugin.PlaybackSink) error

	RecognizeCalls int
	PlayCalls      int
}

func (f *FakeInput) Recognize(uri string, r io.Reader) bool {
	f.RecognizeCalls++
	return f.Recognized
}

func (f *FakeInput) ReadTuple(uri string, r io.Reader) (plugin.Tuple, error) {
	return f.Tuple, f.TupleErr
}

func (f *FakeInput) Play(uri string, r io.Reader, sink plugin.PlaybackSink) error {
	f.PlayCalls++
	if f.PlayFunc != nil {
		return f.PlayFunc(uri, r, sink)
	}
	return f.PlayErr
}

// FakeEffect is a configurable effect double that records call order into
// a shared trace.
type FakeEffect struct {
	Base

	// Trace, when shared across several effects, records the order in
	// which Process and Flush reach each of them.
	Trace *CallTrace

	// StartChannels/StartRate rewrite the stream format when non-zero.
	StartChannels int
	StartRate     int

	FlushAnswer plugin.FlushDecision
	DelayAdd    int // added by AdjustDelay

	ProcessCalls int
	FlushCalls   int
	FinishCalls  int
}

func (f *FakeEffect) Start(channels, rate *int) {
	if f.StartChannels != 0 {
		*channels = f.StartChannels
	}
	if f.StartRate != 0 {
		*rate = f.StartRate
	}
}

func (f *FakeEffect) Process(data []float32) []float32 {
	f.ProcessCalls++
	if f.Trace != nil {
		f.Trace.Add(f.Hdr.Name)
	}
	return data
}

func (f *FakeEffect) Finish(data []float32, endOfPlaylist bool) []float32 {
	f.FinishCalls++
	return f.Process(data)
}

func (f *FakeEffect) Flush(force bool) plugin.FlushDecision {
	f.FlushCalls++
	if f.Trace != nil {
		f.Trace.Add("flush:" + f.Hdr.Name)
	}
	if force {
		return plugin.FlushPropagate
	}
	return f.FlushAnswer
}

func (f *FakeEffect) AdjustDelay(delayMS int) int { return delayMS + f.DelayAdd }

func (f *FakeEffect) PreservesFormat() bool {
	return f.StartChannels == 0 && f.StartRate == 0
}

// CallTrace is a goroutine-safe ordered record of named events.
type CallTrace struct {
	mu     sync.Mutex
	events []string
}

func (c *CallTrace) Add(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *CallTrace) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

// FakeOutput implements the full output contract against an in-memory
// buffer, recording open/close/flush calls for assertions.
type FakeOutput struct {
	Base

	Reopen   bool // ForceReopen answer
	Capacity int  // buffer capacity in bytes; defaults to 4096
	OpenErr  error

	mu      sync.Mutex
	cond    *sync.Cond
	opened  bool
	paused  bool
	flushed bool
	buf     int // bytes currently buffered
	timeMS  int
	vol     plugin.StereoVolume

	OpenCalls  []plugin.AudioFormat
	CloseCalls int
	FlushCalls int
	Written    []byte
	// MaxWrite records the largest single WriteAudio size observed.
	MaxWrite int
}

func (f *FakeOutput) ensure() {
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	if f.Capacity == 0 {
		f.Capacity = 4096
	}
}

func (f *FakeOutput) ForceReopen() bool { return f.Reopen }

func (f *FakeOutput) Volume() plugin.StereoVolume { return f.vol }

func (f *FakeOutput) SetVolume(v plugin.StereoVolume) { f.vol = v }

func (f *FakeOutput) OpenAudio(format plugin.AudioFormat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.OpenCalls = append(f.OpenCalls, format)
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.opened = true
	f.buf = 0
	f.timeMS = 0
	return nil
}

func (f *FakeOutput) CloseAudio() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalls++
	f.opened = false
}

func (f *FakeOutput) BufferFree() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	return f.Capacity - f.buf
}

func (f *FakeOutput) PeriodWait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.flushed = false
	for f.buf >= f.Capacity && !f.flushed {
		f.cond.Wait()
	}
}

func (f *FakeOutput) WriteAudio(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	if len(data) > f.MaxWrite {
		f.MaxWrite = len(data)
	}
	f.Written = append(f.Written, data...)
	f.buf += len(data)
}

// DrainBuffered simulates the device consuming n buffered bytes.
func (f *FakeOutput) DrainBuffered(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	if n > f.buf {
		n = f.buf
	}
	f.buf -= n
	f.cond.Broadcast()
}

func (f *FakeOutput) Drain() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = 0
}

func (f *FakeOutput) OutputTime() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeMS
}

func (f *FakeOutput) Pause(paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
}

func (f *FakeOutput) Flush(timeMS int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.FlushCalls++
	f.buf = 0
	f.timeMS = timeMS
	f.flushed = true
	f.cond.Broadcast()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
