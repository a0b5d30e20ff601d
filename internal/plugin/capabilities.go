package plugin

import "io"

// SampleFormat identifies the PCM sample representation handed to an
// output provider.
type SampleFormat int

const (
	FmtFloat32 SampleFormat = iota // native-endian 32-bit float
	FmtS16                         // native-endian signed 16-bit
)

// BytesPerSample returns the byte width of one sample in this format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FmtS16:
		return 2
	default:
		return 4
	}
}

// AudioFormat describes a PCM stream. Passed by value between pipeline
// stages; it only changes at pipeline (re)configuration, never mid-buffer.
type AudioFormat struct {
	Sample   SampleFormat
	Rate     int
	Channels int
}

// FrameSize returns the byte width of one frame (one sample per channel).
func (f AudioFormat) FrameSize() int {
	return f.Sample.BytesPerSample() * f.Channels
}

// OpenMode selects the direction of a transport handle.
type OpenMode int

const (
	ModeRead  OpenMode = iota // read-only, non-seekable
	ModeWrite                 // write-only, non-seekable
)

// TransportPlugin handles I/O for its declared URI schemes.
type TransportPlugin interface {
	Plugin

	// Open returns a handle for the URI. The handle is a plain byte
	// stream; callers never seek it.
	Open(uri string, mode OpenMode) (io.ReadWriteCloser, error)
}

// Tuple carries the metadata for one playlist entry or decoded stream.
type Tuple struct {
	Title    string
	Artist   string
	Album    string
	LengthMS int
}

// Entry is one playlist item. Ownership stays with the caller of
// load/save; playlist providers only fill or read it.
type Entry struct {
	URI   string
	Tuple Tuple
}

// PlaylistPlugin reads playlist documents. The on-disk byte format belongs
// entirely to the provider. The reader is read-only and not seekable.
type PlaylistPlugin interface {
	Plugin

	Load(uri string, r io.Reader) (title string, entries []Entry, err error)
}

// PlaylistSaver is the optional save half of a playlist provider. The
// writer is write-only and not seekable.
type PlaylistSaver interface {
	Save(uri string, w io.Writer, title string, entries []Entry) error
}

// PlaybackSink is what an input provider decodes into. The pipeline
// supplies the implementation when it drives Play.
type PlaybackSink interface {
	// OpenAudio configures the stream format before the first Write.
	OpenAudio(format AudioFormat) error

	// Write pushes decoded interleaved float samples downstream. It blocks
	// on backpressure and returns an error once the session is stopped.
	Write(samples []float32) error

	// Aborted reports whether the session was stopped; decoders should
	// poll it between chunks and bail out promptly.
	Aborted() bool
}

// InputPlugin decodes audio streams. For providers declaring their own URI
// schemes, the reader passed to these methods is nil and the provider does
// its own I/O.
type InputPlugin interface {
	Plugin

	// Recognize reports whether the provider can handle the stream. Used
	// during content sniffing; it may consume the reader.
	Recognize(uri string, r io.Reader) bool

	// ReadTuple extracts metadata without decoding the whole stream.
	ReadTuple(uri string, r io.Reader) (Tuple, error)

	// Play decodes the stream into the sink until end of stream, error, or
	// sink abort.
	Play(uri string, r io.Reader, sink PlaybackSink) error
}

// FlushDecision is an effect's answer to a flush request, folded across
// the chain in processing order.
type FlushDecision int

const (
	// FlushPropagate: buffers discarded, continue downstream.
	FlushPropagate FlushDecision = iota

	// FlushStop: the effect handles the flush itself (a crossfade, for
	// example); downstream effects must not be flushed this cycle.
	FlushStop

	// FlushStopWithError: the effect failed mid-flush; stop and surface.
	FlushStopWithError
)

// EffectPlugin processes float PCM between input and output. Effects run
// in ascending Header.Order; ties break by admission order.
type EffectPlugin interface {
	Plugin

	// Start is called when the pipeline opens. An effect may rewrite the
	// channel count or rate, which propagates to the next stage. Neither
	// may change mid-stream.
	Start(channels, rate *int)

	// Process may transform samples in place and return its input slice,
	// or return an internally owned buffer. Callers must not assume buffer
	// identity across calls. Output length need not match input length.
	Process(data []float32) []float32

	// Finish is Process plus a drain of any internal buffering. It is
	// called a second time at the end of the last song in the playlist.
	Finish(data []float32, endOfPlaylist bool) []float32

	// Flush discards buffered audio on seek or stop. force true overrides
	// any FlushStop answer and always propagates.
	Flush(force bool) FlushDecision

	// AdjustDelay translates delayMS from the output time domain back to
	// the input time domain and adds the effect's own read-ahead, in ms.
	AdjustDelay(delayMS int) int

	// PreservesFormat reports that the effect never changes channel count
	// or rate, allowing smoother enable/disable.
	PreservesFormat() bool
}

// StereoVolume is a left/right channel volume pair, 0 to 100.
type StereoVolume struct {
	Left  int
	Right int
}

// OutputPlugin is an audio sink. A single instance never receives two
// overlapping calls for the same pipeline; the pipeline serializes access.
type OutputPlugin interface {
	Plugin

	// ForceReopen requires CloseAudio/OpenAudio between songs even when
	// the format is unchanged. Defeats gapless playback.
	ForceReopen() bool

	Volume() StereoVolume
	SetVolume(v StereoVolume)

	// OpenAudio begins playback of a PCM stream in the given format.
	OpenAudio(format AudioFormat) error

	// CloseAudio ends playback; buffered data is discarded.
	CloseAudio()

	// BufferFree returns how many bytes the next WriteAudio may carry.
	BufferFree() int

	// PeriodWait blocks until BufferFree would return a positive value. It
	// must return immediately if Flush is called concurrently.
	PeriodWait()

	// WriteAudio buffers data in the format given to OpenAudio. Callers
	// never pass more than the last reported BufferFree size.
	WriteAudio(data []byte)

	// Drain blocks until all buffered data has been heard. Interruptible
	// by a concurrent Flush.
	Drain()

	// OutputTime returns milliseconds of audio heard by the user.
	OutputTime() int

	// Pause stops or resumes consumption; WriteAudio is not called while
	// paused.
	Pause(paused bool)

	// Flush discards buffered audio and resets the time counter to timeMS.
	Flush(timeMS int)
}

// VisPlugin renders visualizations. Called only from the main thread.
type VisPlugin interface {
	Plugin

	// Clear resets internal state and clears the display.
	Clear()

	// RenderMultiPCM receives interleaved multi-channel PCM frames.
	RenderMultiPCM(pcm []float32, channels int)
}

// GeneralPlugin is a general-purpose extension. Called only from the main
// thread, never concurrently with other main-thread providers.
type GeneralPlugin interface {
	Plugin
}

// IfacePlugin drives a user interface. Called only from the main thread.
type IfacePlugin interface {
	Plugin

	Show(show bool)
	Run() error
	Quit()
}
