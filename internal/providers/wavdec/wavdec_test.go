package wavdec

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// collectSink gathers everything a decode session pushes downstream.
type collectSink struct {
	format  plugin.AudioFormat
	samples []float32
	abort   bool
}

func (s *collectSink) OpenAudio(f plugin.AudioFormat) error {
	s.format = f
	return nil
}

func (s *collectSink) Write(samples []float32) error {
	s.samples = append(s.samples, samples...)
	return nil
}

func (s *collectSink) Aborted() bool { return s.abort }

// writeTestWAV produces a 16-bit mono file holding a short ramp.
func writeTestWAV(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ramp.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	data := make([]int, frames)
	for i := range data {
		data[i] = i * 100
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecognize(t *testing.T) {
	p := New()

	path := writeTestWAV(t, 64)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !p.Recognize(path, f) {
		t.Error("valid WAV not recognized")
	}

	if p.Recognize("x.bin", strings.NewReader("definitely not riff data")) {
		t.Error("arbitrary bytes recognized as WAV")
	}
	if p.Recognize("x.bin", strings.NewReader("RIF")) {
		t.Error("truncated stream recognized as WAV")
	}
}

func TestReadTuple(t *testing.T) {
	p := New()
	path := writeTestWAV(t, 8000) // one second at 8 kHz

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tuple, err := p.ReadTuple(path, f)
	if err != nil {
		t.Fatalf("ReadTuple() error: %v", err)
	}
	if tuple.Title != "ramp" {
		t.Errorf("title = %q, want ramp", tuple.Title)
	}
	if tuple.LengthMS < 900 || tuple.LengthMS > 1100 {
		t.Errorf("length = %dms, want ~1000ms", tuple.LengthMS)
	}
}

func TestPlayDecodesAllFrames(t *testing.T) {
	p := New()
	const frames = 5000
	path := writeTestWAV(t, frames)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sink := &collectSink{}
	if err := p.Play(path, f, sink); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	if sink.format.Rate != 8000 || sink.format.Channels != 1 {
		t.Errorf("format = %+v, want mono 8000 Hz", sink.format)
	}
	if len(sink.samples) != frames {
		t.Errorf("decoded %d samples, want %d", len(sink.samples), frames)
	}

	// Sample 100 holds 100*100 = 10000 in 16-bit space.
	want := float64(10000) / 32768
	if math.Abs(float64(sink.samples[100])-want) > 1e-4 {
		t.Errorf("sample 100 = %f, want %f", sink.samples[100], want)
	}
}

// writeTestWAV8 produces an 8-bit mono file from raw unsigned byte values.
func writeTestWAV8(t *testing.T, values []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eight.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, 8, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           values,
		SourceBitDepth: 8,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlayRecentersEightBit(t *testing.T) {
	p := New()

	// 8-bit WAV is unsigned: 0x80 is silence, 0x00 the negative rail.
	values := make([]int, 256)
	for i := range values {
		values[i] = 0x80
	}
	values[0] = 0x00
	values[1] = 0xFF

	path := writeTestWAV8(t, values)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sink := &collectSink{}
	if err := p.Play(path, f, sink); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if len(sink.samples) != len(values) {
		t.Fatalf("decoded %d samples, want %d", len(sink.samples), len(values))
	}

	if got := float64(sink.samples[0]); math.Abs(got-(-1)) > 1e-4 {
		t.Errorf("sample 0 = %f, want -1", got)
	}
	if got := float64(sink.samples[1]); math.Abs(got-float64(127)/128) > 1e-4 {
		t.Errorf("sample 1 = %f, want %f", got, float64(127)/128)
	}
	for i := 2; i < len(sink.samples); i++ {
		if math.Abs(float64(sink.samples[i])) > 1e-4 {
			t.Fatalf("sample %d = %f, want silence", i, sink.samples[i])
		}
	}
}

func TestPlayAbortStopsEarly(t *testing.T) {
	p := New()
	path := writeTestWAV(t, 64)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sink := &collectSink{abort: true}
	if err := p.Play(path, f, sink); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if len(sink.samples) != 0 {
		t.Errorf("aborted session pushed %d samples", len(sink.samples))
	}
}

func TestPlayRejectsGarbage(t *testing.T) {
	p := New()
	sink := &collectSink{}
	if err := p.Play("x.wav", strings.NewReader("garbage"), sink); err == nil {
		t.Error("expected error decoding garbage")
	}
}
