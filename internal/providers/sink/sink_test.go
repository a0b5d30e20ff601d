package sink

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/go-audio/wav"
)

var testFormat = plugin.AudioFormat{
	Sample:   plugin.FmtS16,
	Rate:     8000,
	Channels: 1,
}

func TestNullConsumesInRealTime(t *testing.T) {
	n := NewNull(500, false)
	if err := n.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}
	defer n.CloseAudio()

	// 8000 Hz mono 16-bit is 16 bytes per millisecond. A quarter second
	// of audio should be consumed well within a second.
	data := make([]byte, 4000)
	n.WriteAudio(data)

	deadline := time.After(2 * time.Second)
	for n.OutputTime() < 200 {
		select {
		case <-deadline:
			t.Fatalf("output time stuck at %dms", n.OutputTime())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNullPauseStopsTheClock(t *testing.T) {
	n := NewNull(500, false)
	if err := n.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}
	defer n.CloseAudio()

	n.Pause(true)
	n.WriteAudio(make([]byte, 4000))
	time.Sleep(100 * time.Millisecond)
	if got := n.OutputTime(); got != 0 {
		t.Errorf("paused output advanced to %dms", got)
	}

	n.Pause(false)
	deadline := time.After(2 * time.Second)
	for n.OutputTime() == 0 {
		select {
		case <-deadline:
			t.Fatal("output time never advanced after resume")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNullFlushResetsTimeAndUnblocksWait(t *testing.T) {
	n := NewNull(100, false)
	if err := n.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}
	defer n.CloseAudio()
	n.Pause(true) // freeze consumption so the buffer stays full

	free := n.BufferFree()
	n.WriteAudio(make([]byte, free))

	waited := make(chan struct{})
	go func() {
		n.PeriodWait()
		close(waited)
	}()

	time.Sleep(20 * time.Millisecond)
	n.Flush(5000)

	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("PeriodWait not released by Flush")
	}
	if got := n.OutputTime(); got != 5000 {
		t.Errorf("output time = %dms, want 5000", got)
	}
	if n.BufferFree() != free {
		t.Errorf("buffer not emptied by flush: free = %d, want %d", n.BufferFree(), free)
	}
}

func TestNullDrainWaitsForSilence(t *testing.T) {
	n := NewNull(500, false)
	if err := n.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}
	defer n.CloseAudio()

	n.WriteAudio(make([]byte, 800)) // 50ms of audio

	start := time.Now()
	n.Drain()
	if n.BufferFree() != 500*16 {
		t.Error("drain returned with data still buffered")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("drain took unreasonably long")
	}
}

func TestNullVolumeRoundTrip(t *testing.T) {
	n := NewNull(0, true)
	if !n.ForceReopen() {
		t.Error("ForceReopen() = false, want true")
	}
	if v := n.Volume(); v.Left != 100 || v.Right != 100 {
		t.Errorf("default volume = %+v, want full", v)
	}
	n.SetVolume(plugin.StereoVolume{Left: 30, Right: 70})
	if v := n.Volume(); v.Left != 30 || v.Right != 70 {
		t.Errorf("volume = %+v", v)
	}
}

func TestFileWritesPlayableWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w := NewFile(path, false)
	if err := w.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}

	// 100 frames of a constant 16-bit value.
	data := make([]byte, 200)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(int16(1000)))
	}
	w.WriteAudio(data)
	w.CloseAudio()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid WAV file")
	}
	if len(buf.Data) != 100 {
		t.Fatalf("decoded %d samples, want 100", len(buf.Data))
	}
	if buf.Data[0] != 1000 {
		t.Errorf("sample 0 = %d, want 1000", buf.Data[0])
	}
}

func TestFileConvertsFloatInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w := NewFile(path, false)
	format := plugin.AudioFormat{Sample: plugin.FmtFloat32, Rate: 8000, Channels: 1}
	if err := w.OpenAudio(format); err != nil {
		t.Fatal(err)
	}

	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], floatBits(0.5))
	binary.LittleEndian.PutUint32(data[4:], floatBits(-2)) // clips to -1
	w.WriteAudio(data)
	w.CloseAudio()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf.Data) != 2 {
		t.Fatalf("decoded %d samples, want 2", len(buf.Data))
	}
	if buf.Data[0] < 16000 || buf.Data[0] > 16767 {
		t.Errorf("sample 0 = %d, want about half scale", buf.Data[0])
	}
	if buf.Data[1] != -32767 {
		t.Errorf("sample 1 = %d, want clipped to -32767", buf.Data[1])
	}
}

func TestFileOutputTimeTracksWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w := NewFile(path, false)
	if err := w.OpenAudio(testFormat); err != nil {
		t.Fatal(err)
	}
	defer w.CloseAudio()

	w.WriteAudio(make([]byte, 1600)) // 100ms at 16 bytes/ms
	if got := w.OutputTime(); got != 100 {
		t.Errorf("output time = %dms, want 100", got)
	}
	w.Flush(30000)
	if got := w.OutputTime(); got != 30000 {
		t.Errorf("output time after flush = %dms, want 30000", got)
	}
}

func floatBits(f float32) uint32 { return math.Float32bits(f) }
