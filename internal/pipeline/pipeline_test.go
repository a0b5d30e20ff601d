package pipeline

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/Ionic/audacious/internal/shared"
	tu "github.com/Ionic/audacious/internal/testing"
)

func effectDesc(name string, order int, fx *tu.FakeEffect) *plugin.Descriptor {
	h := tu.NewHeader(plugin.Effect, name, 5)
	h.Order = order
	fx.Hdr = h
	return plugin.NewDescriptor(fx)
}

func outputDesc(out *tu.FakeOutput) *plugin.Descriptor {
	out.Hdr = tu.NewHeader(plugin.Output, "fake-out", 0)
	return plugin.NewDescriptor(out)
}

func mono44k() plugin.AudioFormat {
	return plugin.AudioFormat{Sample: plugin.FmtFloat32, Rate: 44100, Channels: 1}
}

func TestEffectOrderInvariantUnderRegistrationOrder(t *testing.T) {
	trace := &tu.CallTrace{}
	// Declared orders 3, 1, 2; registration order must not matter.
	e3 := &tu.FakeEffect{Trace: trace}
	e1 := &tu.FakeEffect{Trace: trace}
	e2 := &tu.FakeEffect{Trace: trace}

	p, err := Assemble(outputDesc(&tu.FakeOutput{}), []*plugin.Descriptor{
		effectDesc("three", 3, e3),
		effectDesc("one", 1, e1),
		effectDesc("two", 2, e2),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}
	if err := p.Write(make([]float32, 16)); err != nil {
		t.Fatal(err)
	}

	want := []string{"one", "two", "three"}
	got := trace.Events()
	if len(got) != len(want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace = %v, want %v", got, want)
		}
	}
}

func TestEffectOrderTieBreaksByRegistration(t *testing.T) {
	trace := &tu.CallTrace{}
	a := &tu.FakeEffect{Trace: trace}
	b := &tu.FakeEffect{Trace: trace}

	p, err := Assemble(outputDesc(&tu.FakeOutput{}), []*plugin.Descriptor{
		effectDesc("first-registered", 4, a),
		effectDesc("second-registered", 4, b),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}
	if err := p.Write(make([]float32, 4)); err != nil {
		t.Fatal(err)
	}

	got := trace.Events()
	if len(got) != 2 || got[0] != "first-registered" || got[1] != "second-registered" {
		t.Errorf("tie order = %v, want registration order", got)
	}
}

func TestFlushShortCircuitAndForce(t *testing.T) {
	trace := &tu.CallTrace{}
	upstream := &tu.FakeEffect{Trace: trace}
	crossfader := &tu.FakeEffect{Trace: trace, FlushAnswer: plugin.FlushStop}
	downstream := &tu.FakeEffect{Trace: trace}

	out := &tu.FakeOutput{}
	p, err := Assemble(outputDesc(out), []*plugin.Descriptor{
		effectDesc("upstream", 1, upstream),
		effectDesc("crossfader", 2, crossfader),
		effectDesc("downstream", 3, downstream),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}

	if err := p.Flush(1000, false); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if upstream.FlushCalls != 1 || crossfader.FlushCalls != 1 {
		t.Error("flush did not reach effects upstream of the short-circuit")
	}
	if downstream.FlushCalls != 0 {
		t.Error("FlushStop did not prevent downstream flush")
	}
	if out.FlushCalls != 1 {
		t.Error("output flush must run regardless of effect short-circuit")
	}
	if got := out.OutputTime(); got != 1000 {
		t.Errorf("clock after flush = %d, want 1000", got)
	}

	if err := p.Flush(0, true); err != nil {
		t.Fatalf("forced Flush() error: %v", err)
	}
	if downstream.FlushCalls != 1 {
		t.Error("force=true must flush every effect")
	}
}

func TestFlushStopWithErrorSurfaces(t *testing.T) {
	broken := &tu.FakeEffect{FlushAnswer: plugin.FlushStopWithError}
	after := &tu.FakeEffect{}

	out := &tu.FakeOutput{}
	p, err := Assemble(outputDesc(out), []*plugin.Descriptor{
		effectDesc("broken", 1, broken),
		effectDesc("after", 2, after),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}

	err = p.Flush(0, false)
	if !errors.Is(err, shared.ErrProviderFailure) {
		t.Errorf("expected ErrProviderFailure, got %v", err)
	}
	if after.FlushCalls != 0 {
		t.Error("StopWithError must halt propagation")
	}
	if out.FlushCalls != 1 {
		t.Error("output flush must still run after an effect error")
	}
}

func TestWriteNeverExceedsBufferFree(t *testing.T) {
	out := &tu.FakeOutput{Capacity: 256}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}

	// Consume the fake device so large writes drain through.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			out.DrainBuffered(128)
			time.Sleep(time.Millisecond)
		}
	}()

	// 1024 samples = 4096 bytes, 16x the device buffer.
	if err := p.Write(make([]float32, 1024)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	<-done

	if out.MaxWrite > out.Capacity {
		t.Errorf("single write of %d bytes exceeded buffer capacity %d", out.MaxWrite, out.Capacity)
	}
	if len(out.Written) != 4096 {
		t.Errorf("total bytes written = %d, want 4096", len(out.Written))
	}
}

func TestForceReopenClosesAndReopensOnIdenticalFormat(t *testing.T) {
	out := &tu.FakeOutput{Reopen: true}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	format := mono44k()
	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}
	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}

	if len(out.OpenCalls) != 2 {
		t.Errorf("OpenAudio called %d times, want 2", len(out.OpenCalls))
	}
	if out.CloseCalls != 1 {
		t.Errorf("CloseAudio called %d times, want 1", out.CloseCalls)
	}
}

func TestForceReopenClosesWhileFlushing(t *testing.T) {
	out := &tu.FakeOutput{Reopen: true}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	format := mono44k()
	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}

	// An Open arriving while a concurrent Flush holds the Flushing state
	// must still treat the stream as open and close it first.
	p.mu.Lock()
	p.state = Flushing
	p.mu.Unlock()

	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}

	if len(out.OpenCalls) != 2 {
		t.Errorf("OpenAudio called %d times, want 2", len(out.OpenCalls))
	}
	if out.CloseCalls != 1 {
		t.Errorf("CloseAudio called %d times, want 1", out.CloseCalls)
	}
}

func TestGaplessContinuationWithoutForceReopen(t *testing.T) {
	out := &tu.FakeOutput{}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	format := mono44k()
	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}
	if err := p.Open(format); err != nil {
		t.Fatal(err)
	}

	if len(out.OpenCalls) != 1 {
		t.Errorf("OpenAudio called %d times, want 1 (gapless)", len(out.OpenCalls))
	}
	if out.CloseCalls != 0 {
		t.Errorf("CloseAudio called %d times, want 0", out.CloseCalls)
	}

	// A format change still renegotiates.
	stereo := plugin.AudioFormat{Sample: plugin.FmtFloat32, Rate: 48000, Channels: 2}
	if err := p.Open(stereo); err != nil {
		t.Fatal(err)
	}
	if len(out.OpenCalls) != 2 || out.CloseCalls != 1 {
		t.Errorf("format change: OpenCalls=%d CloseCalls=%d, want 2/1", len(out.OpenCalls), out.CloseCalls)
	}
}

func TestEffectFormatRewritePropagatesToOutput(t *testing.T) {
	out := &tu.FakeOutput{}
	upmix := &tu.FakeEffect{StartChannels: 2, StartRate: 48000}

	p, err := Assemble(outputDesc(out), []*plugin.Descriptor{
		effectDesc("upmix", 0, upmix),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}

	got := out.OpenCalls[0]
	if got.Channels != 2 || got.Rate != 48000 {
		t.Errorf("negotiated format = %d ch @ %d Hz, want 2 ch @ 48000 Hz", got.Channels, got.Rate)
	}
}

func TestOpenFailureRevertsToClosed(t *testing.T) {
	out := &tu.FakeOutput{OpenErr: errors.New("device busy")}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Open(mono44k()); !errors.Is(err, shared.ErrFormatNegotiation) {
		t.Errorf("expected ErrFormatNegotiation, got %v", err)
	}
	if got := p.State(); got != Closed {
		t.Errorf("state after failed open = %v, want closed", got)
	}
	if err := p.Write(make([]float32, 4)); !errors.Is(err, shared.ErrPipelineClosed) {
		t.Errorf("Write on closed pipeline: got %v, want ErrPipelineClosed", err)
	}
}

func TestConcurrentFlushUnblocksBlockedWrite(t *testing.T) {
	out := &tu.FakeOutput{Capacity: 64}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}

	// Fill the device buffer so the next write blocks in PeriodWait.
	if err := p.Write(make([]float32, 16)); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Write(make([]float32, 64))
	}()

	// Give the writer time to block, then stop from another goroutine.
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, shared.ErrPipelineClosed) {
			t.Errorf("aborted write returned %v, want ErrPipelineClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked write was not unblocked by a concurrent flush")
	}
}

func TestDelayComposition(t *testing.T) {
	stretcher := &tu.FakeEffect{DelayAdd: 100}
	lookahead := &tu.FakeEffect{DelayAdd: 50}

	p, err := Assemble(outputDesc(&tu.FakeOutput{}), []*plugin.Descriptor{
		effectDesc("stretcher", 1, stretcher),
		effectDesc("lookahead", 2, lookahead),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := p.Delay(10); got != 160 {
		t.Errorf("Delay(10) = %d, want 160", got)
	}
}

func TestPauseStateTransitions(t *testing.T) {
	out := &tu.FakeOutput{}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Open(mono44k()); err != nil {
		t.Fatal(err)
	}
	if err := p.Write(make([]float32, 4)); err != nil {
		t.Fatal(err)
	}

	if got := p.State(); got != Playing {
		t.Fatalf("state = %v, want playing", got)
	}
	p.Pause(true)
	if got := p.State(); got != Paused {
		t.Errorf("state after pause = %v, want paused", got)
	}
	p.Pause(false)
	if got := p.State(); got != Playing {
		t.Errorf("state after resume = %v, want playing", got)
	}
}

func TestPlaySessionDrivesSinkThroughPipeline(t *testing.T) {
	out := &tu.FakeOutput{Capacity: 1 << 16}
	p, err := Assemble(outputDesc(out), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	in := &tu.FakeInput{Base: tu.Base{Hdr: tu.NewHeader(plugin.Input, "tone", 5)}}
	in.PlayFunc = func(uri string, r io.Reader, sink plugin.PlaybackSink) error {
		if err := sink.OpenAudio(mono44k()); err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			if sink.Aborted() {
				return nil
			}
			if err := sink.Write(make([]float32, 128)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := p.Play(plugin.NewDescriptor(in), "tone://440", nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if len(out.Written) != 4*128*4 {
		t.Errorf("decoded bytes = %d, want %d", len(out.Written), 4*128*4)
	}
}
