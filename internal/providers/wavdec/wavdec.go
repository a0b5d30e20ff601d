// package wavdec implements the built-in WAV input (decoder) provider on
// top of go-audio/wav.
package wavdec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Ionic/audacious/internal/plugin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chunkFrames is how many frames are decoded per push into the pipeline.
const chunkFrames = 4096

// Provider decodes RIFF/WAVE PCM streams.
type Provider struct{}

var header = plugin.Header{
	Magic:      plugin.Magic,
	Version:    plugin.Version,
	Type:       plugin.Input,
	Name:       "wav",
	About:      "WAV/RIFF PCM decoder",
	Priority:   5,
	Extensions: []string{"wav", "wave"},
	Mimes:      []string{"audio/wav", "audio/x-wav", "audio/vnd.wave"},
}

// New creates the provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Header() *plugin.Header { return &header }

func (p *Provider) Init() error { return nil }

func (p *Provider) Cleanup() {}

// Recognize checks the RIFF/WAVE magic at the start of the stream. It
// consumes up to twelve bytes of the reader.
func (p *Provider) Recognize(uri string, r io.Reader) bool {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return false
	}
	return string(hdr[0:4]) == "RIFF" && string(hdr[8:12]) == "WAVE"
}

// decoder buffers the whole stream; go-audio needs a seekable source and
// the handles we receive are plain byte streams.
func (p *Provider) decoder(r io.Reader) (*wav.Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav stream: %w", err)
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}
	if dec.BitDepth != 8 && dec.BitDepth != 16 && dec.BitDepth != 24 && dec.BitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", dec.BitDepth)
	}
	return dec, nil
}

// ReadTuple extracts stream metadata without decoding samples.
func (p *Provider) ReadTuple(uri string, r io.Reader) (plugin.Tuple, error) {
	dec, err := p.decoder(r)
	if err != nil {
		return plugin.Tuple{}, err
	}

	t := plugin.Tuple{
		Title: strings.TrimSuffix(path.Base(uri), path.Ext(uri)),
	}
	if dur, err := dec.Duration(); err == nil {
		t.LengthMS = int(dur.Milliseconds())
	}
	return t, nil
}

// Play decodes the stream into the sink until end of stream or abort.
func (p *Provider) Play(uri string, r io.Reader, sink plugin.PlaybackSink) error {
	dec, err := p.decoder(r)
	if err != nil {
		return err
	}

	channels := int(dec.NumChans)
	format := plugin.AudioFormat{
		Sample:   plugin.FmtFloat32,
		Rate:     int(dec.SampleRate),
		Channels: channels,
	}
	if err := sink.OpenAudio(format); err != nil {
		return err
	}

	scale := float32(int64(1) << (dec.BitDepth - 1))
	// 8-bit WAV stores unsigned samples; recenter around the 0x80 midpoint
	// before scaling. Deeper depths are already signed.
	bias := 0
	if dec.BitDepth == 8 {
		bias = 0x80
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		Data:   make([]int, chunkFrames*channels),
	}

	for {
		if sink.Aborted() {
			return nil
		}
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("decoding wav: %w", err)
		}
		if n == 0 {
			return nil
		}

		samples := make([]float32, n)
		for i := 0; i < n; i++ {
			samples[i] = float32(buf.Data[i]-bias) / scale
		}
		if err := sink.Write(samples); err != nil {
			return err
		}
	}
}
