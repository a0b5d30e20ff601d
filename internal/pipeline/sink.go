package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/Ionic/audacious/internal/plugin"
)

// sink bridges an input provider's decode loop onto the pipeline.
type sink struct {
	p *Pipeline
}

func (s *sink) OpenAudio(format plugin.AudioFormat) error {
	return s.p.Open(format)
}

func (s *sink) Write(samples []float32) error {
	return s.p.Write(samples)
}

func (s *sink) Aborted() bool {
	return s.p.stopped.Load()
}

// pcmBytes serializes interleaved float samples into the byte layout the
// output stage was opened with.
func pcmBytes(samples []float32, f plugin.SampleFormat) []byte {
	switch f {
	case plugin.FmtS16:
		out := make([]byte, 2*len(samples))
		for i, s := range samples {
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s*32767)))
		}
		return out
	default:
		out := make([]byte, 4*len(samples))
		for i, s := range samples {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
		}
		return out
	}
}
