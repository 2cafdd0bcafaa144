package audio

import (
	"encoding/binary"
	"errors"
	"sync"
)

const pcm16Scale = 0.5 / 32768.0

// ErrNoSamples is returned when a source is built from empty audio.
var ErrNoSamples = errors.New("audio: no samples")

// DecodeStereoPCM16 mixes interleaved little-endian 16-bit stereo PCM down to
// mono samples in [-1, 1). A trailing partial frame is dropped.
func DecodeStereoPCM16(pcm []byte) []float64 {
	frameCount := len(pcm) / 4
	if frameCount == 0 {
		return nil
	}
	samples := make([]float64, frameCount)
	for i := range samples {
		offset := i * 4
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		samples[i] = (float64(left) + float64(right)) * pcm16Scale
	}
	return samples
}

// LoopSource plays decoded mono samples in a loop. Each SampleEnergy call
// consumes the next n samples, wrapping at the end.
type LoopSource struct {
	mu      sync.Mutex
	samples []float64
	pos     int
	chunk   []float64
}

// NewLoopSource wraps samples, which must not be empty.
func NewLoopSource(samples []float64) (*LoopSource, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return &LoopSource{samples: samples}, nil
}

// SampleEnergy implements wave.EnergySampler.
func (s *LoopSource) SampleEnergy(n int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.chunk) < n {
		s.chunk = make([]float64, n)
	}
	s.chunk = s.chunk[:n]
	s.fillChunk(s.chunk)
	return RMS(s.chunk), nil
}

func (s *LoopSource) fillChunk(dst []float64) {
	for i := range dst {
		dst[i] = s.samples[s.pos]
		s.pos++
		if s.pos >= len(s.samples) {
			s.pos = 0
		}
	}
}

// Len returns the loop length in samples.
func (s *LoopSource) Len() int { return len(s.samples) }
