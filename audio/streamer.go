package audio

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
)

// StreamerSource measures energy from any beep.Streamer. Stereo frames are
// averaged to mono. Once the stream is exhausted the missing samples count
// as silence.
type StreamerSource struct {
	mu       sync.Mutex
	streamer beep.Streamer
	buf      [][2]float64
	mono     []float64
	drained  bool
}

// NewStreamerSource wraps s.
func NewStreamerSource(s beep.Streamer) *StreamerSource {
	return &StreamerSource{streamer: s}
}

// SampleEnergy implements wave.EnergySampler. A stream error is returned
// and the chunk is discarded. A stream that yields nothing without ending
// counts as silence for the rest of the chunk.
func (s *StreamerSource) SampleEnergy(n int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.buf) < n {
		s.buf = make([][2]float64, n)
		s.mono = make([]float64, n)
	}
	buf, mono := s.buf[:n], s.mono[:n]

	filled := 0
	for filled < n && !s.drained {
		got, ok := s.streamer.Stream(buf[filled:])
		filled += got
		if !ok {
			s.drained = true
		}
		if got == 0 {
			// Stalled stream: the rest of this chunk is silence.
			break
		}
	}
	if err := s.streamer.Err(); err != nil {
		return 0, fmt.Errorf("audio stream: %w", err)
	}
	for i := 0; i < filled; i++ {
		mono[i] = (buf[i][0] + buf[i][1]) / 2
	}
	clear(mono[filled:])
	return RMS(mono), nil
}

// Drained reports whether the wrapped stream has ended.
func (s *StreamerSource) Drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drained
}
