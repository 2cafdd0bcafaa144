package audio

import "sync"

// Monitor renders a single pressure value as a continuous 16-bit stereo PCM
// stream, for playback through an audio player reading it as an io.Reader.
type Monitor struct {
	mu     sync.Mutex
	sample float32
	dc     float32
}

// NewMonitor returns a silent monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// SetSample publishes the next value, clamped to [-1, 1].
func (m *Monitor) SetSample(v float32) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	m.mu.Lock()
	// AC coupling: remove a slowly varying DC component.
	const alpha = 0.001
	m.dc += alpha * (v - m.dc)
	m.sample = v - m.dc
	m.mu.Unlock()
}

// Read fills p with whole stereo frames of the current sample.
func (m *Monitor) Read(p []byte) (int, error) {
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	m.mu.Lock()
	sample := m.sample
	m.mu.Unlock()

	v := int16(sample * 32767)
	for i := 0; i < frameBytes; i += 4 {
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (m *Monitor) Close() error {
	return nil
}
