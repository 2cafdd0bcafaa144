package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AFS/wave"
)

var (
	_ wave.EnergySampler = (*LoopSource)(nil)
	_ wave.EnergySampler = (*StreamerSource)(nil)
)

// TestRMS verifies the energy metric on known signals
func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.InDelta(t, 0.5, RMS([]float64{0.5, -0.5, 0.5, -0.5}), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), RMS([]float64{1, 2}), 1e-12)
}

// TestDecodeStereoPCM16 verifies the stereo to mono mix and scaling
func TestDecodeStereoPCM16(t *testing.T) {
	pcm := make([]byte, 0, 10)
	for _, v := range []int16{16384, 16384, -32768, 0} {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(v))
	}
	pcm = append(pcm, 0xff, 0x7f) // partial frame

	samples := DecodeStereoPCM16(pcm)
	require.Len(t, samples, 2)
	assert.InDelta(t, 0.5, samples[0], 1e-9)
	assert.InDelta(t, -0.5, samples[1], 1e-9)
	assert.Nil(t, DecodeStereoPCM16([]byte{1, 2, 3}))
}

// TestLoopSourceWraps verifies that the read cursor loops over the samples
func TestLoopSourceWraps(t *testing.T) {
	_, err := NewLoopSource(nil)
	assert.ErrorIs(t, err, ErrNoSamples)

	src, err := NewLoopSource([]float64{1, 0, 0})
	require.NoError(t, err)

	rms, err := src.SampleEnergy(2) // 1, 0
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.5), rms, 1e-12)

	rms, err = src.SampleEnergy(2) // 0, 1 after the wrap
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.5), rms, 1e-12)

	rms, err = src.SampleEnergy(6) // two full loops
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1.0/3), rms, 1e-12)
	assert.Equal(t, 3, src.Len())
}

// TestStreamerSourceSilenceAfterEnd verifies that an exhausted stream pads
// with silence and then reports zero energy
func TestStreamerSourceSilenceAfterEnd(t *testing.T) {
	rate := beep.SampleRate(8000)
	tone := beep.Take(4, NewPulseTrain(rate, 1000, time.Second, time.Second, 1))
	src := NewStreamerSource(tone)

	rms, err := src.SampleEnergy(8)
	require.NoError(t, err)
	assert.Positive(t, rms)
	assert.True(t, src.Drained())

	rms, err = src.SampleEnergy(8)
	require.NoError(t, err)
	assert.Zero(t, rms)
}

type failingStreamer struct{ err error }

func (f failingStreamer) Stream([][2]float64) (int, bool) { return 0, false }
func (f failingStreamer) Err() error { return f.err }

// TestStreamerSourceError verifies that stream errors reach the caller
func TestStreamerSourceError(t *testing.T) {
	boom := errors.New("device unplugged")
	_, err := NewStreamerSource(failingStreamer{err: boom}).SampleEnergy(16)
	assert.ErrorIs(t, err, boom)
}

// TestStreamerSourceStalledStream verifies that a stream which keeps
// returning no samples without ending reads as silence and is retried
func TestStreamerSourceStalledStream(t *testing.T) {
	calls := 0
	stalled := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		calls++
		if calls == 1 {
			samples[0] = [2]float64{1, 1}
			return 1, true
		}
		return 0, true
	})
	src := NewStreamerSource(stalled)

	rms, err := src.SampleEnergy(4)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rms, 1e-12)
	assert.False(t, src.Drained())

	rms, err = src.SampleEnergy(4)
	require.NoError(t, err)
	assert.Zero(t, rms)
	assert.Equal(t, 3, calls)
}

// TestStreamerSourceMixesChannels verifies the stereo average
func TestStreamerSourceMixesChannels(t *testing.T) {
	left := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 0}
		}
		return len(samples), true
	})
	rms, err := NewStreamerSource(left).SampleEnergy(32)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rms, 1e-12)
}

// TestPulseTrainBursts verifies tone and silence phases
func TestPulseTrainBursts(t *testing.T) {
	rate := beep.SampleRate(1000)
	g := NewPulseTrain(rate, 50, 100*time.Millisecond, 400*time.Millisecond, 0.8)

	samples := make([][2]float64, 400)
	n, ok := g.Stream(samples)
	require.True(t, ok)
	require.Equal(t, 400, n)
	require.NoError(t, g.Err())

	var on, off []float64
	for i, s := range samples[:n] {
		assert.Equal(t, s[0], s[1])
		assert.LessOrEqual(t, math.Abs(s[0]), 0.8)
		if i < 100 {
			on = append(on, s[0])
		} else {
			off = append(off, s[0])
		}
	}
	assert.InDelta(t, 0.8/math.Sqrt2, RMS(on), 1e-2)
	assert.Zero(t, RMS(off))
}

// TestMonitorPCM verifies clamping, DC removal and whole frame output
func TestMonitorPCM(t *testing.T) {
	m := NewMonitor()
	m.SetSample(5)

	buf := make([]byte, 10)
	n, err := m.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	left := int16(binary.LittleEndian.Uint16(buf[0:2]))
	right := int16(binary.LittleEndian.Uint16(buf[2:4]))
	assert.Equal(t, left, right)
	// 1 minus the first DC estimate of 0.001.
	assert.InDelta(t, 0.999*32767, float64(left), 2)

	n, err = m.Read(buf[:3])
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, m.Close())
}
