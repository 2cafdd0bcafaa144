package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// PulseTrain emits sine tone bursts: the tone plays for the first part of
// every period and is silent for the rest. It never ends.
type PulseTrain struct {
	sr        beep.SampleRate
	freq      float64
	amplitude float64
	onLen     int
	period    int
	pos       int
}

// NewPulseTrain builds a burst generator. on is clamped to period.
func NewPulseTrain(sr beep.SampleRate, freq float64, on, period time.Duration, amplitude float64) *PulseTrain {
	p := sr.N(period)
	if p < 1 {
		p = 1
	}
	o := sr.N(on)
	if o > p {
		o = p
	}
	return &PulseTrain{
		sr:        sr,
		freq:      freq,
		amplitude: amplitude,
		onLen:     o,
		period:    p,
	}
}

func (g *PulseTrain) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		var sample float64
		if phase := g.pos % g.period; phase < g.onLen {
			t := float64(phase) / float64(g.sr)
			sample = g.amplitude * math.Sin(2*math.Pi*g.freq*t)
		}
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *PulseTrain) Err() error {
	return nil
}
