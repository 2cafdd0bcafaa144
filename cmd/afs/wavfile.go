package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"AFS/audio"
)

// loadLoopSamples decodes the WAV at path, resampled to sampleRate, and
// returns the stereo-averaged samples.
func loadLoopSamples(sampleRate int, path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	samples := audio.DecodeStereoPCM16(decoded)
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %q has no audio data", path)
	}
	return samples, nil
}
