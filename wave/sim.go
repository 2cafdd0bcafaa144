package wave

import (
	"fmt"
	"log"
)

// Stats counts what happened across ticks.
type Stats struct {
	Ticks             uint64
	ObstacleRefreshes uint64
	ProbeFailures     uint64
	AudioFailures     uint64
	Impulses          uint64
	// LastRMS is the most recent successful central energy sample.
	LastRMS float64
}

// Option customises a Simulation at construction.
type Option func(*Simulation)

// WithSink hands every extracted frame to sink.
func WithSink(sink Sink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// emitter is an extra positioned audio source injecting at its nearest cell.
type emitter struct {
	x, y   int
	source EnergySampler
	gain   float64
}

// Simulation owns the fields and mask of one run and drives them tick by
// tick. It is not safe for concurrent use.
type Simulation struct {
	cfg       Config
	fields    *Fields
	mask      *Mask
	injector  injector
	stepper   stepper
	extractor Extractor
	frame     *Frame

	prober   Prober
	energy   EnergySampler
	sink     Sink
	emitters []emitter

	frameCounter int
	limit        float32
	stats        Stats
}

// New validates cfg, allocates the domain and performs the initial obstacle
// scan. prober and energy are required.
func New(cfg Config, prober Prober, energy EnergySampler, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prober == nil {
		return nil, ErrMissingProber
	}
	if energy == nil {
		return nil, ErrMissingEnergySource
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendCPU
	}
	width, height := cfg.SimWidth(), cfg.SimHeight()
	s := &Simulation{
		cfg:       cfg,
		fields:    NewFields(width, height),
		mask:      NewMask(width, height),
		injector:  newInjector(cfg.ImpulseRadius, width, height),
		extractor: NewExtractor(cfg),
		frame:     NewFrame(cfg.GridWidth, cfg.GridHeight),
		prober:    prober,
		energy:    energy,
		limit:     divergenceLimit(cfg.DivergenceLimit),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch cfg.Backend {
	case BackendOpenCL:
		solver, err := newOpenCLSolver(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		log.Printf("OpenCL solver enabled (device: %s)", solver.DeviceName())
		s.stepper = solver
	default:
		s.stepper = NewIntegrator(cfg)
	}

	if courant := cfg.Courant(); courant > 1 {
		log.Printf("wave: Courant number %.3f exceeds 1 (c=%v dt=%v dx=%v); the field may diverge",
			courant, cfg.WaveSpeed, cfg.TimeStep, cfg.Spacing)
	}
	if err := s.RefreshObstacles(); err != nil {
		log.Printf("wave: initial obstacle scan failed, starting without obstacles: %v", err)
	}
	return s, nil
}

// Tick advances the simulation one frame: periodic obstacle refresh, audio
// driven injection, the four integration phases, extraction and
// presentation, in that order.
func (s *Simulation) Tick() error {
	s.frameCounter++
	if s.frameCounter >= s.cfg.ObstacleUpdateFrequency {
		if err := s.RefreshObstacles(); err != nil {
			log.Printf("wave: obstacle refresh failed, keeping previous mask: %v", err)
		}
		s.frameCounter = 0
	}

	s.injectAudio()

	if err := s.stepper.Step(s.fields, s.mask); err != nil {
		return fmt.Errorf("stepping tick %d on %s: %w", s.stats.Ticks+1, s.stepper.Name(), err)
	}
	s.stats.Ticks++
	if s.cfg.DivergenceLimit > 0 {
		if err := checkFinite(s.fields, s.limit); err != nil {
			return fmt.Errorf("tick %d: %w", s.stats.Ticks, err)
		}
	}

	s.extractor.Extract(s.fields, s.mask, s.frame)
	if s.sink != nil {
		if err := s.sink.Present(s.frame); err != nil {
			return fmt.Errorf("presenting tick %d: %w", s.stats.Ticks, err)
		}
	}
	return nil
}

// injectAudio samples the central source and every emitter; a source whose
// RMS exceeds the threshold injects rms*multiplier. Failed samples count as
// silence.
func (s *Simulation) injectAudio() {
	rms, err := s.energy.SampleEnergy(s.cfg.AudioSampleSize)
	if err != nil {
		s.stats.AudioFailures++
	} else {
		s.stats.LastRMS = rms
		if rms > s.cfg.AudioThreshold {
			s.ApplyCentralImpulse(rms * s.cfg.AudioImpulseMultiplier)
			s.stats.Impulses++
		}
	}
	for _, e := range s.emitters {
		rms, err := e.source.SampleEnergy(s.cfg.AudioSampleSize)
		if err != nil {
			s.stats.AudioFailures++
			continue
		}
		if rms > s.cfg.AudioThreshold {
			s.injector.applyAt(s.fields, e.x, e.y, rms*s.cfg.AudioImpulseMultiplier*e.gain)
			s.stats.Impulses++
		}
	}
}

// ApplyCentralImpulse adds intensity*(1 - d/ImpulseRadius) to every cell
// within the impulse radius of the domain centre.
func (s *Simulation) ApplyCentralImpulse(intensity float64) {
	s.injector.applyCentral(s.fields, intensity)
}

// ApplyImpulseAt injects the same radial pulse centred on domain cell (x, y).
func (s *Simulation) ApplyImpulseAt(x, y int, intensity float64) {
	s.injector.applyAt(s.fields, x, y, intensity)
}

// AddEmitter registers a positioned audio source. Each tick its RMS is
// sampled and, above the threshold, injected at the cell nearest pos with
// the given gain.
func (s *Simulation) AddEmitter(pos Vec3, source EnergySampler, gain float64) error {
	if source == nil {
		return ErrMissingEnergySource
	}
	x, y, ok := s.cfg.CellAt(pos)
	if !ok {
		return fmt.Errorf("%w: emitter at (%.3f, %.3f, %.3f) lies outside the domain", ErrInvalidConfig, pos.X, pos.Y, pos.Z)
	}
	s.emitters = append(s.emitters, emitter{x: x, y: y, source: source, gain: gain})
	return nil
}

// RefreshObstacles rescans the whole mask now. On failure the previous mask
// stays in effect.
func (s *Simulation) RefreshObstacles() error {
	err := s.mask.Refresh(s.prober, s.cfg.CellPosition, s.cfg.ObstacleProbeRadius, s.cfg.ObstacleLayers)
	if err != nil {
		s.stats.ProbeFailures++
		return err
	}
	s.stats.ObstacleRefreshes++
	return nil
}

// Reset zeroes the fields, counters and frame, then rescans obstacles.
func (s *Simulation) Reset() error {
	s.fields.Reset()
	s.frameCounter = 0
	s.stats = Stats{}
	err := s.RefreshObstacles()
	s.extractor.Extract(s.fields, s.mask, s.frame)
	return err
}

// Close releases backend resources.
func (s *Simulation) Close() {
	if s.stepper != nil {
		s.stepper.Close()
	}
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Fields exposes the live field buffers.
func (s *Simulation) Fields() *Fields { return s.fields }

// Mask exposes the live obstacle mask.
func (s *Simulation) Mask() *Mask { return s.mask }

// Frame returns the most recently extracted frame.
func (s *Simulation) Frame() *Frame { return s.frame }

// Stats returns a snapshot of the counters.
func (s *Simulation) Stats() Stats { return s.stats }

// Backend reports which stepper is running.
func (s *Simulation) Backend() string { return s.stepper.Name() }
