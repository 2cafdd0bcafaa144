package wave

// Vec3 is a world-space position handed to the spatial occupancy query.
type Vec3 struct {
	X, Y, Z float64
}

// LayerMask filters which obstacle layers a probe considers.
type LayerMask uint32

// AllLayers matches every obstacle layer.
const AllLayers LayerMask = ^LayerMask(0)

// Prober answers whether a solid occupant overlaps a sphere at pos.
type Prober interface {
	Probe(pos Vec3, radius float64, layers LayerMask) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(pos Vec3, radius float64, layers LayerMask) (bool, error)

// Probe calls f.
func (f ProberFunc) Probe(pos Vec3, radius float64, layers LayerMask) (bool, error) {
	return f(pos, radius, layers)
}

// EnergySampler returns the RMS of the next n raw audio samples.
type EnergySampler interface {
	SampleEnergy(n int) (float64, error)
}

// EnergyFunc adapts a function to EnergySampler.
type EnergyFunc func(n int) (float64, error)

// SampleEnergy calls f.
func (f EnergyFunc) SampleEnergy(n int) (float64, error) { return f(n) }

// Sink receives the derived fields once per tick. The frame is reused by the
// next tick; sinks that keep it must copy.
type Sink interface {
	Present(frame *Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame *Frame) error

// Present calls f.
func (f SinkFunc) Present(frame *Frame) error { return f(frame) }
