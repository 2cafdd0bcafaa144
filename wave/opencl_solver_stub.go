//go:build !opencl

package wave

import "errors"

const openCLCompiled = false

type openCLSolver struct{}

func newOpenCLSolver(Config) (*openCLSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLSolver) Step(*Fields, *Mask) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLSolver) Name() string { return string(BackendOpenCL) }

func (s *openCLSolver) Close() {}

func (s *openCLSolver) DeviceName() string { return "" }
