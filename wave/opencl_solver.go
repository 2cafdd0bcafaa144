//go:build opencl

package wave

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const openCLCompiled = true

// openCLSolver runs the four integration phases as OpenCL kernels. Fields
// are uploaded before and read back after every tick so host side
// injection and extraction stay unchanged.
type openCLSolver struct {
	context  *cl.Context
	queue    *cl.CommandQueue
	program  *cl.Program
	velocity *cl.Kernel
	pressure *cl.Kernel
	rows     *cl.Kernel
	cols     *cl.Kernel
	solids   *cl.Kernel
	reflect  *cl.Kernel

	pBuf, pNewBuf   *cl.MemObject
	vxBuf, vxNewBuf *cl.MemObject
	vyBuf, vyNewBuf *cl.MemObject
	solidBuf        *cl.MemObject
	edgeIdxBuf      *cl.MemObject
	edgeFlagBuf     *cl.MemObject

	width, height int
	dt, c2dt      float32
	inv2dx, damp  float32

	solidCount   int
	edgeCount    int
	edgeIdx      []int32
	edgeFlags    []int32
	maskVersion  uint64
	maskUploaded bool
	coldStart    bool
	deviceName   string
}

const pressureVelocityKernelSource = `__kernel void velocity_step(
    const int width,
    const int height,
    const float dt,
    const float inv2dx,
    const float damp,
    __global const float* p,
    __global const float* vx,
    __global const float* vy,
    __global float* vx_new,
    __global float* vy_new)
{
    int idx = get_global_id(0);
    if (idx >= width * height) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        return;
    }
    float dpdx = (p[idx + 1] - p[idx - 1]) * inv2dx;
    float dpdy = (p[idx + width] - p[idx - width]) * inv2dx;
    vx_new[idx] = (vx[idx] - dt * dpdx) * damp;
    vy_new[idx] = (vy[idx] - dt * dpdy) * damp;
}

__kernel void pressure_step(
    const int width,
    const int height,
    const float c2dt,
    const float inv2dx,
    const float damp,
    __global const float* p,
    __global const float* vx,
    __global const float* vy,
    __global float* p_new)
{
    int idx = get_global_id(0);
    if (idx >= width * height) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        return;
    }
    float div = (vx[idx + 1] - vx[idx - 1]) * inv2dx + (vy[idx + width] - vy[idx - width]) * inv2dx;
    p_new[idx] = (p[idx] - c2dt * div) * damp;
}

__kernel void absorb_rows(
    const int width,
    const int height,
    __global float* p)
{
    int x = get_global_id(0);
    if (x >= width) {
        return;
    }
    p[x] = 0.0f;
    p[(height - 1) * width + x] = 0.0f;
}

__kernel void absorb_cols(
    const int width,
    const int height,
    __global float* p)
{
    int y = get_global_id(0) + 1;
    if (y >= height - 1) {
        return;
    }
    p[y * width] = 0.0f;
    p[y * width + width - 1] = 0.0f;
}

__kernel void clear_solids(
    __global float* p,
    __global float* vx,
    __global float* vy,
    __global const int* solids,
    const int count)
{
    int gid = get_global_id(0);
    if (gid >= count) {
        return;
    }
    int idx = solids[gid];
    p[idx] = 0.0f;
    vx[idx] = 0.0f;
    vy[idx] = 0.0f;
}

__kernel void reflect_edges(
    __global float* vx,
    __global float* vy,
    __global const int* edges,
    __global const int* flags,
    const int count)
{
    int gid = get_global_id(0);
    if (gid >= count) {
        return;
    }
    int idx = edges[gid];
    int f = flags[gid];
    if ((f & 1) && vx[idx] < 0.0f) {
        vx[idx] = -vx[idx];
    }
    if ((f & 2) && vx[idx] > 0.0f) {
        vx[idx] = -vx[idx];
    }
    if ((f & 4) && vy[idx] < 0.0f) {
        vy[idx] = -vy[idx];
    }
    if ((f & 8) && vy[idx] > 0.0f) {
        vy[idx] = -vy[idx];
    }
}`

// pickDevice prefers the first GPU and falls back to the first CPU device.
func pickDevice(platforms []*cl.Platform) *cl.Device {
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, err := p.GetDevices(kind)
			if err != nil && err != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0]
			}
		}
	}
	return nil
}

func newOpenCLSolver(cfg Config) (*openCLSolver, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := pickDevice(platforms)
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLSolver{
		width:      cfg.SimWidth(),
		height:     cfg.SimHeight(),
		dt:         float32(cfg.TimeStep),
		c2dt:       float32(cfg.TimeStep * cfg.WaveSpeed * cfg.WaveSpeed),
		inv2dx:     float32(1 / (2 * cfg.Spacing)),
		damp:       float32(cfg.Damping),
		coldStart:  true,
		deviceName: device.Name(),
	}
	if err := s.init(device); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// init builds the program and allocates device buffers. Partially created
// resources are released by Close.
func (s *openCLSolver) init(device *cl.Device) error {
	var err error
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{pressureVelocityKernelSource}); err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	for _, k := range []struct {
		dst  **cl.Kernel
		name string
	}{
		{&s.velocity, "velocity_step"},
		{&s.pressure, "pressure_step"},
		{&s.rows, "absorb_rows"},
		{&s.cols, "absorb_cols"},
		{&s.solids, "clear_solids"},
		{&s.reflect, "reflect_edges"},
	} {
		if *k.dst, err = s.program.CreateKernel(k.name); err != nil {
			return fmt.Errorf("creating kernel %s: %w", k.name, err)
		}
	}

	size := s.width * s.height
	floatBytes := size * int(unsafe.Sizeof(float32(0)))
	intBytes := size * int(unsafe.Sizeof(int32(0)))
	for _, b := range []struct {
		dst   **cl.MemObject
		bytes int
		label string
	}{
		{&s.pBuf, floatBytes, "pressure"},
		{&s.pNewBuf, floatBytes, "next pressure"},
		{&s.vxBuf, floatBytes, "velocity x"},
		{&s.vxNewBuf, floatBytes, "next velocity x"},
		{&s.vyBuf, floatBytes, "velocity y"},
		{&s.vyNewBuf, floatBytes, "next velocity y"},
		{&s.solidBuf, intBytes, "solid index"},
		{&s.edgeIdxBuf, intBytes, "edge index"},
		{&s.edgeFlagBuf, intBytes, "edge flag"},
	} {
		if *b.dst, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, b.bytes); err != nil {
			return fmt.Errorf("allocating %s buffer: %w", b.label, err)
		}
	}
	return nil
}

// uploadMask copies the solid and edge indices when the mask changed.
func (s *openCLSolver) uploadMask(m *Mask) error {
	if s.maskUploaded && m.Version() == s.maskVersion {
		return nil
	}
	m.ensureIndex()
	s.solidCount = len(m.solids)
	if s.solidCount > 0 {
		ptr := unsafe.Pointer(&m.solids[0])
		byteLen := s.solidCount * int(unsafe.Sizeof(int32(0)))
		if _, err := s.queue.EnqueueWriteBuffer(s.solidBuf, true, 0, byteLen, ptr, nil); err != nil {
			return fmt.Errorf("writing solid index buffer: %w", err)
		}
	}
	s.edgeIdx = s.edgeIdx[:0]
	s.edgeFlags = s.edgeFlags[:0]
	for _, e := range m.edges {
		s.edgeIdx = append(s.edgeIdx, e.idx)
		s.edgeFlags = append(s.edgeFlags, int32(e.flags))
	}
	s.edgeCount = len(s.edgeIdx)
	if s.edgeCount > 0 {
		byteLen := s.edgeCount * int(unsafe.Sizeof(int32(0)))
		if _, err := s.queue.EnqueueWriteBuffer(s.edgeIdxBuf, true, 0, byteLen, unsafe.Pointer(&s.edgeIdx[0]), nil); err != nil {
			return fmt.Errorf("writing edge index buffer: %w", err)
		}
		if _, err := s.queue.EnqueueWriteBuffer(s.edgeFlagBuf, true, 0, byteLen, unsafe.Pointer(&s.edgeFlags[0]), nil); err != nil {
			return fmt.Errorf("writing edge flag buffer: %w", err)
		}
	}
	s.maskVersion = m.Version()
	s.maskUploaded = true
	return nil
}

func (s *openCLSolver) enqueue(k *cl.Kernel, n int, label string) error {
	if n <= 0 {
		return nil
	}
	if _, err := s.queue.EnqueueNDRangeKernel(k, nil, []int{n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing %s: %w", label, err)
	}
	return nil
}

// Step uploads the host fields, runs the four phases and reads the result
// back into the current host buffers.
func (s *openCLSolver) Step(f *Fields, m *Mask) error {
	size := s.width * s.height
	if len(f.P) != size || len(f.VX) != size || len(f.VY) != size {
		return fmt.Errorf("unexpected field buffer size")
	}
	if s.coldStart {
		// The next buffers keep their edge cells from here on, so they must
		// start zeroed.
		for _, b := range []struct {
			buf  *cl.MemObject
			data []float32
		}{{s.pNewBuf, f.PNew}, {s.vxNewBuf, f.VXNew}, {s.vyNewBuf, f.VYNew}} {
			if _, err := s.queue.EnqueueWriteBufferFloat32(b.buf, true, 0, b.data, nil); err != nil {
				return fmt.Errorf("seeding next buffers: %w", err)
			}
		}
		s.coldStart = false
	}
	for _, b := range []struct {
		buf  *cl.MemObject
		data []float32
	}{{s.pBuf, f.P}, {s.vxBuf, f.VX}, {s.vyBuf, f.VY}} {
		if _, err := s.queue.EnqueueWriteBufferFloat32(b.buf, false, 0, b.data, nil); err != nil {
			return fmt.Errorf("writing field buffer: %w", err)
		}
	}
	if err := s.uploadMask(m); err != nil {
		return err
	}

	w, h := int32(s.width), int32(s.height)
	if err := s.velocity.SetArgs(w, h, s.dt, s.inv2dx, s.damp, s.pBuf, s.vxBuf, s.vyBuf, s.vxNewBuf, s.vyNewBuf); err != nil {
		return fmt.Errorf("setting velocity kernel arguments: %w", err)
	}
	if err := s.enqueue(s.velocity, size, "velocity step"); err != nil {
		return err
	}
	s.vxBuf, s.vxNewBuf = s.vxNewBuf, s.vxBuf
	s.vyBuf, s.vyNewBuf = s.vyNewBuf, s.vyBuf

	if err := s.pressure.SetArgs(w, h, s.c2dt, s.inv2dx, s.damp, s.pBuf, s.vxBuf, s.vyBuf, s.pNewBuf); err != nil {
		return fmt.Errorf("setting pressure kernel arguments: %w", err)
	}
	if err := s.enqueue(s.pressure, size, "pressure step"); err != nil {
		return err
	}
	s.pBuf, s.pNewBuf = s.pNewBuf, s.pBuf

	if err := s.rows.SetArgs(w, h, s.pBuf); err != nil {
		return fmt.Errorf("setting boundary row kernel arguments: %w", err)
	}
	if err := s.enqueue(s.rows, s.width, "boundary rows"); err != nil {
		return err
	}
	if err := s.cols.SetArgs(w, h, s.pBuf); err != nil {
		return fmt.Errorf("setting boundary column kernel arguments: %w", err)
	}
	if err := s.enqueue(s.cols, s.height-2, "boundary columns"); err != nil {
		return err
	}

	if s.solidCount > 0 {
		if err := s.solids.SetArgs(s.pBuf, s.vxBuf, s.vyBuf, s.solidBuf, int32(s.solidCount)); err != nil {
			return fmt.Errorf("setting solid kernel arguments: %w", err)
		}
		if err := s.enqueue(s.solids, s.solidCount, "solid clearing"); err != nil {
			return err
		}
	}
	if s.edgeCount > 0 {
		if err := s.reflect.SetArgs(s.vxBuf, s.vyBuf, s.edgeIdxBuf, s.edgeFlagBuf, int32(s.edgeCount)); err != nil {
			return fmt.Errorf("setting reflection kernel arguments: %w", err)
		}
		if err := s.enqueue(s.reflect, s.edgeCount, "edge reflection"); err != nil {
			return err
		}
	}

	for _, b := range []struct {
		buf  *cl.MemObject
		data []float32
	}{{s.pBuf, f.P}, {s.vxBuf, f.VX}, {s.vyBuf, f.VY}} {
		if _, err := s.queue.EnqueueReadBufferFloat32(b.buf, true, 0, b.data, nil); err != nil {
			return fmt.Errorf("reading field buffer: %w", err)
		}
	}
	return nil
}

// Name identifies the backend in logs.
func (s *openCLSolver) Name() string { return string(BackendOpenCL) }

// DeviceName returns the OpenCL device the kernels run on.
func (s *openCLSolver) DeviceName() string { return s.deviceName }

// Close releases every OpenCL object that was created.
func (s *openCLSolver) Close() {
	for _, buf := range []**cl.MemObject{
		&s.edgeFlagBuf, &s.edgeIdxBuf, &s.solidBuf,
		&s.vyNewBuf, &s.vyBuf, &s.vxNewBuf, &s.vxBuf, &s.pNewBuf, &s.pBuf,
	} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	for _, k := range []**cl.Kernel{&s.reflect, &s.solids, &s.cols, &s.rows, &s.pressure, &s.velocity} {
		if *k != nil {
			(*k).Release()
			*k = nil
		}
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
