package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"AFS/wave"
)

var recordMagic = [4]byte{'A', 'F', 'S', 'R'}

const recordVersion uint16 = 1

// ErrBadRecording is returned for streams that are not frame recordings or
// whose frames do not match the header.
var ErrBadRecording = errors.New("render: not a frame recording")

type recordHeader struct {
	Magic   [4]byte
	Version uint16
	_       uint16
	Cols    uint32
	Rows    uint32
}

// Recorder appends frames to a stream as half precision heights and
// curvature, preceded by a fixed header. It implements wave.Sink.
type Recorder struct {
	w          *bufio.Writer
	cols, rows int
	ticks      uint64
	half       []uint16
	raw        []byte
}

// NewRecorder writes the header for cols x rows frames to w.
func NewRecorder(w io.Writer, cols, rows int) (*Recorder, error) {
	bw := bufio.NewWriter(w)
	hdr := recordHeader{Magic: recordMagic, Version: recordVersion, Cols: uint32(cols), Rows: uint32(rows)}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return nil, fmt.Errorf("writing recording header: %w", err)
	}
	n := cols * rows
	return &Recorder{
		w:    bw,
		cols: cols,
		rows: rows,
		half: make([]uint16, n),
		raw:  make([]byte, 2*n),
	}, nil
}

// Present appends frame with the next sequence number.
func (r *Recorder) Present(frame *wave.Frame) error {
	if frame.Cols != r.cols || frame.Rows != r.rows {
		return fmt.Errorf("%w: frame is %dx%d, recording is %dx%d", ErrBadRecording, frame.Cols, frame.Rows, r.cols, r.rows)
	}
	r.ticks++
	if err := binary.Write(r.w, binary.LittleEndian, r.ticks); err != nil {
		return fmt.Errorf("writing frame %d: %w", r.ticks, err)
	}
	for _, plane := range [][]float32{frame.Heights, frame.Curvature} {
		encodeHalf(r.half, plane)
		for i, v := range r.half {
			binary.LittleEndian.PutUint16(r.raw[2*i:], v)
		}
		if _, err := r.w.Write(r.raw); err != nil {
			return fmt.Errorf("writing frame %d: %w", r.ticks, err)
		}
	}
	return nil
}

// Frames returns how many frames were written.
func (r *Recorder) Frames() uint64 { return r.ticks }

// Flush pushes buffered frames to the underlying writer.
func (r *Recorder) Flush() error { return r.w.Flush() }

// FrameReader reads a stream written by Recorder. Obstacle flags are not
// recorded and stay false.
type FrameReader struct {
	r          *bufio.Reader
	cols, rows int
	half       []uint16
	raw        []byte
}

// NewFrameReader validates the header of r.
func NewFrameReader(r io.Reader) (*FrameReader, error) {
	br := bufio.NewReader(r)
	var hdr recordHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRecording, err)
	}
	if hdr.Magic != recordMagic || hdr.Version != recordVersion {
		return nil, fmt.Errorf("%w: magic %q version %d", ErrBadRecording, hdr.Magic[:], hdr.Version)
	}
	n := int(hdr.Cols) * int(hdr.Rows)
	return &FrameReader{
		r:    br,
		cols: int(hdr.Cols),
		rows: int(hdr.Rows),
		half: make([]uint16, n),
		raw:  make([]byte, 2*n),
	}, nil
}

// Size returns the frame dimensions from the header.
func (fr *FrameReader) Size() (cols, rows int) { return fr.cols, fr.rows }

// Next decodes the next frame into dst and returns its sequence number.
// io.EOF marks a clean end of stream.
func (fr *FrameReader) Next(dst *wave.Frame) (uint64, error) {
	if dst.Cols != fr.cols || dst.Rows != fr.rows {
		return 0, fmt.Errorf("%w: destination is %dx%d, recording is %dx%d", ErrBadRecording, dst.Cols, dst.Rows, fr.cols, fr.rows)
	}
	var seq uint64
	if err := binary.Read(fr.r, binary.LittleEndian, &seq); err != nil {
		return 0, err
	}
	for _, plane := range [][]float32{dst.Heights, dst.Curvature} {
		if _, err := io.ReadFull(fr.r, fr.raw); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, fmt.Errorf("reading frame %d: %w", seq, err)
		}
		for i := range fr.half {
			fr.half[i] = binary.LittleEndian.Uint16(fr.raw[2*i:])
		}
		decodeHalf(plane, fr.half)
	}
	clear(dst.Solid)
	return seq, nil
}
