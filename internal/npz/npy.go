// Package npz reads and writes NumPy .npy arrays and .npz containers.
// The weight artifact is an .npz file so the downstream loader and the
// original tooling can consume it unchanged; only the two dtypes the
// artifact uses (int8 and little-endian float64) are implemented.
package npz

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

const headerAlign = 64

var ErrBadMagic = errors.New("npz: not an npy array")

// Array is one decoded .npy payload. Exactly one of Int8 and Float64 is
// populated, according to Descr.
type Array struct {
	Descr   string
	Shape   []int
	Int8    []int8
	Float64 []float64
}

// Len returns the element count implied by the shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// writeNPY emits a version 1.0 .npy array: magic, header dict padded to
// a 64-byte boundary, then the raw little-endian payload.
func writeNPY(w io.Writer, descr string, shape []int, payload []byte) error {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)

	// magic(6) + version(2) + hlen(2) + header must align to 64.
	total := len(npyMagic) + 4 + len(header) + 1
	if pad := total % headerAlign; pad != 0 {
		header += strings.Repeat(" ", headerAlign-pad)
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readNPY decodes a version 1.x .npy stream.
func readNPY(r io.Reader) (*Array, error) {
	head := make([]byte, len(npyMagic)+4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	if string(head[:len(npyMagic)]) != string(npyMagic) {
		return nil, ErrBadMagic
	}
	hlen := binary.LittleEndian.Uint16(head[len(npyMagic)+2:])

	headerBytes := make([]byte, hlen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("npz: read header: %w", err)
	}
	arr, elemSize, err := parseHeader(string(headerBytes))
	if err != nil {
		return nil, err
	}

	payload := make([]byte, arr.Len()*elemSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("npz: read payload: %w", err)
	}

	switch arr.Descr {
	case "|i1":
		arr.Int8 = make([]int8, arr.Len())
		for i, b := range payload {
			arr.Int8[i] = int8(b)
		}
	case "<f8":
		arr.Float64 = make([]float64, arr.Len())
		for i := range arr.Float64 {
			arr.Float64[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
		}
	}
	return arr, nil
}

// parseHeader extracts descr and shape from the header dict literal.
func parseHeader(header string) (*Array, int, error) {
	arr := &Array{}

	descr, err := extract(header, "'descr': '", "'")
	if err != nil {
		return nil, 0, err
	}
	arr.Descr = descr

	var elemSize int
	switch descr {
	case "|i1":
		elemSize = 1
	case "<f8":
		elemSize = 8
	default:
		return nil, 0, fmt.Errorf("npz: unsupported dtype %q", descr)
	}

	shapeStr, err := extract(header, "'shape': (", ")")
	if err != nil {
		return nil, 0, err
	}
	for _, part := range strings.Split(shapeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, 0, fmt.Errorf("npz: bad shape %q: %w", shapeStr, err)
		}
		arr.Shape = append(arr.Shape, d)
	}
	return arr, elemSize, nil
}

func extract(s, prefix, terminator string) (string, error) {
	start := strings.Index(s, prefix)
	if start < 0 {
		return "", fmt.Errorf("npz: header field %q missing", prefix)
	}
	rest := s[start+len(prefix):]
	end := strings.Index(rest, terminator)
	if end < 0 {
		return "", fmt.Errorf("npz: unterminated header field %q", prefix)
	}
	return rest[:end], nil
}
