// Package matfile reads Level 5 MAT-file containers, the distribution
// format of the CWRU bearing recordings. Only what those recordings
// need is implemented: little-endian files, zlib-compressed elements,
// and real numeric matrices, returned as flattened float64 slices.
package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// MAT 5 data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miMATRIX     = 14
	miCOMPRESSED = 15
)

const headerSize = 128

var (
	ErrBadHeader    = errors.New("matfile: not a level 5 MAT-file")
	ErrBigEndian    = errors.New("matfile: big-endian files are not supported")
	ErrShortElement = errors.New("matfile: truncated data element")
)

// ReadFile parses a MAT-file and returns every real numeric matrix
// keyed by variable name. Non-numeric variables (cells, structs, char
// arrays) are skipped.
func ReadFile(path string) (map[string][]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

// Decode parses an in-memory MAT-file image.
func Decode(raw []byte) (map[string][]float64, error) {
	if len(raw) < headerSize {
		return nil, ErrBadHeader
	}
	// Endian indicator at offset 126: "IM" means the writer was
	// little-endian, "MI" big-endian.
	switch string(raw[126:128]) {
	case "IM":
	case "MI":
		return nil, ErrBigEndian
	default:
		return nil, ErrBadHeader
	}

	vars := make(map[string][]float64)
	body := raw[headerSize:]
	for len(body) > 0 {
		elemType, data, rest, err := nextElement(body)
		if err != nil {
			return nil, err
		}
		body = rest

		if err := decodeElement(elemType, data, vars); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

// decodeElement handles one top-level element, inflating compressed
// elements and collecting numeric matrices. Other element types are
// ignored.
func decodeElement(elemType uint32, data []byte, vars map[string][]float64) error {
	switch elemType {
	case miCOMPRESSED:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("inflate element: %w", err)
		}
		inflated, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return fmt.Errorf("inflate element: %w", err)
		}
		innerType, inner, _, err := nextElement(inflated)
		if err != nil {
			return err
		}
		return decodeElement(innerType, inner, vars)

	case miMATRIX:
		name, values, err := decodeMatrix(data)
		if err != nil {
			return err
		}
		if values != nil {
			vars[name] = values
		}
	}
	return nil
}

// nextElement splits the leading data element off a byte stream,
// honoring the small-element encoding where type and payload share the
// 8-byte tag.
func nextElement(b []byte) (elemType uint32, data, rest []byte, err error) {
	if len(b) < 8 {
		return 0, nil, nil, ErrShortElement
	}
	word := binary.LittleEndian.Uint32(b)
	if small := word >> 16; small != 0 {
		// Small element: payload lives in the tag's second half.
		if small > 4 {
			return 0, nil, nil, ErrShortElement
		}
		return word & 0xffff, b[4 : 4+small], b[8:], nil
	}

	size := binary.LittleEndian.Uint32(b[4:])
	padded := (size + 7) &^ 7
	if uint32(len(b)-8) < size {
		return 0, nil, nil, ErrShortElement
	}
	data = b[8 : 8+size]
	if uint32(len(b)-8) < padded {
		// Final element may omit trailing pad.
		return word, data, nil, nil
	}
	return word, data, b[8+padded:], nil
}

// decodeMatrix parses a miMATRIX element. Returns a nil slice for
// array classes that do not carry plain numeric data.
func decodeMatrix(b []byte) (string, []float64, error) {
	// Array flags.
	_, flags, rest, err := nextElement(b)
	if err != nil || len(flags) < 4 {
		return "", nil, fmt.Errorf("matrix flags: %w", ErrShortElement)
	}
	class := flags[0]

	// Dimensions (unused beyond validation that they exist).
	_, _, rest, err = nextElement(rest)
	if err != nil {
		return "", nil, fmt.Errorf("matrix dimensions: %w", err)
	}

	// Name.
	_, nameBytes, rest, err := nextElement(rest)
	if err != nil {
		return "", nil, fmt.Errorf("matrix name: %w", err)
	}
	name := string(nameBytes)

	// Numeric classes mxDOUBLE_CLASS(6) through mxUINT32_CLASS(13);
	// anything else (cell, struct, char, sparse) is skipped.
	if class < 6 || class > 13 {
		return name, nil, nil
	}

	dataType, data, _, err := nextElement(rest)
	if err != nil {
		return "", nil, fmt.Errorf("matrix %q data: %w", name, err)
	}
	values, err := decodeNumeric(dataType, data)
	if err != nil {
		return "", nil, fmt.Errorf("matrix %q: %w", name, err)
	}
	return name, values, nil
}

// decodeNumeric widens a numeric sub-element to float64. MATLAB stores
// the real part with the smallest type that preserves the values, so
// the storage type can differ from the array class.
func decodeNumeric(dataType uint32, data []byte) ([]float64, error) {
	switch dataType {
	case miDOUBLE:
		out := make([]float64, len(data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	case miSINGLE:
		out := make([]float64, len(data)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return out, nil
	case miINT32:
		out := make([]float64, len(data)/4)
		for i := range out {
			out[i] = float64(int32(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return out, nil
	case miUINT32:
		out := make([]float64, len(data)/4)
		for i := range out {
			out[i] = float64(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out, nil
	case miINT16:
		out := make([]float64, len(data)/2)
		for i := range out {
			out[i] = float64(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
		return out, nil
	case miUINT16:
		out := make([]float64, len(data)/2)
		for i := range out {
			out[i] = float64(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return out, nil
	case miINT8:
		out := make([]float64, len(data))
		for i := range out {
			out[i] = float64(int8(data[i]))
		}
		return out, nil
	case miUINT8:
		out := make([]float64, len(data))
		for i := range out {
			out[i] = float64(data[i])
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported numeric type %d", dataType)
}
