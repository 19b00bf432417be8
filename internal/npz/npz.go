package npz

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer emits an .npz container: a zip archive of stored (uncompressed)
// .npy entries, matching what numpy's savez produces.
type Writer struct {
	zw *zip.Writer
}

// NewWriter wraps an open file or buffer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// Int8 adds an int8 array entry under name.
func (w *Writer) Int8(name string, shape []int, data []int8) error {
	payload := make([]byte, len(data))
	for i, v := range data {
		payload[i] = byte(v)
	}
	return w.add(name, "|i1", shape, payload)
}

// Float64 adds a little-endian float64 array entry under name.
func (w *Writer) Float64(name string, shape []int, data []float64) error {
	payload := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}
	return w.add(name, "<f8", shape, payload)
}

func (w *Writer) add(name, descr string, shape []int, payload []byte) error {
	entry, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name + ".npy",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("npz: create %s: %w", name, err)
	}
	return writeNPY(entry, descr, shape, payload)
}

// Close finalizes the zip directory.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// ReadFile opens an .npz container and decodes every array, keyed by
// entry name without the .npy suffix.
func ReadFile(path string) (map[string]*Array, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npz: open %s: %w", path, err)
	}
	defer zr.Close()

	arrays := make(map[string]*Array, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("npz: open entry %s: %w", f.Name, err)
		}
		arr, err := readNPY(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("npz: entry %s: %w", f.Name, err)
		}
		name := f.Name
		if len(name) > 4 && name[len(name)-4:] == ".npy" {
			name = name[:len(name)-4]
		}
		arrays[name] = arr
	}
	return arrays, nil
}
