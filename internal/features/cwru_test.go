package features

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// writeMatFixture writes a minimal uncompressed level 5 MAT-file with a
// single double vector variable.
func writeMatFixture(t *testing.T, path, varName string, values []float64) {
	t.Helper()

	var buf bytes.Buffer

	head := make([]byte, 128)
	copy(head, "MATLAB 5.0 MAT-file, cwru test fixture")
	for i := len("MATLAB 5.0 MAT-file, cwru test fixture"); i < 116; i++ {
		head[i] = ' '
	}
	binary.LittleEndian.PutUint16(head[124:], 0x0100)
	head[126], head[127] = 'I', 'M'
	buf.Write(head)

	elem := func(tag uint32, data []byte) []byte {
		var b bytes.Buffer
		binary.Write(&b, binary.LittleEndian, tag)
		binary.Write(&b, binary.LittleEndian, uint32(len(data)))
		b.Write(data)
		for b.Len()%8 != 0 {
			b.WriteByte(0)
		}
		return b.Bytes()
	}

	var body bytes.Buffer
	flags := make([]byte, 8)
	flags[0] = 6 // mxDOUBLE_CLASS
	body.Write(elem(6, flags))
	dims := make([]byte, 8)
	binary.LittleEndian.PutUint32(dims, uint32(len(values)))
	binary.LittleEndian.PutUint32(dims[4:], 1)
	body.Write(elem(5, dims))
	body.Write(elem(1, []byte(varName)))
	data := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	body.Write(elem(9, data))
	buf.Write(elem(14, body.Bytes()))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func sineSignal(n int, cyclesPerFFT float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * cyclesPerFFT * float64(i) / 64)
	}
	return out
}

// TestLoadCWRUEmptyDir verifies that a directory with no recordings is
// a fatal data error.
func TestLoadCWRUEmptyDir(t *testing.T) {
	_, err := LoadCWRU(t.TempDir(), rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("LoadCWRU(empty dir) error = %v, want ErrNoSamples", err)
	}
}

// TestLoadCWRUSkipsMissingClass verifies training data survives with
// reduced class coverage when recordings are missing.
func TestLoadCWRUSkipsMissingClass(t *testing.T) {
	dir := t.TempDir()
	signal := sineSignal(4096, 3)
	writeMatFixture(t, filepath.Join(dir, "Normal.mat"), "X097_DE_time", signal)

	ds, err := LoadCWRU(dir, rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("LoadCWRU() error = %v", err)
	}

	wantWindows := (4096 - WindowSize) / WindowHop
	if ds.Len() != wantWindows {
		t.Errorf("Len = %d, want %d", ds.Len(), wantWindows)
	}
	for i, y := range ds.Labels {
		if y != 0 {
			t.Errorf("label %d = %d, want 0", i, y)
		}
	}
}

// TestLoadCWRUAllClasses verifies labels, normalization bounds, and
// determinism over a full set of recordings.
func TestLoadCWRUAllClasses(t *testing.T) {
	dir := t.TempDir()
	// Distinct tones per class so normalization sees real spread.
	writeMatFixture(t, filepath.Join(dir, "Normal.mat"), "X097_DE_time", sineSignal(3072, 2))
	writeMatFixture(t, filepath.Join(dir, "B007.mat"), "X122_DE_time", sineSignal(3072, 8))
	writeMatFixture(t, filepath.Join(dir, "IR007.mat"), "X105_DE_time", sineSignal(3072, 15))
	writeMatFixture(t, filepath.Join(dir, "OR007.mat"), "X130_DE_time", sineSignal(3072, 25))

	ds, err := LoadCWRU(dir, rand.New(rand.NewSource(5)), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("LoadCWRU() error = %v", err)
	}

	counts := ds.ClassCounts()
	wantPerClass := (3072 - WindowSize) / WindowHop
	for c, n := range counts {
		if n != wantPerClass {
			t.Errorf("class %d count = %d, want %d", c, n, wantPerClass)
		}
	}

	for i, s := range ds.Samples {
		for j, v := range s {
			if v < 0 || v > 255 {
				t.Errorf("sample %d feature %d = %v, want in [0, 255]", i, j, v)
			}
		}
	}

	again, err := LoadCWRU(dir, rand.New(rand.NewSource(5)), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("LoadCWRU() second run error = %v", err)
	}
	for i := range ds.Labels {
		if ds.Labels[i] != again.Labels[i] {
			t.Fatalf("label order differs between identically seeded runs at %d", i)
		}
	}
}

// TestLoadCWRUMissingKey verifies a recording without the drive-end
// channel is skipped rather than fatal.
func TestLoadCWRUMissingKey(t *testing.T) {
	dir := t.TempDir()
	writeMatFixture(t, filepath.Join(dir, "Normal.mat"), "X097_FE_time", sineSignal(4096, 3))

	_, err := LoadCWRU(dir, rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("LoadCWRU(no DE channel) error = %v, want ErrNoSamples", err)
	}
}
