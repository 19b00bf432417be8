// Package export packs quantized parameters into the weight artifact
// the hardware toolchain loads: four named int8 tensors, the canonical
// 212-entry flat sequence, and the four scale factors, in one .npz
// container.
package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/senseedge/mltrain/internal/model"
	"github.com/senseedge/mltrain/internal/npz"
	"github.com/senseedge/mltrain/internal/quant"
)

// TotalParams is the contractual length of the flat weight sequence:
// 128 W1 + 16 b1 + 64 W2 + 4 b2.
const TotalParams = 212

// ErrSizeMismatch guards the fixed 212-entry layout. Unreachable with
// the fixed network shapes; fatal if it ever fires.
var ErrSizeMismatch = errors.New("export: flat weight sequence is not 212 entries")

// Container entry names, fixed by the downstream loader.
const (
	entryW1     = "layer1_weights"
	entryB1     = "layer1_biases"
	entryW2     = "layer2_weights"
	entryB2     = "layer2_biases"
	entryFlat   = "all_weights"
	entryScales = "scales"
)

// Artifact is the terminal, immutable output of one training run.
type Artifact struct {
	Q          *quant.Parameters
	AllWeights []int8
}

// Flatten concatenates the tensors in the hardware memory order:
// W1 row-major, b1, W2 row-major, b2.
//
//	[0..127]   layer 1 weights (16 neurons x 8 inputs)
//	[128..143] layer 1 biases
//	[144..207] layer 2 weights (4 neurons x 16 inputs)
//	[208..211] layer 2 biases
func Flatten(qp *quant.Parameters) ([]int8, error) {
	flat := make([]int8, 0, TotalParams)
	flat = append(flat, qp.W1...)
	flat = append(flat, qp.B1...)
	flat = append(flat, qp.W2...)
	flat = append(flat, qp.B2...)
	if len(flat) != TotalParams {
		return nil, fmt.Errorf("%w: got %d", ErrSizeMismatch, len(flat))
	}
	return flat, nil
}

// Build assembles the artifact from one quantized snapshot.
func Build(qp *quant.Parameters) (*Artifact, error) {
	flat, err := Flatten(qp)
	if err != nil {
		return nil, err
	}
	return &Artifact{Q: qp, AllWeights: flat}, nil
}

// Save writes the artifact container to path.
func (a *Artifact) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w := npz.NewWriter(f)
	entries := []struct {
		name  string
		shape []int
		data  []int8
	}{
		{entryW1, []int{model.HiddenSize, model.InputSize}, a.Q.W1},
		{entryB1, []int{model.HiddenSize}, a.Q.B1},
		{entryW2, []int{model.OutputSize, model.HiddenSize}, a.Q.W2},
		{entryB2, []int{model.OutputSize}, a.Q.B2},
		{entryFlat, []int{TotalParams}, a.AllWeights},
	}
	for _, e := range entries {
		if err := w.Int8(e.name, e.shape, e.data); err != nil {
			return err
		}
	}
	if err := w.Float64(entryScales, []int{len(a.Q.Scales)}, a.Q.Scales[:]); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("export: finalize %s: %w", path, err)
	}
	return nil
}

// Load reads an artifact back from path, for audit and debugging of
// deployed weights.
func Load(path string) (*Artifact, error) {
	arrays, err := npz.ReadFile(path)
	if err != nil {
		return nil, err
	}

	qp := &quant.Parameters{}
	for _, e := range []struct {
		name string
		dst  *[]int8
	}{
		{entryW1, &qp.W1},
		{entryB1, &qp.B1},
		{entryW2, &qp.W2},
		{entryB2, &qp.B2},
	} {
		arr, ok := arrays[e.name]
		if !ok || arr.Int8 == nil {
			return nil, fmt.Errorf("export: %s: missing int8 entry %s", path, e.name)
		}
		*e.dst = arr.Int8
	}

	scales, ok := arrays[entryScales]
	if !ok || len(scales.Float64) != len(qp.Scales) {
		return nil, fmt.Errorf("export: %s: missing or malformed scales", path)
	}
	copy(qp.Scales[:], scales.Float64)

	flat, ok := arrays[entryFlat]
	if !ok || len(flat.Int8) != TotalParams {
		return nil, fmt.Errorf("export: %s: %w", path, ErrSizeMismatch)
	}
	return &Artifact{Q: qp, AllWeights: flat.Int8}, nil
}
