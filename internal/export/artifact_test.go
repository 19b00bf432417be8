package export

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/senseedge/mltrain/internal/model"
	"github.com/senseedge/mltrain/internal/quant"
)

func sequentialParameters() *quant.Parameters {
	qp := &quant.Parameters{
		W1:     make([]int8, model.HiddenSize*model.InputSize),
		B1:     make([]int8, model.HiddenSize),
		W2:     make([]int8, model.OutputSize*model.HiddenSize),
		B2:     make([]int8, model.OutputSize),
		Scales: [4]float64{12.5, 127, 31.75, 64},
	}
	// Distinct markers at block heads to pin the canonical order.
	qp.W1[0] = 1
	qp.B1[0] = 2
	qp.W2[0] = 3
	qp.B2[0] = 4
	return qp
}

// TestFlattenLayout verifies the 212-entry canonical block order.
func TestFlattenLayout(t *testing.T) {
	flat, err := Flatten(sequentialParameters())
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(flat) != TotalParams {
		t.Fatalf("len = %d, want %d", len(flat), TotalParams)
	}

	if flat[0] != 1 {
		t.Errorf("flat[0] = %d, want W1 head marker 1", flat[0])
	}
	if flat[128] != 2 {
		t.Errorf("flat[128] = %d, want b1 head marker 2", flat[128])
	}
	if flat[144] != 3 {
		t.Errorf("flat[144] = %d, want W2 head marker 3", flat[144])
	}
	if flat[208] != 4 {
		t.Errorf("flat[208] = %d, want b2 head marker 4", flat[208])
	}
}

// TestFlattenSizeMismatch verifies the defensive length assertion.
func TestFlattenSizeMismatch(t *testing.T) {
	qp := sequentialParameters()
	qp.B1 = qp.B1[:15]

	if _, err := Flatten(qp); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Flatten(short b1) error = %v, want ErrSizeMismatch", err)
	}

	qp = sequentialParameters()
	qp.W2 = append(qp.W2, 0)
	if _, err := Flatten(qp); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Flatten(long W2) error = %v, want ErrSizeMismatch", err)
	}
}

// TestSaveLoadRoundTrip verifies the artifact container is readable and
// faithful.
func TestSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	qp := sequentialParameters()
	for i := range qp.W1 {
		qp.W1[i] = int8(rng.Intn(256) - 128)
	}
	for i := range qp.W2 {
		qp.W2[i] = int8(rng.Intn(256) - 128)
	}

	artifact, err := Build(qp)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "weights.npz")
	if err := artifact.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for i := range artifact.AllWeights {
		if loaded.AllWeights[i] != artifact.AllWeights[i] {
			t.Fatalf("AllWeights[%d] = %d, want %d", i, loaded.AllWeights[i], artifact.AllWeights[i])
		}
	}
	for i := range qp.W1 {
		if loaded.Q.W1[i] != qp.W1[i] {
			t.Fatalf("W1[%d] = %d, want %d", i, loaded.Q.W1[i], qp.W1[i])
		}
	}
	if loaded.Q.Scales != qp.Scales {
		t.Errorf("Scales = %v, want %v", loaded.Q.Scales, qp.Scales)
	}
}
