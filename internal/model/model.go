// Package model implements the fixed 8-16-4 classifier: parameter
// tensors, the batch forward pass, and the closed-form backward pass
// for softmax cross-entropy. No autodiff; the gradients are the
// contract the fixed-point hardware port was verified against.
package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network dimensions, fixed for the system's lifetime.
const (
	InputSize  = 8
	HiddenSize = 16
	OutputSize = 4
)

// Parameters holds the float weights and biases of both layers.
// W1 is HiddenSize x InputSize, W2 is OutputSize x HiddenSize.
type Parameters struct {
	W1 *mat.Dense
	B1 []float64
	W2 *mat.Dense
	B2 []float64
}

// NewParameters initializes weights with variance-scaled Gaussians
// (He init, sigma = sqrt(2/fanIn) per layer) and zero biases, drawing
// from rng for reproducibility.
func NewParameters(rng *rand.Rand) *Parameters {
	return &Parameters{
		W1: randomDense(HiddenSize, InputSize, math.Sqrt(2.0/InputSize), rng),
		B1: make([]float64, HiddenSize),
		W2: randomDense(OutputSize, HiddenSize, math.Sqrt(2.0/HiddenSize), rng),
		B2: make([]float64, OutputSize),
	}
}

// Clone returns a deep value copy. Best-checkpoint snapshots must never
// alias the actively mutating working copy.
func (p *Parameters) Clone() *Parameters {
	return &Parameters{
		W1: mat.DenseCopyOf(p.W1),
		B1: append([]float64(nil), p.B1...),
		W2: mat.DenseCopyOf(p.W2),
		B2: append([]float64(nil), p.B2...),
	}
}

func randomDense(rows, cols int, scale float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}
