package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Activations caches the intermediate results of one forward pass for
// the backward pass.
type Activations struct {
	Z1    *mat.Dense // pre-activation, batch x HiddenSize
	H1    *mat.Dense // relu(Z1)
	Probs *mat.Dense // softmax output, batch x OutputSize
}

// Forward runs the batch forward pass:
// z1 = X W1' + b1; h1 = relu(z1); z2 = h1 W2' + b2; probs = softmax(z2).
func Forward(x *mat.Dense, p *Parameters) *Activations {
	var z1 mat.Dense
	z1.Mul(x, p.W1.T())
	addRowwise(&z1, p.B1)

	h1 := mat.DenseCopyOf(&z1)
	h1.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, h1)

	var z2 mat.Dense
	z2.Mul(h1, p.W2.T())
	addRowwise(&z2, p.B2)
	softmaxRows(&z2)

	return &Activations{Z1: &z1, H1: h1, Probs: &z2}
}

// Predict returns the argmax class per row of the batch.
func Predict(x *mat.Dense, p *Parameters) []int {
	acts := Forward(x, p)
	n, _ := acts.Probs.Dims()
	preds := make([]int, n)
	for i := 0; i < n; i++ {
		preds[i] = floats.MaxIdx(acts.Probs.RawRowView(i))
	}
	return preds
}

// Loss is the mean cross-entropy over the batch:
// mean(-log(probs[i][label[i]] + 1e-12)).
func Loss(probs *mat.Dense, labels []int) float64 {
	const eps = 1e-12
	sum := 0.0
	for i, y := range labels {
		sum -= math.Log(probs.At(i, y) + eps)
	}
	return sum / float64(len(labels))
}

// addRowwise adds the bias vector to every row of m in place.
func addRowwise(m *mat.Dense, bias []float64) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		floats.Add(m.RawRowView(i), bias)
	}
}

// softmaxRows applies a max-subtracted softmax to each row in place.
func softmaxRows(m *mat.Dense) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		row := m.RawRowView(i)
		max := floats.Max(row)
		sum := 0.0
		for j, v := range row {
			row[j] = math.Exp(v - max)
			sum += row[j]
		}
		floats.Scale(1/sum, row)
	}
}
