package model

import "gonum.org/v1/gonum/mat"

// Gradients holds the parameter gradients of one batch, shaped like
// Parameters.
type Gradients struct {
	W1 *mat.Dense
	B1 []float64
	W2 *mat.Dense
	B2 []float64
}

// Backward computes the fused softmax + cross-entropy gradients:
//
//	dz2 = (probs - onehot(labels)) / batch
//	dW2 = dz2' h1        db2 = colsum(dz2)
//	dh1 = dz2 W2
//	dz1 = dh1 . relu'(z1)
//	dW1 = dz1' X         db1 = colsum(dz1)
func Backward(x *mat.Dense, acts *Activations, labels []int, p *Parameters) *Gradients {
	n := len(labels)
	invN := 1.0 / float64(n)

	dz2 := mat.DenseCopyOf(acts.Probs)
	for i, y := range labels {
		dz2.Set(i, y, dz2.At(i, y)-1)
	}
	dz2.Scale(invN, dz2)

	var dW2 mat.Dense
	dW2.Mul(dz2.T(), acts.H1)
	dB2 := columnSums(dz2)

	var dh1 mat.Dense
	dh1.Mul(dz2, p.W2)

	// dz1 = dh1 gated by relu'(z1): 1 where z1 > 0, else 0.
	dz1 := &dh1
	for i := 0; i < n; i++ {
		z1Row := acts.Z1.RawRowView(i)
		dRow := dz1.RawRowView(i)
		for j, z := range z1Row {
			if z <= 0 {
				dRow[j] = 0
			}
		}
	}

	var dW1 mat.Dense
	dW1.Mul(dz1.T(), x)
	dB1 := columnSums(dz1)

	return &Gradients{W1: &dW1, B1: dB1, W2: &dW2, B2: dB2}
}

func columnSums(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	sums := make([]float64, cols)
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}
