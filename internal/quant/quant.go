// Package quant converts trained float parameters to the signed 8-bit
// fixed-point representation the hardware inference engine consumes.
package quant

import (
	"math"

	"github.com/senseedge/mltrain/internal/model"
)

// Parameters holds the four quantized tensors and their scale factors.
// Each tensor carries its own scale (order: W1, b1, W2, b2); collapsing
// to a shared scale would break the per-layer fixed-point contract.
type Parameters struct {
	W1     []int8 // HiddenSize x InputSize, row-major
	B1     []int8
	W2     []int8 // OutputSize x HiddenSize, row-major
	B2     []int8
	Scales [4]float64
}

// Quantize maps a float tensor to int8 with symmetric per-tensor
// scaling: scale = 127/max|t|, each element round(v*scale) clipped to
// [-128, 127]. An all-zero tensor quantizes to zeros with scale 1.
func Quantize(t []float64) ([]int8, float64) {
	maxAbs := 0.0
	for _, v := range t {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	q := make([]int8, len(t))
	if maxAbs == 0 {
		return q, 1.0
	}

	scale := 127.0 / maxAbs
	for i, v := range t {
		r := math.Round(v * scale)
		if r > 127 {
			r = 127
		} else if r < -128 {
			r = -128
		}
		q[i] = int8(r)
	}
	return q, scale
}

// QuantizeParameters quantizes every tensor of a parameter snapshot
// independently.
func QuantizeParameters(p *model.Parameters) *Parameters {
	out := &Parameters{}
	out.W1, out.Scales[0] = Quantize(p.W1.RawMatrix().Data)
	out.B1, out.Scales[1] = Quantize(p.B1)
	out.W2, out.Scales[2] = Quantize(p.W2.RawMatrix().Data)
	out.B2, out.Scales[3] = Quantize(p.B2)
	return out
}
