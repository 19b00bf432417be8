// Package eval computes classification accuracy for float and
// quantized parameter sets.
package eval

import (
	"gonum.org/v1/gonum/mat"

	"github.com/senseedge/mltrain/internal/features"
	"github.com/senseedge/mltrain/internal/model"
	"github.com/senseedge/mltrain/internal/quant"
)

// QuantAccuracyFloor is the advisory threshold for quantized accuracy.
// Falling below it is logged but never changes control flow.
const QuantAccuracyFloor = 0.90

// Accuracy runs the float forward pass over the whole dataset and
// returns the mean correct-prediction rate.
func Accuracy(ds *features.Dataset, p *model.Parameters) float64 {
	preds := predictAll(ds, p)
	correct := 0
	for i, y := range ds.Labels {
		if preds[i] == y {
			correct++
		}
	}
	return float64(correct) / float64(ds.Len())
}

// QuantizedAccuracy reports accuracy with the int8 tensors widened by a
// plain numeric cast, without rescaling by the stored scale factors.
// The hardware consumes raw integer weights the same way, so this is
// the as-deployed fidelity metric.
func QuantizedAccuracy(ds *features.Dataset, qp *quant.Parameters) float64 {
	return Accuracy(ds, Widen(qp))
}

// PerClassAccuracy returns the accuracy over each label's samples along
// with the per-label sample counts. Classes with no samples report 0.
func PerClassAccuracy(ds *features.Dataset, p *model.Parameters) (acc [features.NumClasses]float64, counts [features.NumClasses]int) {
	preds := predictAll(ds, p)
	var correct [features.NumClasses]int
	for i, y := range ds.Labels {
		counts[y]++
		if preds[i] == y {
			correct[y]++
		}
	}
	for c := range acc {
		if counts[c] > 0 {
			acc[c] = float64(correct[c]) / float64(counts[c])
		}
	}
	return acc, counts
}

// Widen converts quantized parameters back to a float parameter set by
// casting each int8 element. Scale factors are deliberately not
// applied.
func Widen(qp *quant.Parameters) *model.Parameters {
	return &model.Parameters{
		W1: mat.NewDense(model.HiddenSize, model.InputSize, widen(qp.W1)),
		B1: widen(qp.B1),
		W2: mat.NewDense(model.OutputSize, model.HiddenSize, widen(qp.W2)),
		B2: widen(qp.B2),
	}
}

func widen(q []int8) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = float64(v)
	}
	return out
}

func predictAll(ds *features.Dataset, p *model.Parameters) []int {
	data := make([]float64, 0, ds.Len()*features.NumFeatures)
	for _, s := range ds.Samples {
		data = append(data, s...)
	}
	x := mat.NewDense(ds.Len(), features.NumFeatures, data)
	return model.Predict(x, p)
}
