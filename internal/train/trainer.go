// Package train drives mini-batch SGD training of the classifier and
// selects the best parameters by validation accuracy.
package train

import (
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/senseedge/mltrain/internal/eval"
	"github.com/senseedge/mltrain/internal/features"
	"github.com/senseedge/mltrain/internal/model"
	"github.com/senseedge/mltrain/internal/opt"
)

// Config holds the training hyperparameters.
type Config struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	LRDecay      float64
	Seed         int64
}

// logEvery is the epoch reporting cadence: the first epoch and every
// 20th thereafter.
const logEvery = 20

// Train runs mini-batch SGD over trainSet, evaluating on valSet after
// every epoch. It returns a value snapshot of the parameters with the
// highest validation accuracy seen, which may differ from the final
// epoch's working parameters, together with that accuracy.
func Train(cfg Config, trainSet, valSet *features.Dataset, logger *zap.SugaredLogger) (*model.Parameters, float64) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	params := model.NewParameters(rng)

	sgd := &opt.SGD{LearningRate: cfg.LearningRate}
	sched := opt.NewExponentialLR(sgd, cfg.LRDecay)

	n := trainSet.Len()
	bestAcc := 0.0
	best := params.Clone()

	logger.Infof("Training: %d samples, %d epochs, batch_size=%d, lr=%g",
		n, cfg.Epochs, cfg.BatchSize, cfg.LearningRate)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		perm := rng.Perm(n)

		epochLoss := 0.0
		nBatches := 0

		for start := 0; start < n; start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > n {
				end = n
			}
			x, labels := gatherBatch(trainSet, perm[start:end])

			acts := model.Forward(x, params)
			epochLoss += model.Loss(acts.Probs, labels)
			nBatches++

			grads := model.Backward(x, acts, labels, params)
			applyGradients(sgd, params, grads)
		}

		sched.Step()
		epochLoss /= float64(nBatches)

		valAcc := eval.Accuracy(valSet, params)
		if valAcc > bestAcc {
			bestAcc = valAcc
			best = params.Clone()
		}

		if epoch == 0 || (epoch+1)%logEvery == 0 {
			logger.Infof("  Epoch %4d/%d  loss=%.4f  val_acc=%.1f%%  lr=%.6f",
				epoch+1, cfg.Epochs, epochLoss, valAcc*100, sched.GetLR())
		}
	}

	logger.Infof("Best validation accuracy: %.1f%%", bestAcc*100)
	return best, bestAcc
}

// gatherBatch assembles the selected samples into one batch matrix plus
// its label slice.
func gatherBatch(ds *features.Dataset, idx []int) (*mat.Dense, []int) {
	data := make([]float64, 0, len(idx)*features.NumFeatures)
	labels := make([]int, len(idx))
	for i, p := range idx {
		data = append(data, ds.Samples[p]...)
		labels[i] = ds.Labels[p]
	}
	return mat.NewDense(len(idx), features.NumFeatures, data), labels
}

// applyGradients performs one SGD step on every parameter tensor. The
// gradient matrices share the row-major layout of their parameters.
func applyGradients(sgd *opt.SGD, p *model.Parameters, g *model.Gradients) {
	sgd.StepInPlace(p.W1.RawMatrix().Data, g.W1.RawMatrix().Data)
	sgd.StepInPlace(p.B1, g.B1)
	sgd.StepInPlace(p.W2.RawMatrix().Data, g.W2.RawMatrix().Data)
	sgd.StepInPlace(p.B2, g.B2)
}
