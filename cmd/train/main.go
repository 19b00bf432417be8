// Command train runs the SenseEdge training pipeline: it builds a
// labeled feature dataset (synthetic or CWRU recordings), trains the
// 8-16-4 classifier with mini-batch SGD, quantizes the best checkpoint
// to INT8, validates quantized fidelity, and writes the weight artifact
// consumed by the hardware toolchain.
package main

import (
	"errors"
	"flag"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"github.com/senseedge/mltrain/internal/eval"
	"github.com/senseedge/mltrain/internal/export"
	"github.com/senseedge/mltrain/internal/features"
	"github.com/senseedge/mltrain/internal/quant"
	"github.com/senseedge/mltrain/internal/train"
)

const defaultOutput = "senseedge_weights.npz"

func main() {
	cwruDir := flag.String("cwru-dir", "", "path to CWRU .mat recordings (omit for synthetic data)")
	epochs := flag.Int("epochs", 200, "training epochs")
	batchSize := flag.Int("batch-size", 64, "mini-batch size")
	lr := flag.Float64("lr", 0.01, "initial learning rate")
	samples := flag.Int("samples", 500, "samples per class for synthetic data")
	seed := flag.Int64("seed", 42, "random seed")
	output := flag.String("output", defaultOutput, "output .npz path")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infof("SenseEdge ML Training Pipeline")
	sugar.Infof("Network: 8 inputs -> 16 hidden (ReLU) -> 4 outputs (argmax)")
	sugar.Infof("Quantization: INT8 [-128, 127], %d parameters", export.TotalParams)

	rng := rand.New(rand.NewSource(*seed))

	var ds *features.Dataset
	var err error
	if *cwruDir != "" {
		sugar.Infof("Loading CWRU data from %s ...", *cwruDir)
		ds, err = features.LoadCWRU(*cwruDir, rng, sugar)
		if err != nil {
			if errors.Is(err, features.ErrNoSamples) {
				sugar.Errorf("no data loaded, check -cwru-dir and filenames: %v", err)
				logger.Sync()
				os.Exit(1)
			}
			sugar.Fatalf("load data: %v", err)
		}
	} else {
		sugar.Infof("Generating synthetic training data ...")
		ds = features.GenerateSynthetic(*samples, rng)
	}

	ds.Clip()

	counts := ds.ClassCounts()
	sugar.Infof("Dataset: %d samples, %d features, %d classes",
		ds.Len(), features.NumFeatures, features.NumClasses)
	for c, n := range counts {
		sugar.Infof("  Class %d (%s): %d samples", c, features.ClassNames[c], n)
	}

	trainSet, valSet := ds.Split(0.8)
	sugar.Infof("Train: %d samples, Val: %d samples", trainSet.Len(), valSet.Len())

	cfg := train.Config{
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *lr,
		LRDecay:      0.995,
		Seed:         *seed,
	}
	params, _ := train.Train(cfg, trainSet, valSet, sugar)

	floatAcc := eval.Accuracy(valSet, params)
	sugar.Infof("Float accuracy (validation): %.1f%%", floatAcc*100)

	sugar.Infof("Quantizing to INT8 ...")
	qp := quant.QuantizeParameters(params)

	int8Acc := eval.QuantizedAccuracy(valSet, qp)
	sugar.Infof("INT8 accuracy (validation):  %.1f%%", int8Acc*100)
	if int8Acc < eval.QuantAccuracyFloor {
		sugar.Warnf("INT8 accuracy below %.0f%% target; consider more epochs or a different lr",
			eval.QuantAccuracyFloor*100)
	}

	perClass, classCounts := eval.PerClassAccuracy(valSet, eval.Widen(qp))
	sugar.Infof("Per-class accuracy (INT8):")
	for c := range perClass {
		if classCounts[c] > 0 {
			sugar.Infof("  Class %d (%14s): %.1f%%", c, features.ClassNames[c], perClass[c]*100)
		}
	}

	artifact, err := export.Build(qp)
	if err != nil {
		sugar.Fatalf("serialize weights: %v", err)
	}
	if err := artifact.Save(*output); err != nil {
		sugar.Fatalf("save weights: %v", err)
	}

	sugar.Infof("Saved INT8 weights to %s", *output)
	reportRange(sugar, "Layer 1 weights", qp.W1)
	reportRange(sugar, "Layer 1 biases", qp.B1)
	reportRange(sugar, "Layer 2 weights", qp.W2)
	reportRange(sugar, "Layer 2 biases", qp.B2)
	sugar.Infof("  Total: %d parameters", len(artifact.AllWeights))

	sugar.Infof("Done.")
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func reportRange(sugar *zap.SugaredLogger, name string, q []int8) {
	lo, hi := q[0], q[0]
	for _, v := range q {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	sugar.Infof("  %s: %d values, range [%d, %d]", name, len(q), lo, hi)
}
