// Package opt provides unit tests for the optimizer and scheduler.
package opt

import (
	"math"
	"testing"
)

// TestSGDStepInPlace tests the in-place SGD update.
func TestSGDStepInPlace(t *testing.T) {
	sgd := &SGD{LearningRate: 0.1}

	params := []float64{1.0, 2.0, -3.0}
	gradients := []float64{0.5, -0.5, 2.0}
	sgd.StepInPlace(params, gradients)

	want := []float64{0.95, 2.05, -3.2}
	for i := range params {
		if math.Abs(params[i]-want[i]) > 1e-12 {
			t.Errorf("params[%d] = %v, want %v", i, params[i], want[i])
		}
	}
}

// TestExponentialLR tests the per-epoch decay schedule.
func TestExponentialLR(t *testing.T) {
	sgd := &SGD{LearningRate: 0.01}
	sched := NewExponentialLR(sgd, 0.995)

	for i := 0; i < 10; i++ {
		sched.Step()
	}

	want := 0.01 * math.Pow(0.995, 10)
	if math.Abs(sched.GetLR()-want) > 1e-15 {
		t.Errorf("GetLR() = %v, want %v", sched.GetLR(), want)
	}
	if sgd.LearningRate != sched.GetLR() {
		t.Errorf("scheduler LR %v does not track optimizer LR %v", sched.GetLR(), sgd.LearningRate)
	}
}
