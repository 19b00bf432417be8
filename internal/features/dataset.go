// Package features produces labeled 8-dimensional feature vectors for
// the vibration classifier, either synthetically or from recorded
// accelerometer signals.
package features

import (
	"errors"
	"math/rand"
)

// NumFeatures is the width of every feature vector. The order matches
// the hardware feature extractor: four band energies, peak bin (scaled),
// peak magnitude, spectral centroid (scaled), total energy.
const NumFeatures = 8

// NumClasses is the number of fault classes.
const NumClasses = 4

// ClassNames maps labels to the fault condition they encode.
var ClassNames = [NumClasses]string{"Healthy", "Bearing Wear", "Imbalance", "Misalignment"}

// ErrNoSamples is returned when a data source yields zero usable samples.
var ErrNoSamples = errors.New("features: no usable samples")

// Dataset is an ordered collection of samples and integer labels.
// Samples are read-only once produced.
type Dataset struct {
	Samples [][]float64
	Labels  []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Shuffle permutes samples and labels in place using rng.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	perm := rng.Perm(d.Len())
	samples := make([][]float64, d.Len())
	labels := make([]int, d.Len())
	for i, p := range perm {
		samples[i] = d.Samples[p]
		labels[i] = d.Labels[p]
	}
	d.Samples = samples
	d.Labels = labels
}

// Clip bounds every feature to [0, 255] in place. The hardware operates
// on uint8 inputs.
func (d *Dataset) Clip() {
	for _, s := range d.Samples {
		for j, v := range s {
			if v < 0 {
				s[j] = 0
			} else if v > 255 {
				s[j] = 255
			}
		}
	}
}

// ClassCounts returns the number of samples per label.
func (d *Dataset) ClassCounts() [NumClasses]int {
	var counts [NumClasses]int
	for _, y := range d.Labels {
		counts[y]++
	}
	return counts
}

// Split divides the dataset into a head of frac*len samples and the
// remaining tail. The underlying sample slices are shared; callers must
// not mutate them.
func (d *Dataset) Split(frac float64) (train, val *Dataset) {
	cut := int(frac * float64(d.Len()))
	train = &Dataset{Samples: d.Samples[:cut], Labels: d.Labels[:cut]}
	val = &Dataset{Samples: d.Samples[cut:], Labels: d.Labels[cut:]}
	return train, val
}
