package features

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Windowing parameters for the real-signal path. A 1024-sample window
// with 512-sample hop matches the hardware capture cadence; the feature
// spectrum itself comes from a 64-point FFT over the window head.
const (
	WindowSize = 1024
	WindowHop  = 512

	fftSize = 64
	numBins = 32
)

// band edges over the 32 magnitude bins, [lo, hi) per band. Bin 0 (DC)
// is excluded from every band.
var bandEdges = [4][2]int{{1, 5}, {5, 11}, {11, 21}, {21, 32}}

// extractWindow computes the 8 spectral features for one time-domain
// window, mirroring the hardware feature extractor: four band energies,
// peak bin index scaled by 8, peak magnitude, magnitude-weighted
// centroid scaled by 8, and total magnitude.
func extractWindow(window []float64) []float64 {
	spectrum := fft.FFTReal(window[:fftSize])

	mag := make([]float64, numBins)
	for i := range mag {
		mag[i] = cmplx.Abs(spectrum[i])
	}

	out := make([]float64, NumFeatures)
	for b, edges := range bandEdges {
		out[b] = floats.Sum(mag[edges[0]:edges[1]])
	}

	peakBin := floats.MaxIdx(mag)
	out[4] = float64(peakBin) * 8 // hardware scales as peak_bin << 3
	out[5] = mag[peakBin]

	total := floats.Sum(mag)
	if total > 0 {
		centroid := 0.0
		for i, m := range mag {
			centroid += float64(i) * m
		}
		out[6] = centroid / total * 8
	}
	out[7] = total

	return out
}

// extractSignal slices a signal into overlapping windows and extracts
// features from each. Signals shorter than one window yield no samples.
func extractSignal(signal []float64) [][]float64 {
	if len(signal) < WindowSize {
		return nil
	}
	nWindows := (len(signal) - WindowSize) / WindowHop
	out := make([][]float64, 0, nWindows)
	for i := 0; i < nWindows; i++ {
		start := i * WindowHop
		out = append(out, extractWindow(signal[start:start+WindowSize]))
	}
	return out
}

// normalizeColumns rescales each feature column independently into
// [0, 255] across the whole dataset. Columns with zero range become 0.
func normalizeColumns(samples [][]float64) {
	if len(samples) == 0 {
		return
	}
	col := make([]float64, len(samples))
	for j := 0; j < NumFeatures; j++ {
		for i, s := range samples {
			col[i] = s[j]
		}
		cmin, cmax := floats.Min(col), floats.Max(col)
		if cmax > cmin {
			scale := 255.0 / (cmax - cmin)
			for _, s := range samples {
				s[j] = (s[j] - cmin) * scale
			}
		} else {
			for _, s := range samples {
				s[j] = 0
			}
		}
	}
}
