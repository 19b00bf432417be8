package features

import "math/rand"

// classRanges holds the uniform [lo, hi) draw range for each feature of
// each fault class. The ranges mimic the spectral signatures the
// hardware feature extractor produces for each condition and keep every
// feature inside [0, 255] by construction.
var classRanges = [NumClasses][NumFeatures][2]float64{
	// Class 0: Healthy - energy concentrated in the low band, low total energy.
	{
		{140, 255}, // band low
		{20, 80},   // band mid-low
		{5, 40},    // band mid-high
		{0, 25},    // band high
		{10, 60},   // peak bin index * 8
		{30, 100},  // peak magnitude
		{10, 50},   // spectral centroid * 8
		{40, 120},  // total energy
	},
	// Class 1: Bearing Wear - dominant mid-low band, high peak magnitude.
	{
		{40, 100},
		{150, 255},
		{30, 80},
		{10, 50},
		{50, 110},
		{180, 255},
		{50, 100},
		{120, 200},
	},
	// Class 2: Imbalance - dominant mid-high band.
	{
		{20, 70},
		{30, 80},
		{160, 255},
		{20, 70},
		{100, 170},
		{100, 180},
		{100, 160},
		{100, 180},
	},
	// Class 3: Misalignment - dominant high band, high centroid.
	{
		{10, 50},
		{15, 60},
		{40, 100},
		{170, 255},
		{170, 248},
		{120, 210},
		{160, 230},
		{130, 220},
	},
}

// GenerateSynthetic produces nPerClass samples for each of the four
// fault classes, then shuffles the combined dataset. Class balance is
// exact and the result is fully determined by rng's seed.
func GenerateSynthetic(nPerClass int, rng *rand.Rand) *Dataset {
	n := nPerClass * NumClasses
	ds := &Dataset{
		Samples: make([][]float64, 0, n),
		Labels:  make([]int, 0, n),
	}

	for class := 0; class < NumClasses; class++ {
		ranges := &classRanges[class]
		for i := 0; i < nPerClass; i++ {
			sample := make([]float64, NumFeatures)
			for j := 0; j < NumFeatures; j++ {
				lo, hi := ranges[j][0], ranges[j][1]
				sample[j] = lo + rng.Float64()*(hi-lo)
			}
			ds.Samples = append(ds.Samples, sample)
			ds.Labels = append(ds.Labels, class)
		}
	}

	ds.Shuffle(rng)
	return ds
}
