package features

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/senseedge/mltrain/internal/matfile"
)

// driveEndSuffix identifies the drive-end accelerometer variable inside
// a CWRU recording. The key naming is a fixed upstream convention.
const driveEndSuffix = "_DE_time"

// cwruFiles is the fixed file-to-class mapping for the CWRU bearing
// dataset. Order matters for deterministic dataset assembly.
var cwruFiles = []struct {
	Name  string
	Label int
}{
	{"Normal.mat", 0},
	{"B007.mat", 1},
	{"IR007.mat", 2},
	{"OR007.mat", 3},
}

// LoadCWRU builds a dataset from CWRU bearing recordings in dir. Each
// recording is windowed and reduced to 8 spectral features per window,
// then every feature column is min-max normalized to [0, 255] across
// the whole dataset. A missing or unreadable recording only drops that
// class; zero usable samples overall is ErrNoSamples.
func LoadCWRU(dir string, rng *rand.Rand, logger *zap.SugaredLogger) (*Dataset, error) {
	ds := &Dataset{}

	for _, f := range cwruFiles {
		path := filepath.Join(dir, f.Name)
		signal, err := loadDriveEndSignal(path)
		if err != nil {
			logger.Warnw("skipping class", "class", f.Label, "file", path, "error", err)
			continue
		}

		windows := extractSignal(signal)
		for _, w := range windows {
			ds.Samples = append(ds.Samples, w)
			ds.Labels = append(ds.Labels, f.Label)
		}
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("load cwru %s: %w", dir, ErrNoSamples)
	}

	normalizeColumns(ds.Samples)
	ds.Shuffle(rng)
	return ds, nil
}

// loadDriveEndSignal reads one recording and returns its drive-end
// accelerometer signal.
func loadDriveEndSignal(path string) ([]float64, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("recording not found: %w", err)
	}

	vars, err := matfile.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		if strings.HasSuffix(name, driveEndSuffix) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no %s variable in %s", driveEndSuffix, filepath.Base(path))
	}
	sort.Strings(names)
	return vars[names[0]], nil
}
