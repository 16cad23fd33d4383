// Package telemetry records a run to disk: its features, config, change log,
// frame timing and exported snapshots.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sketch"
)

// RunRecord is written to features.yaml.
type RunRecord struct {
	Seed     int64           `yaml:"seed"`
	Features sketch.Features `yaml:"features"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	changesFile *os.File
	perfFile    *os.File

	changesHeaderWritten bool
	perfHeaderWritten    bool

	snapshots int
}

// NewOutputManager creates the output directory and opens the log files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "changes.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating changes.csv: %w", err)
	}
	om.changesFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.changesFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFeatures saves the run's seed and features as YAML.
func (om *OutputManager) WriteFeatures(seed int64, f sketch.Features) error {
	if om == nil {
		return nil
	}
	data, err := yaml.Marshal(RunRecord{Seed: seed, Features: f})
	if err != nil {
		return fmt.Errorf("marshaling features: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "features.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing features.yaml: %w", err)
	}
	return nil
}

// WriteEvent appends a change log entry to changes.csv.
func (om *OutputManager) WriteEvent(e sketch.Event) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.changesFile, &om.changesHeaderWritten, []sketch.Event{e}, "changes")
}

// WritePerf appends a frame timing record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, frame int) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(frame)}, "perf")
}

// writeRecords writes the header with the first batch only.
func writeRecords[T any](f *os.File, headerWritten *bool, records []T, name string) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		*headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// NextSnapshotPath returns a fresh PNG path under snapshots/ for frame.
func (om *OutputManager) NextSnapshotPath(frame int) (string, error) {
	if om == nil {
		return "", nil
	}
	dir := filepath.Join(om.dir, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	om.snapshots++
	return filepath.Join(dir, fmt.Sprintf("%03d_frame_%06d.png", om.snapshots, frame)), nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.changesFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
