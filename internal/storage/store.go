package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/landing"
	"github.com/san-kum/quadsim/internal/physics"
)

// ErrNoRun reports a run ID with nothing stored under it.
var ErrNoRun = errors.New("storage: run not found")

// Columns of flight.csv, in order.
var Columns = []string{
	"time",
	"x", "altitude", "z",
	"vx", "valt", "vz",
	"roll", "pitch", "yaw",
	"roll_rate", "pitch_rate", "yaw_rate",
	"front_left", "front_right", "rear_left", "rear_right",
	"target_altitude", "remaining", "total_energy", "safe_landing",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID               string             `json:"id"`
	Preset           string             `json:"preset,omitempty"`
	Source           string             `json:"source"`
	Timestamp        time.Time          `json:"timestamp"`
	Dt               float64            `json:"dt"`
	Duration         float64            `json:"duration"`
	Integrator       string             `json:"integrator"`
	Steps            int                `json:"steps"`
	LandingTriggered bool               `json:"landing_triggered"`
	LandingTime      float64            `json:"landing_time,omitempty"`
	Touchdown        bool               `json:"touchdown"`
	Remaining        float64            `json:"remaining"`
	Metrics          map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and flight.csv under the run's directory.
func (s *Store) Save(meta RunMetadata, frames []host.Frame) error {
	if meta.ID == "" {
		return errors.New("storage: run ID is required")
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "flight.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, f := range frames {
		if err := w.Write(row(f)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func row(f host.Frame) []string {
	vals := make([]float64, 0, len(Columns))
	vals = append(vals, f.Time)
	for i := 0; i < physics.StateDim; i++ {
		vals = append(vals, at(f.State, i))
	}
	for i := 0; i < 4; i++ {
		vals = append(vals, at(f.Control, i))
	}
	descending := 0.0
	if f.Status.State == landing.StateSafeLanding {
		descending = 1
	}
	vals = append(vals, f.Status.TargetAltitude, f.Status.Remaining, f.Status.Energy.Total, descending)

	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return out
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// List returns every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is flight.csv read back by column.
type Series struct {
	Columns []string
	Data    map[string][]float64
}

func (s *Series) Column(name string) ([]float64, bool) {
	c, ok := s.Data[name]
	return c, ok
}

func (s *Series) Len() int { return len(s.Data["time"]) }

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "flight.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s: missing header", runID)
	}

	header := records[0]
	series := &Series{Columns: header, Data: make(map[string][]float64, len(header))}
	for _, name := range header {
		series.Data[name] = make([]float64, 0, len(records)-1)
	}
	for line, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", runID, line+2, err)
			}
			series.Data[header[j]] = append(series.Data[header[j]], v)
		}
	}
	return series, nil
}

// Delete removes a stored run.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		return fmt.Errorf("%w: %s", ErrNoRun, runID)
	}
	return os.RemoveAll(dir)
}
