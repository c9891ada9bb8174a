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

	"github.com/google/uuid"
	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var frameHeader = []string{"frame", "param", "z_low", "z_high", "z_min", "z_max", "z_mean"}

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
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Function  string             `json:"function"`
	Variables []string           `json:"variables"`
	X         surface.AxisBounds `json:"x"`
	Y         surface.AxisBounds `json:"y"`
	Z         surface.AxisBounds `json:"z"`
	DynamicZ  bool               `json:"dynamic_z"`
	Step      float64            `json:"step"`
	Sweep     schedule.Sweep     `json:"sweep"`
	Output    string             `json:"output,omitempty"`
	Rendered  int                `json:"rendered"`
	Skipped   []int              `json:"skipped,omitempty"`
	Stopped   bool               `json:"stopped"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewMetadata describes a finished run. res may be nil for runs that never started.
func NewMetadata(cfg *surface.Config, sweep schedule.Sweep, res *anim.Result, output string) RunMetadata {
	meta := RunMetadata{
		Function:  cfg.Function,
		Variables: append([]string(nil), cfg.Variables...),
		X:         cfg.XBounds,
		Y:         cfg.YBounds,
		Z:         cfg.ZBounds,
		DynamicZ:  cfg.DynamicZ,
		Sweep:     sweep,
		Output:    output,
		Metrics:   map[string]float64{},
	}
	if cfg.Grid != nil {
		meta.Step = cfg.Grid.Step()
	}
	if res != nil {
		meta.Rendered = res.Rendered
		meta.Skipped = append([]int(nil), res.Skipped...)
		meta.Stopped = res.Stopped
		meta.ElapsedMS = res.Elapsed.Milliseconds()
		for k, v := range res.Metrics {
			meta.Metrics[k] = v
		}
	}
	return meta
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("run_%s_%s", now.Format("20060102T150405"), uuid.NewString()[:8])
}

// Save writes meta and the per-frame statistics into a fresh run directory.
// The ID and Timestamp fields of meta are assigned here.
func (s *Store) Save(meta RunMetadata, stats []metrics.FrameStat) (string, error) {
	now := time.Now()
	meta.ID = newRunID(now)
	meta.Timestamp = now
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, st := range stats {
		row := []string{
			strconv.Itoa(st.Index),
			formatFloat(st.Param),
			formatFloat(st.ZLow),
			formatFloat(st.ZHigh),
			formatFloat(st.ZMin),
			formatFloat(st.ZMax),
			formatFloat(st.ZMean),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads back the per-frame statistics of a run.
func (s *Store) LoadFrames(runID string) ([]metrics.FrameStat, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []metrics.FrameStat{}, nil
	}

	stats := make([]metrics.FrameStat, 0, len(records)-1)
	for line, rec := range records[1:] {
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", runID, line+2, err)
		}
		var vals [6]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", runID, line+2, err)
			}
		}
		stats = append(stats, metrics.FrameStat{
			Index: idx,
			Param: vals[0],
			ZLow:  vals[1],
			ZHigh: vals[2],
			ZMin:  vals[3],
			ZMax:  vals[4],
			ZMean: vals[5],
		})
	}
	return stats, nil
}
