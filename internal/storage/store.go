package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      uint32             `json:"steps"`
	StepsTaken uint32             `json:"steps_taken"`
	Stride     int                `json:"stride"`
	G          float64            `json:"g"`
	Integrator string             `json:"integrator"`
	Masses     []float64          `json:"masses"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a new run directory holding meta and the retained steps.
// meta.ID and meta.Timestamp are assigned here.
func (s *Store) Save(meta RunMetadata, traj *trajectory.Store) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("threebody_%d_%s", now.Unix(), uuid.NewString()[:8])
	meta.Timestamp = now
	if meta.Stride == 0 {
		meta.Stride = traj.Stride()
	}

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

	csvFile, err := os.Create(filepath.Join(runDir, stepsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, traj); err != nil {
		return "", err
	}
	return meta.ID, csvFile.Close()
}

// WriteCSV writes one row per step: step, time, then x, y, vx, vy per body.
func WriteCSV(out io.Writer, traj *trajectory.Store) error {
	w := csv.NewWriter(out)

	n := 0
	if last, ok := traj.Last(); ok {
		n = last.Len()
	}

	header := []string{"step", "time"}
	for i := 0; i < n; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for step := range traj.All() {
		row := make([]string, 0, 2+4*step.Len())
		row = append(row, strconv.FormatUint(uint64(step.ID), 10), formatFloat(step.Time))
		for i := 0; i < step.Len(); i++ {
			b := step.Body(i)
			row = append(row,
				formatFloat(b.Position.X), formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X), formatFloat(b.Velocity.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory rebuilds the retained steps of a saved run.
func (s *Store) LoadTrajectory(runID string) (*trajectory.Store, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj, err := trajectory.New(meta.Stride)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return traj, nil
	}

	nBodies := (len(records[0]) - 2) / 4
	if nBodies != len(meta.Masses) {
		return nil, fmt.Errorf("storage: run %s has %d masses but %d bodies in %s", runID, len(meta.Masses), nBodies, stepsFile)
	}

	bodies := make([]dynamo.Body, nBodies)
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", stepsFile, line+2, err)
			}
			vals[j] = v
		}

		for i := range bodies {
			o := 2 + 4*i
			b, err := dynamo.NewBody(meta.Masses[i],
				r2.Vec{X: vals[o], Y: vals[o+1]},
				r2.Vec{X: vals[o+2], Y: vals[o+3]})
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", stepsFile, line+2, err)
			}
			bodies[i] = b
		}

		if err := traj.Record(dynamo.NewStep(uint32(vals[0]), meta.Dt, bodies)); err != nil {
			return nil, err
		}
	}

	return traj, nil
}
