package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/spinodal/internal/analysis"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/sim"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

const (
	metadataFile = "metadata.json"
	paramsFile   = "params.yaml"
	solutionFile = "solution.yaml"
	historyFile  = "history.csv"
	fieldFile    = "U.csv"
	gzExt        = ".gz"
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

// Dir returns the directory of a run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	N             int                `json:"n"`
	Seed          int64              `json:"seed"`
	Generator     string             `json:"generator"`
	Transform     string             `json:"transform"`
	StopReason    string             `json:"stop_reason"`
	ComputedSteps int                `json:"computed_steps"`
	Tau0          int                `json:"tau0"`
	T0            float64            `json:"t0"`
	Compressed    bool               `json:"compressed"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Solution is the scalar summary written to solution.yaml.
type Solution struct {
	ComputedSteps int     `yaml:"computed_steps"`
	StopReason    string  `yaml:"stop_reason"`
	Tau0          int     `yaml:"tau0"`
	Detected      bool    `yaml:"separation_detected"`
	T0            float64 `yaml:"t0"`
	LegacyT0      float64 `yaml:"t0_legacy"`
	TimePassed    float64 `yaml:"time_passed"`
	Delt          float64 `yaml:"delt"`
	E             float64 `yaml:"E"`
	E2            float64 `yaml:"E2"`
	SA            float64 `yaml:"SA"`
	Kappa         float64 `yaml:"kappa"`
	M             float64 `yaml:"M"`
	A0            float64 `yaml:"A0"`
	A1            float64 `yaml:"A1"`
	DomainLength  float64 `yaml:"domain_length,omitempty"`
}

// SaveOptions select the optional outputs of Save.
type SaveOptions struct {
	Compress bool
	Field    bool
	Metrics  map[string]float64
}

// Save writes a run directory for a finished solver and returns its id.
func (s *Store) Save(solver *sim.Solver, opts SaveOptions) (string, error) {
	st := solver.State()
	if st == nil {
		return "", dynamo.ErrNotPrepared
	}
	p := solver.Params()
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	tau0, detected := st.SeparationStep()
	meta := RunMetadata{
		ID:            runID,
		Timestamp:     now,
		N:             p.N,
		Seed:          p.Seed,
		Generator:     p.Generator,
		Transform:     p.Transform,
		StopReason:    st.StopReason.String(),
		ComputedSteps: st.ComputedSteps,
		Tau0:          tau0,
		T0:            st.SeparationTime(),
		Compressed:    opts.Compress,
		Metrics:       opts.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, paramsFile), p); err != nil {
		return "", err
	}

	m := solver.Material()
	last, _ := st.History().Last()
	sol := Solution{
		ComputedSteps: st.ComputedSteps,
		StopReason:    st.StopReason.String(),
		Tau0:          tau0,
		Detected:      detected,
		T0:            st.SeparationTime(),
		LegacyT0:      st.LegacyT0,
		TimePassed:    st.TimePassed,
		Delt:          st.Delt,
		E:             last.E,
		E2:            last.E2,
		SA:            last.SA,
		Kappa:         m.Kappa,
		M:             m.M,
		A0:            m.A0,
		A1:            m.A1,
	}
	if st.Field() != nil {
		sol.DomainLength = analysis.DomainLength(st.Field(), p.L)
	}
	if err := writeYAML(filepath.Join(runDir, solutionFile), sol); err != nil {
		return "", err
	}

	name := historyFile
	if opts.Compress {
		name += gzExt
	}
	if err := WriteHistoryCSV(filepath.Join(runDir, name), st.History()); err != nil {
		return "", err
	}
	if opts.Field && st.Field() != nil {
		name = fieldFile
		if opts.Compress {
			name += gzExt
		}
		if err := WriteMatrixCSV(filepath.Join(runDir, name), st.Field()); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// List returns the stored runs, newest first.
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
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSolution reads the scalar summary of a run.
func (s *Store) LoadSolution(runID string) (*Solution, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), solutionFile))
	if err != nil {
		return nil, err
	}
	var sol Solution
	if err := yaml.Unmarshal(data, &sol); err != nil {
		return nil, err
	}
	return &sol, nil
}

// LoadParams reads the parameters a run was started with.
func (s *Store) LoadParams(runID string) (*config.Params, error) {
	return config.Load(filepath.Join(s.Dir(runID), paramsFile))
}

// LoadHistory reads the history of a run, compressed or not.
func (s *Store) LoadHistory(runID string) (*dynamo.History, error) {
	path := filepath.Join(s.Dir(runID), historyFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path += gzExt
	}
	return ReadHistoryCSV(path)
}

// LoadField reads the final field of a run, compressed or not.
func (s *Store) LoadField(runID string) (*mat.Dense, error) {
	path := filepath.Join(s.Dir(runID), fieldFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path += gzExt
	}
	return ReadMatrixCSV(path)
}

// WriteHistoryCSV writes one row per step with a header.
func WriteHistoryCSV(path string, h *dynamo.History) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	header := append([]string{"step"}, dynamo.ColumnNames()...)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	row := make([]string, len(header))
	for i := 0; i < h.Len(); i++ {
		r := h.At(i)
		row[0] = strconv.Itoa(r.Step)
		for j, v := range []float64{r.E, r.E2, r.SA, r.DomTime, r.Ra, r.L2, r.PS, r.Delt} {
			row[j+1] = formatFloat(v)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadHistoryCSV parses a file written by WriteHistoryCSV.
func ReadHistoryCSV(path string) (*dynamo.History, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return dynamo.NewHistory(0), nil
	}
	h := dynamo.NewHistory(len(records) - 1)
	for i, rec := range records[1:] {
		if len(rec) != 9 {
			return nil, fmt.Errorf("%s: row %d has %d fields", path, i+1, len(rec))
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		var v [8]float64
		for j := range v {
			if v[j], err = strconv.ParseFloat(rec[j+1], 64); err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
			}
		}
		h.Append(dynamo.Record{
			Step: step, E: v[0], E2: v[1], SA: v[2], DomTime: v[3],
			Ra: v[4], L2: v[5], PS: v[6], Delt: v[7],
		})
	}
	return h, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
