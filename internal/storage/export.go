package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/spinodal/internal/dynamo"
)

type ExportData struct {
	ID       string               `json:"id,omitempty"`
	Solution *Solution            `json:"solution,omitempty"`
	Steps    int                  `json:"steps"`
	Columns  map[string][]float64 `json:"columns"`
	Metrics  map[string]float64   `json:"metrics,omitempty"`
}

// NewExportData gathers the history columns of a run.
func NewExportData(id string, h *dynamo.History, sol *Solution, metrics map[string]float64) *ExportData {
	data := &ExportData{
		ID:       id,
		Solution: sol,
		Steps:    h.Len(),
		Columns:  make(map[string][]float64, len(dynamo.ColumnNames())),
		Metrics:  metrics,
	}
	for _, name := range dynamo.ColumnNames() {
		col, _ := h.Column(name)
		data.Columns[name] = append([]float64(nil), col...)
	}
	return data
}

func (d *ExportData) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(d)
}

// ExportJSON writes d to path, or to stdout when path is "-".
func ExportJSON(path string, d *ExportData) error {
	if path == "-" {
		return d.Encode(os.Stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return d.Encode(file)
}

// ExportRun exports a stored run as JSON.
func (s *Store) ExportRun(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	h, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}
	sol, err := s.LoadSolution(runID)
	if err != nil {
		return err
	}
	return ExportJSON(path, NewExportData(runID, h, sol, meta.Metrics))
}

// ExportRunCSV copies the history of a stored run to path, compressing it
// when path ends in .gz.
func (s *Store) ExportRunCSV(runID, path string) error {
	h, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}
	return WriteHistoryCSV(path, h)
}
