package experiment

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Row is the outcome of one run. FacA0 and FacA1 are NaN for absolute
// points.
type Row struct {
	ID        int
	A0, A1    float64
	Tau0      int
	Detected  bool
	T0        float64
	TSep      int
	Steps     int
	FacA0     float64
	FacA1     float64
	MassDrift float64
	Err       error
}

// Summary describes one result column over the successful runs.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	CV     float64
}

type Report struct {
	Rows      []Row
	Aggregate []Summary
}

func (r *Report) Failed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Err != nil {
			n++
		}
	}
	return n
}

var resultColumns = []string{"A0", "A1", "tau0", "t0", "tsep", "fac_A0", "fac_A1"}

func (row Row) values() []float64 {
	return []float64{row.A0, row.A1, float64(row.Tau0), row.T0, float64(row.TSep), row.FacA0, row.FacA1}
}

// Aggregate summarises every result column. NaN entries are skipped, so
// factor columns of absolute runs do not poison the statistics.
func Aggregate(rows []Row) []Summary {
	out := make([]Summary, len(resultColumns))
	for j, name := range resultColumns {
		col := make([]float64, 0, len(rows))
		for _, row := range rows {
			if row.Err != nil {
				continue
			}
			if v := row.values()[j]; !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		out[j] = summarise(name, col)
	}
	return out
}

func summarise(name string, col []float64) Summary {
	s := Summary{Column: name, Count: len(col)}
	if len(col) == 0 {
		s.Mean, s.Std, s.Min, s.Max, s.CV = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(col, nil)
	if len(col) == 1 {
		s.Std = math.NaN()
	}
	s.Min = floats.Min(col)
	s.Max = floats.Max(col)
	s.CV = s.Std / s.Mean
	return s
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteResults writes one CSV line per run.
func WriteResults(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "A0", "A1", "tau0", "t0", "tsep", "fac_A0", "fac_A1", "steps", "detected", "mass_drift", "error"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		errText := ""
		if row.Err != nil {
			errText = row.Err.Error()
		}
		rec := []string{
			strconv.Itoa(row.ID),
			fmtFloat(row.A0),
			fmtFloat(row.A1),
			strconv.Itoa(row.Tau0),
			fmtFloat(row.T0),
			strconv.Itoa(row.TSep),
			fmtFloat(row.FacA0),
			fmtFloat(row.FacA1),
			strconv.Itoa(row.Steps),
			strconv.FormatBool(row.Detected),
			fmtFloat(row.MassDrift),
			errText,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate writes one CSV line per result column.
func WriteAggregate(w io.Writer, agg []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column", "count", "mean", "std", "min", "max", "cv"}); err != nil {
		return err
	}
	for _, s := range agg {
		rec := []string{s.Column, strconv.Itoa(s.Count), fmtFloat(s.Mean), fmtFloat(s.Std), fmtFloat(s.Min), fmtFloat(s.Max), fmtFloat(s.CV)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
