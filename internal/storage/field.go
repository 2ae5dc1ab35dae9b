package storage

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type gzipFile struct {
	*gzip.Writer
	f *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// create opens path for writing, gzip-compressed when it ends in .gz.
func create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, gzExt) {
		return f, nil
	}
	return &gzipFile{Writer: gzip.NewWriter(f), f: f}, nil
}

type gzipReader struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipReader) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, gzExt) {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReader{Reader: zr, f: f}, nil
}

// WriteMatrixCSV writes m row by row without a header.
func WriteMatrixCSV(path string, m mat.Matrix) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	r, c := m.Dims()
	row := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = formatFloat(m.At(i, j))
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

// ReadMatrixCSV reads a rectangular numeric CSV file, gzip-compressed when
// the name ends in .gz.
func ReadMatrixCSV(path string) (*mat.Dense, error) {
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
		return nil, fmt.Errorf("%s: empty matrix", path)
	}
	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, fmt.Errorf("%s: row %d has %d values, want %d", path, i, len(rec), cols)
		}
		for _, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, i, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(records), cols, data), nil
}
