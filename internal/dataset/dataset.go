// Package dataset loads the feature table the stability analysis runs on and
// provides the row partitioner and min-max scaler used by the harness.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DefaultFeatureColumns is the feature set the analysis was designed around.
// A config file or flag can override it.
var DefaultFeatureColumns = []string{
	"LSI_all", "zeta_all", "d5_all", "Sk_all", "q_all", "Q6_all",
}

// ErrColumnMissing is returned by LoadCSV when a requested feature column is
// not present in the file header.
var ErrColumnMissing = errors.New("dataset: feature column missing")

// Dataset is an ordered table of numeric feature rows. Row order is
// significant: partition results are re-aligned onto original row positions
// by index. The backing storage is flat row-major float64.
type Dataset struct {
	Columns []string

	data []float64
	rows int
}

// New builds a Dataset from row-major data. len(data) must be a multiple of
// len(columns).
func New(columns []string, data []float64) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New("dataset: no columns")
	}
	if len(data)%len(columns) != 0 {
		return nil, fmt.Errorf("dataset: %d values do not fill rows of %d columns", len(data), len(columns))
	}
	return &Dataset{
		Columns: columns,
		data:    data,
		rows:    len(data) / len(columns),
	}, nil
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return d.rows }

// NumColumns returns the number of feature columns.
func (d *Dataset) NumColumns() int { return len(d.Columns) }

// Row returns the i-th feature row as a slice into the backing storage.
// Callers must not mutate it.
func (d *Dataset) Row(i int) []float64 {
	w := len(d.Columns)
	return d.data[i*w : (i+1)*w]
}

// Rows materializes the half-open row range [start, end) as a slice of
// per-row views. The views alias the backing storage.
func (d *Dataset) Rows(start, end int) [][]float64 {
	out := make([][]float64, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, d.Row(i))
	}
	return out
}

// LoadCSV reads a CSV file with a header row and selects the named feature
// columns, in the given order. Missing columns and non-numeric cells are
// errors; nothing is skipped or recovered.
func LoadCSV(path string, columns []string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header of %s: %w", path, err)
	}

	colIdx := make([]int, len(columns))
	for i, want := range columns {
		colIdx[i] = -1
		for j, name := range header {
			if name == want {
				colIdx[i] = j
				break
			}
		}
		if colIdx[i] == -1 {
			return nil, fmt.Errorf("%w: %q not in header of %s", ErrColumnMissing, want, path)
		}
	}

	var data []float64
	row := 0
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("dataset: read %s row %d: %w", path, row+1, err)
		}
		for i, j := range colIdx {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d column %q: %w", path, row+1, columns[i], err)
			}
			data = append(data, v)
		}
		row++
	}

	return New(columns, data)
}
