package dataset

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler maps each feature column onto [0, 1] using the column minimum
// and maximum observed at Fit time. The harness refits one scaler per
// partition on that partition's rows only; whether that per-partition refit
// perturbs the clustering is exactly what the stability analysis measures.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// FitMinMax computes per-column minima and maxima over the given rows.
// All rows must have the same width.
func FitMinMax(rows [][]float64) (*MinMaxScaler, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset: cannot fit scaler on zero rows")
	}
	width := len(rows[0])

	s := &MinMaxScaler{
		min: make([]float64, width),
		max: make([]float64, width),
	}

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.min[j] = floats.Min(col)
		s.max[j] = floats.Max(col)
	}
	return s, nil
}

// Transform returns a scaled copy of rows; the input is not modified.
// Columns with zero range map to 0.
func (s *MinMaxScaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		scaled := make([]float64, len(r))
		for j, v := range r {
			span := s.max[j] - s.min[j]
			if span > 0 {
				scaled[j] = (v - s.min[j]) / span
			}
		}
		out[i] = scaled
	}
	return out
}

// ScaleRows fits a MinMaxScaler on rows and transforms them in one step.
func ScaleRows(rows [][]float64) ([][]float64, error) {
	s, err := FitMinMax(rows)
	if err != nil {
		return nil, err
	}
	return s.Transform(rows), nil
}
