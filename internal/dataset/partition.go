package dataset

import "fmt"

// Range is a half-open row range [Start, End) within a Dataset.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits n rows into the given number of contiguous ranges. Each
// range gets floor(n/splits) rows; the final range is extended to absorb the
// remainder of the integer division, so a 10-row table split 3 ways yields
// sizes [3, 3, 4]. If splits exceeds n it is clamped to n so that every
// range holds at least one row.
func Partition(n, splits int) ([]Range, error) {
	if n < 0 {
		return nil, fmt.Errorf("dataset: negative row count %d", n)
	}
	if splits < 1 {
		return nil, fmt.Errorf("dataset: split count must be >= 1, got %d", splits)
	}
	if n == 0 {
		return nil, nil
	}
	if splits > n {
		splits = n
	}

	size := n / splits
	ranges := make([]Range, splits)
	for i := 0; i < splits; i++ {
		ranges[i] = Range{Start: i * size, End: (i + 1) * size}
	}
	ranges[splits-1].End = n

	return ranges, nil
}
