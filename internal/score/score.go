// Package score compares two equally ordered cluster-label series. Both
// metrics assume the series are positionally aligned: element i of each
// series labels the same underlying row.
package score

import "fmt"

// Accuracy returns the fraction of positions where the two series carry the
// same label. It is only meaningful after both series have been relabelled
// into a shared canonical vocabulary. Empty input scores 0.
func Accuracy(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("score: length mismatch %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a)), nil
}

// AdjustedRandIndex returns the ARI between two partitionings of the same
// rows: the Rand index corrected for chance agreement,
//
//	ARI = (Index - ExpectedIndex) / (MaxIndex - ExpectedIndex)
//
// computed from the contingency table of the two label series. It is
// invariant to label identities, so it works on raw as well as canonical
// labels. Range is [-1, 1]; 1 means identical partitions. The degenerate
// case where both series form a single cluster (or every row is its own
// cluster on both sides) scores 1, matching the usual convention.
func AdjustedRandIndex(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("score: length mismatch %d vs %d", len(a), len(b))
	}
	n := len(a)
	if n == 0 {
		return 0, nil
	}

	// Contingency table and marginals.
	table := make(map[[2]int]int)
	rowSum := make(map[int]int)
	colSum := make(map[int]int)
	for i := 0; i < n; i++ {
		table[[2]int{a[i], b[i]}]++
		rowSum[a[i]]++
		colSum[b[i]]++
	}

	var sumCells, sumRows, sumCols float64
	for _, c := range table {
		sumCells += choose2(c)
	}
	for _, c := range rowSum {
		sumRows += choose2(c)
	}
	for _, c := range colSum {
		sumCols += choose2(c)
	}

	totalPairs := choose2(n)
	if totalPairs == 0 {
		// A single row admits only the trivial partition on both sides.
		return 1, nil
	}
	expected := sumRows * sumCols / totalPairs
	maxIndex := (sumRows + sumCols) / 2

	if maxIndex == expected {
		// Both partitions are trivial (all one cluster, or all singletons):
		// perfect agreement by convention.
		return 1, nil
	}
	return (sumCells - expected) / (maxIndex - expected), nil
}

// choose2 returns C(c, 2) as a float.
func choose2(c int) float64 {
	return float64(c) * float64(c-1) / 2
}
