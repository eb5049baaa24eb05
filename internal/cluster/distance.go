package cluster

import "sync"

// sqEuclidean returns the squared Euclidean distance between two rows.
// The square root is skipped everywhere only relative order matters.
func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// condensedIndex maps a pair (i, j) with i < j onto the flat upper-triangle
// index of an n-point condensed distance matrix.
func condensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + j - i - 1
}

// pairwiseSquared computes the condensed squared-Euclidean distance matrix
// for the given rows, splitting the source rows across workers in contiguous
// ranges. Each worker writes a disjoint part of the output, so no
// synchronization is needed beyond the final wait. workers <= 1 runs
// single-threaded.
func pairwiseSquared(rows [][]float64, workers int) []float64 {
	n := len(rows)
	dist := make([]float64, n*(n-1)/2)

	if workers <= 1 || n < 2*workers {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dist[condensedIndex(n, i, j)] = sqEuclidean(rows[i], rows[j])
			}
		}
		return dist
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					dist[condensedIndex(n, i, j)] = sqEuclidean(rows[i], rows[j])
				}
			}
		}(start, end)
	}

	wg.Wait()
	return dist
}
