// Package relabel reconciles cluster-label identities across independent
// clustering runs. Clustering algorithms assign arbitrary integer labels:
// two runs over the same data can name the same cluster 0 in one run and 3
// in the other. Ranking clusters by population and renaming each cluster to
// its rank gives both runs a shared vocabulary, so their label series can be
// compared position by position.
package relabel

import "sort"

// Canonicalize maps an arbitrary label series onto canonical ids assigned by
// ascending cluster population: the smallest cluster becomes 0, the largest
// becomes k-1, where k is the number of distinct labels actually observed.
// Output has the same length and order as the input.
//
// numClusters is advisory context from the caller (the cluster count the
// model was asked for). It is never validated or enforced: density-based
// models may produce fewer or more distinct labels than requested, and the
// canonical range follows what was observed, not what was requested.
//
// Ties in population break by original label value ascending, so repeated
// calls with identical input always produce identical output.
//
// A noise sentinel (DBSCAN emits -1 for unclustered points) is treated as an
// ordinary label and competes by its population like any other cluster.
func Canonicalize(labels []int, numClusters int) []int {
	_ = numClusters

	out := make([]int, len(labels))
	if len(labels) == 0 {
		return out
	}

	counts := make(map[int]int, 8)
	for _, l := range labels {
		counts[l]++
	}

	distinct := make([]int, 0, len(counts))
	for l := range counts {
		distinct = append(distinct, l)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] < counts[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})

	rank := make(map[int]int, len(distinct))
	for r, l := range distinct {
		rank[l] = r
	}

	for i, l := range labels {
		out[i] = rank[l]
	}
	return out
}

// Populations returns the per-canonical-id cluster sizes for a series
// produced by Canonicalize: Populations(c)[i] is the population of canonical
// cluster i. The result is non-decreasing by construction.
func Populations(canonical []int) []int {
	if len(canonical) == 0 {
		return nil
	}
	maxID := 0
	for _, l := range canonical {
		if l > maxID {
			maxID = l
		}
	}
	sizes := make([]int, maxID+1)
	for _, l := range canonical {
		sizes[l]++
	}
	return sizes
}
