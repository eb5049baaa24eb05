package cluster

import (
	"math"
	"runtime"
)

// Agglomerative is bottom-up hierarchical clustering with Ward linkage,
// computed via the Lance-Williams recurrence over a condensed
// squared-Euclidean distance matrix. The dendrogram is cut so that exactly
// NumClusters clusters remain (clamped to the row count).
//
// One-shot only: the merge tree is defined over the fitted rows, so there is
// no meaningful prediction for unseen rows.
type Agglomerative struct {
	params Params
}

// NewAgglomerative creates a Ward-linkage estimator.
func NewAgglomerative(p Params) *Agglomerative {
	applyParamDefaults(&p)
	return &Agglomerative{params: p}
}

// Name returns the registry name of the model.
func (a *Agglomerative) Name() string { return ModelAgglomerative }

// mergeStep records one dendrogram merge. Ids < n are original rows; the
// merge at index s creates cluster id n+s.
type mergeStep struct {
	a, b int
	dist float64
}

// FitPredict clusters the rows and returns one 0-based label per row.
func (a *Agglomerative) FitPredict(data [][]float64) ([]int, error) {
	n := len(data)
	if n == 0 {
		return []int{}, nil
	}
	k := a.params.NumClusters
	if k > n {
		k = n
	}
	if k == n {
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i
		}
		return labels, nil
	}

	merges := wardLinkage(data)
	return cutTree(merges, n, k), nil
}

// wardLinkage performs the n-1 Ward merges. Distances between merged
// clusters live in the same condensed matrix as the original pairs, indexed
// over 2n-1 ids.
func wardLinkage(data [][]float64) []mergeStep {
	n := len(data)
	m := 2*n - 1

	d := make([]float64, m*(m-1)/2)
	small := pairwiseSquared(data, runtime.NumCPU())
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d[condensedIndex(m, i, j)] = small[condensedIndex(n, i, j)]
		}
	}

	active := make([]bool, m)
	size := make([]int, m)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
	}

	merges := make([]mergeStep, 0, n-1)

	for step := 0; step < n-1; step++ {
		// Closest active pair under the current (squared) Ward distances.
		minDist := math.MaxFloat64
		minI, minJ := -1, -1
		for i := 0; i < n+step; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n+step; j++ {
				if !active[j] {
					continue
				}
				if dij := d[condensedIndex(m, i, j)]; dij < minDist {
					minDist = dij
					minI, minJ = i, j
				}
			}
		}

		newID := n + step
		active[minI] = false
		active[minJ] = false
		active[newID] = true
		size[newID] = size[minI] + size[minJ]

		merges = append(merges, mergeStep{a: minI, b: minJ, dist: minDist})

		// Lance-Williams update for Ward linkage:
		// d(new,k) = ((n_k+n_i) d(i,k) + (n_k+n_j) d(j,k) - n_k d(i,j)) / (n_k+n_i+n_j)
		ni := float64(size[minI])
		nj := float64(size[minJ])
		for kk := 0; kk < newID; kk++ {
			if !active[kk] {
				continue
			}
			nk := float64(size[kk])
			dik := d[condensedIndex(m, minI, kk)]
			djk := d[condensedIndex(m, minJ, kk)]
			d[condensedIndex(m, newID, kk)] = ((nk+ni)*dik + (nk+nj)*djk - nk*minDist) / (nk + ni + nj)
		}
	}

	return merges
}

// cutTree applies only the first n-k merges, leaving k clusters, then maps
// the surviving roots to sequential 0-based labels in order of first
// appearance over the original rows.
func cutTree(merges []mergeStep, n, k int) []int {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	for step := 0; step < n-k; step++ {
		newID := n + step
		parent[treeRoot(parent, merges[step].a)] = newID
		parent[treeRoot(parent, merges[step].b)] = newID
	}

	labels := make([]int, n)
	next := 0
	assigned := make(map[int]int, k)
	for i := 0; i < n; i++ {
		root := treeRoot(parent, i)
		id, ok := assigned[root]
		if !ok {
			id = next
			assigned[root] = id
			next++
		}
		labels[i] = id
	}
	return labels
}

// treeRoot resolves the root of id with path compression.
func treeRoot(parent []int, id int) int {
	for parent[id] != id {
		parent[id] = parent[parent[id]]
		id = parent[id]
	}
	return id
}

var _ Oracle = (*Agglomerative)(nil)
