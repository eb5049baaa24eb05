package cluster

// DBSCAN is density-based clustering: points with at least MinPts neighbours
// within Eps become cluster cores, reachable points join their cluster, and
// everything else is labelled noise (-1). The requested cluster count is
// ignored — density clustering discovers its own cluster count, which is why
// downstream label reconciliation must not assume the requested k.
//
// One-shot only: a DBSCAN run has no model to apply to unseen rows.
type DBSCAN struct {
	params Params
}

// NewDBSCAN creates a DBSCAN estimator using p.Eps and p.MinPts.
func NewDBSCAN(p Params) *DBSCAN {
	applyParamDefaults(&p)
	return &DBSCAN{params: p}
}

// Name returns the registry name of the model.
func (d *DBSCAN) Name() string { return ModelDBSCAN }

// Label states during the scan. Cluster ids start at 1 internally and are
// shifted to 0-based on output so that only the noise sentinel is negative.
const (
	dbscanUnvisited = 0
	dbscanNoise     = -1
)

// FitPredict clusters the rows. Output labels are 0-based cluster ids, or
// -1 for noise points.
func (d *DBSCAN) FitPredict(data [][]float64) ([]int, error) {
	n := len(data)
	labels := make([]int, n)
	if n == 0 {
		return labels, nil
	}

	eps2 := d.params.Eps * d.params.Eps
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != dbscanUnvisited {
			continue
		}

		neighbors := regionQuery(data, i, eps2)
		if len(neighbors) < d.params.MinPts {
			labels[i] = dbscanNoise
			continue
		}

		clusterID++
		expandCluster(data, labels, i, neighbors, clusterID, eps2, d.params.MinPts)
	}

	// Shift to 0-based cluster ids; noise stays -1.
	for i, l := range labels {
		if l > 0 {
			labels[i] = l - 1
		}
	}
	return labels, nil
}

// regionQuery returns the indices of all rows within sqrt(eps2) of rows[idx],
// including idx itself.
func regionQuery(rows [][]float64, idx int, eps2 float64) []int {
	var neighbors []int
	p := rows[idx]
	for j, q := range rows {
		if sqEuclidean(p, q) <= eps2 {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// expandCluster grows clusterID outward from a core point, queue-style:
// neighbours of newly discovered core points are appended to the work list.
func expandCluster(rows [][]float64, labels []int, seedIdx int, neighbors []int,
	clusterID int, eps2 float64, minPts int) {

	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == dbscanNoise {
			labels[idx] = clusterID // noise becomes a border point
		}
		if labels[idx] != dbscanUnvisited {
			continue
		}

		labels[idx] = clusterID
		next := regionQuery(rows, idx, eps2)
		if len(next) >= minPts {
			neighbors = append(neighbors, next...)
		}
	}
}

var _ Oracle = (*DBSCAN)(nil)
