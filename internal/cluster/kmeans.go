package cluster

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// KMeans is Lloyd's algorithm with k-means++ seeding. It keeps its fitted
// centroids, so it supports the two-step fit/predict shape.
type KMeans struct {
	params    Params
	rng       *rand.Rand
	centroids [][]float64
}

// NewKMeans creates a KMeans estimator. Randomness (seeding of initial
// centroids) is driven by p.Seed.
func NewKMeans(p Params) *KMeans {
	applyParamDefaults(&p)
	return &KMeans{
		params: p,
		rng:    rand.New(rand.NewSource(p.Seed)),
	}
}

// Name returns the registry name of the model.
func (k *KMeans) Name() string { return ModelKMeans }

// Fit runs k-means++ seeding followed by Lloyd iterations until assignments
// stabilize or MaxIter is reached.
func (k *KMeans) Fit(data [][]float64) error {
	n := len(data)
	if n == 0 {
		return errors.New("cluster: kmeans fit on zero rows")
	}
	kk := k.params.NumClusters
	if kk > n {
		kk = n
	}

	centroids := seedPlusPlus(data, kk, k.rng)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	dims := len(data[0])
	sums := make([][]float64, kk)
	counts := make([]int, kk)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}

	for iter := 0; iter < k.params.MaxIter; iter++ {
		changed := false
		for i, row := range data {
			best := nearestCentroid(row, centroids)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		for c := range sums {
			for d := range sums[c] {
				sums[c][d] = 0
			}
			counts[c] = 0
		}
		for i, row := range data {
			floats.Add(sums[assign[i]], row)
			counts[assign[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid.
				continue
			}
			copy(centroids[c], sums[c])
			floats.Scale(1/float64(counts[c]), centroids[c])
		}
	}

	k.centroids = centroids
	return nil
}

// Predict labels each row with the index of its nearest fitted centroid.
func (k *KMeans) Predict(data [][]float64) ([]int, error) {
	if k.centroids == nil {
		return nil, errors.New("cluster: kmeans predict before fit")
	}
	labels := make([]int, len(data))
	for i, row := range data {
		if len(row) != len(k.centroids[0]) {
			return nil, fmt.Errorf("cluster: kmeans predict row width %d, fitted %d", len(row), len(k.centroids[0]))
		}
		labels[i] = nearestCentroid(row, k.centroids)
	}
	return labels, nil
}

// Centroids returns the fitted centroids, or nil before Fit.
func (k *KMeans) Centroids() [][]float64 { return k.centroids }

// seedPlusPlus picks k initial centroids with k-means++: the first
// uniformly at random, each next one by roulette selection proportional to
// the squared distance from the nearest already-chosen centroid.
func seedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	dims := len(data[0])

	centroids := make([][]float64, 0, k)
	first := make([]float64, dims)
	copy(first, data[rng.Intn(n)])
	centroids = append(centroids, first)

	weights := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, row := range data {
			minDist := sqEuclidean(row, centroids[0])
			for _, c := range centroids[1:] {
				if d := sqEuclidean(row, c); d < minDist {
					minDist = d
				}
			}
			weights[i] = minDist
			total += minDist
		}

		idx := n - 1
		if total > 0 {
			target := rng.Float64() * total
			var cum float64
			for i, w := range weights {
				cum += w
				if cum >= target {
					idx = i
					break
				}
			}
		} else {
			// All remaining points coincide with a centroid.
			idx = rng.Intn(n)
		}

		next := make([]float64, dims)
		copy(next, data[idx])
		centroids = append(centroids, next)
	}

	return centroids
}

// nearestCentroid returns the index of the centroid closest to row.
func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := sqEuclidean(row, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := sqEuclidean(row, centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

var _ TwoStepOracle = (*KMeans)(nil)
