package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// varianceFloor keeps component variances away from zero so the density
// stays finite on degenerate (constant or single-point) components.
const varianceFloor = 1e-6

// GaussianMixture fits a mixture of diagonal-covariance Gaussians by
// expectation-maximization, seeded with k-means++ means. Rows are labelled
// with the component of highest posterior responsibility (hard assignment),
// which is all the stability analysis consumes. Registered under the BGMM
// model name.
type GaussianMixture struct {
	params Params
	rng    *rand.Rand

	weights   []float64
	means     [][]float64
	variances [][]float64
}

// NewGaussianMixture creates a mixture estimator with p.NumClusters
// components.
func NewGaussianMixture(p Params) *GaussianMixture {
	applyParamDefaults(&p)
	return &GaussianMixture{
		params: p,
		rng:    rand.New(rand.NewSource(p.Seed)),
	}
}

// Name returns the registry name of the model.
func (g *GaussianMixture) Name() string { return ModelBGMM }

// Fit runs EM until the mean log-likelihood improves by less than Tol or
// MaxIter is reached.
func (g *GaussianMixture) Fit(data [][]float64) error {
	n := len(data)
	if n == 0 {
		return errors.New("cluster: mixture fit on zero rows")
	}
	k := g.params.NumClusters
	if k > n {
		k = n
	}
	dims := len(data[0])

	g.means = seedPlusPlus(data, k, g.rng)

	// Every component starts with the per-column variance of the full data.
	colVar := make([]float64, dims)
	col := make([]float64, n)
	for d := 0; d < dims; d++ {
		for i, row := range data {
			col[i] = row[d]
		}
		colVar[d] = math.Max(stat.Variance(col, nil), varianceFloor)
	}
	g.variances = make([][]float64, k)
	g.weights = make([]float64, k)
	for c := 0; c < k; c++ {
		g.variances[c] = make([]float64, dims)
		copy(g.variances[c], colVar)
		g.weights[c] = 1 / float64(k)
	}

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLL := math.Inf(-1)
	for iter := 0; iter < g.params.MaxIter; iter++ {
		// E-step: posterior responsibilities via log-sum-exp.
		var ll float64
		for i, row := range data {
			for c := 0; c < k; c++ {
				resp[i][c] = math.Log(g.weights[c]) + g.logDensity(row, c)
			}
			norm := floats.LogSumExp(resp[i])
			ll += norm
			for c := 0; c < k; c++ {
				resp[i][c] = math.Exp(resp[i][c] - norm)
			}
		}
		ll /= float64(n)

		// M-step.
		for c := 0; c < k; c++ {
			var nc float64
			for i := 0; i < n; i++ {
				nc += resp[i][c]
			}
			if nc < 1e-12 {
				// Component lost all mass; leave it where it is.
				g.weights[c] = 1e-12
				continue
			}
			g.weights[c] = nc / float64(n)

			mean := g.means[c]
			for d := range mean {
				mean[d] = 0
			}
			for i, row := range data {
				floats.AddScaled(mean, resp[i][c], row)
			}
			floats.Scale(1/nc, mean)

			v := g.variances[c]
			for d := range v {
				v[d] = 0
			}
			for i, row := range data {
				r := resp[i][c]
				for d := range v {
					diff := row[d] - mean[d]
					v[d] += r * diff * diff
				}
			}
			for d := range v {
				v[d] = math.Max(v[d]/nc, varianceFloor)
			}
		}

		if math.Abs(ll-prevLL) < g.params.Tol {
			break
		}
		prevLL = ll
	}

	return nil
}

// Predict labels each row with the component of highest posterior.
func (g *GaussianMixture) Predict(data [][]float64) ([]int, error) {
	if g.means == nil {
		return nil, errors.New("cluster: mixture predict before fit")
	}
	labels := make([]int, len(data))
	for i, row := range data {
		if len(row) != len(g.means[0]) {
			return nil, fmt.Errorf("cluster: mixture predict row width %d, fitted %d", len(row), len(g.means[0]))
		}
		best := 0
		bestScore := math.Inf(-1)
		for c := range g.means {
			score := math.Log(g.weights[c]) + g.logDensity(row, c)
			if score > bestScore {
				best = c
				bestScore = score
			}
		}
		labels[i] = best
	}
	return labels, nil
}

// logDensity is the log of the diagonal-covariance Gaussian density of row
// under component c, normalization constant included.
func (g *GaussianMixture) logDensity(row []float64, c int) float64 {
	mean := g.means[c]
	v := g.variances[c]
	sum := 0.0
	for d := range row {
		diff := row[d] - mean[d]
		sum += math.Log(2*math.Pi*v[d]) + diff*diff/v[d]
	}
	return -0.5 * sum
}

var _ TwoStepOracle = (*GaussianMixture)(nil)
