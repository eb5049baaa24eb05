// Package cluster provides the clustering estimators the stability harness
// runs: KMeans, Ward agglomerative, DBSCAN and a Gaussian mixture. Every
// estimator produces one integer label per input row; label values carry no
// meaning across runs (the relabel package reconciles them).
//
// Estimators come in two capability shapes. One-shot estimators cluster a
// dataset in a single call (Oracle). Estimators that keep a fitted model
// expose separate fit and predict calls (TwoStepOracle). FitPredict adapts
// either shape, selecting statically by type assertion rather than by
// attempting a call and recovering from its failure.
package cluster

import (
	"errors"
	"fmt"
	"sort"
)

// Model names, matching the names the analysis is invoked with.
const (
	ModelBGMM          = "BGMM"
	ModelKMeans        = "KMeans"
	ModelAgglomerative = "AgglomerativeClustering"
	ModelDBSCAN        = "DBSCAN"
)

// ErrUnknownModel is returned by Registry.New for unregistered model names.
var ErrUnknownModel = errors.New("cluster: unknown model")

// ErrInvalidParams is returned by Registry.New for settings no model can run
// with, such as a negative cluster count.
var ErrInvalidParams = errors.New("cluster: invalid params")

// Estimator is the common surface of every registered model. The concrete
// clustering capability is one of Oracle or TwoStepOracle.
type Estimator interface {
	Name() string
}

// Oracle is the one-shot capability: fit a model to the rows and return one
// label per row in a single call.
type Oracle interface {
	Estimator
	FitPredict(data [][]float64) ([]int, error)
}

// TwoStepOracle is the split capability: fit a reusable model, then label
// rows with it.
type TwoStepOracle interface {
	Estimator
	Fit(data [][]float64) error
	Predict(data [][]float64) ([]int, error)
}

// FitPredict labels data with any supported estimator shape. One-shot
// estimators are called directly; two-step estimators are fit on data and
// then predict over the same rows.
func FitPredict(e Estimator, data [][]float64) ([]int, error) {
	switch o := e.(type) {
	case Oracle:
		return o.FitPredict(data)
	case TwoStepOracle:
		if err := o.Fit(data); err != nil {
			return nil, fmt.Errorf("cluster: fit %s: %w", e.Name(), err)
		}
		labels, err := o.Predict(data)
		if err != nil {
			return nil, fmt.Errorf("cluster: predict %s: %w", e.Name(), err)
		}
		return labels, nil
	default:
		return nil, fmt.Errorf("cluster: estimator %s exposes no clustering capability", e.Name())
	}
}

// Params carries the estimator settings the analysis exposes. Fields not
// relevant to a given model are ignored by it.
type Params struct {
	// NumClusters is the requested cluster count. DBSCAN ignores it: density
	// clustering discovers its own cluster count.
	NumClusters int

	// MaxIter bounds the iterative models (KMeans, BGMM). Default: 100.
	MaxIter int

	// Tol is the convergence tolerance for BGMM's log-likelihood. Default: 1e-6.
	Tol float64

	// Eps is the DBSCAN neighbourhood radius in scaled feature space. Default: 0.5.
	Eps float64

	// MinPts is the DBSCAN core-point threshold. Default: 5.
	MinPts int

	// Seed seeds the random generator of models that use one, so repeated
	// runs over identical input produce identical labels.
	Seed int64
}

// DefaultParams returns Params with the defaults the analysis was run with.
func DefaultParams() Params {
	return Params{
		NumClusters: 4,
		MaxIter:     100,
		Tol:         1e-6,
		Eps:         0.5,
		MinPts:      5,
		Seed:        1,
	}
}

func applyParamDefaults(p *Params) {
	if p.NumClusters == 0 {
		p.NumClusters = 4
	}
	if p.MaxIter == 0 {
		p.MaxIter = 100
	}
	if p.Tol == 0 {
		p.Tol = 1e-6
	}
	if p.Eps == 0 {
		p.Eps = 0.5
	}
	if p.MinPts == 0 {
		p.MinPts = 5
	}
}

// validateParams runs after defaults are applied, so zero values have already
// been replaced and anything out of range was set deliberately.
func validateParams(p Params) error {
	if p.NumClusters < 1 {
		return fmt.Errorf("%w: num clusters %d, want >= 1", ErrInvalidParams, p.NumClusters)
	}
	if p.MaxIter < 1 {
		return fmt.Errorf("%w: max iter %d, want >= 1", ErrInvalidParams, p.MaxIter)
	}
	if p.Eps <= 0 {
		return fmt.Errorf("%w: eps %v, want > 0", ErrInvalidParams, p.Eps)
	}
	if p.MinPts < 1 {
		return fmt.Errorf("%w: min pts %d, want >= 1", ErrInvalidParams, p.MinPts)
	}
	return nil
}

// Factory builds a fresh estimator for one clustering run.
type Factory func(p Params) Estimator

// Registry maps model names to estimator factories. It is explicit
// configuration handed to the harness, not process-global state; callers may
// register additional models.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a Registry with the four built-in models.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(ModelKMeans, func(p Params) Estimator { return NewKMeans(p) })
	r.Register(ModelBGMM, func(p Params) Estimator { return NewGaussianMixture(p) })
	r.Register(ModelAgglomerative, func(p Params) Estimator { return NewAgglomerative(p) })
	r.Register(ModelDBSCAN, func(p Params) Estimator { return NewDBSCAN(p) })
	return r
}

// Register adds or replaces a model factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds a fresh estimator for the named model.
func (r *Registry) New(name string, p Params) (Estimator, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownModel, name, r.Models())
	}
	applyParamDefaults(&p)
	if err := validateParams(p); err != nil {
		return nil, err
	}
	return f(p), nil
}

// Models returns the registered model names, sorted.
func (r *Registry) Models() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
