// Package stability runs the partition-stability analysis: a whole-dataset
// baseline clustering is compared against the merged labels of independently
// clustered contiguous partitions, for each configured split count. Label
// identities are reconciled by cluster size before comparison.
package stability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akanksha-chokshi/capstone/internal/cluster"
	"github.com/akanksha-chokshi/capstone/internal/dataset"
	"github.com/akanksha-chokshi/capstone/internal/relabel"
	"github.com/akanksha-chokshi/capstone/internal/score"
)

// Config controls a stability run. Zero-valued fields take defaults from
// DefaultConfig.
type Config struct {
	// Model is the registry name of the clustering estimator.
	Model string

	// NumClusters is the requested cluster count (advisory for DBSCAN).
	NumClusters int

	// SplitCounts are the partition counts to evaluate. Default: 2, 3, 4.
	SplitCounts []int

	// Params are the estimator settings shared by the baseline run and every
	// partition run. NumClusters is copied into it.
	Params cluster.Params

	// Registry supplies estimator factories. Default: the built-in registry.
	// A fresh estimator is built per clustering run; nothing is shared
	// between partitions.
	Registry *cluster.Registry

	// Logger receives per-partition debug and per-split summary events.
	// Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration the analysis was designed around:
// KMeans with 4 clusters over split counts 2, 3 and 4.
func DefaultConfig() Config {
	return Config{
		Model:       cluster.ModelKMeans,
		NumClusters: 4,
		SplitCounts: []int{2, 3, 4},
		Params:      cluster.DefaultParams(),
		Registry:    cluster.NewRegistry(),
	}
}

// SplitResult holds the scores for one split count.
type SplitResult struct {
	Splits             int     `json:"splits"`
	SegmentSizes       []int   `json:"segment_sizes"`
	ClustersPerSegment []int   `json:"clusters_per_segment"`
	Accuracy           float64 `json:"accuracy"`
	ARI                float64 `json:"ari"`
}

// Report is the JSON-serializable outcome of one stability run.
type Report struct {
	RunID            string        `json:"run_id"`
	Model            string        `json:"model"`
	NumClusters      int           `json:"num_clusters"`
	Rows             int           `json:"rows"`
	Columns          []string      `json:"columns"`
	BaselineClusters int           `json:"baseline_clusters"`
	Splits           []SplitResult `json:"splits"`
	Elapsed          time.Duration `json:"elapsed_ns"`
	ElapsedSecs      float64       `json:"elapsed_secs"`
}

// Harness executes stability runs.
type Harness struct {
	cfg Config
	log zerolog.Logger
}

// NewHarness builds a Harness, filling unset Config fields with defaults.
func NewHarness(cfg Config) *Harness {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.NumClusters == 0 {
		cfg.NumClusters = def.NumClusters
	}
	if len(cfg.SplitCounts) == 0 {
		cfg.SplitCounts = def.SplitCounts
	}
	if cfg.Registry == nil {
		cfg.Registry = def.Registry
	}
	cfg.Params.NumClusters = cfg.NumClusters

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Harness{cfg: cfg, log: log}
}

// Run scores the configured model's partition stability over ds.
//
// The baseline is the canonicalized whole-dataset clustering (scaler fit on
// all rows). For each split count, the rows are partitioned into contiguous
// ranges; each range is min-max scaled on its own extrema, clustered by a
// fresh estimator, canonicalized, and written back at its original row
// positions. Each row index is written by exactly one partition. The merged
// series is then scored against the baseline.
//
// Failures propagate wrapped; nothing is retried.
func (h *Harness) Run(ds *dataset.Dataset) (*Report, error) {
	n := ds.NumRows()
	if n == 0 {
		return nil, fmt.Errorf("stability: dataset has no rows")
	}

	start := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		Model:       h.cfg.Model,
		NumClusters: h.cfg.NumClusters,
		Rows:        n,
		Columns:     ds.Columns,
	}

	baseline, err := h.clusterRows(ds.Rows(0, n))
	if err != nil {
		return nil, fmt.Errorf("stability: baseline clustering: %w", err)
	}
	report.BaselineClusters = len(relabel.Populations(baseline))

	h.log.Info().
		Str("run_id", report.RunID).
		Str("model", h.cfg.Model).
		Int("rows", n).
		Int("baseline_clusters", report.BaselineClusters).
		Msg("baseline clustered")

	for _, splits := range h.cfg.SplitCounts {
		res, err := h.runSplit(ds, baseline, splits)
		if err != nil {
			return nil, fmt.Errorf("stability: %d-way split: %w", splits, err)
		}
		report.Splits = append(report.Splits, *res)

		h.log.Info().
			Int("splits", splits).
			Float64("accuracy", res.Accuracy).
			Float64("ari", res.ARI).
			Msg("split scored")
	}

	report.Elapsed = time.Since(start)
	report.ElapsedSecs = report.Elapsed.Seconds()
	return report, nil
}

// runSplit clusters each contiguous partition independently and scores the
// merged canonical labels against the baseline.
func (h *Harness) runSplit(ds *dataset.Dataset, baseline []int, splits int) (*SplitResult, error) {
	ranges, err := dataset.Partition(ds.NumRows(), splits)
	if err != nil {
		return nil, err
	}

	res := &SplitResult{Splits: splits}
	combined := make([]int, ds.NumRows())

	for i, r := range ranges {
		labels, err := h.clusterRows(ds.Rows(r.Start, r.End))
		if err != nil {
			return nil, fmt.Errorf("partition %d [%d:%d): %w", i, r.Start, r.End, err)
		}
		copy(combined[r.Start:r.End], labels)

		observed := len(relabel.Populations(labels))
		res.SegmentSizes = append(res.SegmentSizes, r.Len())
		res.ClustersPerSegment = append(res.ClustersPerSegment, observed)

		h.log.Debug().
			Int("splits", splits).
			Int("partition", i).
			Int("rows", r.Len()).
			Int("clusters", observed).
			Msg("partition clustered")
	}

	if res.Accuracy, err = score.Accuracy(combined, baseline); err != nil {
		return nil, err
	}
	if res.ARI, err = score.AdjustedRandIndex(combined, baseline); err != nil {
		return nil, err
	}
	return res, nil
}

// clusterRows is the per-run pipeline: scale on these rows' own extrema,
// cluster with a fresh estimator, canonicalize the labels.
func (h *Harness) clusterRows(rows [][]float64) ([]int, error) {
	scaled, err := dataset.ScaleRows(rows)
	if err != nil {
		return nil, err
	}

	est, err := h.cfg.Registry.New(h.cfg.Model, h.cfg.Params)
	if err != nil {
		return nil, err
	}

	labels, err := cluster.FitPredict(est, scaled)
	if err != nil {
		return nil, err
	}
	return relabel.Canonicalize(labels, h.cfg.NumClusters), nil
}
