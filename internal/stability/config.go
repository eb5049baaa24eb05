package stability

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileConfig is the on-disk JSON configuration. Fields are pointer-typed so
// that omitted fields keep their defaults; partial configs are safe.
type FileConfig struct {
	FeatureColumns []string `json:"feature_columns,omitempty"`
	Model          *string  `json:"model,omitempty"`
	NumClusters    *int     `json:"num_clusters,omitempty"`
	SplitCounts    []int    `json:"split_counts,omitempty"`

	// Estimator settings.
	MaxIter *int     `json:"max_iter,omitempty"`
	Tol     *float64 `json:"tol,omitempty"`
	Eps     *float64 `json:"eps,omitempty"`
	MinPts  *int     `json:"min_pts,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
}

// LoadFileConfig reads a FileConfig from a JSON file. The path must have a
// .json extension and the file must be under 1MB.
func LoadFileConfig(path string) (*FileConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("stability: config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stability: stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("stability: config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stability: read config file: %w", err)
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("stability: parse config file %s: %w", cleanPath, err)
	}
	return &fc, nil
}

// Apply overlays the set fields of fc onto cfg and returns the feature
// columns to load, or nil if the file does not name any.
func (fc *FileConfig) Apply(cfg *Config) []string {
	if fc.Model != nil {
		cfg.Model = *fc.Model
	}
	if fc.NumClusters != nil {
		cfg.NumClusters = *fc.NumClusters
	}
	if len(fc.SplitCounts) > 0 {
		cfg.SplitCounts = append([]int(nil), fc.SplitCounts...)
	}
	if fc.MaxIter != nil {
		cfg.Params.MaxIter = *fc.MaxIter
	}
	if fc.Tol != nil {
		cfg.Params.Tol = *fc.Tol
	}
	if fc.Eps != nil {
		cfg.Params.Eps = *fc.Eps
	}
	if fc.MinPts != nil {
		cfg.Params.MinPts = *fc.MinPts
	}
	if fc.Seed != nil {
		cfg.Params.Seed = *fc.Seed
	}
	if len(fc.FeatureColumns) > 0 {
		return append([]string(nil), fc.FeatureColumns...)
	}
	return nil
}
