package stability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha-chokshi/capstone/internal/cluster"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileConfig_PartialOverlay(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"model": "DBSCAN",
		"eps": 0.25,
		"split_counts": [2, 4],
		"feature_columns": ["q_all", "Q6_all"]
	}`)

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	columns := fc.Apply(&cfg)

	assert.Equal(t, cluster.ModelDBSCAN, cfg.Model)
	assert.Equal(t, 0.25, cfg.Params.Eps)
	assert.Equal(t, []int{2, 4}, cfg.SplitCounts)
	assert.Equal(t, []string{"q_all", "Q6_all"}, columns)

	// Omitted fields keep their defaults.
	assert.Equal(t, 4, cfg.NumClusters)
	assert.Equal(t, cluster.DefaultParams().MinPts, cfg.Params.MinPts)
}

func TestLoadFileConfig_EmptyFileNamesNoColumns(t *testing.T) {
	path := writeConfig(t, "empty.json", `{}`)

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	assert.Nil(t, fc.Apply(&cfg))
	assert.Equal(t, cluster.ModelKMeans, cfg.Model)
}

func TestLoadFileConfig_RejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "run.yaml", "model: KMeans\n")

	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestLoadFileConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"model": `)

	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestLoadFileConfig_Missing(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
