package cluster

import (
	"errors"
	"math/rand"
	"testing"
)

// makeBlobs generates perCluster points around each center with uniform
// jitter in [-spread, spread] per dimension, using a fixed seed.
func makeBlobs(perCluster int, centers [][]float64, spread float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	var rows [][]float64
	for _, c := range centers {
		for i := 0; i < perCluster; i++ {
			row := make([]float64, len(c))
			for d := range c {
				row[d] = c[d] + (rng.Float64()*2-1)*spread
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// groupsMatch verifies that labels are constant within each block of
// perCluster consecutive rows and differ between blocks.
func groupsMatch(t *testing.T, labels []int, perCluster, blocks int) {
	t.Helper()
	if len(labels) != perCluster*blocks {
		t.Fatalf("got %d labels, want %d", len(labels), perCluster*blocks)
	}
	seen := map[int]bool{}
	for b := 0; b < blocks; b++ {
		first := labels[b*perCluster]
		for i := 1; i < perCluster; i++ {
			if labels[b*perCluster+i] != first {
				t.Fatalf("block %d not uniform: %v", b, labels[b*perCluster:(b+1)*perCluster])
			}
		}
		if seen[first] {
			t.Fatalf("block %d reuses label %d", b, first)
		}
		seen[first] = true
	}
}

func TestRegistry_BuildsAllModels(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{ModelBGMM, ModelKMeans, ModelAgglomerative, ModelDBSCAN} {
		e, err := r.New(name, DefaultParams())
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if e.Name() != name {
			t.Errorf("estimator name %q, want %q", e.Name(), name)
		}
	}
}

func TestRegistry_UnknownModel(t *testing.T) {
	r := NewRegistry()

	_, err := r.New("SpectralClustering", DefaultParams())
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestRegistry_InvalidParams(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		p    Params
	}{
		{"negative clusters", func() Params { p := DefaultParams(); p.NumClusters = -1; return p }()},
		{"negative max iter", func() Params { p := DefaultParams(); p.MaxIter = -5; return p }()},
		{"negative eps", func() Params { p := DefaultParams(); p.Eps = -0.5; return p }()},
		{"negative min pts", func() Params { p := DefaultParams(); p.MinPts = -1; return p }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.New(ModelKMeans, tt.p); !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestRegistry_Models(t *testing.T) {
	got := NewRegistry().Models()
	want := []string{ModelAgglomerative, ModelBGMM, ModelDBSCAN, ModelKMeans}
	if len(got) != len(want) {
		t.Fatalf("Models() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Models()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

type nameOnlyEstimator struct{}

func (nameOnlyEstimator) Name() string { return "name-only" }

func TestFitPredict_DispatchesBothShapes(t *testing.T) {
	data := makeBlobs(20, [][]float64{{0, 0}, {10, 10}}, 0.5, 7)

	// Two-step shape (KMeans).
	labels, err := FitPredict(NewKMeans(Params{NumClusters: 2, Seed: 7}), data)
	if err != nil {
		t.Fatalf("FitPredict(KMeans): %v", err)
	}
	groupsMatch(t, labels, 20, 2)

	// One-shot shape (DBSCAN).
	labels, err = FitPredict(NewDBSCAN(Params{Eps: 2, MinPts: 3}), data)
	if err != nil {
		t.Fatalf("FitPredict(DBSCAN): %v", err)
	}
	groupsMatch(t, labels, 20, 2)
}

func TestFitPredict_NoCapability(t *testing.T) {
	_, err := FitPredict(nameOnlyEstimator{}, [][]float64{{1}})
	if err == nil {
		t.Fatal("expected error for estimator without clustering capability")
	}
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	data := makeBlobs(50, [][]float64{{0, 0, 0}, {8, 8, 8}, {-8, 8, 0}}, 0.5, 3)

	km := NewKMeans(Params{NumClusters: 3, Seed: 3})
	if err := km.Fit(data); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	labels, err := km.Predict(data)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	groupsMatch(t, labels, 50, 3)
}

func TestKMeans_PredictBeforeFit(t *testing.T) {
	_, err := NewKMeans(DefaultParams()).Predict([][]float64{{1, 2}})
	if err == nil {
		t.Fatal("expected error predicting before fit")
	}
}

func TestKMeans_Deterministic(t *testing.T) {
	data := makeBlobs(30, [][]float64{{0, 0}, {6, 6}}, 1.0, 11)

	a, err := FitPredict(NewKMeans(Params{NumClusters: 2, Seed: 42}), data)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := FitPredict(NewKMeans(Params{NumClusters: 2, Seed: 42}), data)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different labels at row %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestKMeans_MoreClustersThanRows(t *testing.T) {
	data := [][]float64{{0}, {1}}

	labels, err := FitPredict(NewKMeans(Params{NumClusters: 5, Seed: 1}), data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(labels))
	}
}

func TestDBSCAN_NoisePoint(t *testing.T) {
	// Two tight blobs plus one isolated point; the isolate must be noise.
	data := makeBlobs(10, [][]float64{{0, 0}, {5, 5}}, 0.1, 5)
	data = append(data, []float64{100, 100})

	labels, err := NewDBSCAN(Params{Eps: 0.5, MinPts: 3}).FitPredict(data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	if labels[len(labels)-1] != -1 {
		t.Errorf("isolated point labelled %d, want -1", labels[len(labels)-1])
	}
	groupsMatch(t, labels[:20], 10, 2)
}

func TestDBSCAN_Empty(t *testing.T) {
	labels, err := NewDBSCAN(DefaultParams()).FitPredict(nil)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestDBSCAN_AllNoise(t *testing.T) {
	// Points too sparse to form any cluster.
	data := [][]float64{{0, 0}, {10, 0}, {0, 10}, {10, 10}}

	labels, err := NewDBSCAN(Params{Eps: 1, MinPts: 3}).FitPredict(data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	for i, l := range labels {
		if l != -1 {
			t.Errorf("point %d labelled %d, want -1", i, l)
		}
	}
}

func TestAgglomerative_HandTraced(t *testing.T) {
	// Two pairs on a line; cutting at k=2 must group {0,1} and {2,3}.
	data := [][]float64{{0}, {0.1}, {10}, {10.1}}

	labels, err := NewAgglomerative(Params{NumClusters: 2}).FitPredict(data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	if labels[0] != labels[1] || labels[2] != labels[3] || labels[0] == labels[2] {
		t.Errorf("unexpected grouping: %v", labels)
	}
}

func TestAgglomerative_SeparatesBlobs(t *testing.T) {
	data := makeBlobs(25, [][]float64{{0, 0}, {7, 7}, {-7, 7}}, 0.4, 9)

	labels, err := NewAgglomerative(Params{NumClusters: 3}).FitPredict(data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	groupsMatch(t, labels, 25, 3)
}

func TestAgglomerative_KEqualsN(t *testing.T) {
	data := [][]float64{{0}, {1}, {2}}

	labels, err := NewAgglomerative(Params{NumClusters: 3}).FitPredict(data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	seen := map[int]bool{}
	for _, l := range labels {
		if seen[l] {
			t.Fatalf("duplicate label with k=n: %v", labels)
		}
		seen[l] = true
	}
}

func TestGaussianMixture_SeparatesBlobs(t *testing.T) {
	data := makeBlobs(50, [][]float64{{0, 0}, {9, 9}}, 0.6, 13)

	labels, err := FitPredict(NewGaussianMixture(Params{NumClusters: 2, Seed: 13, MaxIter: 200}), data)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	groupsMatch(t, labels, 50, 2)
}

func TestGaussianMixture_PredictBeforeFit(t *testing.T) {
	_, err := NewGaussianMixture(DefaultParams()).Predict([][]float64{{1}})
	if err == nil {
		t.Fatal("expected error predicting before fit")
	}
}

func TestGaussianMixture_PredictWidthMismatch(t *testing.T) {
	data := makeBlobs(20, [][]float64{{0, 0}, {9, 9}}, 0.5, 7)
	gm := NewGaussianMixture(Params{NumClusters: 2, Seed: 7})
	if err := gm.Fit(data); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := gm.Predict([][]float64{{1, 2, 3}}); err == nil {
		t.Fatal("expected error predicting rows wider than the fitted data")
	}
}

func TestCondensedIndex(t *testing.T) {
	// All pairs of a 5-point matrix hit distinct indices covering [0, 10).
	n := 5
	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			idx := condensedIndex(n, i, j)
			if idx < 0 || idx >= n*(n-1)/2 {
				t.Fatalf("index %d out of range for pair (%d,%d)", idx, i, j)
			}
			if seen[idx] {
				t.Fatalf("index %d reused at pair (%d,%d)", idx, i, j)
			}
			seen[idx] = true
			if got := condensedIndex(n, j, i); got != idx {
				t.Errorf("condensedIndex not symmetric: (%d,%d)=%d, (%d,%d)=%d", i, j, idx, j, i, got)
			}
		}
	}
}

func TestPairwiseSquared_ParallelMatchesSequential(t *testing.T) {
	data := makeBlobs(40, [][]float64{{0, 0, 0}, {3, 1, 2}}, 1.5, 21)

	seq := pairwiseSquared(data, 1)
	par := pairwiseSquared(data, 4)

	if len(seq) != len(par) {
		t.Fatalf("length mismatch: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("distance %d differs: %v vs %v", i, seq[i], par[i])
		}
	}
}
