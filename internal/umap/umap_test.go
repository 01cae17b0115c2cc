package umap

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func clusteredRows(seed int64, perCluster int) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	centres := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{10, 10, 10, 10, 0, 0, 0, 0},
		{0, 0, 0, 0, 10, 10, 10, 10},
	}
	var rows [][]float64
	for _, c := range centres {
		for i := 0; i < perCluster; i++ {
			row := make([]float64, len(c))
			for d := range c {
				row[d] = c[d] + rng.NormFloat64()*0.3
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.NEpochs = 100
	return cfg
}

func fit(t *testing.T, cfg Config, rows [][]float64) *Matrix {
	t.Helper()
	x, err := FromRows(rows)
	require.NoError(t, err)
	out, err := New(cfg, slog.New(slog.DiscardHandler)).FitTransform(context.Background(), x)
	require.NoError(t, err)
	return out
}

func TestFindABMatchesReferenceCurve(t *testing.T) {
	a, b, err := findAB(1.0, 0.1)
	require.NoError(t, err)
	// Reference library values for spread=1, min_dist=0.1.
	require.InDelta(t, 1.577, a, 0.08)
	require.InDelta(t, 0.895, b, 0.03)
}

func TestSmoothKNNDistHitsTarget(t *testing.T) {
	x, err := FromRows(clusteredRows(1, 10))
	require.NoError(t, err)
	g, err := nearestNeighbors(context.Background(), x, 6, euclidean)
	require.NoError(t, err)

	sigmas, rhos := smoothKNNDist(g, 1)
	target := math.Log2(6)
	for i := 0; i < g.n; i++ {
		_, ds := g.row(i)
		require.Greater(t, rhos[i], 0.0)
		require.InDelta(t, ds[1], rhos[i], 1e-12)

		var psum float64
		for _, d := range ds[1:] {
			psum += math.Exp(-math.Max(0, d-rhos[i]) / sigmas[i])
		}
		require.InDelta(t, target, psum, 1e-3)
	}
}

func TestFuzzySimplicialSetIsSymmetric(t *testing.T) {
	x, err := FromRows(clusteredRows(2, 8))
	require.NoError(t, err)
	g, err := nearestNeighbors(context.Background(), x, 4, euclidean)
	require.NoError(t, err)

	graph := fuzzySimplicialSet(g, 1, 1)
	weights := make(map[[2]int]float64, graph.Len())
	for p := range graph.weights {
		require.NotEqual(t, graph.head[p], graph.tail[p])
		require.LessOrEqual(t, graph.weights[p], 1.0)
		weights[[2]int{graph.head[p], graph.tail[p]}] = graph.weights[p]
	}
	for key, w := range weights {
		require.Equal(t, w, weights[[2]int{key[1], key[0]}])
	}
}

func TestComponentsCountsClusters(t *testing.T) {
	graph := &edgeList{
		n:       5,
		head:    []int{0, 1, 3, 4},
		tail:    []int{1, 0, 4, 3},
		weights: []float64{1, 1, 1, 1},
	}
	require.Equal(t, 3, components(graph))
}

func TestFitTransformShapeAndDeterminism(t *testing.T) {
	rows := clusteredRows(3, 12)
	for _, dim := range []int{2, 3} {
		cfg := quietConfig()
		cfg.NComponents = dim
		first := fit(t, cfg, rows)
		second := fit(t, cfg, rows)

		require.Equal(t, len(rows), first.Rows)
		require.Equal(t, dim, first.Cols)
		require.Equal(t, first.Data, second.Data)
	}
}

func TestFitTransformSeparatesClusters(t *testing.T) {
	rows := clusteredRows(4, 15)
	cfg := quietConfig()
	cfg.NEpochs = 200
	out := fit(t, cfg, rows)

	centroid := func(c int) []float64 {
		sum := make([]float64, out.Cols)
		for i := c * 15; i < (c+1)*15; i++ {
			for d := range sum {
				sum[d] += out.At(i, d) / 15
			}
		}
		return sum
	}
	spread := func(c int) float64 {
		centre := centroid(c)
		var total float64
		for i := c * 15; i < (c+1)*15; i++ {
			total += euclidean(out.Row(i), centre)
		}
		return total / 15
	}

	within := math.Max(spread(0), math.Max(spread(1), spread(2)))
	between := math.Min(euclidean(centroid(0), centroid(1)),
		math.Min(euclidean(centroid(0), centroid(2)), euclidean(centroid(1), centroid(2))))
	require.Greater(t, between, within)
}

func TestFitTransformSingleRowIsZero(t *testing.T) {
	cfg := quietConfig()
	cfg.NComponents = 3
	out := fit(t, cfg, [][]float64{{1, 2, 3}})
	require.Equal(t, []float64{0, 0, 0}, out.Data)
}

func TestFitTransformClampsNeighbours(t *testing.T) {
	cfg := quietConfig()
	cfg.NNeighbors = 50
	out := fit(t, cfg, [][]float64{{0, 0}, {1, 1}})
	require.Equal(t, 2, out.Rows)
	for _, v := range out.Data {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestFitTransformIdenticalPointsStayFinite(t *testing.T) {
	rows := make([][]float64, 6)
	for i := range rows {
		rows[i] = []float64{1, 1, 1}
	}
	for _, metric := range []string{"cosine", "euclidean", "correlation"} {
		cfg := quietConfig()
		cfg.Metric = metric
		out := fit(t, cfg, rows)
		for _, v := range out.Data {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), metric)
		}
	}
}

func TestFitTransformRandomInit(t *testing.T) {
	cfg := quietConfig()
	cfg.Init = InitRandom
	rows := clusteredRows(5, 6)
	require.Equal(t, fit(t, cfg, rows).Data, fit(t, cfg, rows).Data)
}

func TestFitTransformCancelled(t *testing.T) {
	x, err := FromRows(clusteredRows(6, 5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(quietConfig(), nil).FitTransform(ctx, x)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "one neighbour", mutate: func(c *Config) { c.NNeighbors = 1 }},
		{name: "negative min dist", mutate: func(c *Config) { c.MinDist = -0.1 }},
		{name: "min dist above spread", mutate: func(c *Config) { c.MinDist = 2 }},
		{name: "zero spread", mutate: func(c *Config) { c.Spread = 0 }},
		{name: "negative epochs", mutate: func(c *Config) { c.NEpochs = -1 }},
		{name: "zero learning rate", mutate: func(c *Config) { c.LearningRate = 0 }},
		{name: "mix ratio", mutate: func(c *Config) { c.SetOpMixRatio = 1.5 }},
		{name: "init", mutate: func(c *Config) { c.Init = "pca" }},
		{name: "metric", mutate: func(c *Config) { c.Metric = "nope" }},
	}

	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrUnknownMetric))
		})
	}
}

func TestFromRowsRejectsRaggedInput(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	require.Error(t, err)

	_, err = FromRows(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestAvailable(t *testing.T) {
	require.NoError(t, Available())
}
