// Package umap implements Uniform Manifold Approximation and Projection
// for small to medium dense inputs: an exact kNN graph, its fuzzy
// simplicial set, and a seeded stochastic layout. Given the same input
// and Config, FitTransform always returns the same coordinates.
package umap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

var (
	ErrEmptyInput    = errors.New("umap: empty input")
	ErrUnknownMetric = errors.New("umap: unknown metric")
	ErrInvalidConfig = errors.New("umap: invalid config")
)

const (
	InitSpectral = "spectral"
	InitRandom   = "random"

	DefaultSeed = 42
)

type Config struct {
	NNeighbors         int
	MinDist            float64
	Spread             float64
	NComponents        int
	Metric             string
	NEpochs            int // 0 picks 500 for small inputs, 200 above 10000 rows
	LearningRate       float64
	NegativeSampleRate float64
	LocalConnectivity  float64
	SetOpMixRatio      float64
	RepulsionStrength  float64
	Init               string
	Seed               int64
}

// DefaultConfig mirrors the defaults of the reference Python library
// with the fixed seed used for reproducible layouts.
func DefaultConfig() Config {
	return Config{
		NNeighbors:         15,
		MinDist:            0.1,
		Spread:             1.0,
		NComponents:        2,
		Metric:             "euclidean",
		LearningRate:       1.0,
		NegativeSampleRate: 5,
		LocalConnectivity:  1.0,
		SetOpMixRatio:      1.0,
		RepulsionStrength:  1.0,
		Init:               InitSpectral,
		Seed:               DefaultSeed,
	}
}

func (c Config) Validate() error {
	switch {
	case c.NNeighbors < 2:
		return fmt.Errorf("%w: n_neighbors must be at least 2, got %d", ErrInvalidConfig, c.NNeighbors)
	case c.NComponents < 1:
		return fmt.Errorf("%w: n_components must be positive, got %d", ErrInvalidConfig, c.NComponents)
	case c.Spread <= 0:
		return fmt.Errorf("%w: spread must be positive, got %g", ErrInvalidConfig, c.Spread)
	case c.MinDist < 0 || c.MinDist > c.Spread:
		return fmt.Errorf("%w: min_dist must be in [0, spread], got %g", ErrInvalidConfig, c.MinDist)
	case c.NEpochs < 0:
		return fmt.Errorf("%w: n_epochs must not be negative, got %d", ErrInvalidConfig, c.NEpochs)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	case c.NegativeSampleRate < 0:
		return fmt.Errorf("%w: negative_sample_rate must not be negative, got %g", ErrInvalidConfig, c.NegativeSampleRate)
	case c.LocalConnectivity <= 0:
		return fmt.Errorf("%w: local_connectivity must be positive, got %g", ErrInvalidConfig, c.LocalConnectivity)
	case c.SetOpMixRatio < 0 || c.SetOpMixRatio > 1:
		return fmt.Errorf("%w: set_op_mix_ratio must be in [0, 1], got %g", ErrInvalidConfig, c.SetOpMixRatio)
	case c.RepulsionStrength < 0:
		return fmt.Errorf("%w: repulsion_strength must not be negative, got %g", ErrInvalidConfig, c.RepulsionStrength)
	case c.Init != InitSpectral && c.Init != InitRandom:
		return fmt.Errorf("%w: init must be %q or %q, got %q", ErrInvalidConfig, InitSpectral, InitRandom, c.Init)
	}
	if _, err := LookupMetric(c.Metric); err != nil {
		return err
	}
	return nil
}

type UMAP struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *UMAP {
	if logger == nil {
		logger = slog.Default()
	}
	return &UMAP{cfg: cfg, logger: logger}
}

// FitTransform embeds the rows of x into NComponents dimensions.
func (u *UMAP) FitTransform(ctx context.Context, x *Matrix) (*Matrix, error) {
	cfg := u.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if x == nil || x.Rows == 0 || x.Cols == 0 {
		return nil, ErrEmptyInput
	}

	n := x.Rows
	if n == 1 {
		return NewMatrix(1, cfg.NComponents), nil
	}

	dist, _ := LookupMetric(cfg.Metric)

	k := cfg.NNeighbors
	if k > n {
		k = n
	}

	epochs := cfg.NEpochs
	if epochs == 0 {
		epochs = 500
		if n > 10000 {
			epochs = 200
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	start := time.Now()
	knn, err := nearestNeighbors(ctx, x, k, dist)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbours: %w", err)
	}
	u.logger.Debug("umap: nearest neighbours computed", "rows", n, "k", k, "elapsed", time.Since(start))

	graph := fuzzySimplicialSet(knn, cfg.LocalConnectivity, cfg.SetOpMixRatio)
	pruneWeak(graph, epochs)
	u.logger.Debug("umap: fuzzy simplicial set built", "edges", graph.Len())

	a, b, err := findAB(cfg.Spread, cfg.MinDist)
	if err != nil {
		return nil, err
	}

	var emb *Matrix
	if cfg.Init == InitSpectral {
		var ok bool
		emb, ok = spectralInit(graph, cfg.NComponents, rng)
		if !ok {
			u.logger.Debug("umap: spectral initialisation unavailable, using random")
		}
	}
	if emb == nil {
		emb = randomInit(n, cfg.NComponents, rng)
	}
	rescale(emb)

	start = time.Now()
	err = optimizeLayout(ctx, emb, graph, layoutParams{
		a:                  a,
		b:                  b,
		epochs:             epochs,
		learningRate:       cfg.LearningRate,
		negativeSampleRate: cfg.NegativeSampleRate,
		repulsionStrength:  cfg.RepulsionStrength,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("optimize layout: %w", err)
	}
	u.logger.Debug("umap: layout optimised", "epochs", epochs, "elapsed", time.Since(start))

	for _, v := range emb.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("umap: layout diverged to non-finite coordinates")
		}
	}
	return emb, nil
}

// pruneWeak drops edges too light to be sampled even once in epochs.
func pruneWeak(graph *edgeList, epochs int) {
	threshold := graph.maxWeight() / float64(epochs)
	kept := 0
	for p, w := range graph.weights {
		if w < threshold {
			continue
		}
		graph.head[kept] = graph.head[p]
		graph.tail[kept] = graph.tail[p]
		graph.weights[kept] = w
		kept++
	}
	graph.head = graph.head[:kept]
	graph.tail = graph.tail[:kept]
	graph.weights = graph.weights[:kept]
}

// Available runs a tiny fit to confirm the engine works on this host.
func Available() error {
	x, err := FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {5, 5}})
	if err != nil {
		return err
	}
	cfg := DefaultConfig()
	cfg.NNeighbors = 3
	cfg.NEpochs = 10
	if _, err := New(cfg, slog.New(slog.DiscardHandler)).FitTransform(context.Background(), x); err != nil {
		return err
	}
	return nil
}
