// Package projection turns a JSON request of identified embeddings into
// 2D or 3D coordinates, preserving input order and identifiers.
package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/rupamthxt/vectraproj/internal/umap"
)

const (
	DefaultNeighbors = 15
	DefaultMinDist   = 0.1
	DefaultMetric    = "cosine"
)

// Reducer is the fit-and-transform contract the runner delegates to.
type Reducer interface {
	FitTransform(ctx context.Context, x *umap.Matrix) (*umap.Matrix, error)
}

type Runner struct {
	defaultComponents int
	maxItems          int
	logger            *slog.Logger
	newReducer        func(umap.Config) Reducer
}

type Option func(*Runner)

// WithMaxItems caps the number of embeddings per request. Zero means no cap.
func WithMaxItems(n int) Option {
	return func(r *Runner) { r.maxItems = n }
}

// WithReducer replaces the UMAP engine, mainly for tests.
func WithReducer(fn func(umap.Config) Reducer) Option {
	return func(r *Runner) { r.newReducer = fn }
}

// NewRunner returns a runner whose n_components default is
// defaultComponents (2 or 3).
func NewRunner(defaultComponents int, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		defaultComponents: defaultComponents,
		logger:            logger,
	}
	r.newReducer = func(cfg umap.Config) Reducer {
		return umap.New(cfg, r.logger)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) DefaultComponents() int { return r.defaultComponents }

// DecodeRequest reads exactly one JSON object from in.
func DecodeRequest(in io.Reader) (*Request, error) {
	dec := json.NewDecoder(in)
	var req Request
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedRequest)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after request object", ErrMalformedRequest)
	}
	return &req, nil
}

// Resolve applies defaults to the optional parameters and validates them.
func (r *Runner) Resolve(req *Request) (Params, error) {
	p := Params{
		NNeighbors:         intOr(req.NNeighbors, DefaultNeighbors),
		MinDist:            floatOr(req.MinDist, DefaultMinDist),
		Metric:             stringOr(req.Metric, DefaultMetric),
		NComponents:        intOr(req.NComponents, r.defaultComponents),
		NEpochs:            intOr(req.NEpochs, 0),
		Spread:             floatOr(req.Spread, 1.0),
		LearningRate:       floatOr(req.LearningRate, 1.0),
		NegativeSampleRate: floatOr(req.NegativeSampleRate, 5),
		LocalConnectivity:  floatOr(req.LocalConnectivity, 1.0),
		SetOpMixRatio:      floatOr(req.SetOpMixRatio, 1.0),
		RepulsionStrength:  floatOr(req.RepulsionStrength, 1.0),
		Init:               stringOr(req.Init, umap.InitSpectral),
	}

	if p.NComponents != 2 && p.NComponents != 3 {
		return Params{}, fmt.Errorf("%w: n_components must be 2 or 3, got %d", ErrInvalidParameter, p.NComponents)
	}
	if err := p.engineConfig().Validate(); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return p, nil
}

func (p Params) engineConfig() umap.Config {
	return umap.Config{
		NNeighbors:         p.NNeighbors,
		MinDist:            p.MinDist,
		Spread:             p.Spread,
		NComponents:        p.NComponents,
		Metric:             p.Metric,
		NEpochs:            p.NEpochs,
		LearningRate:       p.LearningRate,
		NegativeSampleRate: p.NegativeSampleRate,
		LocalConnectivity:  p.LocalConnectivity,
		SetOpMixRatio:      p.SetOpMixRatio,
		RepulsionStrength:  p.RepulsionStrength,
		Init:               p.Init,
		Seed:               umap.DefaultSeed,
	}
}

// Validate checks the items without copying them and returns their
// common dimension.
func (r *Runner) Validate(items []EmbeddingItem) (int, error) {
	if items == nil {
		return 0, ErrMissingEmbeddings
	}
	if len(items) == 0 {
		return 0, ErrEmptyEmbeddings
	}
	if r.maxItems > 0 && len(items) > r.maxItems {
		return 0, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyItems, len(items), r.maxItems)
	}

	dim := len(items[0].Embedding)
	for i, item := range items {
		if !item.ID.Valid() {
			return 0, fmt.Errorf("embeddings[%d]: %w", i, ErrMissingID)
		}
		if len(item.Embedding) == 0 {
			return 0, fmt.Errorf("embeddings[%d]: %w", i, ErrMissingVector)
		}
		if len(item.Embedding) != dim {
			return 0, fmt.Errorf("embeddings[%d] has %d dimensions, expected %d: %w",
				i, len(item.Embedding), dim, ErrDimensionMismatch)
		}
	}
	return dim, nil
}

// Matrix validates the items and packs their embeddings row by row.
func (r *Runner) Matrix(items []EmbeddingItem) (*umap.Matrix, error) {
	dim, err := r.Validate(items)
	if err != nil {
		return nil, err
	}

	m := umap.NewMatrix(len(items), dim)
	for i, item := range items {
		copy(m.Row(i), item.Embedding)
	}
	return m, nil
}

// Project runs the reduction and maps each output row back to the id at
// the same position.
func (r *Runner) Project(ctx context.Context, req *Request) ([]Result, error) {
	if req == nil {
		return nil, ErrMissingEmbeddings
	}

	x, err := r.Matrix(req.Embeddings)
	if err != nil {
		return nil, err
	}
	params, err := r.Resolve(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r.logger.Info(fmt.Sprintf("Projecting %d embeddings from %dD to %dD", x.Rows, x.Cols, params.NComponents),
		"metric", params.Metric, "n_neighbors", params.NNeighbors, "min_dist", params.MinDist)

	projected, err := r.newReducer(params.engineConfig()).FitTransform(ctx, x)
	if err != nil {
		return nil, fmt.Errorf("projection failed: %w", err)
	}
	if projected.Rows != x.Rows || projected.Cols != params.NComponents {
		return nil, fmt.Errorf("projection failed: reducer returned %dx%d, expected %dx%d",
			projected.Rows, projected.Cols, x.Rows, params.NComponents)
	}

	results := make([]Result, len(req.Embeddings))
	for i, item := range req.Embeddings {
		row := projected.Row(i)
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("projection failed: non-finite coordinate for embeddings[%d]", i)
			}
		}

		results[i] = Result{ID: item.ID, X: row[0], Y: row[1]}
		if params.NComponents == 3 {
			z := row[2]
			results[i].Z = &z
		}
	}

	r.logger.Info("Projection complete", "elapsed", time.Since(start).Round(time.Millisecond))
	return results, nil
}

// Run decodes a request from in, projects it and writes the result array
// to out. Nothing is written to out unless the whole run succeeds.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	req, err := DecodeRequest(in)
	if err != nil {
		return err
	}

	results, err := r.Project(ctx, req)
	if err != nil {
		return err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
