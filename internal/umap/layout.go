package umap

import (
	"context"
	"math"
	"math/rand"
)

const gradClip = 4.0

type layoutParams struct {
	a, b               float64
	epochs             int
	learningRate       float64
	negativeSampleRate float64
	repulsionStrength  float64
}

func clip(v float64) float64 {
	if v > gradClip {
		return gradClip
	}
	if v < -gradClip {
		return -gradClip
	}
	return v
}

// epochsPerSample spaces out edge updates so an edge of weight w is
// sampled w/max as often as the heaviest edge.
func epochsPerSample(weights []float64, epochs int) []float64 {
	var best float64
	for _, w := range weights {
		best = math.Max(best, w)
	}

	out := make([]float64, len(weights))
	for i, w := range weights {
		samples := float64(epochs) * (w / best)
		if samples > 0 {
			out[i] = float64(epochs) / samples
		} else {
			out[i] = -1
		}
	}
	return out
}

// optimizeLayout runs stochastic gradient descent over the graph edges,
// moving both endpoints of sampled edges and pushing heads away from
// randomly drawn vertices. It is single threaded so a seeded rng gives
// the same layout every run.
func optimizeLayout(ctx context.Context, emb *Matrix, graph *edgeList, p layoutParams, rng *rand.Rand) error {
	eps := epochsPerSample(graph.weights, p.epochs)
	nextSample := make([]float64, len(eps))
	copy(nextSample, eps)

	epsNeg := make([]float64, len(eps))
	nextNeg := make([]float64, len(eps))
	for i, e := range eps {
		if p.negativeSampleRate > 0 {
			epsNeg[i] = e / p.negativeSampleRate
		} else {
			epsNeg[i] = math.Inf(1)
		}
		nextNeg[i] = epsNeg[i]
	}

	n := emb.Rows
	dim := emb.Cols
	alpha := p.learningRate
	a, b := p.a, p.b

	for epoch := 0; epoch < p.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fe := float64(epoch)

		for e := range eps {
			if eps[e] <= 0 || nextSample[e] > fe {
				continue
			}

			j, k := graph.head[e], graph.tail[e]
			current := emb.Row(j)
			other := emb.Row(k)

			d2 := squaredEuclidean(current, other)
			var coeff float64
			if d2 > 0 {
				coeff = -2 * a * b * math.Pow(d2, b-1) / (a*math.Pow(d2, b) + 1)
			}
			for d := 0; d < dim; d++ {
				grad := clip(coeff * (current[d] - other[d]))
				current[d] += grad * alpha
				other[d] -= grad * alpha
			}
			nextSample[e] += eps[e]

			negSamples := 0
			if !math.IsInf(epsNeg[e], 1) {
				negSamples = int((fe - nextNeg[e]) / epsNeg[e])
			}
			for s := 0; s < negSamples; s++ {
				k := rng.Intn(n)
				if k == j {
					continue
				}
				other := emb.Row(k)

				d2 := squaredEuclidean(current, other)
				var coeff float64
				if d2 > 0 {
					coeff = 2 * p.repulsionStrength * b / ((0.001 + d2) * (a*math.Pow(d2, b) + 1))
				}
				if coeff <= 0 {
					continue
				}
				for d := 0; d < dim; d++ {
					current[d] += clip(coeff*(current[d]-other[d])) * alpha
				}
			}
			if negSamples > 0 {
				nextNeg[e] += float64(negSamples) * epsNeg[e]
			}
		}

		alpha = p.learningRate * (1 - float64(epoch+1)/float64(p.epochs))
	}
	return nil
}
