package umap

import (
	"math"
	"sort"
)

const (
	smoothKTolerance = 1e-5
	minKDistScale    = 1e-3
	smoothKIter      = 64
)

// edgeList is a symmetric sparse graph in coordinate form, sorted by
// (head, tail).
type edgeList struct {
	n       int
	head    []int
	tail    []int
	weights []float64
}

func (e *edgeList) Len() int { return len(e.weights) }

func (e *edgeList) maxWeight() float64 {
	var best float64
	for _, w := range e.weights {
		if w > best {
			best = w
		}
	}
	return best
}

// smoothKNNDist finds, per row, the distance to the nearest neighbour
// (rho) and the bandwidth (sigma) such that the row's membership
// strengths sum to log2(k).
func smoothKNNDist(g *knnGraph, localConnectivity float64) (sigmas, rhos []float64) {
	sigmas = make([]float64, g.n)
	rhos = make([]float64, g.n)

	target := math.Log2(float64(g.k))

	var meanAll float64
	for _, d := range g.dists {
		meanAll += d
	}
	meanAll /= float64(len(g.dists))

	nonZero := make([]float64, 0, g.k)
	for i := 0; i < g.n; i++ {
		_, ds := g.row(i)

		nonZero = nonZero[:0]
		for _, d := range ds {
			if d > 0 {
				nonZero = append(nonZero, d)
			}
		}

		switch {
		case float64(len(nonZero)) >= localConnectivity:
			index := int(math.Floor(localConnectivity))
			interp := localConnectivity - float64(index)
			if index > 0 {
				rhos[i] = nonZero[index-1]
				if interp > smoothKTolerance && index < len(nonZero) {
					rhos[i] += interp * (nonZero[index] - nonZero[index-1])
				}
			} else {
				rhos[i] = interp * nonZero[0]
			}
		case len(nonZero) > 0:
			rhos[i] = nonZero[len(nonZero)-1]
		}

		lo, hi, mid := 0.0, math.Inf(1), 1.0
		for iter := 0; iter < smoothKIter; iter++ {
			var psum float64
			for j := 1; j < len(ds); j++ {
				d := ds[j] - rhos[i]
				if d > 0 {
					psum += math.Exp(-d / mid)
				} else {
					psum++
				}
			}

			if math.Abs(psum-target) < smoothKTolerance {
				break
			}

			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}
		sigmas[i] = mid

		if rhos[i] > 0 {
			var meanRow float64
			for _, d := range ds {
				meanRow += d
			}
			meanRow /= float64(len(ds))
			if sigmas[i] < minKDistScale*meanRow {
				sigmas[i] = minKDistScale * meanRow
			}
		} else if sigmas[i] < minKDistScale*meanAll {
			sigmas[i] = minKDistScale * meanAll
		}
	}
	return sigmas, rhos
}

// fuzzySimplicialSet turns the kNN graph into a symmetric weighted
// graph. mix blends fuzzy union (1) and fuzzy intersection (0).
func fuzzySimplicialSet(g *knnGraph, localConnectivity, mix float64) *edgeList {
	sigmas, rhos := smoothKNNDist(g, localConnectivity)

	type key struct{ i, j int }
	directed := make(map[key]float64, g.n*g.k)
	for i := 0; i < g.n; i++ {
		idx, ds := g.row(i)
		for p, j := range idx {
			if j == i {
				continue
			}
			var w float64
			if ds[p]-rhos[i] <= 0 || sigmas[i] == 0 {
				w = 1
			} else {
				w = math.Exp(-(ds[p] - rhos[i]) / sigmas[i])
			}
			if w > 0 {
				directed[key{i, j}] = w
			}
		}
	}

	combined := make(map[key]float64, 2*len(directed))
	for k, w := range directed {
		t := directed[key{k.j, k.i}]
		prod := w * t
		v := mix*(w+t-prod) + (1-mix)*prod
		combined[k] = v
		combined[key{k.j, k.i}] = v
	}

	keys := make([]key, 0, len(combined))
	for k, v := range combined {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].i != keys[b].i {
			return keys[a].i < keys[b].i
		}
		return keys[a].j < keys[b].j
	})

	out := &edgeList{
		n:       g.n,
		head:    make([]int, len(keys)),
		tail:    make([]int, len(keys)),
		weights: make([]float64, len(keys)),
	}
	for p, k := range keys {
		out.head[p] = k.i
		out.tail[p] = k.j
		out.weights[p] = combined[k]
	}
	return out
}
