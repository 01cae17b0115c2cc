package umap

import (
	"context"
	"runtime"
	"sync"
)

// knnGraph holds k neighbours per row, sorted by ascending distance.
// Row i occupies indices[i*k:(i+1)*k].
type knnGraph struct {
	n       int
	k       int
	indices []int
	dists   []float64
}

func (g *knnGraph) row(i int) ([]int, []float64) {
	start := i * g.k
	return g.indices[start : start+g.k], g.dists[start : start+g.k]
}

// nearestNeighbors computes the exact kNN graph by brute force. Each
// row is independent, so rows are striped over workers; the result does
// not depend on scheduling.
func nearestNeighbors(ctx context.Context, x *Matrix, k int, dist DistanceFunc) (*knnGraph, error) {
	n := x.Rows
	g := &knnGraph{
		n:       n,
		k:       k,
		indices: make([]int, n*k),
		dists:   make([]float64, n*k),
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			heap := make(MaxHeap, 0, k)
			for i := offset; i < n; i += workers {
				if ctx.Err() != nil {
					return
				}
				heap = heap[:0]
				query := x.Row(i)
				for j := 0; j < n; j++ {
					d := 0.0
					if j != i {
						d = dist(query, x.Row(j))
					}
					heap.Offer(Match{Index: j, Dist: d}, k)
				}

				idx, ds := g.row(i)
				for p := len(heap) - 1; p >= 0; p-- {
					m := heap.Pop()
					idx[p] = m.Index
					ds[p] = m.Dist
				}
			}
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
