package umap

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// maxSpectralRows bounds the dense eigendecomposition; above it the
// layout starts from random coordinates.
const maxSpectralRows = 4000

// spectralInit embeds the graph with the eigenvectors of its normalised
// Laplacian. ok is false when the graph is unsuitable (disconnected, too
// small or too large) and the caller should fall back to randomInit.
func spectralInit(graph *edgeList, dim int, rng *rand.Rand) (*Matrix, bool) {
	n := graph.n
	if n <= dim+1 || n > maxSpectralRows || components(graph) != 1 {
		return nil, false
	}

	degree := make([]float64, n)
	for p, i := range graph.head {
		degree[i] += graph.weights[p]
	}
	for _, d := range degree {
		if d == 0 {
			return nil, false
		}
	}

	laplacian := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		laplacian.SetSym(i, i, 1)
	}
	for p, i := range graph.head {
		j := graph.tail[p]
		if i < j {
			v := -graph.weights[p] / math.Sqrt(degree[i]*degree[j])
			laplacian.SetSym(i, j, v)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(laplacian, true); !ok {
		return nil, false
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	out := NewMatrix(n, dim)
	var maxAbs float64
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			// Column 0 is the trivial eigenvector.
			v := vectors.At(i, d+1)
			out.Set(i, d, v)
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs == 0 || math.IsNaN(maxAbs) {
		return nil, false
	}

	expansion := 10 / maxAbs
	for p := range out.Data {
		out.Data[p] = out.Data[p]*expansion + rng.NormFloat64()*1e-4
	}
	return out, true
}

func randomInit(n, dim int, rng *rand.Rand) *Matrix {
	out := NewMatrix(n, dim)
	for p := range out.Data {
		out.Data[p] = rng.Float64()*20 - 10
	}
	return out
}

// rescale maps every column onto [0, 10]. Constant columns collapse to 0.
func rescale(m *Matrix) {
	for d := 0; d < m.Cols; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < m.Rows; i++ {
			v := m.At(i, d)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		span := hi - lo
		for i := 0; i < m.Rows; i++ {
			if span == 0 {
				m.Set(i, d, 0)
				continue
			}
			m.Set(i, d, 10*(m.At(i, d)-lo)/span)
		}
	}
}

// components counts connected components with a union-find.
func components(graph *edgeList) int {
	parent := make([]int, graph.n)
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	count := graph.n
	for p, i := range graph.head {
		a, b := find(i), find(graph.tail[p])
		if a != b {
			parent[a] = b
			count--
		}
	}
	return count
}
