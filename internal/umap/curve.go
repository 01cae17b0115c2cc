package umap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

const curveSamples = 300

// findAB fits 1 / (1 + a*x^(2b)) to the offset exponential implied by
// spread and minDist, in the least-squares sense.
func findAB(spread, minDist float64) (a, b float64, err error) {
	xs := make([]float64, curveSamples)
	ys := make([]float64, curveSamples)
	step := 3 * spread / float64(curveSamples-1)
	for i := range xs {
		x := float64(i) * step
		xs[i] = x
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			pa, pb := p[0], p[1]
			if pa <= 0 || pb <= 0 {
				return 1e10
			}
			var sse float64
			for i, x := range xs {
				r := 1/(1+pa*math.Pow(x, 2*pb)) - ys[i]
				sse += r * r
			}
			return sse
		},
	}

	result, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if result == nil {
		return 0, 0, fmt.Errorf("fit curve parameters: %w", err)
	}

	a, b = result.X[0], result.X[1]
	if a <= 0 || b <= 0 || math.IsNaN(a) || math.IsNaN(b) {
		return 0, 0, fmt.Errorf("fit curve parameters: degenerate fit a=%g b=%g", a, b)
	}
	return a, b, nil
}
