package umap

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DistanceFunc measures dissimilarity between two equal-length vectors.
type DistanceFunc func(a, b []float64) float64

var metrics = map[string]DistanceFunc{
	"euclidean":   euclidean,
	"l2":          euclidean,
	"sqeuclidean": squaredEuclidean,
	"manhattan":   manhattan,
	"l1":          manhattan,
	"taxicab":     manhattan,
	"chebyshev":   chebyshev,
	"linfinity":   chebyshev,
	"cosine":      cosine,
	"correlation": correlation,
	"canberra":    canberra,
	"braycurtis":  brayCurtis,
}

// LookupMetric resolves a metric name, case-insensitively.
func LookupMetric(name string) (DistanceFunc, error) {
	fn, ok := metrics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return fn, nil
}

// Metrics lists the supported metric names in sorted order.
func Metrics() []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func squaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func euclidean(a, b []float64) float64 {
	return math.Sqrt(squaredEuclidean(a, b))
}

func manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func chebyshev(a, b []float64) float64 {
	var best float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > best {
			best = d
		}
	}
	return best
}

// cosine returns 1 - cos(a, b). Two zero vectors are identical, a zero
// vector against anything else is maximally far.
func cosine(a, b []float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	switch {
	case magA == 0 && magB == 0:
		return 0
	case magA == 0 || magB == 0:
		return 1
	}
	d := 1 - dot/math.Sqrt(magA*magB)
	return math.Max(0, math.Min(2, d))
}

func correlation(a, b []float64) float64 {
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))

	var dot, magA, magB float64
	for i := range a {
		sa := a[i] - meanA
		sb := b[i] - meanB
		dot += sa * sb
		magA += sa * sa
		magB += sb * sb
	}
	switch {
	case magA == 0 && magB == 0:
		return 0
	case dot == 0:
		return 1
	}
	d := 1 - dot/math.Sqrt(magA*magB)
	return math.Max(0, math.Min(2, d))
}

func canberra(a, b []float64) float64 {
	var sum float64
	for i := range a {
		denom := math.Abs(a[i]) + math.Abs(b[i])
		if denom > 0 {
			sum += math.Abs(a[i]-b[i]) / denom
		}
	}
	return sum
}

func brayCurtis(a, b []float64) float64 {
	var num, denom float64
	for i := range a {
		num += math.Abs(a[i] - b[i])
		denom += math.Abs(a[i] + b[i])
	}
	if denom == 0 {
		return 0
	}
	return num / denom
}
