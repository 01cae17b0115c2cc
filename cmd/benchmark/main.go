package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

const (
	Dimension = 384 // typical sentence-embedding width
	Clusters  = 8
)

var sizes = []int{100, 500, 1000, 2000, 5000}

func main() {
	fmt.Println("🔥 Starting vectraproj Projection Benchmark")
	fmt.Printf("Config: Dim=%d | Clusters=%d | Sizes=%v\n", Dimension, Clusters, sizes)

	runner := projection.NewRunner(3, slog.New(slog.DiscardHandler))
	rng := rand.New(rand.NewSource(7))

	for _, n := range sizes {
		req := clusteredRequest(rng, n)

		start := time.Now()
		results, err := runner.Project(context.Background(), req)
		if err != nil {
			fmt.Printf("❌ n=%d: %v\n", n, err)
			continue
		}
		elapsed := time.Since(start)
		fmt.Printf("✅ n=%-5d %8s  %.1f vectors/s\n",
			len(results), elapsed.Round(time.Millisecond), float64(len(results))/elapsed.Seconds())
	}
}

// clusteredRequest draws n vectors around Clusters random centres so the
// neighbour graph has real structure.
func clusteredRequest(rng *rand.Rand, n int) *projection.Request {
	centres := make([][]float64, Clusters)
	for c := range centres {
		centres[c] = make([]float64, Dimension)
		for d := range centres[c] {
			centres[c][d] = rng.NormFloat64()
		}
	}

	req := &projection.Request{Embeddings: make([]projection.EmbeddingItem, n)}
	for i := range req.Embeddings {
		centre := centres[i%Clusters]
		vec := make(projection.Vector, Dimension)
		for d := range vec {
			vec[d] = centre[d] + 0.1*rng.NormFloat64()
		}
		req.Embeddings[i] = projection.EmbeddingItem{ID: projection.NumberID(int64(i)), Embedding: vec}
	}
	return req
}
