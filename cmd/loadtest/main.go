package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

const (
	RequestCount = 200
	Concurrency  = 10
	Points       = 100
	Dimension    = 128

	BaseURL = "http://localhost:8080/api/v1"
)

func main() {
	fmt.Println("🔥 Starting vectraproj HTTP Load Generator")
	fmt.Printf("Target: %s | Workers: %d | Points/request: %d\n", BaseURL, Concurrency, Points)

	// Phase 1: every request is distinct, so each one is computed.
	fmt.Println("\n🧮 Phase 1: Cold projections...")
	runTest("cold", RequestCount, func(workerID, i int) (bool, error) {
		return sendProject(randomRequest(rand.New(rand.NewSource(int64(workerID*RequestCount + i)))))
	})

	// Phase 2: one request repeated; with Redis enabled these are cache hits.
	fmt.Println("\n♻️ Phase 2: Repeated projection...")
	repeated := randomRequest(rand.New(rand.NewSource(1)))
	runTest("warm", RequestCount, func(int, int) (bool, error) {
		return sendProject(repeated)
	})

	fmt.Println("\n✅ Load Test Complete!")
}

func runTest(name string, totalOps int, opFunc func(workerID, i int) (bool, error)) {
	var wg sync.WaitGroup
	var hits, failures atomic.Int64
	start := time.Now()

	opsPerWorker := totalOps / Concurrency

	for w := 0; w < Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				hit, err := opFunc(workerID, i)
				if err != nil {
					failures.Add(1)
					fmt.Printf("❌ %s error: %v\n", name, err)
					continue
				}
				if hit {
					hits.Add(1)
				}
			}
		}(w)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(totalOps) / duration.Seconds()

	fmt.Printf("⏱️ %s Duration: %s\n", name, duration)
	fmt.Printf("📈 %s QPS: %.2f | cache hits: %d | failures: %d\n", name, qps, hits.Load(), failures.Load())
}

var client = &http.Client{Timeout: 2 * time.Minute}

// sendProject posts one request and reports whether it was served from cache.
func sendProject(body *projection.Request) (bool, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequest(http.MethodPost, BaseURL+"/project", bytes.NewReader(jsonBody))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp.Header.Get("X-Cache") == "HIT", nil
}

func randomRequest(rng *rand.Rand) *projection.Request {
	req := &projection.Request{Embeddings: make([]projection.EmbeddingItem, Points)}
	for i := range req.Embeddings {
		vec := make(projection.Vector, Dimension)
		for d := range vec {
			vec[d] = rng.Float64()
		}
		req.Embeddings[i] = projection.EmbeddingItem{ID: projection.StringID(fmt.Sprintf("load-%d", i)), Embedding: vec}
	}
	return req
}
