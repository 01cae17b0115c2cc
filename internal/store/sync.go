package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

var ErrNoNodes = errors.New("no nodes found for user")

// Nodes is the persistence side of a sync, implemented by *NodeStore.
type Nodes interface {
	FetchEmbeddings(ctx context.Context, userID uuid.UUID) ([]projection.EmbeddingItem, error)
	UpdatePositions(ctx context.Context, results []projection.Result) error
	MarkProjected(ctx context.Context, userID uuid.UUID) error
}

// Sync projects all of a user's nodes into 3D with the cosine metric and
// stores the positions. It returns the number of nodes updated.
func Sync(ctx context.Context, nodes Nodes, runner *projection.Runner, userID uuid.UUID, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.NewString(), "user_id", userID.String())
	start := time.Now()

	logger.Info("Fetching embeddings")
	items, err := nodes.FetchEmbeddings(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, ErrNoNodes
	}
	logger.Info(fmt.Sprintf("Fetched %d nodes", len(items)))

	components := 3
	metric := "cosine"
	results, err := runner.Project(ctx, &projection.Request{
		Embeddings:  items,
		NComponents: &components,
		Metric:      &metric,
	})
	if err != nil {
		return 0, err
	}

	logger.Info(fmt.Sprintf("Updating %d node positions", len(results)))
	if err := nodes.UpdatePositions(ctx, results); err != nil {
		return 0, err
	}
	if err := nodes.MarkProjected(ctx, userID); err != nil {
		return 0, err
	}

	logger.Info("Sync complete", "elapsed", time.Since(start).Round(time.Millisecond))
	return len(results), nil
}
