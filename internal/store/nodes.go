package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

const (
	fetchNodesSQL = `SELECT id::text, embedding::text FROM lkg_nodes
WHERE user_id = $1::uuid AND embedding IS NOT NULL
ORDER BY id`

	updateNodeSQL = `UPDATE lkg_nodes SET x = $1, y = $2, z = $3 WHERE id = $4::uuid`

	markProjectedSQL = `UPDATE lkg_recompute_metadata SET umap_computed = true
WHERE id = (
	SELECT id FROM lkg_recompute_metadata
	WHERE user_id = $1::uuid
	ORDER BY created_at DESC
	LIMIT 1
)`
)

// NodeStore maps knowledge graph nodes to projection items and back.
type NodeStore struct {
	db DB
}

func NewNodeStore(db DB) *NodeStore {
	return &NodeStore{db: db}
}

// FetchEmbeddings loads every embedded node of a user, ordered by id so
// repeated syncs feed the projector identical input.
func (s *NodeStore) FetchEmbeddings(ctx context.Context, userID uuid.UUID) ([]projection.EmbeddingItem, error) {
	rows, err := s.db.Query(ctx, fetchNodesSQL, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (projection.EmbeddingItem, error) {
		var id, raw string
		if err := row.Scan(&id, &raw); err != nil {
			return projection.EmbeddingItem{}, err
		}
		vec, err := ParseEmbedding(raw)
		if err != nil {
			return projection.EmbeddingItem{}, fmt.Errorf("node %s: %w", id, err)
		}
		return projection.EmbeddingItem{ID: projection.StringID(id), Embedding: vec}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	return items, nil
}

// UpdatePositions writes every result in one transaction. Either all
// nodes move or none do.
func (s *NodeStore) UpdatePositions(ctx context.Context, results []projection.Result) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, r := range results {
		var z any
		if r.Z != nil {
			z = *r.Z
		}
		batch.Queue(updateNodeSQL, r.X, r.Y, z, r.ID.String())
	}

	br := tx.SendBatch(ctx, batch)
	for i := range results {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("update node %s: %w", results[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit positions: %w", err)
	}
	return nil
}

// MarkProjected flags the user's most recent recompute run as having
// UMAP positions.
func (s *NodeStore) MarkProjected(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, markProjectedSQL, userID.String()); err != nil {
		return fmt.Errorf("mark projected: %w", err)
	}
	return nil
}
