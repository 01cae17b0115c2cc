package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

type fakeNodes struct {
	items     []projection.EmbeddingItem
	fetchErr  error
	updateErr error

	updated []projection.Result
	marked  []uuid.UUID
}

func (f *fakeNodes) FetchEmbeddings(_ context.Context, _ uuid.UUID) ([]projection.EmbeddingItem, error) {
	return f.items, f.fetchErr
}

func (f *fakeNodes) UpdatePositions(_ context.Context, results []projection.Result) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = results
	return nil
}

func (f *fakeNodes) MarkProjected(_ context.Context, userID uuid.UUID) error {
	f.marked = append(f.marked, userID)
	return nil
}

func testRunner() *projection.Runner {
	return projection.NewRunner(2, slog.New(slog.DiscardHandler))
}

func TestSync(t *testing.T) {
	nodes := &fakeNodes{items: []projection.EmbeddingItem{
		{ID: projection.StringID("n1"), Embedding: projection.Vector{1, 0, 0}},
		{ID: projection.StringID("n2"), Embedding: projection.Vector{0, 1, 0}},
		{ID: projection.StringID("n3"), Embedding: projection.Vector{0, 0, 1}},
		{ID: projection.StringID("n4"), Embedding: projection.Vector{1, 1, 0}},
	}}
	user := uuid.New()

	n, err := Sync(context.Background(), nodes, testRunner(), user, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Len(t, nodes.updated, 4)
	for i, r := range nodes.updated {
		require.Equal(t, nodes.items[i].ID.String(), r.ID.String())
		require.NotNil(t, r.Z, "sync always projects to 3D")
	}
	require.Equal(t, []uuid.UUID{user}, nodes.marked)
}

func TestSyncNoNodes(t *testing.T) {
	nodes := &fakeNodes{}
	_, err := Sync(context.Background(), nodes, testRunner(), uuid.New(), nil)
	require.ErrorIs(t, err, ErrNoNodes)
	require.Equal(t, "no nodes found for user", err.Error())
	require.Empty(t, nodes.marked)
}

func TestSyncFailures(t *testing.T) {
	boom := errors.New("boom")

	_, err := Sync(context.Background(), &fakeNodes{fetchErr: boom}, testRunner(), uuid.New(), nil)
	require.ErrorIs(t, err, boom)

	ragged := &fakeNodes{items: []projection.EmbeddingItem{
		{ID: projection.StringID("n1"), Embedding: projection.Vector{1, 0}},
		{ID: projection.StringID("n2"), Embedding: projection.Vector{1}},
	}}
	_, err = Sync(context.Background(), ragged, testRunner(), uuid.New(), nil)
	require.ErrorIs(t, err, projection.ErrDimensionMismatch)
	require.Nil(t, ragged.updated)

	failing := &fakeNodes{
		items: []projection.EmbeddingItem{
			{ID: projection.StringID("n1"), Embedding: projection.Vector{1, 0}},
			{ID: projection.StringID("n2"), Embedding: projection.Vector{0, 1}},
		},
		updateErr: boom,
	}
	_, err = Sync(context.Background(), failing, testRunner(), uuid.New(), nil)
	require.ErrorIs(t, err, boom)
	require.Empty(t, failing.marked)
}
