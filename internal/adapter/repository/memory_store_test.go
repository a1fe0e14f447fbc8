package repository

import (
	"context"
	"testing"
	"time"

	"knowledge-qa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &domain.Document{ID: "b", Name: "B.txt", Content: "beta", UploadedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.Document{ID: "a", Name: "A.txt", Content: "alpha", UploadedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.Document{ID: "c", Name: "C.txt", Content: "gamma", UploadedAt: base}))
	assert.Error(t, repo.Create(ctx, &domain.Document{ID: "a"}))

	refs, err := repo.ListRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentRef{
		{ID: "a", Name: "A.txt", Content: "alpha"},
		{ID: "c", Name: "C.txt", Content: "gamma"},
		{ID: "b", Name: "B.txt", Content: "beta"},
	}, refs)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].ID)

	doc, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	doc.Content = "mutated"
	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", again.Content)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), domain.ErrDocumentNotFound)
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.NoError(t, repo.Ping(ctx))
}

func TestMemoryHistoryRepository_Recent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Save(ctx, &domain.QARecord{ID: q, Question: q, AskedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "second", got[1].ID)

	all, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
