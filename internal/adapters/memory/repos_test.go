package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/agrobot/internal/adapters/memory"
	"github.com/samirrijal/agrobot/internal/core/domain"
)

func TestMarkerRepo(t *testing.T) {
	repo := memory.NewMarkerRepo()
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	in := []domain.Marker{{ID: "a", Lat: 1, Lng: 2, Title: "Obstacle 1"}}
	doc := &domain.MarkerDocument{UserID: "u1", Markers: in}
	require.NoError(t, repo.Put(ctx, doc))
	assert.False(t, doc.UpdatedAt.IsZero())

	in[0].Title = "changed"
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Obstacle 1", got.Markers[0].Title, "stored copy must not alias the caller")

	got.Markers[0].Title = "changed"
	again, _ := repo.Get(ctx, "u1")
	assert.Equal(t, "Obstacle 1", again.Markers[0].Title, "returned copy must not alias the store")

	require.NoError(t, repo.Put(ctx, &domain.MarkerDocument{UserID: "u1"}))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, got.Markers)
	assert.Empty(t, got.Markers)
}

func TestMessageRepo(t *testing.T) {
	repo := memory.NewMessageRepo()
	msg := &domain.ContactMessage{FirstName: "a", LastName: "b", Email: "c", Message: "d"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.Len(t, repo.List(), 1)
}
