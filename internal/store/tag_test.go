package store

import (
	"context"
	"testing"
	"time"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestTag(id, ownerID, name string, color domain.TagColor) *domain.Tag {
	tag := &domain.Tag{
		Syncable: domain.Syncable{ID: id},
		OwnerID:  ownerID,
		Name:     name,
		Color:    color,
	}
	tag.InitTimestamps()
	return tag
}

func TestCreateTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := makeTestTag("tag_test123", "user_test123", "hardware", domain.TagColorBlue)
	require.NoError(t, store.CreateTag(ctx, tag))

	retrieved, err := store.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, retrieved.ID)
	assert.Equal(t, "hardware", retrieved.Name)
	assert.Equal(t, domain.TagColorBlue, retrieved.Color)
	assert.Equal(t, "user_test123", retrieved.OwnerID)
}

func TestCreateTag_DuplicateID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := makeTestTag("tag_test123", "user_test123", "hardware", domain.TagColorBlue)
	require.NoError(t, store.CreateTag(ctx, tag))

	dup := makeTestTag("tag_test123", "user_test123", "software", domain.TagColorRed)
	err := store.CreateTag(ctx, dup)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestGetTag_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetTag(ctx, "tag_nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestUpdateTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := makeTestTag("tag_test123", "user_test123", "hardware", domain.TagColorDefault)
	require.NoError(t, store.CreateTag(ctx, tag))

	time.Sleep(10 * time.Millisecond)

	tag.Name = "electronics"
	tag.Color = domain.TagColorGreen
	require.NoError(t, store.UpdateTag(ctx, tag))

	updated, err := store.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "electronics", updated.Name)
	assert.Equal(t, domain.TagColorGreen, updated.Color)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestUpdateTag_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := makeTestTag("tag_nonexistent", "user_test123", "ghost", domain.TagColorDefault)
	err := store.UpdateTag(ctx, tag)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestListTagsByOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	names := []string{"alpha", "beta", "gamma"}
	for i, name := range names {
		tag := makeTestTag("tag_"+name, "user_owner1", name, domain.TagColorDefault)
		require.NoError(t, store.CreateTag(ctx, tag))
		if i < len(names)-1 {
			time.Sleep(2 * time.Millisecond)
		}
	}

	other := makeTestTag("tag_other", "user_owner2", "other", domain.TagColorRed)
	require.NoError(t, store.CreateTag(ctx, other))

	tags, err := store.ListTagsByOwner(ctx, "user_owner1")
	require.NoError(t, err)
	require.Len(t, tags, 3)

	// Creation order is preserved
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "beta", tags[1].Name)
	assert.Equal(t, "gamma", tags[2].Name)
}

func TestListTagsByOwner_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tags, err := store.ListTagsByOwner(ctx, "user_notags")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDeleteTag_CascadesLinks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := makeTestTag("tag_test123", "user_test123", "hardware", domain.TagColorBlue)
	require.NoError(t, store.CreateTag(ctx, tag))

	idea1 := makeTestIdea("idea_1", "user_test123", "First")
	idea2 := makeTestIdea("idea_2", "user_test123", "Second")
	require.NoError(t, store.CreateIdea(ctx, idea1))
	require.NoError(t, store.CreateIdea(ctx, idea2))

	now := time.Now().Unix()
	require.NoError(t, store.AddIdeaTag(ctx, idea1.ID, tag.ID, now))
	require.NoError(t, store.AddIdeaTag(ctx, idea2.ID, tag.ID, now))

	linkedIdeaIDs, err := store.DeleteTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"idea_1", "idea_2"}, linkedIdeaIDs)

	_, err = store.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)

	// Forward indexes on ideas are cleaned up
	tagIDs, err := store.GetTagIDsForIdea(ctx, idea1.ID)
	require.NoError(t, err)
	assert.Empty(t, tagIDs)

	// Owner listing no longer contains the tag
	tags, err := store.ListTagsByOwner(ctx, "user_test123")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDeleteTag_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.DeleteTag(ctx, "tag_nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestCountIdeasForTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	now := time.Now().Unix()
	require.NoError(t, store.AddIdeaTag(ctx, "idea_1", "tag_1", now))
	require.NoError(t, store.AddIdeaTag(ctx, "idea_2", "tag_1", now))

	count, err := store.CountIdeasForTag(ctx, "tag_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountIdeasForTag(ctx, "tag_unused")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
