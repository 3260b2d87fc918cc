package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
	domainerrors "github.com/ideavaultapp/ideavault-server/internal/errors"
	"github.com/ideavaultapp/ideavault-server/internal/id"
	"github.com/ideavaultapp/ideavault-server/internal/sse"
	"github.com/ideavaultapp/ideavault-server/internal/store"
)

// TagService orchestrates tag CRUD. Tags belong to exactly one user;
// duplicate names per owner are allowed, so there is no uniqueness check.
type TagService struct {
	store      *store.Store
	sseManager *sse.Manager
	search     *SearchService
	logger     *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, sseManager *sse.Manager, search *SearchService, logger *slog.Logger) *TagService {
	return &TagService{
		store:      store,
		sseManager: sseManager,
		search:     search,
		logger:     logger,
	}
}

// CreateTag creates a tag for the owner.
// The name is trimmed and required; an empty color defaults to "default".
func (s *TagService) CreateTag(ctx context.Context, ownerID, name string, color domain.TagColor) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("tag name is required")
	}

	if color == "" {
		color = domain.TagColorDefault
	}
	if !domain.ValidTagColor(color) {
		return nil, domainerrors.Validationf("invalid tag color %q", color)
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{
		Syncable: domain.Syncable{
			ID: tagID,
		},
		OwnerID: ownerID,
		Name:    name,
		Color:   color,
	}
	tag.InitTimestamps()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created",
		"tag_id", tagID,
		"owner_id", ownerID,
		"color", color,
	)

	s.sseManager.Emit(sse.NewTagCreatedEvent(tag))

	return tag, nil
}

// GetTag returns a tag owned by ownerID.
func (s *TagService) GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	return s.getOwnedTag(ctx, ownerID, tagID)
}

// UpdateTag replaces a tag's name and color.
func (s *TagService) UpdateTag(ctx context.Context, ownerID, tagID, name string, color domain.TagColor) (*domain.Tag, error) {
	tag, err := s.getOwnedTag(ctx, ownerID, tagID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("tag name is required")
	}

	if color == "" {
		color = domain.TagColorDefault
	}
	if !domain.ValidTagColor(color) {
		return nil, domainerrors.Validationf("invalid tag color %q", color)
	}

	tag.Name = name
	tag.Color = color

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.logger.Info("tag updated",
		"tag_id", tagID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewTagUpdatedEvent(tag))

	// Tag names are denormalized into the search index.
	s.reindexIdeasForTag(ctx, tagID)

	return tag, nil
}

// RemoveTag deletes a tag and all of its idea links.
func (s *TagService) RemoveTag(ctx context.Context, ownerID, tagID string) error {
	if _, err := s.getOwnedTag(ctx, ownerID, tagID); err != nil {
		return err
	}

	linkedIdeaIDs, err := s.store.DeleteTag(ctx, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.logger.Info("tag deleted",
		"tag_id", tagID,
		"owner_id", ownerID,
		"linked_ideas", len(linkedIdeaIDs),
	)

	s.sseManager.Emit(sse.NewTagDeletedEvent(ownerID, tagID, linkedIdeaIDs))

	// Previously linked ideas still carry the tag name in the index.
	for _, ideaID := range linkedIdeaIDs {
		s.reindexIdea(ctx, ideaID)
	}

	return nil
}

// ListTags returns the owner's tags in creation order.
func (s *TagService) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTagsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// IdeaCount reports how many ideas are currently linked to a tag.
// Callers are expected to hold an ownership-checked tag.
func (s *TagService) IdeaCount(ctx context.Context, tagID string) (int, error) {
	count, err := s.store.CountIdeasForTag(ctx, tagID)
	if err != nil {
		return 0, fmt.Errorf("count ideas for tag: %w", err)
	}
	return count, nil
}

// IdeaCounts returns the linked-idea count for each tag, keyed by tag ID.
func (s *TagService) IdeaCounts(ctx context.Context, tags []*domain.Tag) (map[string]int, error) {
	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		count, err := s.store.CountIdeasForTag(ctx, tag.ID)
		if err != nil {
			return nil, fmt.Errorf("count ideas for tag: %w", err)
		}
		counts[tag.ID] = count
	}
	return counts, nil
}

// getOwnedTag fetches a tag and verifies ownership.
// A tag belonging to a different user reports NotFound, not Forbidden,
// so tag IDs can't be probed across accounts.
func (s *TagService) getOwnedTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if tag.OwnerID != ownerID {
		return nil, domainerrors.NotFound("tag not found")
	}
	return tag, nil
}

// reindexIdeasForTag refreshes the search documents of every idea linked to tagID.
func (s *TagService) reindexIdeasForTag(ctx context.Context, tagID string) {
	if s.search == nil {
		return
	}

	ideaIDs, err := s.store.GetIdeaIDsForTag(ctx, tagID)
	if err != nil {
		s.logger.Warn("failed to list ideas for tag reindex", "tag_id", tagID, "error", err)
		return
	}

	for _, ideaID := range ideaIDs {
		s.reindexIdea(ctx, ideaID)
	}
}

// reindexIdea refreshes a single idea's search document, best effort.
func (s *TagService) reindexIdea(ctx context.Context, ideaID string) {
	if s.search == nil {
		return
	}

	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return
	}

	if err := s.search.IndexIdea(ctx, idea); err != nil {
		s.logger.Warn("failed to reindex idea", "idea_id", ideaID, "error", err)
	}
}
