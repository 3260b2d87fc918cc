package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
	domainerrors "github.com/ideavaultapp/ideavault-server/internal/errors"
	"github.com/ideavaultapp/ideavault-server/internal/id"
	"github.com/ideavaultapp/ideavault-server/internal/sse"
	"github.com/ideavaultapp/ideavault-server/internal/store"
)

// IdeaService orchestrates the idea lifecycle: CRUD, state transitions,
// ranking, and tag association. Every operation is owner-scoped.
type IdeaService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewIdeaService creates a new idea service.
func NewIdeaService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *IdeaService {
	return &IdeaService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// CreateIdea creates a new idea in the initial "idea" state.
// The title is trimmed and required; validation fails before any
// persistence call. The description is trimmed and may be empty.
func (s *IdeaService) CreateIdea(ctx context.Context, ownerID, title, description string) (*domain.Idea, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainerrors.Validation("title is required")
	}
	description = strings.TrimSpace(description)

	ideaID, err := id.Generate("idea")
	if err != nil {
		return nil, fmt.Errorf("generate idea ID: %w", err)
	}

	idea := &domain.Idea{
		Syncable: domain.Syncable{
			ID: ideaID,
		},
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		State:       domain.StateIdea,
		Ranked:      false,
	}
	idea.InitTimestamps()

	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}

	s.logger.Info("idea created",
		"idea_id", ideaID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewIdeaCreatedEvent(idea))

	return idea, nil
}

// UpdateIdeaRequest contains optional fields for a partial idea update.
// Nil fields are left unchanged.
type UpdateIdeaRequest struct {
	Title       *string
	Description *string
	State       *domain.IdeaState
}

// UpdateIdea applies a partial update to an idea.
// A missing idea or one owned by another user never reports silent
// success: it fails with NotFound or Forbidden respectively.
func (s *IdeaService) UpdateIdea(ctx context.Context, ownerID, ideaID string, req UpdateIdeaRequest) (*domain.Idea, error) {
	idea, err := s.getOwnedIdea(ctx, ownerID, ideaID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domainerrors.Validation("title is required")
		}
		idea.Title = title
	}

	if req.Description != nil {
		idea.Description = strings.TrimSpace(*req.Description)
	}

	if req.State != nil {
		if !domain.ValidIdeaState(*req.State) {
			return nil, domainerrors.InvalidStatef("unknown idea state %q", *req.State)
		}
		idea.State = *req.State
	}

	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}

	s.logger.Info("idea updated",
		"idea_id", ideaID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewIdeaUpdatedEvent(idea))

	return idea, nil
}

// RemoveIdea deletes an idea, cascading its tag links and removing it
// from the search index.
func (s *IdeaService) RemoveIdea(ctx context.Context, ownerID, ideaID string) error {
	if _, err := s.getOwnedIdea(ctx, ownerID, ideaID); err != nil {
		return err
	}

	if err := s.store.DeleteIdea(ctx, ideaID); err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}

	s.logger.Info("idea deleted",
		"idea_id", ideaID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewIdeaDeletedEvent(ownerID, ideaID))

	return nil
}

// GetIdea returns a single idea owned by ownerID.
func (s *IdeaService) GetIdea(ctx context.Context, ownerID, ideaID string) (*domain.Idea, error) {
	return s.getOwnedIdea(ctx, ownerID, ideaID)
}

// ListIdeas returns all of the owner's ideas, newest first.
func (s *IdeaService) ListIdeas(ctx context.Context, ownerID string) ([]*domain.Idea, error) {
	ideas, err := s.store.ListIdeasByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

// ListIdeasByState returns the owner's ideas in one lifecycle state, newest first.
func (s *IdeaService) ListIdeasByState(ctx context.Context, ownerID string, state domain.IdeaState) ([]*domain.Idea, error) {
	if !domain.ValidIdeaState(state) {
		return nil, domainerrors.InvalidStatef("unknown idea state %q", state)
	}

	all, err := s.store.ListIdeasByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	ideas := make([]*domain.Idea, 0, len(all))
	for _, idea := range all {
		if idea.State == state {
			ideas = append(ideas, idea)
		}
	}
	return ideas, nil
}

// ListIdeasByTag returns the owner's ideas linked to a tag, newest first.
func (s *IdeaService) ListIdeasByTag(ctx context.Context, ownerID, tagID string) ([]*domain.Idea, error) {
	// Verify the tag exists and belongs to the owner.
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

	ideaIDs, err := s.store.GetIdeaIDsForTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("list ideas for tag: %w", err)
	}

	ideas := make([]*domain.Idea, 0, len(ideaIDs))
	for _, ideaID := range ideaIDs {
		idea, err := s.store.GetIdea(ctx, ideaID)
		if err != nil {
			// Dangling link; the idea was deleted out from under the index.
			continue
		}
		ideas = append(ideas, idea)
	}

	sortIdeasNewestFirst(ideas)
	return ideas, nil
}

// SetIdeaState moves an idea to a new lifecycle state.
// The state machine is total: any of the five states can transition to
// any other. Only the state field is mutated.
func (s *IdeaService) SetIdeaState(ctx context.Context, ownerID, ideaID string, newState domain.IdeaState) (*domain.Idea, error) {
	if !domain.ValidIdeaState(newState) {
		return nil, domainerrors.InvalidStatef("unknown idea state %q", newState)
	}

	idea, err := s.getOwnedIdea(ctx, ownerID, ideaID)
	if err != nil {
		return nil, err
	}

	oldState := idea.State
	idea.State = newState

	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}

	s.logger.Info("idea state changed",
		"idea_id", ideaID,
		"owner_id", ownerID,
		"from", oldState,
		"to", newState,
	)

	s.sseManager.Emit(sse.NewIdeaStateChangedEvent(idea))

	return idea, nil
}

// SetIdeaExecuted toggles between the execution and executed states:
// true moves the idea to executed, false back to execution. Idempotent.
func (s *IdeaService) SetIdeaExecuted(ctx context.Context, ownerID, ideaID string, executed bool) (*domain.Idea, error) {
	newState := domain.StateExecution
	if executed {
		newState = domain.StateExecuted
	}
	return s.SetIdeaState(ctx, ownerID, ideaID, newState)
}

// RankIdea applies a full set of sub-ratings to an idea.
// Each rating must be in [1,10]. The derived score is the rounded mean
// (halves away from zero). Re-ranking overwrites the previous ratings;
// the lifecycle state is never touched. Idempotent for identical inputs.
func (s *IdeaService) RankIdea(ctx context.Context, ownerID, ideaID string, feasibility, impact, scalability, excitement int) (*domain.Idea, error) {
	for _, rating := range []struct {
		name  string
		value int
	}{
		{"feasibility", feasibility},
		{"impact", impact},
		{"scalability", scalability},
		{"excitement", excitement},
	} {
		if rating.value < 1 || rating.value > 10 {
			return nil, domainerrors.Validationf("%s must be between 1 and 10", rating.name)
		}
	}

	idea, err := s.getOwnedIdea(ctx, ownerID, ideaID)
	if err != nil {
		return nil, err
	}

	idea.Rank(feasibility, impact, scalability, excitement)

	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}

	s.logger.Info("idea ranked",
		"idea_id", ideaID,
		"owner_id", ownerID,
		"score", idea.Score(),
	)

	s.sseManager.Emit(sse.NewIdeaRankedEvent(idea))

	return idea, nil
}

// IdeaTag is a tag link with the nested tag detail.
type IdeaTag struct {
	domain.IdeaTagLink
	Tag *domain.Tag `json:"tag"`
}

// AddIdeaTag links a tag to an idea.
// Both must exist and belong to the owner. Linking an already-linked
// tag fails with a DuplicateTag error.
func (s *IdeaService) AddIdeaTag(ctx context.Context, ownerID, ideaID, tagID string) (*IdeaTag, error) {
	if _, err := s.getOwnedIdea(ctx, ownerID, ideaID); err != nil {
		return nil, err
	}

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

	createdAt := time.Now().Unix()
	if err := s.store.AddIdeaTag(ctx, ideaID, tagID, createdAt); err != nil {
		if errors.Is(err, store.ErrLinkExists) {
			return nil, domainerrors.DuplicateTag("tag is already linked to this idea")
		}
		return nil, fmt.Errorf("add idea tag: %w", err)
	}

	// Refresh the idea's search document with the new tag name.
	if idea, err := s.store.GetIdea(ctx, ideaID); err == nil {
		if err := s.store.UpdateIdea(ctx, idea); err != nil {
			s.logger.Warn("failed to refresh idea after tagging", "idea_id", ideaID, "error", err)
		}
	}

	s.logger.Info("idea tag added",
		"idea_id", ideaID,
		"tag_id", tagID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewIdeaTagAddedEvent(ownerID, ideaID, tagID))

	return &IdeaTag{
		IdeaTagLink: domain.IdeaTagLink{
			IdeaID:    ideaID,
			TagID:     tagID,
			CreatedAt: createdAt,
		},
		Tag: tag,
	}, nil
}

// RemoveIdeaTag unlinks a tag from an idea.
// Removing an absent link reports success.
func (s *IdeaService) RemoveIdeaTag(ctx context.Context, ownerID, ideaID, tagID string) error {
	if _, err := s.getOwnedIdea(ctx, ownerID, ideaID); err != nil {
		return err
	}

	if err := s.store.RemoveIdeaTag(ctx, ideaID, tagID); err != nil {
		return fmt.Errorf("remove idea tag: %w", err)
	}

	// Refresh the idea's search document without the removed tag.
	if idea, err := s.store.GetIdea(ctx, ideaID); err == nil {
		if err := s.store.UpdateIdea(ctx, idea); err != nil {
			s.logger.Warn("failed to refresh idea after untagging", "idea_id", ideaID, "error", err)
		}
	}

	s.logger.Info("idea tag removed",
		"idea_id", ideaID,
		"tag_id", tagID,
		"owner_id", ownerID,
	)

	s.sseManager.Emit(sse.NewIdeaTagRemovedEvent(ownerID, ideaID, tagID))

	return nil
}

// ListIdeaTags returns the tags linked to an idea.
func (s *IdeaService) ListIdeaTags(ctx context.Context, ownerID, ideaID string) ([]*domain.Tag, error) {
	if _, err := s.getOwnedIdea(ctx, ownerID, ideaID); err != nil {
		return nil, err
	}

	tags, err := s.store.GetTagsForIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("get tags for idea: %w", err)
	}
	return tags, nil
}

// AvailableTags returns the owner's tags not yet linked to an idea,
// preserving the order of the full tag list.
func (s *IdeaService) AvailableTags(ctx context.Context, ownerID, ideaID string) ([]*domain.Tag, error) {
	if _, err := s.getOwnedIdea(ctx, ownerID, ideaID); err != nil {
		return nil, err
	}

	allTags, err := s.store.ListTagsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	currentTags, err := s.store.GetTagsForIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("get tags for idea: %w", err)
	}

	return availableTags(allTags, currentTags), nil
}

// availableTags is the pure set difference allTags \ currentTags,
// preserving the order of allTags.
func availableTags(allTags, currentTags []*domain.Tag) []*domain.Tag {
	linked := make(map[string]struct{}, len(currentTags))
	for _, tag := range currentTags {
		linked[tag.ID] = struct{}{}
	}

	available := make([]*domain.Tag, 0, len(allTags))
	for _, tag := range allTags {
		if _, ok := linked[tag.ID]; !ok {
			available = append(available, tag)
		}
	}
	return available
}

// getOwnedIdea fetches an idea and verifies ownership.
// A missing idea reports NotFound; someone else's idea reports Forbidden.
func (s *IdeaService) getOwnedIdea(ctx context.Context, ownerID, ideaID string) (*domain.Idea, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		if errors.Is(err, store.ErrIdeaNotFound) {
			return nil, domainerrors.NotFound("idea not found")
		}
		return nil, fmt.Errorf("get idea: %w", err)
	}
	if idea.OwnerID != ownerID {
		return nil, domainerrors.Forbidden("idea belongs to another user")
	}
	return idea, nil
}

// sortIdeasNewestFirst orders ideas by creation time descending.
func sortIdeasNewestFirst(ideas []*domain.Idea) {
	sort.Slice(ideas, func(i, j int) bool {
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})
}
