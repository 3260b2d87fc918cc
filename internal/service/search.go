package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
	"github.com/ideavaultapp/ideavault-server/internal/search"
	"github.com/ideavaultapp/ideavault-server/internal/store"
)

// SearchService bridges the search index with the data store.
// It implements store.SearchIndexer so idea writes keep the index
// current automatically.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query scoped to the given owner.
// The owner filter is mandatory; an empty OwnerID is rejected so no
// query can ever span accounts.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.OwnerID == "" {
		return nil, fmt.Errorf("search requires an owner")
	}
	return s.index.Search(ctx, params)
}

// IndexIdea indexes a single idea with its denormalized tag names.
// Call this when an idea is created or updated.
func (s *SearchService) IndexIdea(ctx context.Context, idea *domain.Idea) error {
	doc := s.buildIdeaDocument(ctx, idea)

	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed idea", "id", idea.ID, "title", idea.Title)
	return nil
}

// DeleteIdea removes an idea from the index.
func (s *SearchService) DeleteIdea(_ context.Context, ideaID string) error {
	return s.index.DeleteDocument(ideaID)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the store.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	// Rebuild index (drops existing)
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	ideas, err := s.store.ListAllIdeas(ctx)
	if err != nil {
		return fmt.Errorf("list ideas: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(ideas))
	for _, idea := range ideas {
		docs = append(docs, s.buildIdeaDocument(ctx, idea))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index ideas: %w", err)
		}
	}

	total, _ := s.index.DocumentCount()
	s.logger.Info("full reindex complete", "total_documents", total)

	return nil
}

// buildIdeaDocument creates a search document with denormalized tag names.
func (s *SearchService) buildIdeaDocument(ctx context.Context, idea *domain.Idea) *search.SearchDocument {
	tags, err := s.store.GetTagsForIdea(ctx, idea.ID)
	if err != nil {
		s.logger.Warn("failed to get tags for idea", "id", idea.ID, "error", err)
	}

	tagNames := make([]string, 0, len(tags))
	for _, tag := range tags {
		tagNames = append(tagNames, tag.Name)
	}

	return search.IdeaToSearchDocument(idea, tagNames)
}
