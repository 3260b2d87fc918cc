// Package search provides full-text search functionality using Bleve.
// It enables searching an owner's ideas with fuzzy matching, state and
// tag filtering, and score range queries.
package search

import (
	"github.com/ideavaultapp/ideavault-server/internal/domain"
)

// DocType represents the type of document in the index.
type DocType string

// Document types for the search index.
const (
	DocTypeIdea DocType = "idea"
)

// SearchDocument is the document structure for the Bleve index.
//
// Design note: tag names are denormalized into idea documents so a
// single query can match on them. The trade-off is that a tag rename
// requires reindexing its linked ideas.
type SearchDocument struct {
	// Identity
	ID      string  `json:"id"`       // Original entity ID (idea_xxx)
	Type    DocType `json:"type"`     // Discriminator, always "idea" for now
	OwnerID string  `json:"owner_id"` // Used as a mandatory filter on every query

	// Primary searchable text
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Lifecycle state for exact filtering
	State string `json:"state"`

	// Tags - denormalized tag names for search and faceting
	Tags []string `json:"tags,omitempty"`

	// Ranking score for range queries and sorting (0 if unranked)
	Score int `json:"score,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"owner_id":   d.OwnerID,
		"title":      d.Title,
		"state":      d.State,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Score > 0 {
		m["score"] = d.Score
	}

	return m
}

// IdeaToSearchDocument converts a domain Idea to a SearchDocument.
// Tag names must be provided by the caller, as the search package
// shouldn't depend on store.
func IdeaToSearchDocument(idea *domain.Idea, tagNames []string) *SearchDocument {
	return &SearchDocument{
		ID:          idea.ID,
		Type:        DocTypeIdea,
		OwnerID:     idea.OwnerID,
		Title:       idea.Title,
		Description: idea.Description,
		State:       string(idea.State),
		Tags:        tagNames,
		Score:       idea.Score(),
		CreatedAt:   idea.CreatedAt.UnixMilli(),
		UpdatedAt:   idea.UpdatedAt.UnixMilli(),
	}
}
