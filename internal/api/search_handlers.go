package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ideavaultapp/ideavault-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search ideas",
		Description: "Full-text search over the current user's ideas with state, tag, and score filtering",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching ideas.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	States        string `query:"states" validate:"omitempty,max=100" doc:"Comma-separated lifecycle states to filter by (idea,doLater,onHold,execution,executed)"`
	Tags          string `query:"tags" validate:"omitempty,max=200" doc:"Comma-separated tag names to filter by"`
	MinScore      int    `query:"min_score" validate:"omitempty,gte=1,lte=10" doc:"Minimum ranking score"`
	MaxScore      int    `query:"max_score" validate:"omitempty,gte=1,lte=10" doc:"Maximum ranking score"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
	Sort          string `query:"sort" enum:"relevance,title,recent,score" doc:"Sort order (default relevance)"`
	Order         string `query:"order" enum:"asc,desc" doc:"Sort direction (default desc)"`
	Facets        bool   `query:"facets" doc:"Include state and tag facet counts"`
}

// SearchHitResult contains a single idea search result.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Idea ID"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Title      string            `json:"title" doc:"Idea title"`
	State      string            `json:"state,omitempty" doc:"Lifecycle state"`
	Tags       []string          `json:"tags,omitempty" doc:"Linked tag names"`
	IdeaScore  int               `json:"idea_score,omitempty" doc:"Ranking score (1-10, 0 if unranked)"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchFacets contains facet counts for filtering.
type SearchFacets struct {
	States []FacetCount `json:"states,omitempty" doc:"Lifecycle state facets"`
	Tags   []FacetCount `json:"tags,omitempty" doc:"Tag facets"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  int64             `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
	Facets *SearchFacets     `json:"facets,omitempty" doc:"Facet counts for filtering"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.OwnerID = userID
	params.States = splitCSV(input.States)
	params.Tags = splitCSV(input.Tags)
	params.MinScore = input.MinScore
	params.MaxScore = input.MaxScore
	params.IncludeFacets = input.Facets

	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	s.logger.Debug("Search completed",
		"query", input.Query,
		"total", result.Total,
		"hits", len(result.Hits),
		"took_ms", result.TookMs,
	)

	resp := SearchResponse{
		Query:  input.Query,
		Total:  int64(result.Total), //nolint:gosec // Safe: total count won't exceed int64
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}

	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:         hit.ID,
			Score:      hit.Score,
			Title:      hit.Title,
			State:      hit.State,
			Tags:       hit.Tags,
			IdeaScore:  hit.IdeaScore,
			Highlights: hit.Highlights,
		})
	}

	if input.Facets {
		resp.Facets = &SearchFacets{
			States: mapFacetCounts(result.Facets.States),
			Tags:   mapFacetCounts(result.Facets.Tags),
		}
	}

	return &SearchOutput{Body: resp}, nil
}

// === Helpers ===

// splitCSV splits a comma-separated query parameter, dropping empty entries.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var parts []string
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func mapFacetCounts(counts []search.FacetCount) []FacetCount {
	if len(counts) == 0 {
		return nil
	}
	mapped := make([]FacetCount, len(counts))
	for i, c := range counts {
		mapped[i] = FacetCount{Value: c.Value, Count: c.Count}
	}
	return mapped
}
