package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ideavaultapp/ideavault-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags for the current user",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag owned by the current user",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Replaces a tag's name and color",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and removes it from all ideas",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}/ideas",
		Summary:     "Get tag ideas",
		Description: "Returns the ideas linked to this tag, newest first",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTagIdeas)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Authorization string `header:"Authorization"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Tag name"`
	Color     string    `json:"color" doc:"Display color (red, blue, green, yellow, default)"`
	IdeaCount int       `json:"idea_count" doc:"Number of ideas currently linked to the tag"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body TagListResponse
}

// TagRequest is the request body for creating or updating a tag.
type TagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50" doc:"Tag name"`
	Color string `json:"color,omitempty" enum:"red,blue,green,yellow,default" doc:"Display color (defaults to \"default\")"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          TagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// UpdateTagInput wraps the update tag request for Huma.
type UpdateTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
	Body          TagRequest
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// GetTagIdeasInput contains parameters for getting a tag's ideas.
type GetTagIdeasInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// TagIdeasResponse contains the ideas linked to a tag.
type TagIdeasResponse struct {
	Tag   TagResponse    `json:"tag" doc:"The tag"`
	Ideas []IdeaResponse `json:"ideas" doc:"Ideas linked to the tag, newest first"`
}

// TagIdeasOutput wraps the tag ideas response for Huma.
type TagIdeasOutput struct {
	Body TagIdeasResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Tag.IdeaCounts(ctx, tags)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: TagListResponse{Tags: mapTagResponses(tags, counts)}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.CreateTag(ctx, userID, input.Body.Name, domain.TagColor(input.Body.Color))
	if err != nil {
		return nil, err
	}

	// A freshly created tag has no links yet.
	return &TagOutput{Body: mapTagResponse(tag, 0)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.GetTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Tag.IdeaCount(ctx, tag.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTagResponse(tag, count)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.UpdateTag(ctx, userID, input.ID, input.Body.Name, domain.TagColor(input.Body.Color))
	if err != nil {
		return nil, err
	}

	count, err := s.services.Tag.IdeaCount(ctx, tag.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTagResponse(tag, count)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.RemoveTag(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleGetTagIdeas(ctx context.Context, input *GetTagIdeasInput) (*TagIdeasOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.GetTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	ideas, err := s.services.Idea.ListIdeasByTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagIdeasOutput{
		Body: TagIdeasResponse{
			Tag:   mapTagResponse(tag, len(ideas)),
			Ideas: mapIdeaResponses(ideas),
		},
	}, nil
}

// === Helpers ===

func mapTagResponse(tag *domain.Tag, ideaCount int) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		Color:     string(tag.Color),
		IdeaCount: ideaCount,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

func mapTagResponses(tags []*domain.Tag, counts map[string]int) []TagResponse {
	resp := make([]TagResponse, len(tags))
	for i, tag := range tags {
		resp[i] = mapTagResponse(tag, counts[tag.ID])
	}
	return resp
}
