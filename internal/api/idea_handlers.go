package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ideavaultapp/ideavault-server/internal/domain"
	"github.com/ideavaultapp/ideavault-server/internal/service"
)

func (s *Server) registerIdeaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas",
		Summary:     "List ideas",
		Description: "Returns the current user's ideas, newest first. Optionally filtered by lifecycle state.",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIdeas)

	huma.Register(s.api, huma.Operation{
		OperationID: "createIdea",
		Method:      http.MethodPost,
		Path:        "/api/v1/ideas",
		Summary:     "Create idea",
		Description: "Creates a new idea in the initial state",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIdea",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Get idea",
		Description: "Returns an idea by ID",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIdea",
		Method:      http.MethodPatch,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Update idea",
		Description: "Partially updates an idea's title, description, or state",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteIdea",
		Method:      http.MethodDelete,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Delete idea",
		Description: "Deletes an idea and its tag links",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "setIdeaState",
		Method:      http.MethodPut,
		Path:        "/api/v1/ideas/{id}/state",
		Summary:     "Set idea state",
		Description: "Moves an idea to any lifecycle state",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetIdeaState)

	huma.Register(s.api, huma.Operation{
		OperationID: "setIdeaExecuted",
		Method:      http.MethodPut,
		Path:        "/api/v1/ideas/{id}/executed",
		Summary:     "Toggle executed",
		Description: "Marks an idea as executed, or moves it back to execution",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetIdeaExecuted)

	huma.Register(s.api, huma.Operation{
		OperationID: "rankIdea",
		Method:      http.MethodPost,
		Path:        "/api/v1/ideas/{id}/rank",
		Summary:     "Rank idea",
		Description: "Rates an idea on four criteria and computes its overall score",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRankIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIdeaTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}/tags",
		Summary:     "List idea tags",
		Description: "Returns the tags linked to an idea",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIdeaTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAvailableTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}/tags/available",
		Summary:     "List available tags",
		Description: "Returns the user's tags not yet linked to the idea",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAvailableTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "addIdeaTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/ideas/{id}/tags",
		Summary:     "Link tag to idea",
		Description: "Links one of the user's tags to an idea",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddIdeaTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeIdeaTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/ideas/{id}/tags/{tagID}",
		Summary:     "Unlink tag from idea",
		Description: "Removes a tag link from an idea. Removing an absent link succeeds.",
		Tags:        []string{"Ideas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveIdeaTag)
}

// === DTOs ===

// RankingResponse contains the four sub-ratings and computed score.
type RankingResponse struct {
	Feasibility int `json:"feasibility" doc:"Feasibility rating (1-10)"`
	Impact      int `json:"impact" doc:"Impact rating (1-10)"`
	Scalability int `json:"scalability" doc:"Scalability rating (1-10)"`
	Excitement  int `json:"excitement" doc:"Excitement rating (1-10)"`
	Score       int `json:"score" doc:"Overall score, rounded mean of the four ratings"`
}

// IdeaResponse contains idea data in API responses.
type IdeaResponse struct {
	ID          string           `json:"id" doc:"Idea ID"`
	Title       string           `json:"title" doc:"Idea title"`
	Description string           `json:"description,omitempty" doc:"Idea description"`
	State       string           `json:"state" doc:"Lifecycle state (idea, doLater, onHold, execution, executed)"`
	Ranked      bool             `json:"ranked" doc:"Whether the idea has been ranked"`
	Ranking     *RankingResponse `json:"ranking,omitempty" doc:"Ranking details, present iff ranked"`
	CreatedAt   time.Time        `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time        `json:"updated_at" doc:"Last update time"`
}

// ListIdeasInput contains parameters for listing ideas.
type ListIdeasInput struct {
	Authorization string `header:"Authorization"`
	State         string `query:"state" enum:"idea,doLater,onHold,execution,executed" doc:"Filter by lifecycle state"`
}

// ListIdeasResponse contains a list of ideas.
type ListIdeasResponse struct {
	Ideas []IdeaResponse `json:"ideas" doc:"List of ideas, newest first"`
}

// ListIdeasOutput wraps the list ideas response for Huma.
type ListIdeasOutput struct {
	Body ListIdeasResponse
}

// CreateIdeaRequest is the request body for creating an idea.
type CreateIdeaRequest struct {
	Title       string `json:"title" validate:"required,max=500" doc:"Idea title"`
	Description string `json:"description,omitempty" validate:"omitempty,max=10000" doc:"Idea description"`
}

// CreateIdeaInput wraps the create idea request for Huma.
type CreateIdeaInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateIdeaRequest
}

// IdeaOutput wraps the idea response for Huma.
type IdeaOutput struct {
	Body IdeaResponse
}

// GetIdeaInput contains parameters for getting an idea.
type GetIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
}

// UpdateIdeaRequest is the request body for updating an idea.
type UpdateIdeaRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=500" doc:"New title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=10000" doc:"New description"`
	State       *string `json:"state,omitempty" enum:"idea,doLater,onHold,execution,executed" doc:"New lifecycle state"`
}

// UpdateIdeaInput wraps the update idea request for Huma.
type UpdateIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          UpdateIdeaRequest
}

// DeleteIdeaInput contains parameters for deleting an idea.
type DeleteIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
}

// SetIdeaStateInput wraps the state change request for Huma.
type SetIdeaStateInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          struct {
		State string `json:"state" validate:"required" doc:"Target lifecycle state"`
	}
}

// SetIdeaExecutedInput wraps the executed toggle request for Huma.
type SetIdeaExecutedInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          struct {
		Executed bool `json:"executed" doc:"True marks the idea executed, false moves it back to execution"`
	}
}

// RankIdeaRequest is the request body for ranking an idea.
type RankIdeaRequest struct {
	Feasibility int `json:"feasibility" validate:"required,gte=1,lte=10" doc:"Feasibility rating (1-10)"`
	Impact      int `json:"impact" validate:"required,gte=1,lte=10" doc:"Impact rating (1-10)"`
	Scalability int `json:"scalability" validate:"required,gte=1,lte=10" doc:"Scalability rating (1-10)"`
	Excitement  int `json:"excitement" validate:"required,gte=1,lte=10" doc:"Excitement rating (1-10)"`
}

// RankIdeaInput wraps the rank request for Huma.
type RankIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          RankIdeaRequest
}

// IdeaTagsInput contains parameters for listing an idea's tags.
type IdeaTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
}

// TagListResponse contains a list of tags.
type TagListResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// TagListOutput wraps the tag list response for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// AddIdeaTagInput wraps the link tag request for Huma.
type AddIdeaTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          struct {
		TagID string `json:"tag_id" validate:"required,max=100" doc:"Tag ID to link"`
	}
}

// IdeaTagResponse contains an idea-tag link with the tag embedded.
type IdeaTagResponse struct {
	IdeaID    string      `json:"idea_id" doc:"Idea ID"`
	TagID     string      `json:"tag_id" doc:"Tag ID"`
	CreatedAt int64       `json:"created_at" doc:"Link creation time (unix seconds)"`
	Tag       TagResponse `json:"tag" doc:"Linked tag"`
}

// IdeaTagOutput wraps the idea-tag link response for Huma.
type IdeaTagOutput struct {
	Body IdeaTagResponse
}

// RemoveIdeaTagInput contains parameters for unlinking a tag.
type RemoveIdeaTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	TagID         string `path:"tagID" doc:"Tag ID to unlink"`
}

// === Handlers ===

func (s *Server) handleListIdeas(ctx context.Context, input *ListIdeasInput) (*ListIdeasOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var ideas []*domain.Idea
	if input.State != "" {
		ideas, err = s.services.Idea.ListIdeasByState(ctx, userID, domain.IdeaState(input.State))
	} else {
		ideas, err = s.services.Idea.ListIdeas(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return &ListIdeasOutput{Body: ListIdeasResponse{Ideas: mapIdeaResponses(ideas)}}, nil
}

func (s *Server) handleCreateIdea(ctx context.Context, input *CreateIdeaInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.CreateIdea(ctx, userID, input.Body.Title, input.Body.Description)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleGetIdea(ctx context.Context, input *GetIdeaInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.GetIdea(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleUpdateIdea(ctx context.Context, input *UpdateIdeaInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateIdeaRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	}
	if input.Body.State != nil {
		state := domain.IdeaState(*input.Body.State)
		req.State = &state
	}

	idea, err := s.services.Idea.UpdateIdea(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleDeleteIdea(ctx context.Context, input *DeleteIdeaInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Idea.RemoveIdea(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Idea deleted"}}, nil
}

func (s *Server) handleSetIdeaState(ctx context.Context, input *SetIdeaStateInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.SetIdeaState(ctx, userID, input.ID, domain.IdeaState(input.Body.State))
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleSetIdeaExecuted(ctx context.Context, input *SetIdeaExecutedInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.SetIdeaExecuted(ctx, userID, input.ID, input.Body.Executed)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleRankIdea(ctx context.Context, input *RankIdeaInput) (*IdeaOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.RankIdea(ctx, userID, input.ID,
		input.Body.Feasibility,
		input.Body.Impact,
		input.Body.Scalability,
		input.Body.Excitement,
	)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdeaResponse(idea)}, nil
}

func (s *Server) handleListIdeaTags(ctx context.Context, input *IdeaTagsInput) (*TagListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Idea.ListIdeaTags(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Tag.IdeaCounts(ctx, tags)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: mapTagResponses(tags, counts)}}, nil
}

func (s *Server) handleListAvailableTags(ctx context.Context, input *IdeaTagsInput) (*TagListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Idea.AvailableTags(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Tag.IdeaCounts(ctx, tags)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: mapTagResponses(tags, counts)}}, nil
}

func (s *Server) handleAddIdeaTag(ctx context.Context, input *AddIdeaTagInput) (*IdeaTagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	link, err := s.services.Idea.AddIdeaTag(ctx, userID, input.ID, input.Body.TagID)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Tag.IdeaCount(ctx, link.TagID)
	if err != nil {
		return nil, err
	}

	return &IdeaTagOutput{
		Body: IdeaTagResponse{
			IdeaID:    link.IdeaID,
			TagID:     link.TagID,
			CreatedAt: link.CreatedAt,
			Tag:       mapTagResponse(link.Tag, count),
		},
	}, nil
}

func (s *Server) handleRemoveIdeaTag(ctx context.Context, input *RemoveIdeaTagInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Idea.RemoveIdeaTag(ctx, userID, input.ID, input.TagID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag unlinked"}}, nil
}

// === Helpers ===

func mapIdeaResponse(idea *domain.Idea) IdeaResponse {
	resp := IdeaResponse{
		ID:          idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		State:       string(idea.State),
		Ranked:      idea.Ranked,
		CreatedAt:   idea.CreatedAt,
		UpdatedAt:   idea.UpdatedAt,
	}
	if idea.Ranking != nil {
		resp.Ranking = &RankingResponse{
			Feasibility: idea.Ranking.Feasibility,
			Impact:      idea.Ranking.Impact,
			Scalability: idea.Ranking.Scalability,
			Excitement:  idea.Ranking.Excitement,
			Score:       idea.Ranking.Score,
		}
	}
	return resp
}

func mapIdeaResponses(ideas []*domain.Idea) []IdeaResponse {
	resp := make([]IdeaResponse, len(ideas))
	for i, idea := range ideas {
		resp[i] = mapIdeaResponse(idea)
	}
	return resp
}
