package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createIdea creates an idea through the API and returns its response body.
func (ts *testServer) createIdea(t *testing.T, token, title string) IdeaResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/ideas",
		"Authorization: Bearer "+token,
		map[string]any{"title": title},
	)
	require.Equal(t, http.StatusOK, resp.Code, "Create idea failed: %s", resp.Body.String())

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	require.True(t, envelope.Success)

	return envelope.Data
}

// createTag creates a tag through the API and returns its response body.
func (ts *testServer) createTag(t *testing.T, token, name, color string) TagResponse {
	t.Helper()

	body := map[string]any{"name": name}
	if color != "" {
		body["color"] = color
	}
	resp := ts.api.Post("/api/v1/tags", "Authorization: Bearer "+token, body)
	require.Equal(t, http.StatusOK, resp.Code, "Create tag failed: %s", resp.Body.String())

	var envelope testEnvelope[TagResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data
}

func TestCreateIdea_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	resp := ts.api.Post("/api/v1/ideas",
		"Authorization: Bearer "+token,
		map[string]any{
			"title":       "  Underwater drone rental  ",
			"description": "Rent ROVs by the hour at marinas",
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "Underwater drone rental", envelope.Data.Title, "title should be trimmed")
	assert.Equal(t, "Rent ROVs by the hour at marinas", envelope.Data.Description)
	assert.Equal(t, "idea", envelope.Data.State)
	assert.False(t, envelope.Data.Ranked)
	assert.Nil(t, envelope.Data.Ranking)
}

func TestCreateIdea_EmptyTitle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	resp := ts.api.Post("/api/v1/ideas",
		"Authorization: Bearer "+token,
		map[string]any{"title": "   "},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)

	// Nothing was persisted
	resp = ts.api.Get("/api/v1/ideas", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var listEnvelope testEnvelope[ListIdeasResponse]
	err = json.Unmarshal(resp.Body.Bytes(), &listEnvelope)
	require.NoError(t, err)
	assert.Empty(t, listEnvelope.Data.Ideas)
}

func TestGetIdea_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	resp := ts.api.Get("/api/v1/ideas/idea_does_not_exist", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestGetIdea_OtherOwnerForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	rootToken := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, rootToken, "Root's idea")

	otherToken, _ := ts.registerSecondUser(t, "other@example.com")

	resp := ts.api.Get("/api/v1/ideas/"+idea.ID, "Authorization: Bearer "+otherToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "FORBIDDEN", envelope.Code)
}

func TestUpdateIdea_PartialFields(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Original title")

	resp := ts.api.Patch("/api/v1/ideas/"+idea.ID,
		"Authorization: Bearer "+token,
		map[string]any{"description": "Added later"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, "Original title", envelope.Data.Title, "absent fields stay unchanged")
	assert.Equal(t, "Added later", envelope.Data.Description)
}

func TestListIdeas_StateFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	first := ts.createIdea(t, token, "Stays new")
	second := ts.createIdea(t, token, "Gets parked")

	resp := ts.api.Put("/api/v1/ideas/"+second.ID+"/state",
		"Authorization: Bearer "+token,
		map[string]any{"state": "onHold"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/ideas?state=onHold", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListIdeasResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Ideas, 1)
	assert.Equal(t, second.ID, envelope.Data.Ideas[0].ID)

	resp = ts.api.Get("/api/v1/ideas?state=idea", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Ideas, 1)
	assert.Equal(t, first.ID, envelope.Data.Ideas[0].ID)
}

func TestSetIdeaState_AnyToAny(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Restless idea")

	// Every state is reachable from every other.
	for _, state := range []string{"doLater", "executed", "idea", "execution", "onHold", "idea"} {
		resp := ts.api.Put("/api/v1/ideas/"+idea.ID+"/state",
			"Authorization: Bearer "+token,
			map[string]any{"state": state},
		)
		require.Equal(t, http.StatusOK, resp.Code, "transition to %s failed: %s", state, resp.Body.String())

		var envelope testEnvelope[IdeaResponse]
		err := json.Unmarshal(resp.Body.Bytes(), &envelope)
		require.NoError(t, err)
		assert.Equal(t, state, envelope.Data.State)
	}
}

func TestSetIdeaState_UnknownState(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Idea")

	resp := ts.api.Put("/api/v1/ideas/"+idea.ID+"/state",
		"Authorization: Bearer "+token,
		map[string]any{"state": "abandoned"},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_STATE", envelope.Code)
}

func TestSetIdeaExecuted_Toggle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Ship it")

	resp := ts.api.Put("/api/v1/ideas/"+idea.ID+"/executed",
		"Authorization: Bearer "+token,
		map[string]any{"executed": true},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "executed", envelope.Data.State)

	// Toggling back lands in execution, not the original state.
	resp = ts.api.Put("/api/v1/ideas/"+idea.ID+"/executed",
		"Authorization: Bearer "+token,
		map[string]any{"executed": false},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "execution", envelope.Data.State)
}

func TestRankIdea_ScoreIsRoundedMean(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Rankable idea")

	// (7+8+6+9)/4 = 7.5, rounds up to 8
	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/rank",
		"Authorization: Bearer "+token,
		map[string]any{
			"feasibility": 7,
			"impact":      8,
			"scalability": 6,
			"excitement":  9,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Data.Ranked)
	require.NotNil(t, envelope.Data.Ranking)
	assert.Equal(t, 7, envelope.Data.Ranking.Feasibility)
	assert.Equal(t, 8, envelope.Data.Ranking.Impact)
	assert.Equal(t, 6, envelope.Data.Ranking.Scalability)
	assert.Equal(t, 9, envelope.Data.Ranking.Excitement)
	assert.Equal(t, 8, envelope.Data.Ranking.Score)
	assert.Equal(t, "idea", envelope.Data.State, "ranking never changes the lifecycle state")
}

func TestRankIdea_ReRankOverwrites(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Second thoughts")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/rank",
		"Authorization: Bearer "+token,
		map[string]any{"feasibility": 10, "impact": 10, "scalability": 10, "excitement": 10},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/ideas/"+idea.ID+"/rank",
		"Authorization: Bearer "+token,
		map[string]any{"feasibility": 2, "impact": 3, "scalability": 2, "excitement": 3},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[IdeaResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.NotNil(t, envelope.Data.Ranking)
	// (2+3+2+3)/4 = 2.5, rounds up to 3
	assert.Equal(t, 3, envelope.Data.Ranking.Score)
}

func TestRankIdea_OutOfBounds(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Unrankable")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/rank",
		"Authorization: Bearer "+token,
		map[string]any{"feasibility": 11, "impact": 5, "scalability": 5, "excitement": 5},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "VALIDATION", envelope.Code)

	// The idea stays unranked
	resp = ts.api.Get("/api/v1/ideas/"+idea.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var ideaEnvelope testEnvelope[IdeaResponse]
	err = json.Unmarshal(resp.Body.Bytes(), &ideaEnvelope)
	require.NoError(t, err)
	assert.False(t, ideaEnvelope.Data.Ranked)
}

func TestDeleteIdea(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Short-lived")

	resp := ts.api.Delete("/api/v1/ideas/"+idea.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/ideas/"+idea.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestIdeaTags_LinkAndDuplicate(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Taggable idea")
	tag := ts.createTag(t, token, "hardware", "blue")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": tag.ID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var linkEnvelope testEnvelope[IdeaTagResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &linkEnvelope)
	require.NoError(t, err)
	assert.Equal(t, idea.ID, linkEnvelope.Data.IdeaID)
	assert.Equal(t, tag.ID, linkEnvelope.Data.TagID)
	assert.Equal(t, "hardware", linkEnvelope.Data.Tag.Name)
	assert.Positive(t, linkEnvelope.Data.CreatedAt)

	// Linking the same tag again conflicts
	resp = ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": tag.ID},
	)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[any]
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "DUPLICATE_TAG", envelope.Code)
}

func TestIdeaTags_RemoveIsIdempotent(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Untaggable idea")
	tag := ts.createTag(t, token, "misc", "")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": tag.ID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/ideas/"+idea.ID+"/tags/"+tag.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Removing an absent link still succeeds
	resp = ts.api.Delete("/api/v1/ideas/"+idea.ID+"/tags/"+tag.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/ideas/"+idea.ID+"/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagListResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Empty(t, envelope.Data.Tags)
}

func TestIdeaTags_AvailableTags(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Selective idea")

	ts.createTag(t, token, "alpha", "red")
	beta := ts.createTag(t, token, "beta", "green")
	ts.createTag(t, token, "gamma", "yellow")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": beta.ID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	// Full tag list, to compare ordering against
	resp = ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var allEnvelope testEnvelope[TagListResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &allEnvelope)
	require.NoError(t, err)
	require.Len(t, allEnvelope.Data.Tags, 3)

	resp = ts.api.Get("/api/v1/ideas/"+idea.ID+"/tags/available", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var availEnvelope testEnvelope[TagListResponse]
	err = json.Unmarshal(resp.Body.Bytes(), &availEnvelope)
	require.NoError(t, err)

	// The linked tag is excluded; the rest keep the full list's order.
	require.Len(t, availEnvelope.Data.Tags, 2)
	var wantIDs []string
	for _, tag := range allEnvelope.Data.Tags {
		if tag.ID != beta.ID {
			wantIDs = append(wantIDs, tag.ID)
		}
	}
	gotIDs := []string{availEnvelope.Data.Tags[0].ID, availEnvelope.Data.Tags[1].ID}
	assert.Equal(t, wantIDs, gotIDs)
}

func TestIdeaTags_OtherUsersTagNotLinkable(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	rootToken := ts.createTestUserAndLogin(t)
	otherToken, _ := ts.registerSecondUser(t, "tagowner@example.com")

	idea := ts.createIdea(t, rootToken, "My idea")
	otherTag := ts.createTag(t, otherToken, "private", "red")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+rootToken,
		map[string]any{"tag_id": otherTag.ID},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
