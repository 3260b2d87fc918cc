package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag_DefaultColor(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "  weekend project  "},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "weekend project", envelope.Data.Name, "name should be trimmed")
	assert.Equal(t, "default", envelope.Data.Color)
}

func TestCreateTag_InvalidColor(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "bad", "color": "purple"},
	)
	// The color enum is enforced at the schema level
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCreateTag_DuplicateNamesAllowed(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	first := ts.createTag(t, token, "ai", "blue")
	second := ts.createTag(t, token, "ai", "red")

	assert.NotEqual(t, first.ID, second.ID)

	resp := ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagListResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Len(t, envelope.Data.Tags, 2)
}

func TestListTags_OwnerScoped(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	rootToken := ts.createTestUserAndLogin(t)
	otherToken, _ := ts.registerSecondUser(t, "other@example.com")

	ts.createTag(t, rootToken, "mine", "green")
	ts.createTag(t, otherToken, "theirs", "yellow")

	resp := ts.api.Get("/api/v1/tags", "Authorization: Bearer "+rootToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagListResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Tags, 1)
	assert.Equal(t, "mine", envelope.Data.Tags[0].Name)
}

func TestUpdateTag_FullReplace(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	tag := ts.createTag(t, token, "draft", "red")

	resp := ts.api.Put("/api/v1/tags/"+tag.ID,
		"Authorization: Bearer "+token,
		map[string]any{"name": "published", "color": "green"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, tag.ID, envelope.Data.ID)
	assert.Equal(t, "published", envelope.Data.Name)
	assert.Equal(t, "green", envelope.Data.Color)
}

func TestUpdateTag_OmittedColorResets(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	tag := ts.createTag(t, token, "colorful", "yellow")

	// PUT is a full replace: leaving the color out falls back to default.
	resp := ts.api.Put("/api/v1/tags/"+tag.ID,
		"Authorization: Bearer "+token,
		map[string]any{"name": "colorful"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "default", envelope.Data.Color)
}

func TestGetTag_OtherOwnerLooksAbsent(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	rootToken := ts.createTestUserAndLogin(t)
	otherToken, _ := ts.registerSecondUser(t, "other@example.com")

	tag := ts.createTag(t, otherToken, "secret", "red")

	// Another user's tag reads as missing, not forbidden.
	resp := ts.api.Get("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+rootToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestDeleteTag_CascadesLinks(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	idea := ts.createIdea(t, token, "Linked idea")
	tag := ts.createTag(t, token, "doomed", "blue")

	resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": tag.ID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// The link went with the tag
	resp = ts.api.Get("/api/v1/ideas/"+idea.ID+"/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagListResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Empty(t, envelope.Data.Tags)
}

func TestGetTagIdeas(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)
	tag := ts.createTag(t, token, "backlog", "default")

	tagged := ts.createIdea(t, token, "Tagged idea")
	ts.createIdea(t, token, "Untagged idea")

	resp := ts.api.Post("/api/v1/ideas/"+tagged.ID+"/tags",
		"Authorization: Bearer "+token,
		map[string]any{"tag_id": tag.ID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags/"+tag.ID+"/ideas", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagIdeasResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, tag.ID, envelope.Data.Tag.ID)
	require.Len(t, envelope.Data.Ideas, 1)
	assert.Equal(t, tagged.ID, envelope.Data.Ideas[0].ID)
}

func TestTagIdeaCount_TracksLinks(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.createTestUserAndLogin(t)

	tag := ts.createTag(t, token, "hardware", "green")
	assert.Equal(t, 0, tag.IdeaCount)

	first := ts.createIdea(t, token, "Solar phone charger")
	second := ts.createIdea(t, token, "Backyard wind turbine")

	for _, idea := range []IdeaResponse{first, second} {
		resp := ts.api.Post("/api/v1/ideas/"+idea.ID+"/tags",
			"Authorization: Bearer "+token,
			map[string]any{"tag_id": tag.ID},
		)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.IdeaCount)

	// Listing reports the same count
	resp = ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[TagListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Data.Tags, 1)
	assert.Equal(t, 2, list.Data.Tags[0].IdeaCount)

	// Unlinking is reflected immediately
	resp = ts.api.Delete("/api/v1/ideas/"+first.ID+"/tags/"+tag.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.IdeaCount)
}
