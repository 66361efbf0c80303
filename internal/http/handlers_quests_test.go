package httpx_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquest/questlog/internal/domain/model"
)

func TestQuestListAndComplete(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, _ := f.register(t, "Aria", "aria@example.com", "hunter22")

	quest, err := f.quests.Create(t.Context(), model.CreateQuestRequest{Title: "Slay the dragon", XP: 1200})
	require.NoError(t, err)
	_, err = f.badges.Create(t.Context(), model.Badge{Name: "Novice", XPRequired: 100})
	require.NoError(t, err)

	rec := f.do(t, bearer(jsonRequest(t, http.MethodGet, "/quests", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	quests := decodeBody(t, rec)["quests"].([]any)
	require.Len(t, quests, 1)

	rec = f.do(t, bearer(jsonRequest(t, http.MethodPost, "/quests/"+quest.ID+"/complete", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	completed := body["quest"].(map[string]any)
	assert.Equal(t, true, completed["completed"])
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(1200), user["totalXP"])
	assert.Equal(t, float64(2), user["level"])
	assert.Equal(t, []any{"Novice"}, user["badges"])

	// Completing again is refused.
	rec = f.do(t, bearer(jsonRequest(t, http.MethodPost, "/quests/"+quest.ID+"/complete", nil), token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Quest already completed", decodeBody(t, rec)["message"])
}

func TestQuestCompleteUnknownQuest(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, _ := f.register(t, "Aria", "aria@example.com", "hunter22")

	rec := f.do(t, bearer(jsonRequest(t, http.MethodPost, "/quests/missing/complete", nil), token))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quest not found", decodeBody(t, rec)["message"])
}

func TestProfileUpdate(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, _ := f.register(t, "Aria", "aria@example.com", "hunter22")

	rec := f.do(t, bearer(jsonRequest(t, http.MethodPut, "/profile", map[string]string{
		"bio": "Collector of rare herbs.",
	}), token))
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Collector of rare herbs.", user["bio"])

	// Invalid updates report per-field errors.
	rec = f.do(t, bearer(jsonRequest(t, http.MethodPut, "/profile", map[string]string{
		"username": "x",
	}), token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	violations := body["errors"].([]any)
	require.Len(t, violations, 1)

	// An empty update is refused.
	rec = f.do(t, bearer(jsonRequest(t, http.MethodPut, "/profile", map[string]string{}), token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
