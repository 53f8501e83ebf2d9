//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAPI_RequiresToken(t *testing.T) {
	env := SetupTestEnv(t)

	resp := DoRequest(t, env, "GET", "/api/v1/users/someone/memories", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestMemoryAPI_CRUD(t *testing.T) {
	env := SetupTestEnv(t)
	token := AdminToken(t, env)

	userID := fmt.Sprintf("memcrud-%d@chat.test", uniqueID())

	// Profiles are created by the message pipeline; seed one so the
	// memory rows have a parent.
	_, err := env.MemorySvc.Touch(context.Background(), userID, "memcrud")
	require.NoError(t, err)

	base := fmt.Sprintf("/api/v1/users/%s/memories", userID)

	// Empty to start
	resp := DoRequest(t, env, "GET", base, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, ParseResponse(t, resp)["data"])

	// Create two memories, one with metadata
	for _, body := range []map[string]any{
		{"kind": "preference", "topic": "risk tolerance", "content": "Prefers small position sizes"},
		{
			"kind": "fact", "topic": "main exchange", "content": "Trades mostly on Binance",
			"metadata": map[string]any{"source": "onboarding"},
		},
	} {
		resp = DoRequest(t, env, "POST", base, body, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = DoRequest(t, env, "GET", base, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := ParseResponse(t, resp)["data"].([]any)
	assert.Len(t, entries, 2)

	// Metadata survives the round trip
	var sawMetadata bool
	for _, raw := range entries {
		entry := raw.(map[string]any)
		if entry["topic"] == "main exchange" {
			meta := entry["metadata"].(map[string]any)
			assert.Equal(t, "onboarding", meta["source"])
			sawMetadata = true
		}
	}
	assert.True(t, sawMetadata)

	// Same kind and topic overwrites instead of duplicating
	body := map[string]string{"kind": "fact", "topic": "main exchange", "content": "Moved to Kraken"}
	resp = DoRequest(t, env, "POST", base, body, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = DoRequest(t, env, "GET", base, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries = ParseResponse(t, resp)["data"].([]any)
	assert.Len(t, entries, 2)

	// Delete by topic substring
	resp = DoRequest(t, env, "DELETE", base+"?topic=exchange", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := ParseResponse(t, resp)["data"].(map[string]any)
	assert.Equal(t, float64(1), removed["removed"])

	// Delete everything left
	resp = DoRequest(t, env, "DELETE", base, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed = ParseResponse(t, resp)["data"].(map[string]any)
	assert.Equal(t, float64(1), removed["removed"])

	resp = DoRequest(t, env, "GET", base, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, ParseResponse(t, resp)["data"])
}

func TestMemoryAPI_RejectsInvalidKind(t *testing.T) {
	env := SetupTestEnv(t)
	token := AdminToken(t, env)

	userID := fmt.Sprintf("membad-%d@chat.test", uniqueID())
	_, err := env.MemorySvc.Touch(context.Background(), userID, "membad")
	require.NoError(t, err)

	body := map[string]string{"kind": "opinion", "topic": "x", "content": "y"}
	resp := DoRequest(t, env, "POST", fmt.Sprintf("/api/v1/users/%s/memories", userID), body, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
