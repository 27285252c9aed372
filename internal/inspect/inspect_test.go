package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsRoute(t *testing.T) {
	sessions := session.NewShardedTable(4, zerolog.Nop())
	sessions.Put("c1", "tok-1")
	sessions.Put("c2", "tok-2")

	srv := httptest.NewServer(SetupRouting(sessions, mux.NewRouter()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.ElementsMatch(t, []string{"c1", "c2"}, body.Connections)

	// Tokens must never show up in the response.
	for _, conn := range body.Connections {
		assert.NotContains(t, conn, "tok-")
	}
}

func TestHealthzRoute(t *testing.T) {
	sessions := session.NewShardedTable(4, zerolog.Nop())
	srv := httptest.NewServer(SetupRouting(sessions, mux.NewRouter()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
