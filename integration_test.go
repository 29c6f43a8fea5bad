package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-api/auth"
	"notes-api/config"
	"notes-api/handlers"
	"notes-api/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	cfg := testutils.GetTestConfig()
	store := testutils.SetupTestStore(t)
	srv := httptest.NewServer(handlers.NewRouter(store, auth.NewTokenService(cfg.Secret, cfg.TokenTTL), config.UserIDIgnore))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestRegisterLoginCreateList(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "POST", srv.URL+"/api/users", map[string]string{
		"username": "root", "name": "Superuser", "password": "sekret",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, "POST", srv.URL+"/api/login", map[string]string{
		"username": "root", "password": "sekret",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)

	claims, err := auth.NewTokenService(testutils.GetTestConfig().Secret, 0).Verify(login.Token)
	require.NoError(t, err)

	resp, _ = doJSON(t, "POST", srv.URL+"/api/notes", map[string]any{
		"content": "test note", "userId": claims.UserID,
	}, login.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, "POST", srv.URL+"/api/notes", map[string]any{
		"content": "sneaky note", "userId": claims.UserID,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "token missing or invalid")

	resp, body = doJSON(t, "GET", srv.URL+"/api/notes", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notes []struct {
		Content string `json:"content"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &notes))
	count := 0
	for _, n := range notes {
		if n.Content == "test note" {
			count++
			assert.Equal(t, "root", n.User.Username)
		}
	}
	assert.Equal(t, 1, count)

	resp, body = doJSON(t, "GET", srv.URL+"/api/users", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test note")
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "GET", srv.URL+"/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, string(body))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "OPTIONS", srv.URL+"/api/notes", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
