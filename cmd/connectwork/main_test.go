package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes one CLI invocation with isolated state and a stub API.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)
	err := run(args, stdin, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("CONNECTWORK_STATE_DIR", t.TempDir())
	t.Setenv("CONNECTWORK_API_URL", apiURL)
}

func newStubAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/user/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"id":1,"nome":"Ana","email":"ana@example.com","token":"test-token","role":"student"}`))
	})
	r.Get("/user/notifications/{id}", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing_token"}`))
			return
		}
		w.Write([]byte(`{"notifications":[
			{"id":1,"user":"Bia","kind":"like","postId":9,"read":false,"createdAt":"2026-03-10T12:00:00Z"},
			{"id":2,"user":"Caio","kind":"comment","postId":9,"read":true,"createdAt":"2026-03-10T13:00:00Z"}
		]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_MissingCommand(t *testing.T) {
	setupEnv(t, "http://localhost:0")
	stdout, _, err := runCLI(t)
	require.Error(t, err)
	assert.Contains(t, stdout, "Usage: connectwork")
}

func TestRun_UnknownCommand(t *testing.T) {
	setupEnv(t, "http://localhost:0")
	_, _, err := runCLI(t, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRun_WhoamiLoggedOut(t *testing.T) {
	setupEnv(t, "http://localhost:0")
	_, _, err := runCLI(t, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestRun_LoginThenWhoami(t *testing.T) {
	srv := newStubAPI(t)
	setupEnv(t, srv.URL)

	stdout, _, err := runCLI(t, "login", "-email", "ana@example.com", "-password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as Ana")

	// Session persists across invocations.
	stdout, _, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ana <ana@example.com>")
	assert.Contains(t, stdout, "Role:   student")
}

func TestRun_LoginBadPassword(t *testing.T) {
	srv := newStubAPI(t)
	setupEnv(t, srv.URL)

	_, _, err := runCLI(t, "login", "-email", "ana@example.com", "-password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestRun_NotificationsList(t *testing.T) {
	srv := newStubAPI(t)
	setupEnv(t, srv.URL)

	_, _, err := runCLI(t, "login", "-email", "ana@example.com", "-password", "secret")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "notifications", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 notifications, 1 unread")
	assert.Contains(t, stdout, "Bia liked")
}

func TestRun_LogoutClearsSession(t *testing.T) {
	srv := newStubAPI(t)
	setupEnv(t, srv.URL)

	_, _, err := runCLI(t, "login", "-email", "ana@example.com", "-password", "secret")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out.")

	_, _, err = runCLI(t, "whoami")
	require.Error(t, err)
}
