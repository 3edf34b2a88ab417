package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectwork/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newStubServer(t *testing.T, register func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotRequestID, gotDeviceID string
	srv := newStubServer(t, func(r chi.Router) {
		r.Get("/user/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			gotAuth = req.Header.Get("Authorization")
			gotRequestID = req.Header.Get("X-Request-ID")
			gotDeviceID = req.Header.Get("X-Device-ID")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":1}`))
		})
	})

	c := New(srv.URL, WithTokenSource(staticToken("abc")), WithDeviceID("device-1"))
	_, err := c.User(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "device-1", gotDeviceID)
}

func TestMissingTokenSentWithoutHeader(t *testing.T) {
	var gotAuth string
	var hadHeader bool
	srv := newStubServer(t, func(r chi.Router) {
		r.Get("/user/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			gotAuth = req.Header.Get("Authorization")
			_, hadHeader = req.Header["Authorization"]
			w.Write([]byte(`{"id":1}`))
		})
	})

	c := New(srv.URL, WithTokenSource(staticToken("")))
	_, err := c.User(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.False(t, hadHeader, "unauthenticated requests carry no Authorization header")
}

func TestUnauthorizedHookFiresOncePerResponse(t *testing.T) {
	srv := newStubServer(t, func(r chi.Router) {
		r.Get("/user/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token_expired"}`))
		})
		r.Get("/post/posts", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"posts":[]}`))
		})
	})

	fired := 0
	c := New(srv.URL, WithOnUnauthorized(func() { fired++ }))

	_, err := c.User(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 1, fired, "exactly one invocation per 401 response")

	// A successful call does not fire the hook again.
	_, err = c.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// A second 401 fires it a second time.
	_, err = c.User(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 2, fired)
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := newStubServer(t, func(r chi.Router) {
		r.Post("/user/login", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"invalid credentials"}`))
		})
		r.Post("/user/register", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"email_taken"}`))
		})
	})

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "a@b.c", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)

	err = c.Register(context.Background(), RegisterRequest{Nome: "A", Email: "a@b.c", Password: "pw"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "email_taken", apiErr.Code)
}

func TestNotificationsDecoding(t *testing.T) {
	srv := newStubServer(t, func(r chi.Router) {
		r.Get("/user/notifications/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "7", chi.URLParam(req, "id"))
			json.NewEncoder(w).Encode(map[string]any{
				"notifications": []models.Notification{
					{ID: 1, User: "Bia", Kind: models.NotificationLike, PostID: 2},
				},
			})
		})
	})

	c := New(srv.URL)
	items, err := c.Notifications(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bia", items[0].User)
	assert.False(t, items[0].Read)
}

func TestLoginReturnsRawSessionObject(t *testing.T) {
	srv := newStubServer(t, func(r chi.Router) {
		r.Post("/user/login", func(w http.ResponseWriter, req *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])
			w.Write([]byte(`{"id":1,"token":"abc","badge_color":"blue"}`))
		})
	})

	c := New(srv.URL)
	raw, err := c.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"badge_color"`, "unknown fields survive undecoded")
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
	assert.True(t, TokenExpired(signed, time.Now()))

	assert.False(t, TokenExpired("not-a-jwt", time.Now()), "unreadable tokens are never reported expired")
}
