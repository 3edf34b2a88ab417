// Package session holds the single source of truth for "who is logged in",
// persisted across restarts in the device-local store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"connectwork/internal/logutil"
	"connectwork/internal/models"
	"connectwork/internal/storage"
)

// ErrNotAuthenticated is returned by operations that need a current session.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// ErrMissingToken is returned by Login when the payload carries no token.
var ErrMissingToken = errors.New("session: login payload has no token")

// Store is the persisted key/value storage the manager writes through to.
// Satisfied by *storage.DB.
type Store interface {
	Get(key string) ([]byte, error)
	SetMany(values map[string][]byte) error
	Delete(keys ...string) error
}

// ProfileAPI fetches profile snapshots. Satisfied by *api.Client.
type ProfileAPI interface {
	User(ctx context.Context, id int64) (json.RawMessage, error)
}

// Manager is the auth state container. All mutation goes through its mutex;
// in-memory state and the persisted store are updated in the same step, so a
// crash leaves at most one side stale, healed by the next load or refresh.
type Manager struct {
	store  Store
	api    ProfileAPI
	logger *slog.Logger

	mu     sync.Mutex
	raw    []byte // last known session object, verbatim server JSON
	user   models.User
	token  string
	role   string
	loaded bool
}

// NewManager creates a Manager. api may be nil when profile refresh is not
// needed (e.g. the registration commands).
func NewManager(store Store, api ProfileAPI, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, api: api, logger: logger}
}

// Load populates the session from persisted storage. It runs once per
// process, never fails to the caller, and leaves the manager loaded whether
// or not a session was found: storage errors only mean "not authenticated".
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return
	}
	m.loaded = true

	rawUser, errUser := m.store.Get(storage.KeyUser)
	rawToken, errToken := m.store.Get(storage.KeyToken)
	if errUser != nil || errToken != nil {
		for _, err := range []error{errUser, errToken} {
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				m.logger.Warn("session load failed", "err", err)
			}
		}
		return
	}

	user, err := models.DecodeUser(rawUser)
	if err != nil {
		m.logger.Warn("session load failed", "err", err)
		return
	}

	m.raw = rawUser
	m.user = user
	m.token = string(rawToken)
	if rawRole, err := m.store.Get(storage.KeyRole); err == nil {
		m.role = string(rawRole)
	}
}

// Login installs the raw session object returned by the login endpoint. The
// payload must carry a token. Persistence happens first, as one batch write;
// if it fails the in-memory state is left untouched and the error propagates.
func (m *Manager) Login(ctx context.Context, raw json.RawMessage) error {
	var payload struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return logutil.LogAndWrapErr(m.logger, "parse login payload", err)
	}
	if payload.Token == "" {
		return ErrMissingToken
	}
	user, err := models.DecodeUser(raw)
	if err != nil {
		return logutil.LogAndWrapErr(m.logger, "parse login payload", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetMany(map[string][]byte{
		storage.KeyUser:  raw,
		storage.KeyToken: []byte(payload.Token),
		storage.KeyRole:  []byte(payload.Role),
	}); err != nil {
		return logutil.LogAndWrapErr(m.logger, "persist session", err, "user_id", user.ID)
	}

	m.raw = raw
	m.user = user
	m.token = payload.Token
	m.role = payload.Role
	m.loaded = true
	m.logger.Info("logged in", "user_id", user.ID, "role", payload.Role)
	return nil
}

// Logout clears the persisted session and the in-memory state. Storage
// failures are logged only; logout always succeeds from the caller's side.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(storage.KeyUser, storage.KeyToken, storage.KeyRole); err != nil {
		m.logger.Warn("clear persisted session failed", "err", err)
	}
	m.raw = nil
	m.user = models.User{}
	m.token = ""
	m.role = ""
	m.logger.Info("logged out")
}

// RefreshUserData fetches the latest profile snapshot and shallow-merges it
// over the existing session object: fields in the response overwrite, fields
// the response omits are preserved. Memory and storage are updated together.
// Network and parse errors propagate to the caller.
func (m *Manager) RefreshUserData(ctx context.Context) (models.User, error) {
	m.mu.Lock()
	id := m.user.ID
	base := m.raw
	m.mu.Unlock()
	if id == 0 {
		return models.User{}, ErrNotAuthenticated
	}

	snapshot, err := m.api.User(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	merged, err := models.MergeJSON(base, snapshot)
	if err != nil {
		return models.User{}, err
	}
	user, err := models.DecodeUser(merged)
	if err != nil {
		return models.User{}, err
	}

	// Two overlapping refreshes resolve last-write-wins, same as the single
	// event-loop original.
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetMany(map[string][]byte{storage.KeyUser: merged}); err != nil {
		return models.User{}, logutil.LogAndWrapErr(m.logger, "persist refreshed profile", err, "user_id", id)
	}
	m.raw = merged
	m.user = user
	return user, nil
}

// Current returns the session user and whether a session exists.
func (m *Manager) Current() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.token != ""
}

// Token returns the in-memory bearer token, "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Role returns the persisted role string.
func (m *Manager) Role() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// IsAuthenticated is derived on every call, never stored: a session exists
// and carries a non-empty token.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// Loaded reports whether the initial load has completed.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}
