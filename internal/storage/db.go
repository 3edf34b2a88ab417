package storage

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Persisted keys. The session layer owns user/token/role; device_id belongs
// to the HTTP layer.
const (
	KeyUser     = "user"
	KeyToken    = "token"
	KeyRole     = "role"
	KeyDeviceID = "device_id"
)

// ErrNotFound is returned when a key has no persisted value.
var ErrNotFound = errors.New("storage: key not found")

// sealedKeys are encrypted at rest with the device key.
var sealedKeys = map[string]bool{
	KeyToken: true,
}

// DB is the device-local key/value store backing session persistence.
type DB struct {
	conn *sql.DB
	box  *secretBox
}

// NewDB opens the store at path and runs migrations. A device key file is
// created next to the database on first open; an in-memory database gets an
// ephemeral key.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	box, err := openSecretBox(path)
	if err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, box: box}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves the value for key, or ErrNotFound.
func (db *DB) Get(key string) ([]byte, error) {
	row := db.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key)

	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sealedKeys[key] {
		return db.box.open(value)
	}
	return value, nil
}

// Set stores a single key.
func (db *DB) Set(key string, value []byte) error {
	return db.SetMany(map[string][]byte{key: value})
}

// SetMany stores all given keys in one transaction, so a partial session
// write can never be observed after a crash.
func (db *DB) SetMany(values map[string][]byte) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for key, value := range values {
		if sealedKeys[key] {
			if value, err = db.box.seal(value); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(
			"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) "+
				"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
			key, value, now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the given keys. Missing keys are not an error.
func (db *DB) Delete(keys ...string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Token returns the persisted bearer token, or "" when absent or unreadable.
// The HTTP layer reads this on every outbound request; a missing token is not
// an error here, the server stays the authority on rejecting the call.
func (db *DB) Token() string {
	value, err := db.Get(KeyToken)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("storage: read token: %v", err)
		}
		return ""
	}
	return string(value)
}

// DeviceID returns the stable per-install device identifier, generating and
// persisting one on first use.
func (db *DB) DeviceID() (string, error) {
	value, err := db.Get(KeyDeviceID)
	if err == nil {
		return string(value), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	id := uuid.NewString()
	if err := db.Set(KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
