// Package keyedstore namespaces a flat key-value backend by user identity.
//
// Every per-user value lives under sc/u/<base64url(identity)>/<collection>.
// The identity is encoded, so two different identities can never produce the
// same key and no identity can escape its namespace. The current session is
// the only global key.
package keyedstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

const (
	keyPrefix = "sc"

	// SessionKey holds the persisted profile of the signed-in user.
	SessionKey = keyPrefix + "/session"
)

// LegacyKeys are global keys written by older client versions. They are not
// namespaced and would leak one user's data to the next, so Open removes them.
var LegacyKeys = []string{"sc_users", "sc_currentUser", "LS_USERS", "LS_CURRENT_USER"}

// Backend is a flat persistent key-value store. Get returns (nil, nil) when
// the key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	b   Backend
	log logging.Logger
}

func New(b Backend, log logging.Logger) *Store {
	return &Store{b: b, log: log.With("component", "keyedstore")}
}

// Key builds the backend key of (userKey, collection).
func Key(userKey string, collection models.Collection) string {
	return fmt.Sprintf("%s/u/%s/%s", keyPrefix, base64.RawURLEncoding.EncodeToString([]byte(userKey)), collection)
}

// Get returns the raw value of (userKey, collection). Read failures are logged
// and reported as absent.
func (s *Store) Get(ctx context.Context, userKey string, collection models.Collection) ([]byte, bool) {
	return s.getRaw(ctx, Key(userKey, collection))
}

func (s *Store) Set(ctx context.Context, userKey string, collection models.Collection, value []byte) error {
	key := Key(userKey, collection)
	if err := s.b.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userKey string, collection models.Collection) error {
	if err := s.b.Delete(ctx, Key(userKey, collection)); err != nil {
		return fmt.Errorf("remove %s: %w", collection, err)
	}
	return nil
}

// GetJSON decodes the value of (userKey, collection) into v. It returns false
// when the value is absent, unreadable or not valid JSON for v.
func (s *Store) GetJSON(ctx context.Context, userKey string, collection models.Collection, v any) bool {
	return s.decode(ctx, Key(userKey, collection), v)
}

func (s *Store) SetJSON(ctx context.Context, userKey string, collection models.Collection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	return s.Set(ctx, userKey, collection, data)
}

// LoadSession decodes the persisted session into v.
func (s *Store) LoadSession(ctx context.Context, v any) bool {
	return s.decode(ctx, SessionKey, v)
}

func (s *Store) SaveSession(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.b.Set(ctx, SessionKey, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.b.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// PurgeLegacy deletes every LegacyKeys entry. Failures are logged only.
func (s *Store) PurgeLegacy(ctx context.Context) {
	for _, key := range LegacyKeys {
		if err := s.b.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to purge legacy key", "key", key, "err", err)
		}
	}
}

func (s *Store) getRaw(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.b.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "read failed, treating as absent", "key", key, "err", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	return data, true
}

func (s *Store) decode(ctx context.Context, key string, v any) bool {
	data, ok := s.getRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn(ctx, "corrupt value, treating as absent", "key", key, "err", err)
		return false
	}
	return true
}
