// internal/wizard/session_store.go
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrVersionConflict = errors.New("wizard session was modified concurrently")
)

// SessionStore keeps wizard sessions in redis. Sessions expire after the
// configured TTL; an expired session is an abandoned wizard run.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "wizard:session:" + id
}

// Get loads a session by ID.
func (st *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return &session, nil
}

// Save writes a session, guarded by its version: the write only goes through
// if the stored version is older than the one being saved. This keeps
// concurrent updates from interleaving silently.
func (st *SessionStore) Save(ctx context.Context, session *Session) error {
	key := sessionKey(session.ID)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read current session: %w", err)
		}
		if err == nil {
			var current Session
			if uerr := json.Unmarshal(data, &current); uerr == nil && current.Version >= session.Version {
				return ErrVersionConflict
			}
		}

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode wizard session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, st.ttl)
			return nil
		})
		return err
	}

	err := st.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrVersionConflict
	}
	return err
}

// Delete removes a session, normally after submission.
func (st *SessionStore) Delete(ctx context.Context, id string) error {
	return st.client.Del(ctx, sessionKey(id)).Err()
}
