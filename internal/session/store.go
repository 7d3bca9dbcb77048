package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("session not found")

// ErrMissingID is returned for a blank session id. Sessions are keyed by the
// caller; the HTTP layer assigns a uuid before a turn reaches the manager.
var ErrMissingID = errors.New("session id is required")

// Store persists sessions by id. Entries expire after the store's TTL.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Evict(ctx context.Context, id string) error
	Close() error
}

// StoreConfig selects and configures a Store.
type StoreConfig struct {
	Mode     string
	RedisURL string
	TTL      time.Duration
}

// NewStore creates a redis-backed store when configured, otherwise in-memory.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "redis" || (mode == "" && strings.TrimSpace(cfg.RedisURL) != "") {
		return NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
	}
	return NewInMemoryStore(cfg.TTL), nil
}
