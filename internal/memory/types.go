// Package memory keeps a redacted transcript of chat turns for support and review.
package memory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antoniostano/fitbot/internal/policy"
)

// TurnRecord stores a single user or assistant chat turn.
type TurnRecord struct {
	ID          string    `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Role        string    `json:"role" db:"role"`
	Content     string    `json:"content" db:"content"`
	Decision    string    `json:"decision,omitempty" db:"decision"`
	Vehicle     string    `json:"vehicle,omitempty" db:"vehicle"`
	PIIRedacted bool      `json:"pii_redacted" db:"pii_redacted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Store persists and retrieves chat transcripts.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	// RecentContext returns up to limit of the newest turns, oldest first.
	RecentContext(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	Mode() string
	Close() error
}

// NewRecord builds a record with PII masked out of content.
func NewRecord(sessionID, role, content string, at time.Time) TurnRecord {
	redacted, changed := policy.RedactPII(content)
	return TurnRecord{
		SessionID:   sessionID,
		Role:        role,
		Content:     redacted,
		PIIRedacted: changed,
		CreatedAt:   at.UTC(),
	}
}

// NewStore returns a postgres store for a postgres URL and an in-memory store
// when databaseURL is empty.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

// withDefaults assigns an id and timestamp to records saved without them.
func withDefaults(r TurnRecord) TurnRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}
