package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultContextLimit = 10

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS chat_transcripts (
	id           TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	decision     TEXT NOT NULL DEFAULT '',
	vehicle      TEXT NOT NULL DEFAULT '',
	pii_redacted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chat_transcripts_session_created_idx
	ON chat_transcripts (session_id, created_at);`

const insertTurnSQL = `
INSERT INTO chat_transcripts (id, session_id, role, content, decision, vehicle, pii_redacted, created_at)
VALUES (@id, @session_id, @role, @content, @decision, @vehicle, @pii_redacted, @created_at)
ON CONFLICT (id) DO NOTHING`

// The inner query picks the newest rows; the outer one restores chronological order.
const recentTurnsSQL = `
SELECT id, session_id, role, content, decision, vehicle, pii_redacted, created_at
FROM (
	SELECT * FROM chat_transcripts
	WHERE session_id = @session_id
	ORDER BY created_at DESC, id DESC
	LIMIT @limit
) recent
ORDER BY created_at, id`

// PostgresStore persists chat transcripts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	// Multi-statement DDL needs the simple protocol, which Exec uses without args.
	if _, err := pool.Exec(ctx, transcriptSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init transcript schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveTurn(ctx context.Context, record TurnRecord) error {
	r := withDefaults(record)
	_, err := s.pool.Exec(ctx, insertTurnSQL, pgx.NamedArgs{
		"id":           r.ID,
		"session_id":   r.SessionID,
		"role":         r.Role,
		"content":      r.Content,
		"decision":     r.Decision,
		"vehicle":      r.Vehicle,
		"pii_redacted": r.PIIRedacted,
		"created_at":   r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentContext(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = defaultContextLimit
	}
	rows, err := s.pool.Query(ctx, recentTurnsSQL, pgx.NamedArgs{"session_id": sessionID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[TurnRecord])
	if err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Mode() string { return "postgres" }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
