package itinerary

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists itineraries as JSONB documents so they survive
// restarts and outlive their generating job records.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed itinerary store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, it *Itinerary) error {
	doc, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to encode itinerary: %w", err)
	}

	query := `
		INSERT INTO itineraries (itinerary_id, document, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (itinerary_id) DO UPDATE SET document = EXCLUDED.document
	`

	if _, err := s.db.ExecContext(ctx, query, it.ID, doc); err != nil {
		return fmt.Errorf("failed to store itinerary: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Itinerary, error) {
	var doc []byte
	query := `SELECT document FROM itineraries WHERE itinerary_id = $1`

	if err := s.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	var it Itinerary
	if err := json.Unmarshal(doc, &it); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary: %w", err)
	}
	return &it, nil
}

// Schema is the DDL for the itineraries table, applied by deployment tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS itineraries (
	itinerary_id UUID PRIMARY KEY,
	document     JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`
