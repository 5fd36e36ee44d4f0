package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStore implements the Store interface on a single JSONB documents
// table. Change notifications are delivered to in-process watchers only;
// the server runs as a single instance.
type PostgresStore struct {
	db  *sqlx.DB
	hub *hub
}

// NewPostgresStore creates a new PostgreSQL-backed document store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		hub: newHub(),
	}
}

// GetDB returns the underlying database connection
func (s *PostgresStore) GetDB() *sqlx.DB {
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := `SELECT doc FROM documents WHERE collection = $1 AND doc_id = $2`

	var raw []byte
	err := s.db.GetContext(ctx, &raw, query, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, doc_id, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, doc_id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, collection, id, raw, time.Now().UTC())
	if err != nil {
		return err
	}

	s.hub.notify(collection, id, doc)
	return nil
}

func (s *PostgresStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	// Upsert so an absent document or field reads as 0. The add happens in
	// one statement, so concurrent increments cannot lose updates.
	query := `
		INSERT INTO documents (collection, doc_id, doc, updated_at)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::bigint), $5)
		ON CONFLICT (collection, doc_id)
		DO UPDATE SET
			doc = jsonb_set(
				documents.doc,
				ARRAY[$3::text],
				to_jsonb(COALESCE((documents.doc ->> $3::text)::bigint, 0) + $4::bigint),
				true
			),
			updated_at = $5
		RETURNING doc
	`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection, id, field, delta, time.Now().UTC()).Scan(&raw)
	if err != nil {
		return 0, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, err
	}

	s.hub.notify(collection, id, doc)
	return doc.Int64(field), nil
}

func (s *PostgresStore) Watch(collection, id string) (<-chan Document, func()) {
	return s.hub.watch(collection, id)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	query := `SELECT doc_id, doc FROM documents WHERE collection = $1 ORDER BY doc_id`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var docID string
		var raw []byte
		if err := rows.Scan(&docID, &raw); err != nil {
			return nil, err
		}

		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}

		// Callers rely on the id being part of the listed document
		doc["id"] = docID
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
