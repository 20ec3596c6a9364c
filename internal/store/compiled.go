package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Compiled is a cached translation.
type Compiled struct {
	// Key is canon.QueryKey over the entry point, scope, query and
	// parameters.
	Key       string
	Kind      string
	Scope     string
	QueryJSON string
	SPARQL    string
	// TraceID identifies the invocation that first produced the text.
	TraceID string
	// Hits counts lookups served from the cache.
	Hits int64
}

// PutCompiled stores c. An existing entry for c.Key is kept unchanged:
// the same key always translates to the same text.
func (s *Store) PutCompiled(ctx context.Context, c Compiled) error {
	if c.Key == "" {
		return fmt.Errorf("put compiled: empty key")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compiled_queries (key, kind, scope, query_json, sparql, trace_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, c.Key, c.Kind, c.Scope, c.QueryJSON, c.SPARQL, c.TraceID)
	if err != nil {
		return fmt.Errorf("put compiled %s: %w", c.Key, err)
	}
	return nil
}

// GetCompiled returns the translation cached under key and counts the
// hit. ok is false when there is none.
func (s *Store) GetCompiled(ctx context.Context, key string) (c Compiled, ok bool, err error) {
	res, err := s.db.ExecContext(ctx, `UPDATE compiled_queries SET hits = hits + 1 WHERE key = ?`, key)
	if err != nil {
		return Compiled{}, false, fmt.Errorf("get compiled %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("compiled cache miss", "key", key)
		return Compiled{}, false, nil
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT key, kind, scope, query_json, sparql, trace_id, hits
		FROM compiled_queries WHERE key = ?
	`, key).Scan(&c.Key, &c.Kind, &c.Scope, &c.QueryJSON, &c.SPARQL, &c.TraceID, &c.Hits)
	if errors.Is(err, sql.ErrNoRows) {
		return Compiled{}, false, nil
	}
	if err != nil {
		return Compiled{}, false, fmt.Errorf("get compiled %s: %w", key, err)
	}
	s.logger.Debug("compiled cache hit", "key", key, "kind", c.Kind, "hits", c.Hits)
	return c, true, nil
}

// ListCompiled returns cached translations, optionally filtered by entry
// point and scope (empty matches any), ordered by key.
func (s *Store) ListCompiled(ctx context.Context, kind, scope string) ([]Compiled, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, kind, scope, query_json, sparql, trace_id, hits
		FROM compiled_queries
		WHERE (? = '' OR kind = ?) AND (? = '' OR scope = ?)
		ORDER BY key COLLATE BINARY ASC
	`, kind, kind, scope, scope)
	if err != nil {
		return nil, fmt.Errorf("list compiled: %w", err)
	}
	defer rows.Close()

	out := []Compiled{}
	for rows.Next() {
		var c Compiled
		if err := rows.Scan(&c.Key, &c.Kind, &c.Scope, &c.QueryJSON, &c.SPARQL, &c.TraceID, &c.Hits); err != nil {
			return nil, fmt.Errorf("scan compiled: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compiled: %w", err)
	}
	return out, nil
}
