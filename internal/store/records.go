package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is a cached record document.
type Record struct {
	Identifier string
	Scope      string
	Data       json.RawMessage
}

// RecordCache looks up and stores record documents by identifier.
type RecordCache interface {
	GetRecord(ctx context.Context, identifier string) (Record, bool, error)
	PutRecord(ctx context.Context, rec Record) error
}

var _ RecordCache = (*Store)(nil)

// PutRecord stores rec, replacing any record with the same identifier.
// Data must be a JSON document; it is stored compacted.
func (s *Store) PutRecord(ctx context.Context, rec Record) error {
	if rec.Identifier == "" {
		return fmt.Errorf("put record: empty identifier")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, rec.Data); err != nil {
		return fmt.Errorf("put record %s: invalid JSON: %w", rec.Identifier, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (identifier, scope, data)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET scope = excluded.scope, data = excluded.data
	`, rec.Identifier, rec.Scope, compact.String())
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.Identifier, err)
	}
	return nil
}

// GetRecord returns the record stored under identifier. ok is false when
// there is none.
func (s *Store) GetRecord(ctx context.Context, identifier string) (rec Record, ok bool, err error) {
	var data string
	err = s.db.QueryRowContext(ctx, `
		SELECT identifier, scope, data FROM records WHERE identifier = ?
	`, identifier).Scan(&rec.Identifier, &rec.Scope, &data)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("record cache miss", "identifier", identifier)
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get record %s: %w", identifier, err)
	}
	s.logger.Debug("record cache hit", "identifier", identifier)
	rec.Data = json.RawMessage(data)
	return rec, true, nil
}

// DeleteRecord removes the record stored under identifier. Deleting a
// missing record is not an error.
func (s *Store) DeleteRecord(ctx context.Context, identifier string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE identifier = ?`, identifier); err != nil {
		return fmt.Errorf("delete record %s: %w", identifier, err)
	}
	return nil
}
