// Package entities provides the PostgreSQL-backed sync upsert engine for
// user-owned entities (projects, events, tasks, notes, documents).
package entities

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db         dbx.DBTX
	ownerGuard bool
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
// With ownerGuard set, an upsert never replaces a row that belongs to a
// different owner.
func NewPostgresRepository(db dbx.DBTX, ownerGuard bool) *PostgresRepository {
	return &PostgresRepository{db: db, ownerGuard: ownerGuard}
}

// List returns the owner's rows, most recently inserted first. The result is
// empty, not nil, when the owner has none.
func (r *PostgresRepository) List(ctx context.Context, s *Schema, ownerID string) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, listQuery(s), ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, s)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Find returns one of the owner's rows by external id.
func (r *PostgresRepository) Find(ctx context.Context, s *Schema, ownerID, externalID string) (*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, findQuery(s), ownerID, externalID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, common.ErrorNotFound
	}
	return scanRecord(rows, s)
}

// Upsert creates the row or replaces every writable field and parent link
// of the row holding the same external id. Re-sending the same record leaves
// the same stored state.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Schema, ownerID string, rec *models.Record) error {
	res, err := r.db.ExecContext(ctx, upsertQuery(s, r.ownerGuard), upsertArgs(s, ownerID, rec)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		// only reachable with the owner guard: the id belongs to someone else
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes the owner's row with the given external id. A missing row
// and a row of another owner both yield common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, s *Schema, ownerID, externalID string) error {
	res, err := r.db.ExecContext(ctx, deleteQuery(s), externalID, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func upsertArgs(s *Schema, ownerID string, rec *models.Record) []any {
	writable := s.writable()
	args := make([]any, 0, 2+len(writable)+len(s.Parents))
	args = append(args, rec.ExternalID)
	for _, f := range writable {
		args = append(args, rec.Fields[f.Name])
	}
	for _, p := range s.Parents {
		args = append(args, rec.Fields[p.Field])
	}
	return append(args, ownerID)
}

func scanRecord(rows *sql.Rows, s *Schema) (*models.Record, error) {
	var externalID string
	dest := make([]any, 0, 1+len(s.Fields)+len(s.Parents))
	dest = append(dest, &externalID)
	for _, f := range s.Fields {
		dest = append(dest, scanTarget(f.Type))
	}
	for range s.Parents {
		dest = append(dest, &sql.NullString{})
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.Table, err)
	}

	rec := &models.Record{ExternalID: externalID, Fields: make(map[string]any, len(s.Fields)+len(s.Parents))}
	for i, f := range s.Fields {
		rec.Fields[f.Name] = scannedValue(dest[1+i])
	}
	for i, p := range s.Parents {
		rec.Fields[p.Field] = scannedValue(dest[1+len(s.Fields)+i])
	}
	return rec, nil
}

func scanTarget(t FieldType) any {
	switch t {
	case Timestamp:
		return &sql.NullTime{}
	case Float:
		return &sql.NullFloat64{}
	case Bool:
		return &sql.NullBool{}
	default:
		return &sql.NullString{}
	}
}

func scannedValue(v any) any {
	switch n := v.(type) {
	case *sql.NullString:
		if n.Valid {
			return n.String
		}
	case *sql.NullTime:
		if n.Valid {
			return n.Time
		}
	case *sql.NullFloat64:
		if n.Valid {
			return n.Float64
		}
	case *sql.NullBool:
		if n.Valid {
			return n.Bool
		}
	}
	return nil
}
