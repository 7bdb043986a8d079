package repository

import (
	"context"
	"database/sql"
)

// DraftRepo stores draft-store records as JSON payloads.
type DraftRepo struct {
	db *sql.DB
}

func NewDraftRepo(db *sql.DB) *DraftRepo { return &DraftRepo{db: db} }

// Get returns nil when no record exists for key.
func (r *DraftRepo) Get(ctx context.Context, q Querier, key string) (*Draft, error) {
	row := r.querier(q).QueryRowContext(ctx, `SELECT key, payload, updated_at FROM drafts WHERE key = ?`, key)
	var d Draft
	if err := row.Scan(&d.Key, &d.Payload, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DraftRepo) Upsert(ctx context.Context, q Querier, key string, payload []byte) error {
	_, err := r.querier(q).ExecContext(ctx, `
	INSERT INTO drafts(key, payload, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 payload=excluded.payload,
	 updated_at=CURRENT_TIMESTAMP;
	`, key, payload)
	return err
}

// Delete reports whether a row was removed.
func (r *DraftRepo) Delete(ctx context.Context, q Querier, key string) (bool, error) {
	res, err := r.querier(q).ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *DraftRepo) List(ctx context.Context) ([]Draft, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, payload, updated_at FROM drafts ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.Key, &d.Payload, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Querier is satisfied by *sql.DB and *sql.Tx so draft reads and writes can
// join a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *DraftRepo) querier(q Querier) Querier {
	if q != nil {
		return q
	}
	return r.db
}
