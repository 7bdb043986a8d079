package repository

import (
	"context"
	"database/sql"
)

// CustomSegmentRepo stores NetSuite custom segments per policy.
type CustomSegmentRepo struct{ db *sql.DB }

func NewCustomSegmentRepo(db *sql.DB) *CustomSegmentRepo { return &CustomSegmentRepo{db: db} }

func (r *CustomSegmentRepo) Insert(ctx context.Context, s CustomSegment) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO custom_segments(id, policy_id, record_type, segment_name, internal_id, script_id, mapping, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, s.ID, s.PolicyID, s.RecordType, s.SegmentName, s.InternalID, s.ScriptID, s.Mapping)
	return err
}

func (r *CustomSegmentRepo) ListByPolicy(ctx context.Context, policyID string) ([]CustomSegment, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, policy_id, record_type, segment_name, internal_id, script_id, mapping, created_at
	FROM custom_segments WHERE policy_id = ? ORDER BY created_at, segment_name`, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CustomSegment
	for rows.Next() {
		var s CustomSegment
		if err := rows.Scan(&s.ID, &s.PolicyID, &s.RecordType, &s.SegmentName, &s.InternalID, &s.ScriptID, &s.Mapping, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
