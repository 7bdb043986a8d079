package repository

import (
	"context"
	"database/sql"
)

// ContactRepo handles switcher contacts.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Upsert(ctx context.Context, c Contact) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO contacts(id, display_name, login, icon, kind, created_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 display_name=excluded.display_name,
	 login=excluded.login,
	 icon=excluded.icon,
	 kind=excluded.kind;
	`, c.ID, c.DisplayName, c.Login, c.Icon, c.Kind)
	return err
}

// Touch records that a contact was just chosen in the switcher.
func (r *ContactRepo) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contacts SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// List returns the most recently used contacts first.
func (r *ContactRepo) List(ctx context.Context) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, display_name, login, icon, kind, last_used_at, created_at
	FROM contacts
	ORDER BY last_used_at IS NULL, last_used_at DESC, display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		var c Contact
		var icon sql.NullString
		var used sql.NullTime
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Login, &icon, &c.Kind, &used, &c.CreatedAt); err != nil {
			return nil, err
		}
		if icon.Valid {
			c.Icon = &icon.String
		}
		if used.Valid {
			c.LastUsedAt = &used.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
