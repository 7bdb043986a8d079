package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/linkwise/internal/database/repository"
)

// SeedDefaults ensures a baseline set of switcher contacts exists for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	contacts := repository.NewContactRepo(db)
	existing, err := contacts.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []struct {
		name  string
		login string
		kind  string
	}{
		{"Alice Nguyen", "alice@example.com", "user"},
		{"Ben Carter", "ben@example.com", "user"},
		{"Chloe Park", "chloe@example.com", "user"},
		{"#finance", "#finance", "report"},
		{"#expenses-q3", "#expenses-q3", "report"},
	}
	for _, d := range defaults {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("contact:"+strings.ToLower(d.login))).String()
		c := repository.Contact{ID: id, DisplayName: d.name, Login: d.login, Kind: d.kind}
		if err := contacts.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
