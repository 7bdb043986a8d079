package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/linkwise/internal/database"
	"github.com/jask/linkwise/internal/draftstore"
)

// SecretClearer wipes stored credentials.
type SecretClearer interface {
	Clear() error
}

// MaintenanceService houses destructive/ops actions surfaced through the TUI and CLI.
type MaintenanceService struct {
	DB      *sql.DB
	Store   draftstore.Store
	Secrets SecretClearer
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	// Reset through the store first so live subscribers see the records go.
	if lister, ok := s.Store.(draftstore.Lister); ok {
		keys, err := lister.Keys(ctx)
		if err != nil {
			return fmt.Errorf("maintenance: list drafts: %w", err)
		}
		for _, k := range keys {
			if err := s.Store.Reset(ctx, k); err != nil {
				return fmt.Errorf("maintenance: reset %s: %w", k, err)
			}
		}
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"custom_segments",
			"bank_accounts",
			"contacts",
			"drafts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if s.Secrets != nil {
		if err := s.Secrets.Clear(); err != nil {
			return fmt.Errorf("maintenance: clear secrets: %w", err)
		}
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return database.SeedDefaults(ctx, s.DB)
}
