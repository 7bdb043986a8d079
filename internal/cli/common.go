package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/linkwise/internal/config"
	"github.com/jask/linkwise/internal/database"
	"github.com/jask/linkwise/internal/database/repository"
	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/secrets"
	"github.com/jask/linkwise/internal/service"
	"github.com/jask/linkwise/internal/tui"
)

// env is everything a command needs, wired from config.
type env struct {
	cfg      config.Config
	db       *sql.DB
	store    draftstore.Store
	secrets  *secrets.Store
	services tui.Services
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	sec, err := secrets.Open(cfg.Secrets.Dir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("secrets: %w", err)
	}

	var store draftstore.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = draftstore.NewMemoryStore()
	default:
		store = draftstore.NewSQLStore(db)
	}

	// repositories
	accounts := repository.NewBankAccountRepo(db)
	contacts := repository.NewContactRepo(db)
	segments := repository.NewCustomSegmentRepo(db)

	return &env{
		cfg:      cfg,
		db:       db,
		store:    store,
		secrets:  sec,
		services: tui.Services{
			Bank:        &service.BankAccountService{Store: store, Accounts: accounts, Secrets: sec},
			Segments:    &service.CustomSegmentService{Store: store, Segments: segments},
			Contacts:    &service.ContactService{Contacts: contacts},
			Fixtures:    &service.FixtureService{Store: store},
			Maintenance: &service.MaintenanceService{DB: db, Store: store, Secrets: sec},
		},
	}, nil
}

func (e *env) Close() {
	if c, ok := e.store.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	_ = e.db.Close()
}
