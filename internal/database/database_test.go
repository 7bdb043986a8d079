package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/linkwise/internal/database/repository"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "linkwise.db")

	db, err := OpenMigrated(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, RunMigrations(path), "second run is a no-op")

	db, err = OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
}

func TestSeedDefaultsRunsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	contacts := repository.NewContactRepo(db)
	first, err := contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 5)

	require.NoError(t, contacts.Touch(ctx, first[3].ID))
	require.NoError(t, SeedDefaults(ctx, db))
	second, err := contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 5)
	require.Equal(t, first[3].ID, second[0].ID, "most recently used first")
}

func TestDraftRepoInsideTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drafts := repository.NewDraftRepo(db)

	got, err := drafts.Get(ctx, nil, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := drafts.Upsert(ctx, tx, "a", []byte(`{"x":1}`)); err != nil {
			return err
		}
		return drafts.Upsert(ctx, tx, "a", []byte(`{"x":2}`))
	})
	require.NoError(t, err)

	got, err = drafts.Get(ctx, nil, "a")
	require.NoError(t, err)
	require.JSONEq(t, `{"x":2}`, string(got.Payload))

	removed, err := drafts.Delete(ctx, nil, "a")
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = drafts.Delete(ctx, nil, "a")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestBankAccountRepoRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	accounts := repository.NewBankAccountRepo(db)

	missing, err := accounts.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	ref := "plaid:a1"
	seq, err := accounts.Insert(ctx, repository.BankAccount{
		ID: "a1", BankName: "Chase", RoutingNumber: "011000015", AccountNumber: "1111222233",
		Mask: "2233", IsSavings: true, SecretRef: &ref,
	})
	require.NoError(t, err)
	require.Positive(t, seq)

	got, err := accounts.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, seq, got.Seq)
	require.True(t, got.IsSavings)
	require.Equal(t, &ref, got.SecretRef)
}
