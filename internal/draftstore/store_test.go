package draftstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/linkwise/internal/database"
)

func nextSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("no snapshot for %s", sub.Key())
		return Snapshot{}
	}
}

func openSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db)
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openSQLStore(t),
	}
}

func TestMergeKeepsKeysMissingFromPatch(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Merge(ctx, "form", Patch{"a": "1", "b": true}))
			require.NoError(t, s.Merge(ctx, "form", Patch{"c": "3"}))
			require.NoError(t, s.Merge(ctx, "form", Patch{"a": "2", "d": nil}))

			rec, ok, err := s.Get(ctx, "form")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "2", rec.String("a"))
			require.True(t, rec.Bool("b"))
			require.Equal(t, "3", rec.String("c"))
			require.True(t, rec.Has("d"))
			require.Equal(t, "", rec.String("d"))
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			patch := Patch{"plaidAccountID": "tok_1"}
			require.NoError(t, s.Merge(ctx, "draft", patch))
			first, _, err := s.Get(ctx, "draft")
			require.NoError(t, err)
			require.NoError(t, s.Merge(ctx, "draft", patch))
			second, _, err := s.Get(ctx, "draft")
			require.NoError(t, err)
			require.Equal(t, first, second)
		})
	}
}

func TestRecordCreatedLazilyAndReset(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, ok, err := s.Get(ctx, "lazy")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Merge(ctx, "lazy", Patch{"x": "y"}))
			_, ok, err = s.Get(ctx, "lazy")
			require.NoError(t, err)
			require.True(t, ok)

			require.NoError(t, s.Reset(ctx, "lazy"))
			_, ok, err = s.Get(ctx, "lazy")
			require.NoError(t, err)
			require.False(t, ok)

			// resetting an absent record is a no-op
			require.NoError(t, s.Reset(ctx, "lazy"))
		})
	}
}

func TestSubscribeDeliversInitialThenUpdates(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sub := s.Subscribe("plaidData")
			defer sub.Close()

			initial := nextSnapshot(t, sub)
			require.False(t, initial.Present)

			require.NoError(t, s.Merge(ctx, "plaidData", Patch{"bankName": "Chase"}))
			snap := nextSnapshot(t, sub)
			require.True(t, snap.Present)
			require.Equal(t, "Chase", snap.Record.String("bankName"))

			require.NoError(t, s.Reset(ctx, "plaidData"))
			snap = nextSnapshot(t, sub)
			require.False(t, snap.Present)
			require.Nil(t, snap.Record)
		})
	}
}

func TestSubscriberNeverSeesOlderValue(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	sub := s.Subscribe("counter")
	defer sub.Close()
	_ = nextSnapshot(t, sub)

	for i := 1; i <= 50; i++ {
		require.NoError(t, s.Merge(ctx, "counter", Patch{"n": i}))
	}
	snap := nextSnapshot(t, sub)
	require.Equal(t, int64(50), snap.Record.Int("n"))

	var last uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 51; i <= 200; i++ {
			_ = s.Merge(ctx, "counter", Patch{"n": i})
		}
	}()
	for {
		select {
		case snap := <-sub.C():
			require.Greater(t, snap.Seq, last)
			last = snap.Seq
			if snap.Record.Int("n") == 200 {
				<-done
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for final value")
		}
	}
}

func TestSubscriptionIsolatedPerKey(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	a := s.Subscribe("a")
	defer a.Close()
	_ = nextSnapshot(t, a)

	require.NoError(t, s.Merge(ctx, "b", Patch{"v": 1}))
	select {
	case snap := <-a.C():
		t.Fatalf("unexpected snapshot %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Merge(ctx, "k", Patch{"v": "orig"}))
	rec, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	rec["v"] = "mutated"

	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "orig", again.String("v"))
}

func TestInvalidKeysAndClosedStore(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	require.ErrorIs(t, s.Merge(ctx, "", Patch{"a": 1}), ErrInvalidKey)
	require.ErrorIs(t, s.Merge(ctx, "has space", Patch{"a": 1}), ErrInvalidKey)
	_, ok := <-s.Subscribe("").C()
	require.False(t, ok)

	sub := s.Subscribe("k")
	_ = nextSnapshot(t, sub)
	require.NoError(t, s.Close())
	_, ok = <-sub.C()
	require.False(t, ok)
	require.True(t, errors.Is(s.Merge(ctx, "k", Patch{"a": 1}), ErrClosed))
	sub.Close()
}

func TestSQLStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	db, err := database.OpenMigrated(path)
	require.NoError(t, err)
	require.NoError(t, NewSQLStore(db).Merge(ctx, "reimbursementAccountDraft", Patch{"plaidAccountID": "tok_9", "isSavings": true}))
	require.NoError(t, db.Close())

	db, err = database.OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := NewSQLStore(db)
	rec, ok, err := s.Get(ctx, "reimbursementAccountDraft")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok_9", rec.String("plaidAccountID"))
	require.True(t, rec.Bool("isSavings"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"reimbursementAccountDraft"}, keys)
}

func TestDecodeEncodeRoundTripTypedValue(t *testing.T) {
	t.Parallel()
	type account struct {
		ID   string `json:"id"`
		Mask string `json:"mask"`
	}
	type payload struct {
		BankName string    `json:"bankName"`
		Accounts []account `json:"accounts"`
	}
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := Encode(payload{BankName: "Wells", Accounts: []account{{ID: "a1", Mask: "1111"}}})
	require.NoError(t, err)
	require.NoError(t, s.Merge(ctx, "plaidData", p))

	rec, _, err := s.Get(ctx, "plaidData")
	require.NoError(t, err)
	var got payload
	require.NoError(t, Decode(rec, &got))
	require.Equal(t, "Wells", got.BankName)
	require.Len(t, got.Accounts, 1)
	require.Equal(t, "1111", got.Accounts[0].Mask)
}
