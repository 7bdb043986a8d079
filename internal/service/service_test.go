package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/linkwise/internal/bankinfo"
	"github.com/jask/linkwise/internal/database"
	"github.com/jask/linkwise/internal/database/repository"
	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
	"github.com/jask/linkwise/internal/netsuite"
	"github.com/jask/linkwise/internal/secrets"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLinkPersistsAccountAndClearsDraft(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	store := draftstore.NewSQLStore(db)
	sec, err := secrets.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Merge(ctx, bankinfo.KeyReimbursementAccountDraft, draftstore.Patch{
		bankinfo.InputRoutingNumber:    "011000015",
		bankinfo.InputAccountNumber:    "1111222233",
		bankinfo.InputPlaidMask:        "2233",
		bankinfo.InputIsSavings:        true,
		bankinfo.InputBankName:         "Chase",
		bankinfo.InputPlaidAccountID:   "acc-1",
		bankinfo.InputPlaidAccessToken: "access-sandbox-1",
	}))
	require.NoError(t, store.Merge(ctx, bankinfo.KeyPlaidData, draftstore.Patch{"bankName": "Chase"}))

	accounts := repository.NewBankAccountRepo(db)
	svc := &BankAccountService{Store: store, Accounts: accounts, Secrets: sec}
	require.NoError(t, svc.Link(ctx))

	list, err := accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "acc-1", list[0].PlaidAccountID)
	require.NotNil(t, list[0].SecretRef)
	token, err := sec.Get(*list[0].SecretRef)
	require.NoError(t, err)
	require.Equal(t, "access-sandbox-1", token)

	confirmed, err := svc.Confirmed(ctx)
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	require.True(t, confirmed.IsLinked())
	require.Equal(t, list[0].Seq, confirmed.BankAccountID)
	require.Equal(t, "2233", confirmed.Mask)

	for _, k := range []string{bankinfo.KeyReimbursementAccountDraft, bankinfo.KeyPlaidData} {
		_, ok, err := store.Get(ctx, k)
		require.NoError(t, err)
		require.False(t, ok, k)
	}
}

func TestLinkWithoutDraft(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	store := draftstore.NewMemoryStore()
	svc := &BankAccountService{Store: store, Accounts: repository.NewBankAccountRepo(db)}

	require.ErrorIs(t, svc.Link(ctx), ErrNoDraft)

	require.NoError(t, store.Merge(ctx, bankinfo.KeyReimbursementAccountDraft, draftstore.Patch{bankinfo.InputAccountNumber: nil}))
	require.ErrorIs(t, svc.Link(ctx), ErrNoDraft, "a no-match plaid submit leaves nothing to link")
}

func TestBankFlowEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	store := draftstore.NewMemoryStore()
	accounts := repository.NewBankAccountRepo(db)
	svc := &BankAccountService{Store: store, Accounts: accounts}
	fixtures := &FixtureService{Store: store}
	require.NoError(t, fixtures.SavePlaid(ctx, bankinfo.PlaidData{
		BankName: "Chase",
		BankAccounts: []bankinfo.PlaidBankAccount{
			{PlaidAccountID: "acc-9", RoutingNumber: "011000015", AccountNumber: "999988887777", Mask: "7777"},
		},
	}))

	done := false
	flow := bankinfo.NewFlow(store, svc, func() { done = true })
	apply := func() {
		for _, k := range flow.Keys() {
			rec, ok, err := store.Get(ctx, k)
			require.NoError(t, err)
			require.NoError(t, flow.Apply(ctx, draftstore.Snapshot{Key: k, Record: rec, Present: ok}))
		}
	}
	require.NoError(t, flow.ChooseSubStep(ctx, bankinfo.SubStepPlaid))
	require.NoError(t, flow.Plaid.SelectAccount(ctx, "acc-9"))
	apply()
	require.True(t, flow.Plaid.IsSubmitVisible())
	require.NoError(t, flow.Plaid.SetAcceptTerms(ctx, true))
	_, err := flow.Plaid.Next(ctx)
	require.NoError(t, err)
	apply()
	require.Equal(t, bankinfo.ScreenConfirm, flow.Screen())
	require.Equal(t, "7777", flow.Confirm.Summary().Mask)

	_, err = flow.Confirm.Next(ctx)
	require.NoError(t, err)
	require.True(t, done)
	list, err := accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].SecretRef, "no credential in the fixture")
}

func TestCustomSegmentAdd(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	store := draftstore.NewMemoryStore()
	svc := &CustomSegmentService{Store: store, Segments: repository.NewCustomSegmentRepo(db)}

	require.ErrorIs(t, svc.Add(ctx, "pol"), ErrNoDraft)

	values := draftstore.Patch{
		netsuite.InputCustomSegmentType: netsuite.RecordTypeCustomSegment,
		netsuite.InputSegmentName:       "Department",
		netsuite.InputInternalID:        "12",
		netsuite.InputScriptID:          "cseg_dept",
		netsuite.InputMapping:           netsuite.MappingTag,
	}
	require.NoError(t, store.Merge(ctx, netsuite.KeyAddFormDraft, values))
	require.NoError(t, svc.Add(ctx, "pol"))
	_, ok, err := store.Get(ctx, netsuite.KeyAddFormDraft)
	require.NoError(t, err)
	require.False(t, ok)

	policy, err := svc.Policy(ctx, "pol")
	require.NoError(t, err)
	require.Len(t, policy.CustomSegments, 1)
	require.Equal(t, "cseg_dept", policy.CustomSegments[0].ScriptID)

	values[netsuite.InputScriptID] = "CSEG_DEPT"
	values[netsuite.InputSegmentName] = "Other"
	values[netsuite.InputInternalID] = "13"
	require.NoError(t, store.Merge(ctx, netsuite.KeyAddFormDraft, values))
	err = svc.Add(ctx, "pol")
	require.ErrorIs(t, err, form.ErrDuplicateValue)

	require.NoError(t, svc.Add(ctx, "other-policy"), "uniqueness is per policy")
}

func TestLoadPlaidFixture(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	path := filepath.Join(t.TempDir(), "plaid.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
bank_name = "Chase"
access_token = "access-sandbox-x"

[[accounts]]
plaid_account_id = "acc-1"
routing_number = "011000015"
account_number = "1111222233"
mask = "2233"

[[accounts]]
plaid_account_id = "acc-2"
routing_number = "011000015"
account_number = "4444555566"
mask = "5566"
is_savings = true
`), 0o600))

	store := draftstore.NewMemoryStore()
	svc := &FixtureService{Store: store}
	data, err := svc.LoadPlaid(ctx, path)
	require.NoError(t, err)
	require.Len(t, data.BankAccounts, 2)

	rec, ok, err := store.Get(ctx, bankinfo.KeyPlaidData)
	require.NoError(t, err)
	got, err := bankinfo.DecodePlaidData(rec, ok)
	require.NoError(t, err)
	require.Equal(t, "access-sandbox-x", got.PlaidAccessToken)
	acct, found := got.Find("acc-2")
	require.True(t, found)
	require.True(t, acct.IsSavings)

	require.NoError(t, os.WriteFile(path, []byte("[[accounts]]\nmask = \"1\"\n"), 0o600))
	_, err = svc.LoadPlaid(ctx, path)
	require.ErrorContains(t, err, "plaid_account_id required")
}

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	require.NoError(t, database.SeedDefaults(ctx, db))
	store := draftstore.NewSQLStore(db)
	sec, err := secrets.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sec.Put("plaid:x", "token"))

	require.NoError(t, store.Merge(ctx, bankinfo.KeyReimbursementAccountDraft, draftstore.Patch{"a": 1}))
	sub := store.Subscribe(bankinfo.KeyReimbursementAccountDraft)
	defer sub.Close()
	<-sub.C()

	segs := repository.NewCustomSegmentRepo(db)
	require.NoError(t, segs.Insert(ctx, repository.CustomSegment{ID: "s1", PolicyID: "p", RecordType: "customSegment", SegmentName: "n", InternalID: "i", ScriptID: "s", Mapping: "TAG"}))

	svc := &MaintenanceService{DB: db, Store: store, Secrets: sec}
	require.NoError(t, svc.Reset(ctx))

	select {
	case snap := <-sub.C():
		require.False(t, snap.Present)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not told about reset")
	}
	list, err := segs.ListByPolicy(ctx, "p")
	require.NoError(t, err)
	require.Empty(t, list)
	_, err = sec.Get("plaid:x")
	require.ErrorIs(t, err, secrets.ErrNotFound)

	contacts, err := repository.NewContactRepo(db).List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, contacts, "defaults are reseeded")
}

func TestContactOptions(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	require.NoError(t, database.SeedDefaults(ctx, db))
	svc := &ContactService{Contacts: repository.NewContactRepo(db)}

	opts, err := svc.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 5)
	last := opts[len(opts)-1]
	require.NoError(t, svc.Open(ctx, last.ID))

	opts, err = svc.Options(ctx)
	require.NoError(t, err)
	require.Equal(t, last.ID, opts[0].ID, "recently used first")
}

type fakeSecrets struct{ values map[string]string }

func (f *fakeSecrets) Put(name, value string) error {
	f.values[name] = value
	return nil
}

func (f *fakeSecrets) Delete(name string) error {
	delete(f.values, name)
	return nil
}

func TestLinkDropsCredentialWhenInsertFails(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	db := openDB(t)
	store := draftstore.NewMemoryStore()
	require.NoError(t, store.Merge(ctx, bankinfo.KeyReimbursementAccountDraft, draftstore.Patch{
		bankinfo.InputRoutingNumber:    "011000015",
		bankinfo.InputAccountNumber:    "1111222233",
		bankinfo.InputPlaidAccessToken: "access-sandbox-1",
	}))
	sec := &fakeSecrets{values: map[string]string{}}
	svc := &BankAccountService{Store: store, Accounts: repository.NewBankAccountRepo(db), Secrets: sec}
	require.NoError(t, db.Close())

	err := svc.Link(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert account")
	require.Empty(t, sec.values, "no credential outlives a failed link")

	_, ok, err := store.Get(ctx, bankinfo.KeyReimbursementAccountDraft)
	require.NoError(t, err)
	require.True(t, ok, "the draft stays for a retry")
}
