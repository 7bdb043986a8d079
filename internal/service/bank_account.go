package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jask/linkwise/internal/bankinfo"
	"github.com/jask/linkwise/internal/database/repository"
	"github.com/jask/linkwise/internal/draftstore"
)

// ErrNoDraft means the setup draft lacks what linking needs.
var ErrNoDraft = errors.New("no completed bank account draft")

// SecretWriter stores aggregator credentials outside the database.
type SecretWriter interface {
	Put(name, value string) error
	Delete(name string) error
}

// BankAccountService turns the setup draft into a linked account.
type BankAccountService struct {
	Store    draftstore.Store
	Accounts *repository.BankAccountRepo
	Secrets  SecretWriter
}

// SecretName is the secrets key holding the access credential of account id.
func SecretName(accountID string) string { return "plaid:" + accountID }

// Link persists the account described by the setup draft, records it as the
// confirmed account and clears the draft and the aggregator payload.
func (s *BankAccountService) Link(ctx context.Context) error {
	draft, ok, err := s.Store.Get(ctx, bankinfo.KeyReimbursementAccountDraft)
	if err != nil {
		return fmt.Errorf("link: read draft: %w", err)
	}
	if !ok || draft.String(bankinfo.InputAccountNumber) == "" || draft.String(bankinfo.InputRoutingNumber) == "" {
		return ErrNoDraft
	}

	acct := repository.BankAccount{
		ID:             uuid.NewString(),
		PlaidAccountID: draft.String(bankinfo.InputPlaidAccountID),
		BankName:       draft.String(bankinfo.InputBankName),
		RoutingNumber:  draft.String(bankinfo.InputRoutingNumber),
		AccountNumber:  draft.String(bankinfo.InputAccountNumber),
		Mask:           draft.String(bankinfo.InputPlaidMask),
		IsSavings:      draft.Bool(bankinfo.InputIsSavings),
	}
	if token := draft.String(bankinfo.InputPlaidAccessToken); token != "" && s.Secrets != nil {
		name := SecretName(acct.ID)
		if err := s.Secrets.Put(name, token); err != nil {
			return fmt.Errorf("link: store credential: %w", err)
		}
		acct.SecretRef = &name
	}
	seq, err := s.Accounts.Insert(ctx, acct)
	if err != nil {
		if acct.SecretRef != nil {
			if derr := s.Secrets.Delete(*acct.SecretRef); derr != nil {
				log.Printf("link: drop credential %s: %v", *acct.SecretRef, derr)
			}
		}
		return fmt.Errorf("link: insert account: %w", err)
	}

	confirmed, err := draftstore.Encode(bankinfo.ReimbursementAccount{
		BankAccountID: seq,
		AccountID:     acct.ID,
		BankName:      acct.BankName,
		Mask:          acct.Mask,
		IsSavings:     acct.IsSavings,
		State:         bankinfo.StateLinked,
	})
	if err != nil {
		return fmt.Errorf("link: encode account: %w", err)
	}
	if err := s.Store.Merge(ctx, bankinfo.KeyReimbursementAccount, confirmed); err != nil {
		return fmt.Errorf("link: save account: %w", err)
	}
	for _, k := range []string{bankinfo.KeyReimbursementAccountDraft, bankinfo.KeyPlaidData, bankinfo.KeyBankAccountSubStep} {
		if err := s.Store.Reset(ctx, k); err != nil {
			return fmt.Errorf("link: reset %s: %w", k, err)
		}
	}
	log.Printf("linked bank account %s (%s ••••%s)", acct.ID, acct.BankName, acct.Mask)
	return nil
}

// Confirmed returns the confirmed account record, if any.
func (s *BankAccountService) Confirmed(ctx context.Context) (*bankinfo.ReimbursementAccount, error) {
	rec, ok, err := s.Store.Get(ctx, bankinfo.KeyReimbursementAccount)
	if err != nil || !ok {
		return nil, err
	}
	var a bankinfo.ReimbursementAccount
	if err := draftstore.Decode(rec, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
