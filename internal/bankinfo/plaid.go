package bankinfo

import (
	"context"
	"fmt"
	"log"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// MsgAcceptTerms is the error message key for unchecked terms.
const MsgAcceptTerms = "common.error.acceptTerms"

// PlaidStep lets the user pick one aggregator-discovered account and copies
// its details into the setup draft.
//
// The step never reads the store inside its handlers: it works on the
// snapshots last delivered through Apply.
type PlaidStep struct {
	store  draftstore.Store
	onNext form.StepController
	form   *form.Form

	plaidData *PlaidData
	draft     draftstore.Record
	account   draftstore.Record
	subStep   string
	focused   bool
}

// NewPlaidStep builds the step. onNext is invoked once per successful submit.
func NewPlaidStep(store draftstore.Store, onNext form.StepController) *PlaidStep {
	p := &PlaidStep{store: store, onNext: onNext}
	p.form = &form.Form{
		ID:            KeyReimbursementAccount,
		Store:         store,
		Validate:      p.Validate,
		OnSubmit:      p.Submit,
		SubmitVisible: p.SubmitVisible,
	}
	return p
}

// Keys lists the store keys the step observes.
func (p *PlaidStep) Keys() []string {
	return []string{KeyReimbursementAccount, KeyReimbursementAccountDraft, KeyPlaidData, KeyBankAccountSubStep}
}

// Apply takes a store snapshot for one of Keys.
func (p *PlaidStep) Apply(_ context.Context, snap draftstore.Snapshot) error {
	switch snap.Key {
	case KeyReimbursementAccount:
		p.account = snap.Record
	case KeyReimbursementAccountDraft:
		p.draft = snap.Record
	case KeyPlaidData:
		d, err := DecodePlaidData(snap.Record, snap.Present)
		if err != nil {
			return fmt.Errorf("plaid step: %w", err)
		}
		p.plaidData = d
	case KeyBankAccountSubStep:
		p.subStep = snap.Record.String(FieldSubStep)
	}
	return nil
}

// Validate requires the terms checkbox. Account selection is enforced by
// submit visibility, not here.
func (p *PlaidStep) Validate(values draftstore.Record) form.Errors {
	errs := form.Errors{}
	if !values.Bool(InputAcceptTerms) {
		errs.Add(InputAcceptTerms, form.KindRequiredFieldMissing, MsgAcceptTerms)
	}
	return errs
}

// Submit writes the chosen account into the draft and advances. A token
// that matches no candidate writes empty derived fields.
func (p *PlaidStep) Submit(ctx context.Context, _ draftstore.Record) error {
	if err := p.store.Merge(ctx, KeyReimbursementAccountDraft, p.selectionPatch()); err != nil {
		return fmt.Errorf("plaid step: save selection: %w", err)
	}
	if p.onNext != nil {
		p.onNext()
	}
	return nil
}

func (p *PlaidStep) selectionPatch() draftstore.Patch {
	patch := draftstore.Patch{
		InputRoutingNumber:    nil,
		InputAccountNumber:    nil,
		InputPlaidMask:        nil,
		InputIsSavings:        nil,
		InputBankName:         "",
		InputPlaidAccountID:   nil,
		InputPlaidAccessToken: "",
	}
	if p.plaidData != nil {
		patch[InputBankName] = p.plaidData.BankName
		patch[InputPlaidAccessToken] = p.plaidData.PlaidAccessToken
	}
	if acct, ok := p.plaidData.Find(p.SelectedAccountID()); ok {
		patch[InputRoutingNumber] = acct.RoutingNumber
		patch[InputAccountNumber] = acct.AccountNumber
		patch[InputPlaidMask] = acct.Mask
		patch[InputIsSavings] = acct.IsSavings
		patch[InputPlaidAccountID] = acct.PlaidAccountID
	}
	return patch
}

// Next runs validation and, when it passes, Submit.
func (p *PlaidStep) Next(ctx context.Context) (form.Errors, error) {
	return p.form.Submit(ctx)
}

// SetAcceptTerms toggles the terms checkbox. It is a local input.
func (p *PlaidStep) SetAcceptTerms(ctx context.Context, accepted bool) error {
	return p.form.SetInput(ctx, InputAcceptTerms, accepted, false)
}

func (p *PlaidStep) AcceptedTerms() bool {
	v, _ := p.form.Value(InputAcceptTerms).(bool)
	return v
}

// Errors returns the last validation result.
func (p *PlaidStep) Errors() form.Errors { return p.form.Errors() }

// SelectAccount records the chosen token in the draft.
func (p *PlaidStep) SelectAccount(ctx context.Context, plaidAccountID string) error {
	if err := p.store.Merge(ctx, KeyReimbursementAccountDraft, draftstore.Patch{InputPlaidAccountID: plaidAccountID}); err != nil {
		return fmt.Errorf("plaid step: select account: %w", err)
	}
	return nil
}

// ExitPlaid abandons the aggregator flow and returns to the default view.
func (p *PlaidStep) ExitPlaid(ctx context.Context) error {
	return SetSubStep(ctx, p.store, SubStepNone)
}

// SetFocused reports visibility changes. Only a visible to hidden change
// while the indicator names the picker and no candidates exist clears the
// active-substep indicator.
func (p *PlaidStep) SetFocused(ctx context.Context, focused bool) error {
	wasFocused := p.focused
	p.focused = focused
	if focused || !wasFocused {
		return nil
	}
	if p.subStep != SubStepPlaid || len(p.plaidData.Accounts()) > 0 {
		return nil
	}
	log.Printf("plaid step: left with no accounts, clearing substep")
	return SetSubStep(ctx, p.store, SubStepNone)
}

// SubmitVisible is true once a token is chosen and candidates exist.
func (p *PlaidStep) SubmitVisible() bool {
	return p.SelectedAccountID() != "" && len(p.plaidData.Accounts()) > 0
}

// IsSubmitVisible reports the same policy through the form.
func (p *PlaidStep) IsSubmitVisible() bool { return p.form.IsSubmitVisible() }

// Candidates returns the discovered accounts in aggregator order.
func (p *PlaidStep) Candidates() []PlaidBankAccount { return p.plaidData.Accounts() }

// PlaidData returns the last aggregator snapshot; nil when absent.
func (p *PlaidStep) PlaidData() *PlaidData { return p.plaidData }

// SelectedAccountID is derived from the draft.
func (p *PlaidStep) SelectedAccountID() string { return p.draft.String(InputPlaidAccountID) }

// BankAccountID of an already confirmed account, 0 when none.
func (p *PlaidStep) BankAccountID() int64 { return p.account.Int(FieldBankAccountID) }

func (p *PlaidStep) Focused() bool { return p.focused }

// SetSubStep writes the active-substep indicator.
func SetSubStep(ctx context.Context, store draftstore.Store, subStep string) error {
	var v any
	if subStep != SubStepNone {
		v = subStep
	}
	if err := store.Merge(ctx, KeyBankAccountSubStep, draftstore.Patch{FieldSubStep: v}); err != nil {
		return fmt.Errorf("set substep: %w", err)
	}
	return nil
}
