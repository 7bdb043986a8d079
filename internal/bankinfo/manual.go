package bankinfo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

var (
	routingNumberPattern = regexp.MustCompile(`^\d{9}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{4,17}$`)
)

// ManualStep collects routing and account numbers typed by the user. Inputs
// save to the setup draft as they change.
type ManualStep struct {
	store  draftstore.Store
	onNext form.StepController
	form   *form.Form
}

func NewManualStep(store draftstore.Store, onNext form.StepController) *ManualStep {
	m := &ManualStep{store: store, onNext: onNext}
	m.form = &form.Form{
		ID:       KeyReimbursementAccount,
		DraftKey: KeyReimbursementAccountDraft,
		Store:    store,
		Validate: m.Validate,
		OnSubmit: m.Submit,
	}
	return m
}

// Load prefills inputs from the setup draft.
func (m *ManualStep) Load(ctx context.Context) error { return m.form.LoadDraft(ctx) }

// SetInput stores the value as typed; surrounding blanks are dropped at
// validation and submit.
func (m *ManualStep) SetInput(ctx context.Context, field, value string) error {
	return m.form.SetInput(ctx, field, value, true)
}

func (m *ManualStep) Value(field string) string {
	v, _ := m.form.Value(field).(string)
	return v
}

func (m *ManualStep) Validate(values draftstore.Record) form.Errors {
	errs := form.Errors{}
	routing := strings.TrimSpace(values.String(InputRoutingNumber))
	account := strings.TrimSpace(values.String(InputAccountNumber))
	switch {
	case !form.IsRequiredFulfilled(routing):
		errs.Add(InputRoutingNumber, form.KindRequiredFieldMissing, "bankAccount.error.routingNumber")
	case !routingNumberPattern.MatchString(routing):
		errs.Add(InputRoutingNumber, form.KindInvalidValue, "bankAccount.error.routingNumber")
	}
	switch {
	case !form.IsRequiredFulfilled(account):
		errs.Add(InputAccountNumber, form.KindRequiredFieldMissing, "bankAccount.error.accountNumber")
	case !accountNumberPattern.MatchString(account):
		errs.Add(InputAccountNumber, form.KindInvalidValue, "bankAccount.error.accountNumber")
	}
	return errs
}

// Submit clears any aggregator selection and advances.
func (m *ManualStep) Submit(ctx context.Context, values draftstore.Record) error {
	account := strings.TrimSpace(values.String(InputAccountNumber))
	patch := draftstore.Patch{
		InputRoutingNumber:    strings.TrimSpace(values.String(InputRoutingNumber)),
		InputAccountNumber:    account,
		InputPlaidMask:        lastFour(account),
		InputPlaidAccountID:   nil,
		InputPlaidAccessToken: "",
	}
	if err := m.store.Merge(ctx, KeyReimbursementAccountDraft, patch); err != nil {
		return fmt.Errorf("manual step: %w", err)
	}
	if m.onNext != nil {
		m.onNext()
	}
	return nil
}

func (m *ManualStep) Next(ctx context.Context) (form.Errors, error) { return m.form.Submit(ctx) }

func (m *ManualStep) Errors() form.Errors { return m.form.Errors() }

func lastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
