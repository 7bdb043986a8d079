package bankinfo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// Linker turns a completed setup draft into a linked account.
type Linker interface {
	Link(ctx context.Context) error
}

// Summary is what the confirmation screen shows.
type Summary struct {
	BankName    string
	Mask        string
	AccountType string
	Routing     string
	ViaPlaid    bool
}

// ConfirmationStep shows the draft and links the account on submit.
type ConfirmationStep struct {
	linker Linker
	onNext form.StepController
	form   *form.Form
	draft  draftstore.Record
}

func NewConfirmationStep(linker Linker, onNext form.StepController) *ConfirmationStep {
	c := &ConfirmationStep{linker: linker, onNext: onNext}
	c.form = &form.Form{ID: KeyReimbursementAccount, OnSubmit: c.Submit}
	return c
}

func (c *ConfirmationStep) Apply(snap draftstore.Snapshot) {
	if snap.Key == KeyReimbursementAccountDraft {
		c.draft = snap.Record
	}
}

func (c *ConfirmationStep) Summary() Summary {
	mask := c.draft.String(InputPlaidMask)
	if mask == "" {
		mask = lastFour(c.draft.String(InputAccountNumber))
	}
	return Summary{
		BankName:    c.draft.String(InputBankName),
		Mask:        mask,
		AccountType: AccountType(c.draft.Bool(InputIsSavings)),
		Routing:     c.draft.String(InputRoutingNumber),
		ViaPlaid:    c.draft.String(InputPlaidAccountID) != "",
	}
}

// Lines renders the summary as label/value lines.
func (s Summary) Lines() []string {
	bank := s.BankName
	if strings.TrimSpace(bank) == "" {
		bank = "-"
	}
	return []string{
		"Bank: " + bank,
		"Account: ••••" + s.Mask,
		"Type: " + s.AccountType,
		"Routing: " + s.Routing,
	}
}

func (c *ConfirmationStep) Submit(ctx context.Context, _ draftstore.Record) error {
	if c.linker != nil {
		if err := c.linker.Link(ctx); err != nil {
			return fmt.Errorf("link account: %w", err)
		}
	}
	if c.onNext != nil {
		c.onNext()
	}
	return nil
}

func (c *ConfirmationStep) Next(ctx context.Context) (form.Errors, error) { return c.form.Submit(ctx) }
