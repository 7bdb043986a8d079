package bankinfo

import (
	"context"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// Screen identifies what the wizard currently shows.
type Screen int

const (
	ScreenChoose Screen = iota
	ScreenPlaid
	ScreenManual
	ScreenConfirm
)

func (s Screen) String() string {
	switch s {
	case ScreenPlaid:
		return "plaid"
	case ScreenManual:
		return "manual"
	case ScreenConfirm:
		return "confirm"
	default:
		return "choose"
	}
}

// Flow is the bank-account wizard shell. The first sub-step is either the
// aggregator picker or manual entry, chosen by the active-substep indicator;
// the second confirms and links.
type Flow struct {
	store   draftstore.Store
	stepper *form.SubStepper
	subStep string

	Plaid   *PlaidStep
	Manual  *ManualStep
	Confirm *ConfirmationStep
}

// NewFlow wires the steps. onFinished runs after a successful link.
func NewFlow(store draftstore.Store, linker Linker, onFinished func()) *Flow {
	f := &Flow{store: store}
	f.stepper = form.NewSubStepper(2, 0, onFinished)
	next := f.stepper.Controller()
	f.Plaid = NewPlaidStep(store, next)
	f.Manual = NewManualStep(store, next)
	f.Confirm = NewConfirmationStep(linker, next)
	return f
}

// Keys lists every store key the flow observes.
func (f *Flow) Keys() []string { return f.Plaid.Keys() }

// Apply routes a snapshot to the steps that read it. Switching to manual
// entry prefills its inputs from the setup draft.
func (f *Flow) Apply(ctx context.Context, snap draftstore.Snapshot) error {
	switch snap.Key {
	case KeyBankAccountSubStep:
		prev := f.subStep
		f.subStep = snap.Record.String(FieldSubStep)
		if f.subStep == SubStepManual && prev != SubStepManual {
			if err := f.Manual.Load(ctx); err != nil {
				return err
			}
		}
	case KeyReimbursementAccountDraft:
		f.Confirm.Apply(snap)
	}
	return f.Plaid.Apply(ctx, snap)
}

func (f *Flow) Screen() Screen {
	if f.stepper.Index() == 1 {
		return ScreenConfirm
	}
	switch f.subStep {
	case SubStepPlaid:
		return ScreenPlaid
	case SubStepManual:
		return ScreenManual
	default:
		return ScreenChoose
	}
}

func (f *Flow) SubStep() string { return f.subStep }

func (f *Flow) Stepper() *form.SubStepper { return f.stepper }

// ChooseSubStep records how the user wants to connect.
func (f *Flow) ChooseSubStep(ctx context.Context, subStep string) error {
	if subStep == SubStepManual {
		if err := f.Manual.Load(ctx); err != nil {
			return err
		}
	}
	return SetSubStep(ctx, f.store, subStep)
}

// Edit returns from confirmation to the first sub-step; its next submit goes
// straight back to confirmation.
func (f *Flow) Edit() { f.stepper.MoveTo(0) }

// Back leaves the current screen. It reports false when the wizard itself
// should close.
func (f *Flow) Back(ctx context.Context) (bool, error) {
	if f.stepper.Prev() {
		return true, nil
	}
	if f.subStep == SubStepNone {
		return false, nil
	}
	return true, SetSubStep(ctx, f.store, SubStepNone)
}
