package netsuite

import (
	"context"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// Wizard sequences the input screens and the confirmation screen.
type Wizard struct {
	store   draftstore.Store
	policy  *Policy
	stepper *form.SubStepper

	Steps   []*FieldStep
	Confirm *ConfirmStep
}

// NewWizard builds the wizard for policy. onFinished runs once the entry is
// saved.
func NewWizard(store draftstore.Store, policy *Policy, finalizer Finalizer, onFinished func()) *Wizard {
	w := &Wizard{store: store, policy: policy}
	w.stepper = form.NewSubStepper(len(FieldOrder)+1, 0, onFinished)
	next := w.stepper.Controller()
	editing := w.stepper.IsEditing
	w.Steps = []*FieldStep{
		NewTypeStep(store, policy, next, editing),
		NewNameStep(store, policy, next, editing),
		NewInternalIDStep(store, policy, next, editing),
		NewScriptIDStep(store, policy, next, editing),
		NewMappingStep(store, policy, next, editing),
	}
	w.Confirm = NewConfirmStep(policy, finalizer, next)
	return w
}

// Keys lists the store keys the wizard observes.
func (w *Wizard) Keys() []string { return []string{KeyAddFormDraft} }

func (w *Wizard) Apply(_ context.Context, snap draftstore.Snapshot) error {
	for _, s := range w.Steps {
		s.Apply(snap)
	}
	w.Confirm.Apply(snap)
	return nil
}

// Current returns the active input screen, or nil on the confirmation screen.
func (w *Wizard) Current() *FieldStep {
	if i := w.stepper.Index(); i < len(w.Steps) {
		return w.Steps[i]
	}
	return nil
}

func (w *Wizard) Stepper() *form.SubStepper { return w.stepper }

// Start prefills the first screen from the draft.
func (w *Wizard) Start(ctx context.Context) error { return w.load(ctx) }

func (w *Wizard) load(ctx context.Context) error {
	if s := w.Current(); s != nil {
		return s.Load(ctx)
	}
	return nil
}

// Next submits the active screen and prefills whatever comes after it.
func (w *Wizard) Next(ctx context.Context) (form.Errors, error) {
	var (
		errs form.Errors
		err  error
	)
	if s := w.Current(); s != nil {
		errs, err = s.Next(ctx)
	} else {
		errs, err = w.Confirm.Next(ctx)
	}
	if err != nil {
		return errs, err
	}
	return errs, w.load(ctx)
}

// Edit jumps to the screen for field from the confirmation screen.
func (w *Wizard) Edit(ctx context.Context, field string) error {
	for i, s := range w.Steps {
		if s.Field() == field {
			w.stepper.MoveTo(i)
			return s.Load(ctx)
		}
	}
	return nil
}

// Back moves one screen back, reporting false on the first screen.
func (w *Wizard) Back(ctx context.Context) (bool, error) {
	if !w.stepper.Prev() {
		return false, nil
	}
	return true, w.load(ctx)
}
