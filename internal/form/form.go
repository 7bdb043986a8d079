// Package form is the generic multi-step form engine: validators pure in the
// current field values, submit handlers that run only when validation passes,
// input drafts persisted through the draft store, and the sub-step sequencer
// that owns the step position.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/linkwise/internal/draftstore"
)

// Validator maps current field values to errors. It must not touch the store.
type Validator func(values draftstore.Record) Errors

// StepController moves the wizard forward. Steps call it exactly once per
// successful submission.
type StepController func()

// SubmitFunc handles values that passed validation.
type SubmitFunc func(ctx context.Context, values draftstore.Record) error

// Form holds the live input values of one step.
type Form struct {
	ID string
	// DraftKey is where inputs that opt into draft saving are persisted.
	DraftKey string
	Store    draftstore.Store
	Validate Validator
	OnSubmit SubmitFunc
	// SubmitVisible decides whether the submit affordance is shown. It gates
	// nothing; Submit works regardless.
	SubmitVisible func() bool

	values draftstore.Record
	errors Errors
}

// LoadDraft prefills values from the form draft, keeping values already set.
func (f *Form) LoadDraft(ctx context.Context) error {
	if f.DraftKey == "" || f.Store == nil {
		return nil
	}
	rec, ok, err := f.Store.Get(ctx, f.DraftKey)
	if err != nil {
		return fmt.Errorf("form %s: load draft: %w", f.ID, err)
	}
	if !ok {
		return nil
	}
	if f.values == nil {
		f.values = draftstore.Record{}
	}
	for k, v := range rec {
		if _, set := f.values[k]; !set {
			f.values[k] = v
		}
	}
	return nil
}

// SetInput stores an input value and clears that field's error. With
// saveDraft the value is also merged into the form draft.
func (f *Form) SetInput(ctx context.Context, field string, value any, saveDraft bool) error {
	if f.values == nil {
		f.values = draftstore.Record{}
	}
	f.values[field] = value
	delete(f.errors, field)
	if !saveDraft || f.DraftKey == "" || f.Store == nil {
		return nil
	}
	if err := f.Store.Merge(ctx, f.DraftKey, draftstore.Patch{field: value}); err != nil {
		return fmt.Errorf("form %s: save draft %s: %w", f.ID, field, err)
	}
	return nil
}

// Value returns the current value of field.
func (f *Form) Value(field string) any { return f.values[field] }

// Values returns a copy of the current values.
func (f *Form) Values() draftstore.Record {
	if f.values == nil {
		return draftstore.Record{}
	}
	return f.values.Clone()
}

// Errors returns the errors from the last submit or Check.
func (f *Form) Errors() Errors { return f.errors }

// IsSubmitVisible reports the presentation policy for the submit affordance.
func (f *Form) IsSubmitVisible() bool {
	if f.SubmitVisible == nil {
		return true
	}
	return f.SubmitVisible()
}

// Check runs validation without submitting.
func (f *Form) Check() Errors {
	errs := Errors{}
	if f.Validate != nil {
		if got := f.Validate(f.Values()); got != nil {
			errs = got
		}
	}
	f.errors = errs
	return errs
}

// Submit validates the current values and hands them to OnSubmit when
// valid. A blocked submission returns the errors and a *ValidationError.
func (f *Form) Submit(ctx context.Context) (Errors, error) {
	errs := f.Check()
	if len(errs) > 0 {
		return errs, errs.Err()
	}
	if f.OnSubmit == nil {
		return errs, nil
	}
	if err := f.OnSubmit(ctx, f.Values()); err != nil {
		return errs, fmt.Errorf("form %s: submit: %w", f.ID, err)
	}
	return errs, nil
}

// IsRequiredFulfilled reports whether v counts as provided: non-blank
// strings, true, non-zero numbers and non-empty collections.
func IsRequiredFulfilled(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// MatchesAnyFold reports whether value equals any of existing, ignoring case.
func MatchesAnyFold(value string, existing []string) bool {
	for _, e := range existing {
		if strings.EqualFold(e, value) {
			return true
		}
	}
	return false
}

// Pick copies the listed fields out of values. Missing fields are skipped.
func Pick(values draftstore.Record, fields []string) draftstore.Patch {
	out := make(draftstore.Patch, len(fields))
	for _, f := range fields {
		if v, ok := values[f]; ok {
			out[f] = v
		}
	}
	return out
}
