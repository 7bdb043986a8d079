package netsuite

import (
	"context"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// FieldStep is one input screen of the wizard. The record type read from the
// form draft only changes its copy.
type FieldStep struct {
	spec      fieldSpec
	store     draftstore.Store
	policy    *Policy
	onNext    form.StepController
	isEditing func() bool
	form      *form.Form
	draft     draftstore.Record
}

func newFieldStep(field string, store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	s := &FieldStep{
		spec:      fieldSpecs[field],
		store:     store,
		policy:    policy,
		onNext:    onNext,
		isEditing: isEditing,
	}
	if s.isEditing == nil {
		s.isEditing = func() bool { return false }
	}
	s.form = &form.Form{
		ID:       FormID,
		DraftKey: KeyAddFormDraft,
		Store:    store,
		Validate: s.Validate,
		OnSubmit: s.Submit,
	}
	return s
}

func NewTypeStep(store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	return newFieldStep(InputCustomSegmentType, store, policy, onNext, isEditing)
}

func NewNameStep(store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	return newFieldStep(InputSegmentName, store, policy, onNext, isEditing)
}

func NewInternalIDStep(store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	return newFieldStep(InputInternalID, store, policy, onNext, isEditing)
}

// NewScriptIDStep asks for the script id. Empty input is RequiredFieldMissing
// and a case-insensitive match with a configured script id is DuplicateValue.
func NewScriptIDStep(store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	return newFieldStep(InputScriptID, store, policy, onNext, isEditing)
}

func NewMappingStep(store draftstore.Store, policy *Policy, onNext form.StepController, isEditing func() bool) *FieldStep {
	return newFieldStep(InputMapping, store, policy, onNext, isEditing)
}

func (s *FieldStep) Field() string { return s.spec.field }

// Apply takes a snapshot of the form draft.
func (s *FieldStep) Apply(snap draftstore.Snapshot) {
	if snap.Key == KeyAddFormDraft {
		s.draft = snap.Record
	}
}

// Load prefills the input from the form draft.
func (s *FieldStep) Load(ctx context.Context) error { return s.form.LoadDraft(ctx) }

func (s *FieldStep) RecordType() string { return RecordType(s.draft) }

func (s *FieldStep) Label() string  { return s.spec.Label(s.RecordType()) }
func (s *FieldStep) Title() string  { return s.spec.Title(s.RecordType()) }
func (s *FieldStep) Footer() string { return s.spec.Footer(s.RecordType()) }

// Options lists the allowed values of choice fields; nil for free text.
func (s *FieldStep) Options() []string { return s.spec.oneOf }

func (s *FieldStep) Value() string {
	v, _ := s.form.Value(s.spec.field).(string)
	return v
}

// SetInput updates the input as typed. Outside editing the value is saved to
// the form draft immediately.
func (s *FieldStep) SetInput(ctx context.Context, value string) error {
	return s.form.SetInput(ctx, s.spec.field, value, !s.isEditing())
}

// Validate checks the step's input. The record type comes from the draft
// rather than the values so copy stays consistent.
func (s *FieldStep) Validate(values draftstore.Record) form.Errors {
	v := draftstore.Record{}
	for k, val := range values {
		v[k] = val
	}
	if _, ok := v[InputCustomSegmentType]; !ok && s.spec.field != InputCustomSegmentType {
		v[InputCustomSegmentType] = s.RecordType()
	}
	return ValidateField(s.spec.field, v, s.policy)
}

func (s *FieldStep) Submit(ctx context.Context, values draftstore.Record) error {
	return NewAddFormSubmit(s.store, []string{s.spec.field}, s.onNext, s.isEditing())(ctx, values)
}

func (s *FieldStep) Next(ctx context.Context) (form.Errors, error) { return s.form.Submit(ctx) }

func (s *FieldStep) Errors() form.Errors { return s.form.Errors() }

// Finalizer stores a completed entry for a policy.
type Finalizer interface {
	Add(ctx context.Context, policyID string) error
}

// ConfirmStep shows the collected inputs and saves the entry.
type ConfirmStep struct {
	policy    *Policy
	finalizer Finalizer
	onNext    form.StepController
	form      *form.Form
	draft     draftstore.Record
}

func NewConfirmStep(policy *Policy, finalizer Finalizer, onNext form.StepController) *ConfirmStep {
	c := &ConfirmStep{policy: policy, finalizer: finalizer, onNext: onNext}
	c.form = &form.Form{ID: FormID, OnSubmit: c.Submit}
	return c
}

func (c *ConfirmStep) Apply(snap draftstore.Snapshot) {
	if snap.Key == KeyAddFormDraft {
		c.draft = snap.Record
	}
}

// Segment is the entry as it will be saved.
func (c *ConfirmStep) Segment() CustomSegment { return SegmentFromValues(c.draft) }

func (c *ConfirmStep) Submit(ctx context.Context, _ draftstore.Record) error {
	if c.finalizer != nil {
		policyID := ""
		if c.policy != nil {
			policyID = c.policy.ID
		}
		if err := c.finalizer.Add(ctx, policyID); err != nil {
			return err
		}
	}
	if c.onNext != nil {
		c.onNext()
	}
	return nil
}

func (c *ConfirmStep) Next(ctx context.Context) (form.Errors, error) { return c.form.Submit(ctx) }
