package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/linkwise/internal/draftstore"
)

func requireName(values draftstore.Record) Errors {
	errs := Errors{}
	if !IsRequiredFulfilled(values["name"]) {
		errs.Add("name", KindRequiredFieldMissing, "common.error.fieldRequired")
	}
	return errs
}

func TestSubmitBlockedByValidationNeverCallsHandler(t *testing.T) {
	t.Parallel()
	calls := 0
	f := &Form{ID: "test", Validate: requireName, OnSubmit: func(context.Context, draftstore.Record) error {
		calls++
		return nil
	}}

	errs, err := f.Submit(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrRequiredFieldMissing)
	require.Equal(t, map[string]string{"name": "common.error.fieldRequired"}, errs.Messages())
	require.Equal(t, 0, calls)

	require.NoError(t, f.SetInput(context.Background(), "name", "Ada", false))
	require.False(t, f.Errors().Has("name"), "editing a field clears its error")
	errs, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 1, calls)
}

func TestSubmitWrapsHandlerError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	f := &Form{ID: "x", OnSubmit: func(context.Context, draftstore.Record) error { return boom }}
	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestSetInputSavesDraftOnlyWhenAsked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := draftstore.NewMemoryStore()
	f := &Form{ID: "f", DraftKey: "fDraft", Store: store}

	require.NoError(t, f.SetInput(ctx, "a", "kept-local", false))
	_, ok, err := store.Get(ctx, "fDraft")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, f.SetInput(ctx, "b", "saved", true))
	rec, ok, err := store.Get(ctx, "fDraft")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, draftstore.Record{"b": "saved"}, rec)
}

func TestLoadDraftKeepsLocalValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := draftstore.NewMemoryStore()
	require.NoError(t, store.Merge(ctx, "fDraft", draftstore.Patch{"a": "draft", "b": "draft"}))

	f := &Form{ID: "f", DraftKey: "fDraft", Store: store}
	require.NoError(t, f.SetInput(ctx, "a", "local", false))
	require.NoError(t, f.LoadDraft(ctx))
	require.Equal(t, "local", f.Value("a"))
	require.Equal(t, "draft", f.Value("b"))
}

func TestErrorsFirstRuleWins(t *testing.T) {
	t.Parallel()
	errs := Errors{}
	errs.Add("scriptID", KindRequiredFieldMissing, "required")
	errs.Add("scriptID", KindDuplicateValue, "duplicate")
	require.Equal(t, KindRequiredFieldMissing, errs.Kind("scriptID"))
	require.Nil(t, Errors{}.Err())

	var fe *FieldError
	require.True(t, errors.As(errs.Err(), &fe))
	require.Equal(t, "scriptID", fe.Field)
}

func TestIsRequiredFulfilled(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"blank string", "   ", false},
		{"string", "x", true},
		{"false", false, false},
		{"true", true, true},
		{"zero", 0, false},
		{"float", 1.5, true},
		{"empty slice", []any{}, false},
		{"slice", []string{"a"}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRequiredFulfilled(tt.in))
		})
	}
}

func TestMatchesAnyFoldAndPick(t *testing.T) {
	t.Parallel()
	require.True(t, MatchesAnyFold("abc123", []string{"XYZ", "ABC123"}))
	require.False(t, MatchesAnyFold("abc12", []string{"ABC123"}))

	values := draftstore.Record{"scriptID": "x", "other": "y"}
	require.Equal(t, draftstore.Patch{"scriptID": "x"}, Pick(values, []string{"scriptID", "missing"}))
}

func TestSubStepperSequence(t *testing.T) {
	t.Parallel()
	finished := 0
	s := NewSubStepper(3, 0, func() { finished++ })
	next := s.Controller()

	next()
	require.Equal(t, 1, s.Index())
	next()
	require.True(t, s.IsLast())
	next()
	require.Equal(t, 1, finished)
	require.Equal(t, 2, s.Index())

	require.True(t, s.Prev())
	require.True(t, s.Prev())
	require.False(t, s.Prev())
	require.Equal(t, 0, s.Index())
}

func TestSubStepperEditingReturnsToLast(t *testing.T) {
	t.Parallel()
	s := NewSubStepper(4, 3, nil)
	s.MoveTo(1)
	require.True(t, s.IsEditing())
	require.Equal(t, 1, s.Index())

	s.Next()
	require.False(t, s.IsEditing())
	require.Equal(t, 3, s.Index())

	s.MoveTo(9)
	require.False(t, s.IsEditing(), "out of range jump is ignored")
}
