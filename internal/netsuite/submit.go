package netsuite

import (
	"context"
	"fmt"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// NewAddFormSubmit returns the submit handler shared by the add and edit
// screens. With shouldSaveDraft the governed fields are written to the form
// draft before advancing; otherwise the inputs have already saved themselves
// and the handler only advances.
func NewAddFormSubmit(store draftstore.Store, fieldIDs []string, next form.StepController, shouldSaveDraft bool) form.SubmitFunc {
	return func(ctx context.Context, values draftstore.Record) error {
		if shouldSaveDraft {
			if err := store.Merge(ctx, KeyAddFormDraft, form.Pick(values, fieldIDs)); err != nil {
				return fmt.Errorf("save %v: %w", fieldIDs, err)
			}
		}
		if next != nil {
			next()
		}
		return nil
	}
}
