package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/linkwise/internal/database/repository"
	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/netsuite"
)

// CustomSegmentService persists NetSuite custom segments.
type CustomSegmentService struct {
	Store    draftstore.Store
	Segments *repository.CustomSegmentRepo
}

// Policy loads the configured segments of policyID.
func (s *CustomSegmentService) Policy(ctx context.Context, policyID string) (*netsuite.Policy, error) {
	rows, err := s.Segments.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}
	p := &netsuite.Policy{ID: policyID}
	for _, r := range rows {
		p.CustomSegments = append(p.CustomSegments, netsuite.CustomSegment{
			RecordType:  r.RecordType,
			SegmentName: r.SegmentName,
			InternalID:  r.InternalID,
			ScriptID:    r.ScriptID,
			Mapping:     r.Mapping,
		})
	}
	return p, nil
}

// Add saves the add-form draft as a segment of policyID and clears the draft.
// The draft is validated again against the stored segments.
func (s *CustomSegmentService) Add(ctx context.Context, policyID string) error {
	draft, ok, err := s.Store.Get(ctx, netsuite.KeyAddFormDraft)
	if err != nil {
		return fmt.Errorf("add segment: read draft: %w", err)
	}
	if !ok {
		return ErrNoDraft
	}
	policy, err := s.Policy(ctx, policyID)
	if err != nil {
		return err
	}
	if errs := netsuite.ValidateSegment(draft, policy); len(errs) > 0 {
		return fmt.Errorf("add segment: %w", errs.Err())
	}
	seg := netsuite.SegmentFromValues(draft)
	if err := s.Segments.Insert(ctx, repository.CustomSegment{
		ID:          uuid.NewString(),
		PolicyID:    policyID,
		RecordType:  seg.RecordType,
		SegmentName: seg.SegmentName,
		InternalID:  seg.InternalID,
		ScriptID:    seg.ScriptID,
		Mapping:     seg.Mapping,
	}); err != nil {
		return fmt.Errorf("add segment: insert: %w", err)
	}
	if err := s.Store.Reset(ctx, netsuite.KeyAddFormDraft); err != nil {
		return fmt.Errorf("add segment: reset draft: %w", err)
	}
	return nil
}
