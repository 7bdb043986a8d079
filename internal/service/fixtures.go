package service

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/jask/linkwise/internal/bankinfo"
	"github.com/jask/linkwise/internal/draftstore"
)

// FixtureService feeds aggregator results into the store in place of a live
// aggregator connection.
type FixtureService struct {
	Store draftstore.Store
}

// LoadPlaid parses a TOML aggregation result and stores it.
//
//	bank_name = "Chase"
//	access_token = "access-sandbox-..."
//
//	[[accounts]]
//	plaid_account_id = "acc-1"
//	routing_number = "011000015"
//	account_number = "1111222233"
//	mask = "2233"
//	is_savings = false
func (s *FixtureService) LoadPlaid(ctx context.Context, path string) (*bankinfo.PlaidData, error) {
	var data bankinfo.PlaidData
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := s.SavePlaid(ctx, data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SavePlaid replaces the aggregator payload with data.
func (s *FixtureService) SavePlaid(ctx context.Context, data bankinfo.PlaidData) error {
	for i, a := range data.BankAccounts {
		if a.PlaidAccountID == "" {
			return fmt.Errorf("account %d: plaid_account_id required", i)
		}
	}
	patch, err := draftstore.Encode(data)
	if err != nil {
		return fmt.Errorf("encode plaid data: %w", err)
	}
	if err := s.Store.Reset(ctx, bankinfo.KeyPlaidData); err != nil {
		return fmt.Errorf("reset plaid data: %w", err)
	}
	if err := s.Store.Merge(ctx, bankinfo.KeyPlaidData, patch); err != nil {
		return fmt.Errorf("save plaid data: %w", err)
	}
	return nil
}
