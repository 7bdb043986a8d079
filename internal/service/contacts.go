package service

import (
	"context"
	"fmt"

	"github.com/jask/linkwise/internal/database/repository"
	"github.com/jask/linkwise/internal/switcher"
)

// ContactService backs the chat switcher.
type ContactService struct {
	Contacts *repository.ContactRepo
}

// Options returns contacts as switcher rows, most recently used first.
func (s *ContactService) Options(ctx context.Context) ([]switcher.Option, error) {
	list, err := s.Contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	out := make([]switcher.Option, 0, len(list))
	for _, c := range list {
		o := switcher.Option{ID: c.ID, Text: c.DisplayName, AlternateText: c.Login, Kind: switcher.Kind(c.Kind)}
		if c.Icon != nil {
			o.Icon = *c.Icon
		}
		out = append(out, o)
	}
	return out, nil
}

// Open records that the user opened a chat with the given contacts.
func (s *ContactService) Open(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := s.Contacts.Touch(ctx, id); err != nil {
			return fmt.Errorf("touch contact %s: %w", id, err)
		}
	}
	return nil
}
