package draftstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/jask/linkwise/internal/database"
	"github.com/jask/linkwise/internal/database/repository"
)

// SQLStore persists records in the sqlite `drafts` table so drafts survive
// restarts. Writes are serialized through a mutex and each merge runs in its
// own transaction.
type SQLStore struct {
	db   *sql.DB
	repo *repository.DraftRepo
	mu   sync.Mutex
	hub  *hub
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, repo: repository.NewDraftRepo(db), hub: newHub()}
}

func (s *SQLStore) Get(ctx context.Context, key string) (Record, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if s.hub.closed() {
		return nil, false, ErrClosed
	}
	return s.load(ctx, nil, key)
}

func (s *SQLStore) load(ctx context.Context, q repository.Querier, key string) (Record, bool, error) {
	d, err := s.repo.Get(ctx, q, key)
	if err != nil {
		return nil, false, fmt.Errorf("load draft %s: %w", key, err)
	}
	if d == nil {
		return nil, false, nil
	}
	var rec Record
	if err := json.Unmarshal(d.Payload, &rec); err != nil {
		return nil, false, fmt.Errorf("decode draft %s: %w", key, err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, true, nil
}

func (s *SQLStore) Merge(ctx context.Context, key string, patch Patch) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.hub.closed() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var next Record
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cur, _, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}
		next = cur.Merge(patch)
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode draft %s: %w", key, err)
		}
		return s.repo.Upsert(ctx, tx, key, payload)
	})
	if err != nil {
		return fmt.Errorf("merge %s: %w", key, err)
	}
	s.hub.publish(key, next, true)
	return nil
}

func (s *SQLStore) Reset(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.hub.closed() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, err := s.repo.Delete(ctx, nil, key)
	if err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	if removed {
		s.hub.publish(key, nil, false)
	}
	return nil
}

func (s *SQLStore) Subscribe(key string) *Subscription {
	if ValidateKey(key) != nil {
		return closedSubscription(key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok, err := s.load(context.Background(), nil, key)
	if err != nil {
		log.Printf("draftstore: initial snapshot for %s: %v", key, err)
	}
	return s.hub.add(key, Snapshot{Record: rec, Present: ok})
}

// Keys lists persisted keys in lexical order.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	drafts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.Key)
	}
	return out, nil
}

// Close ends every subscription. The *sql.DB stays owned by the caller.
func (s *SQLStore) Close() error {
	s.hub.close()
	return nil
}
