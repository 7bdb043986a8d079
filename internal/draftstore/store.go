// Package draftstore is the key-addressed, observable record store that backs
// every wizard step. Writes are partial merges (last write wins); readers
// subscribe to a key and receive the latest value, or its absence, every time
// it changes.
//
// Delivery to a subscriber is serialized: a subscriber never observes an older
// snapshot after a newer one. Each subscription holds at most one undelivered
// snapshot; a newer write replaces it, so writers never block on slow readers.
package draftstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

var (
	ErrInvalidKey = errors.New("draftstore: invalid key")
	ErrClosed     = errors.New("draftstore: store closed")
)

// Store is the contract every step depends on.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Merge(ctx context.Context, key string, patch Patch) error
	Reset(ctx context.Context, key string) error
	Subscribe(key string) *Subscription
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Snapshot is one observed state of a key.
type Snapshot struct {
	Key     string
	Record  Record
	Present bool
	// Seq increases with every write to the store.
	Seq uint64
}

// ValidateKey rejects empty keys and keys containing whitespace.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidKey, key)
	}
	return nil
}

// Subscription receives snapshots for a single key until closed.
type Subscription struct {
	key string
	ch  chan Snapshot
	hub *hub

	mu     sync.Mutex
	closed bool
}

// Key returns the subscribed key.
func (s *Subscription) Key() string { return s.key }

// C returns the delivery channel. It is closed when the subscription or the
// store is closed.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Close stops delivery. Safe to call more than once.
func (s *Subscription) Close() {
	if s.hub != nil {
		s.hub.remove(s)
	}
	s.shut()
}

func (s *Subscription) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// offer replaces any undelivered snapshot with snap.
func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// hub fans out snapshots to subscribers. Callers hold the owning store's
// write lock while publishing so per-key order matches write order.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	seq  uint64
	done bool
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*Subscription]struct{})}
}

// add registers a subscriber and hands it the initial snapshot. Callers read
// the initial state under their own lock and keep holding it across add.
func (h *hub) add(key string, initial Snapshot) *Subscription {
	sub := &Subscription{key: key, ch: make(chan Snapshot, 1), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		sub.shut()
		return sub
	}
	if h.subs[key] == nil {
		h.subs[key] = make(map[*Subscription]struct{})
	}
	h.subs[key][sub] = struct{}{}
	initial.Key = key
	initial.Seq = h.seq
	sub.offer(initial)
	return sub
}

func (h *hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.key]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.key)
		}
	}
}

func (h *hub) publish(key string, rec Record, present bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	for sub := range h.subs[key] {
		sub.offer(Snapshot{Key: key, Record: rec.Clone(), Present: present, Seq: h.seq})
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	h.done = true
	for key, set := range h.subs {
		for sub := range set {
			sub.shut()
		}
		delete(h.subs, key)
	}
}

// closedSubscription is handed out for invalid keys and closed stores.
func closedSubscription(key string) *Subscription {
	sub := &Subscription{key: key, ch: make(chan Snapshot, 1)}
	sub.shut()
	return sub
}

func (h *hub) closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}
