package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/tokenstore"
)

var _ tokenstore.Store = (*Store)(nil)

// Store is an in-process token store. It also counts calls so tests can
// assert on store traffic.
type Store struct {
	bundle *credentials.Bundle
	lock   sync.RWMutex

	sets   int
	clears int
}

func New() *Store {
	return &Store{}
}

// NewWith returns a store pre-seeded with bundle.
func NewWith(bundle *credentials.Bundle) *Store {
	return &Store{bundle: bundle.Clone()}
}

func (s *Store) Get(_ context.Context) (*credentials.Bundle, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.bundle.Clone(), nil
}

func (s *Store) Set(_ context.Context, bundle *credentials.Bundle) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bundle = bundle.Clone()
	s.sets++
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bundle = nil
	s.clears++
	return nil
}

// Counts returns how many times Set and Clear were called.
func (s *Store) Counts() (sets, clears int) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sets, s.clears
}
