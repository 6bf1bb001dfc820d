package memory

import (
	"sync"

	"staysearch/internal/domain"
)

// Store keeps the fallback listing set. Writes happen only on the startup and
// connectivity-loss paths; searches take a read lock.
type Store struct {
	mu       sync.RWMutex
	listings []domain.Listing
}

func New() *Store { return &Store{} }

// Replace swaps the whole listing set.
func (s *Store) Replace(ls []domain.Listing) {
	cp := copyListings(ls)
	s.mu.Lock()
	s.listings = cp
	s.mu.Unlock()
}

// ReplaceIfEmpty writes ls only when the store holds nothing yet and reports
// whether it did. The check and the write happen under one lock, so racing
// seeders leave exactly one winner.
func (s *Store) ReplaceIfEmpty(ls []domain.Listing) bool {
	cp := copyListings(ls)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listings) > 0 {
		return false
	}
	s.listings = cp
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

// Search scans the set with the shared listing predicate.
func (s *Store) Search(f domain.ListingFilter) []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyListings(f.Apply(s.listings))
}

// copy slice to avoid aliasing the caller's backing arrays
func copyListings(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(in))
	for i, l := range in {
		out[i] = l
		if l.Bookings != nil {
			out[i].Bookings = append([]domain.Booking(nil), l.Bookings...)
		}
	}
	return out
}
