package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"staysearch/internal/domain"
)

// WithCache makes the seeder evict cached search results after it writes to the
// durable store, so searches cached against an empty store are not served again.
func (s *Seeder) WithCache(c domain.Cache) *Seeder {
	s.cache = c
	return s
}

// InvalidateSearches drops every cached listing search. Eviction is best-effort:
// a failure is logged and never fails the write that preceded it.
func (s *Seeder) InvalidateSearches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.DelPrefix(ctx, domain.CacheKeyPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("evict cached searches failed")
		return
	}
	log.Debug().Int("keys", n).Msg("evicted cached searches")
}
