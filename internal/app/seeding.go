package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/domain"
)

type Seeder struct {
	repo  domain.ListingRepository
	mem   domain.FallbackStore
	cache domain.Cache
}

func NewSeeder(r domain.ListingRepository, mem domain.FallbackStore) *Seeder {
	return &Seeder{repo: r, mem: mem}
}

// Bootstrap applies the schema and seeds the durable store when it is empty.
// Any failure falls back to seeding memory, but only if memory is still empty.
func (s *Seeder) Bootstrap(ctx context.Context) error {
	if err := s.repo.Migrate(ctx); err != nil {
		s.fallback(err)
		return fmt.Errorf("migrate: %w", err)
	}
	return s.SeedIfEmpty(ctx)
}

// SeedIfEmpty inserts the seed catalog in one batch when the store has no listings.
func (s *Seeder) SeedIfEmpty(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.fallback(err)
		return fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		observability.ObserveSeed(SourceMySQL, "skipped")
		log.Debug().Int("count", n).Msg("listing store already populated")
		return nil
	}
	if err := s.repo.InsertMany(ctx, domain.SeedListings()); err != nil {
		s.fallback(err)
		return fmt.Errorf("seed: %w", err)
	}
	observability.ObserveSeed(SourceMySQL, "seeded")
	log.Info().Int("count", len(domain.SeedListings())).Msg("seeded listings")
	s.InvalidateSearches(ctx)
	return nil
}

// SeedMemory unconditionally replaces the fallback set.
func (s *Seeder) SeedMemory() {
	s.mem.Replace(domain.MemorySeedListings())
	observability.ObserveSeed(SourceMemory, "seeded")
	log.Info().Msg("seeded in-memory listings")
}

// SeedMemoryIfEmpty seeds the fallback set unless an earlier path already did.
func (s *Seeder) SeedMemoryIfEmpty() bool {
	if !s.mem.ReplaceIfEmpty(domain.MemorySeedListings()) {
		observability.ObserveSeed(SourceMemory, "skipped")
		return false
	}
	observability.ObserveSeed(SourceMemory, "seeded")
	log.Info().Msg("seeded in-memory listings")
	return true
}

func (s *Seeder) fallback(err error) {
	observability.ObserveSeed(SourceMySQL, "failed")
	log.Error().Err(err).Msg("seeding listing store failed")
	s.SeedMemoryIfEmpty()
}
