package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/domain"
)

// Supervisor owns the store-availability decision. The MySQL driver has no
// connectivity callbacks, so lost/restored signals come from periodic pings.
type Supervisor struct {
	repo           domain.ListingRepository
	seeder         *Seeder
	status         *Status
	connectTimeout time.Duration
	probeInterval  time.Duration
}

func NewSupervisor(r domain.ListingRepository, seeder *Seeder, status *Status, connectTimeout, probeInterval time.Duration) *Supervisor {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	if probeInterval <= 0 {
		probeInterval = 5 * time.Second
	}
	return &Supervisor{
		repo:           r,
		seeder:         seeder,
		status:         status,
		connectTimeout: connectTimeout,
		probeInterval:  probeInterval,
	}
}

// Start makes the initial connection attempt. On success the store is marked
// available and seeded if empty; otherwise memory is seeded.
func (s *Supervisor) Start(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	err := s.repo.Ping(pctx)
	cancel()

	if err != nil {
		s.seeder.SeedMemory()
		s.status.set(false)
		observability.SetStoreAvailable(false)
		log.Error().Err(err).Msg("listing store connection failed, serving in-memory listings")
		return false
	}

	s.status.set(true)
	observability.SetStoreAvailable(true)
	log.Info().Msg("listing store connected")
	s.bootstrap(ctx)
	return true
}

// Watch probes the store until ctx is done.
func (s *Supervisor) Watch(ctx context.Context) error {
	lim := rate.NewLimiter(rate.Every(s.probeInterval), 1)
	for {
		if err := lim.Wait(ctx); err != nil {
			return nil
		}
		s.Probe(ctx)
	}
}

// Probe pings the store once and applies any connectivity transition.
func (s *Supervisor) Probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	err := s.repo.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.MarkUnavailable(err)
		return
	}
	s.markAvailable(ctx)
}

// MarkUnavailable records a connectivity loss, from a failed probe or a failed
// durable search.
func (s *Supervisor) MarkUnavailable(err error) {
	if !s.status.StoreAvailable() {
		return
	}
	// memory must hold listings before any reader sees the flag drop
	s.seeder.SeedMemoryIfEmpty()
	if !s.status.set(false) {
		return
	}
	observability.SetStoreAvailable(false)
	log.Warn().Err(err).Msg("listing store connection lost")
}

func (s *Supervisor) markAvailable(ctx context.Context) {
	if !s.status.set(true) {
		return
	}
	observability.SetStoreAvailable(true)
	log.Info().Msg("listing store connection restored")
	s.bootstrap(ctx)
}

func (s *Supervisor) bootstrap(ctx context.Context) {
	bctx, cancel := context.WithTimeout(ctx, 2*s.connectTimeout)
	defer cancel()
	if err := s.seeder.Bootstrap(bctx); err != nil {
		log.Warn().Err(err).Msg("listing store bootstrap incomplete")
	}
}
