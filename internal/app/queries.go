package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/domain"
)

// connectivityReporter is told when a durable search hits a dead connection.
type connectivityReporter interface {
	MarkUnavailable(err error)
}

type QueryService struct {
	repo     domain.ListingRepository
	mem      domain.FallbackStore
	status   *Status
	reporter connectivityReporter
	cache    domain.Cache
	cacheTTL time.Duration
	timeout  time.Duration
	group    singleflight.Group
}

func NewQueryService(r domain.ListingRepository, mem domain.FallbackStore, status *Status, reporter connectivityReporter, c domain.Cache, ttl, timeout time.Duration) *QueryService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &QueryService{repo: r, mem: mem, status: status, reporter: reporter, cache: c, cacheTTL: ttl, timeout: timeout}
}

// Search returns the listings of the active source that match f. A durable-store
// connectivity failure degrades to the in-memory set; any other failure is returned.
func (s *QueryService) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	if s.status.StoreAvailable() {
		ls, err := s.searchStore(ctx, f)
		if err == nil {
			return ls, nil
		}
		observability.ObserveSearch(SourceMySQL, err)
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, fmt.Errorf("search listings: %w", err)
		}
		log.Warn().Err(err).Msg("listing store unreachable during search, using in-memory listings")
		if s.reporter != nil {
			s.reporter.MarkUnavailable(err)
		}
	}

	ls := s.mem.Search(f)
	observability.ObserveSearch(SourceMemory, nil)
	return ls, nil
}

func (s *QueryService) searchStore(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	key := f.CacheKey()
	if s.cache != nil {
		var cached []domain.Listing
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
			observability.ObserveSearch(SourceCache, nil)
			return cached, nil
		} else if err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache get failed")
		}
	}

	// Identical concurrent searches share one query. The shared call must not
	// die with whichever caller happened to start it.
	v, err, _ := s.group.Do(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		ls, err := s.repo.Search(qctx, f)
		if err != nil {
			return nil, err
		}
		observability.ObserveSearch(SourceMySQL, nil)
		if s.cache != nil && s.cacheTTL > 0 {
			if err := s.cache.Set(qctx, key, ls, int(s.cacheTTL.Seconds())); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("cache set failed")
			}
		}
		return ls, nil
	})
	if err != nil {
		return nil, err
	}
	// copy slice to avoid aliasing between callers that shared the flight
	shared := v.([]domain.Listing)
	out := make([]domain.Listing, len(shared))
	copy(out, shared)
	return out, nil
}
