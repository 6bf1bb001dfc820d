package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"staysearch/internal/adapters/observability"
	redisad "staysearch/internal/adapters/redis"
	"staysearch/internal/app"
	"staysearch/internal/domain"
	"staysearch/internal/shared"
	"staysearch/internal/storage/memory"
	mysqlrepo "staysearch/internal/storage/mysql"
)

// waitAttempts bounds how long the seeder waits for a freshly started database.
const waitAttempts = 30

// seeder applies the schema and loads the seed catalog into an empty store, then exits.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
	}
	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	err = run(ctx, repo, cache, cfg)
	_ = db.Close()
	if err != nil {
		log.Error().Err(err).Msg("seeding failed")
		os.Exit(1)
	}
	log.Info().Msg("seeding completed")
}

func run(ctx context.Context, repo *mysqlrepo.Repo, cache domain.Cache, cfg shared.Config) error {
	if err := waitForStore(ctx, repo, cfg.ConnectTimeout, cfg.ProbeInterval); err != nil {
		return err
	}
	bctx, cancel := context.WithTimeout(ctx, 4*cfg.ConnectTimeout)
	defer cancel()
	// memory is unused here; Bootstrap only touches it on failure
	return app.NewSeeder(repo, memory.New()).WithCache(cache).Bootstrap(bctx)
}

func waitForStore(ctx context.Context, repo *mysqlrepo.Repo, connectTimeout, interval time.Duration) error {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	var last error
	for i := 1; i <= waitAttempts; i++ {
		if err := lim.Wait(ctx); err != nil {
			return errors.Join(err, last)
		}
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		last = repo.Ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		log.Warn().Err(last).Int("attempt", i).Msg("listing store not reachable yet")
	}
	return fmt.Errorf("listing store unreachable after %d attempts: %w", waitAttempts, last)
}
