package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "staysearch/internal/adapters/http_server"
	"staysearch/internal/adapters/observability"
	redisad "staysearch/internal/adapters/redis"
	"staysearch/internal/app"
	"staysearch/internal/domain"
	"staysearch/internal/shared"
	"staysearch/internal/storage/memory"
	mysqlrepo "staysearch/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	// db; an unreachable server is not fatal, the supervisor falls back to memory
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
	}
	defer db.Close()

	repo := mysqlrepo.New(db)
	mem := memory.New()
	status := &app.Status{}
	seeder := app.NewSeeder(repo, mem)
	sup := app.NewSupervisor(repo, seeder, status, cfg.ConnectTimeout, cfg.ProbeInterval)
	sup.Start(ctx)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing; cache errors are ignored")
		}
		cancel()
		cache = rc
	}

	q := app.NewQueryService(repo, mem, status, sup, cache, cfg.CacheTTL(), cfg.QueryTimeout)
	tr, err := app.LoadTranslations()
	if err != nil {
		log.Fatal().Err(err).Msg("load translations failed")
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountImages(cfg.ImagesDir)
	srv.MountHandlers(&server.Handlers{Q: q, T: tr, Status: status})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Watch(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", status.Source()).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(sctx)
		}
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("shutdown complete")
}
