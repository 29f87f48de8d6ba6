package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/api"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/infrastructure/cache"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/infrastructure/db"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/infrastructure/live"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/infrastructure/messaging"
	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/infrastructure/remote"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(level).With().Timestamp().Str("service", "itemsync").Logger()
	log.Logger = logger
	return logger
}

func openLocalStore(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	dbConn, err := sql.Open("pgx", cfg.PgDsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := dbConn.PingContext(ctx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return dbConn, nil
}

// openMirror returns the remote mirror for REMOTE_MODE and a func releasing it.
func openMirror(ctx context.Context, cfg config.Config) (domain.RemoteMirror, func(), error) {
	switch cfg.RemoteMode {
	case config.RemoteModePostgres:
		m, err := remote.NewPgMirror(ctx, cfg.RemotePgDsn, cfg.RemoteTable)
		if err != nil {
			return nil, nil, fmt.Errorf("open remote postgres: %w", err)
		}
		return m, m.Close, nil
	default:
		m := remote.NewPostgrestMirror(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.RemoteTable, cfg.RemoteTimeout())
		return m, func() {}, nil
	}
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg := config.Load()
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return cfg, logger, err
	}
	return cfg, logger, nil
}

func serve(parent context.Context, skipInitialLoad bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info().Str("port", cfg.HttpPort).Str("remote_mode", cfg.RemoteMode).Msg("starting itemsync service")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	dbConn, err := openLocalStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("local store unavailable")
		return err
	}
	defer dbConn.Close()

	mirror, closeMirror, err := openMirror(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("remote mirror unavailable")
		return err
	}
	defer closeMirror()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDb,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// cache is best-effort; refreshes will log until Redis shows up
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable")
	}

	// Repos
	items := db.NewPgItemRepository(dbConn)
	snapshots := cache.NewRedisSnapshotStore(redisClient)

	// Metrics
	metrics := application.NewMetricsCollector()
	hub := live.NewHub(logger.With().Str("component", "live").Logger())
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "itemsync",
			Name:      "live_clients",
			Help:      "Websocket clients currently connected.",
		}, func() float64 { return float64(hub.ClientCount()) }),
	)

	// Publishers
	publishers := application.MultiPublisher{hub}
	if cfg.RabbitUri != "" {
		bus := messaging.NewItemEventBus(cfg.RabbitUri)
		publishers = append(publishers, messaging.NewRabbitPublisher(bus, logger.With().Str("component", "rabbitmq").Logger()))
	}

	refresher := application.NewCacheRefresher(items, snapshots, cfg.CacheTtl(), metrics,
		logger.With().Str("component", "cache").Logger())

	// LISTEN before the initial load so changes made meanwhile stay queued.
	listener, err := db.NewPgChangeListener(ctx, cfg.PgDsn, cfg.NotifyChannel, cfg.NotifyPollInterval())
	if err != nil {
		logger.Error().Err(err).Msg("change listener unavailable")
		return err
	}
	relay := application.NewChangeRelay(listener, items, mirror, refresher, publishers, metrics,
		logger.With().Str("component", "relay").Logger())

	if cfg.InitialLoad && !skipInitialLoad {
		loader := application.NewInitialLoader(items, mirror, metrics, logger.With().Str("component", "initial-load").Logger())
		if _, err := loader.Run(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial load failed, continuing")
		}
	}
	refresher.Refresh(ctx)
	if cfg.CacheRewarmSec > 0 {
		application.NewCacheScheduler(refresher, cfg.CacheRewarmSec,
			logger.With().Str("component", "cache-scheduler").Logger()).Start(ctx)
	}

	relayDone := make(chan error, 1)
	go func() {
		relayDone <- relay.Run(ctx)
	}()

	// HTTP API
	router := mux.NewRouter()
	apiServer := api.NewServer(items, snapshots, hub,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger.With().Str("component", "http").Logger())
	apiServer.RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           api.WithCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpSrv.Addr).Msg("HTTP listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	// Esperar señal, o que el relay o el servidor HTTP terminen
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down itemsync service")
	case err := <-relayDone:
		// Sin relay no hay sincronización: salir y dejar que el supervisor reinicie.
		runErr = err
		relayDone = nil
		logger.Error().Err(err).Msg("change relay exited, shutting down")
	case err := <-httpErr:
		runErr = err
		logger.Error().Err(err).Msg("http server error")
	case <-parent.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown error")
	}
	if relayDone != nil {
		select {
		case err := <-relayDone:
			if err != nil && runErr == nil {
				runErr = err
			}
		case <-shutdownCtx.Done():
			logger.Warn().Msg("change relay did not stop in time")
		}
	}
	return runErr
}

func initialLoad(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := openLocalStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("local store unavailable")
		return err
	}
	defer dbConn.Close()

	mirror, closeMirror, err := openMirror(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("remote mirror unavailable")
		return err
	}
	defer closeMirror()

	loader := application.NewInitialLoader(db.NewPgItemRepository(dbConn), mirror,
		application.NewMetricsCollector(), logger.With().Str("component", "initial-load").Logger())
	copied, err := loader.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("initial load failed")
		return err
	}
	logger.Info().Int("copied", copied).Msg("initial load done")
	return nil
}
