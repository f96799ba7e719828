package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/auction"
	"github.com/mcdev12/bidboard/internal/config"
	"github.com/mcdev12/bidboard/internal/events"
	"github.com/mcdev12/bidboard/internal/gateway"
	"github.com/mcdev12/bidboard/internal/ledger"
	"github.com/mcdev12/bidboard/internal/store"
	"github.com/mcdev12/bidboard/internal/timesync"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("store_backend", cfg.StoreBackend).
		Msg("starting bidboard server")

	clock := clockwork.NewRealClock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence backend
	st, cleanup, err := setupStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up store")
	}
	defer cleanup()

	// Ledger: load persisted items or seed the defaults
	lgr := ledger.New(st, clock)
	seed := ledger.SeedConfig{AuctionDuration: cfg.AuctionDuration}
	if err := lgr.Load(ctx, seed); err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger")
	}

	// Event publisher: JetStream when NATS is configured, log-only otherwise
	publisher := setupPublisher(cfg)

	// Gateway wiring
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	app := auction.NewApp(lgr, gateway.NewBroadcaster(cm), publisher, clock)
	svc := gateway.NewService(cm, app, timesync.New(clock))

	// Close watchers broadcast AUCTION_CLOSED when items pass their deadline
	app.WatchClosings(ctx)

	go svc.Start(ctx)

	// HTTP server
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      c.Handler(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()

	log.Info().Msg("bidboard shutdown complete")
}

func setupStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return store.NewFileStore(cfg.StateFile), func() {}, nil
	}
}

func setupPublisher(cfg config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NewLogPublisher()
	}

	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATSURL
	publisher, err := events.NewJetStreamPublisher(jsCfg)
	if err != nil {
		// Event publishing is best-effort; the board runs without it.
		log.Error().Err(err).Msg("failed to connect event publisher, falling back to log only")
		return events.NewLogPublisher()
	}
	return publisher
}
