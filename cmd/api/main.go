package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"waypost/internal/adapter/backend"
	"waypost/internal/adapter/geocode"
	"waypost/internal/adapter/notifier"
	"waypost/internal/adapter/storage"
	"waypost/internal/config"
	"waypost/internal/domain/location"
	"waypost/internal/logger"
	"waypost/internal/server"
	"waypost/internal/service/feed"
	geoService "waypost/internal/service/geo"
	"waypost/internal/service/notify"
	"waypost/internal/service/place"
	"waypost/internal/service/prefs"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	kvStore := storage.NewKVStore(db)
	if err := kvStore.EnsureSchema(ctx); err != nil {
		zlog.Fatal("Failed to prepare storage schema", zap.Error(err))
	}

	// NATS carries the platform notification surface. The gateway stays
	// useful without it; notifications fall back to the in-app channel.
	natsConn, err := initNATS(cfg.NATS, zlog)
	if err != nil {
		zlog.Warn("Event bus unavailable, using in-app notifications only", zap.Error(err))
	} else {
		defer natsConn.Close()
	}

	// Initialize adapters
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.AuthToken, cfg.Backend.Timeout)
	geocoder := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)

	// Initialize services
	engine := geoService.NewGeoService()
	placeCache := place.NewCache(geocoder, kvStore, zlog)
	preferences := prefs.NewService(kvStore, zlog)
	feedService := feed.NewService(backendClient, engine, placeCache, zlog)
	tracker := location.NewTracker(location.StatePrompt)

	// Notification channels, native surface first
	hub := server.NewHub(zlog)
	var notifiers []notify.Notifier
	if natsConn != nil {
		notifiers = append(notifiers, notifier.NewNATSNotifier(natsConn, cfg.Notify.Subject))
	}
	notifiers = append(notifiers, hub)

	dispatcher := notify.NewDispatcher(engine, zlog)
	watcher := notify.NewWatcher(
		backendClient,
		tracker,
		preferences,
		dispatcher,
		notifiers,
		notify.WatcherConfig{
			UserID:       cfg.User.ID,
			TickInterval: cfg.Notify.TickInterval,
		},
		zlog,
	)

	if err := watcher.Start(ctx); err != nil {
		zlog.Fatal("Failed to start notification watcher", zap.Error(err))
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.User.ID, server.Deps{
		Backend:     backendClient,
		Profiles:    backendClient,
		Preferences: preferences,
		Feed:        feedService,
		Engine:      engine,
		Places:      placeCache,
		Tracker:     tracker,
		Watcher:     watcher,
		Hub:         hub,
	})

	// Start HTTP server
	go func() {
		zlog.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	zlog.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := watcher.Stop(shutdownCtx); err != nil {
		zlog.Error("Notification watcher shutdown error", zap.Error(err))
	}

	hub.Close()

	zlog.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, zlog *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			zlog.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zlog.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			zlog.Info("NATS connection closed")
		}),
	}

	return nats.Connect(cfg.URL, options...)
}
