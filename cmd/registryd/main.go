package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/adapter"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/middleware"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/server"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/bridge"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/config"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/ledger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/providers/jetstream"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/registry"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/relay"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadRegistrydConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "registryd",
			"network": cfg.Ledger.Network.String(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting KittyConnect registry", zap.String("network", cfg.Ledger.Network.String()))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}

	// Run migrations
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()
	clock := adapter.NewClock()

	// Create event publisher
	publisher, err := jetstream.NewPublisher(jetstream.PublisherConfig{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.EventStreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, natsJS, jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer publisher.Close()
	logger.Info("Event publisher created", zap.String("stream", cfg.NATS.EventStreamName))

	// Create relay connection
	relayNetwork, err := jetstream.NewRelay(ctx, jetstream.RelayConfig{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.RelayStreamName,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		AckWait:        cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
		Network:        cfg.Ledger.Network,
		Sender:         cfg.Bridge.ControllerAddress,
		BaseFee:        cfg.Bridge.BaseFee,
		FeePerByte:     cfg.Bridge.FeePerByte,
	}, natsJS, jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to create relay connection", zap.Error(err))
	}
	defer relayNetwork.Close()
	logger.Info("Relay connection created", zap.String("stream", cfg.NATS.RelayStreamName))

	// Load bridge allowlists
	var allowlist registry.AllowlistRegistry
	if cfg.Ledger.AllowlistPath != "" {
		allowlist, err = registry.LoadAllowlist(cfg.Ledger.AllowlistPath, cfg.Ledger.Admin)
		if err != nil {
			logger.Fatal("Failed to load allowlist",
				zap.Error(err),
				zap.String("path", cfg.Ledger.AllowlistPath))
		}
		logger.Info("Loaded allowlist", zap.String("path", cfg.Ledger.AllowlistPath))
	} else {
		allowlist = registry.NewAllowlist(cfg.Ledger.Admin)
		logger.Warn("Allowlist path not configured, all bridge traffic starts blocked")
	}

	// Create the ownership ledger, rehydrating from the store
	tokenLedger, err := ledger.New(ctx, ledger.Config{
		Network: cfg.Ledger.Network,
		Admin:   cfg.Ledger.Admin,
	}, dataStore, publisher, clock)
	if err != nil {
		logger.Fatal("Failed to create ledger", zap.Error(err))
	}
	logger.Info("Ledger ready", zap.Uint64("next_token_id", uint64(tokenLedger.NextTokenID())))

	// Create the bridge controller and bind it to the ledger
	fees := relay.NewFeeAccount(cfg.Bridge.FeeToken, cfg.Bridge.FeeBalance)
	controller := bridge.New(bridge.Config{
		Network:  cfg.Ledger.Network,
		Address:  cfg.Bridge.ControllerAddress,
		Owner:    cfg.Ledger.Admin,
		GasLimit: cfg.Bridge.GasLimit,
	}, allowlist, tokenLedger, relayNetwork, fees, dataStore, publisher, clock)
	tokenLedger.BindDispatcher(controller, cfg.Bridge.ControllerAddress)

	// Start consuming inbound relay messages
	if err := relayNetwork.Listen(ctx, controller); err != nil {
		logger.Fatal("Failed to start relay listener", zap.Error(err))
	}
	logger.Info("Relay listener started", zap.String("consumer", cfg.NATS.ConsumerName))

	// Create and start the API server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, middleware.AuthConfig{
		JWTPublicKey: cfg.Auth.JWTPublicKey,
		APIKeys:      cfg.Auth.APIKeys,
	}, tokenLedger, controller, cfg.Ledger.Admin)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Registry stopped")
}
