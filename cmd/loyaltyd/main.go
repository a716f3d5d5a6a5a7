package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"loyaltyledger/config"
	"loyaltyledger/core"
	"loyaltyledger/observability/logging"
	telemetry "loyaltyledger/observability/otel"
	"loyaltyledger/rpc"
	"loyaltyledger/storage"
	"loyaltyledger/storage/receipts"
)

const serviceName = "loyaltyd"

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to node configuration")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		slog.Error("loyaltyd exited", "error", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logFile *logging.FileOutput
	if cfg.Log.File != "" {
		logFile = &logging.FileOutput{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
	}
	logger := logging.Setup(serviceName, cfg.Environment, logFile)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialise telemetry: %w", err)
	}
	defer func() {
		_ = shutdownTelemetry(context.Background())
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	store, err := receipts.Open(filepath.Join(cfg.DataDir, "receipts.db"), nil)
	if err != nil {
		return fmt.Errorf("open receipt store: %w", err)
	}
	defer store.Close()

	asset, mintAuthority, err := cfg.PaymentAsset.Addresses()
	if err != nil {
		return err
	}
	host, err := core.NewHost(db, core.Options{
		ChainID:      cfg.ChainID,
		PaymentAsset: asset,
		Receipts:     store,
		Pauses:       cfg.Pauses,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	allocations, err := cfg.Genesis.Parse()
	if err != nil {
		return err
	}
	genesis := core.Genesis{
		PaymentAsset:  asset,
		MintAuthority: mintAuthority,
		Decimals:      cfg.PaymentAsset.Decimals,
		Allocations:   make([]core.Allocation, 0, len(allocations)),
	}
	for _, alloc := range allocations {
		genesis.Allocations = append(genesis.Allocations, core.Allocation{Owner: alloc.Owner, Amount: alloc.Amount})
	}
	if err := host.Bootstrap(genesis); err != nil {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}

	server := rpc.NewServer(host, logger, rpc.ServerConfig{
		Auth: rpc.AuthConfig{
			HMACSecret: cfg.JWTSecret(),
			Issuer:     cfg.RPC.JWTIssuer,
		},
		RateLimit: rpc.RateLimit{
			RequestsPerMinute: cfg.RPC.RequestsPerMinute,
			Burst:             cfg.RPC.Burst,
		},
	})
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: time.Duration(cfg.RPC.ReadHeaderTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	root, version := host.Head()
	logger.Info("ledger ready",
		"rpc", listener.Addr().String(),
		"chainId", cfg.ChainID,
		"paymentAsset", host.PaymentAsset().String(),
		"stateRoot", root.Hex(),
		"version", version,
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve rpc: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.RPC.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	logger.Info("ledger stopped")
	return nil
}
