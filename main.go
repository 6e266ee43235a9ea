package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethdenver2026/relayer/assetseed"
	"github.com/ethdenver2026/relayer/config"
	"github.com/ethdenver2026/relayer/httpapi"
	"github.com/ethdenver2026/relayer/pipeline"
	"github.com/ethdenver2026/relayer/rpc"
	"github.com/ethdenver2026/relayer/signer"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	relayer, err := buildRelayer(cfg)
	if err != nil {
		slog.Error("failed to build relayer", "err", err)
		os.Exit(1)
	}

	admin := httpapi.NewAdminAuth(cfg.AdminJWTSecret)
	server := httpapi.NewServer(relayer, admin)

	addr := cfg.ListenAddr
	httpServer := &http.Server{Addr: addr, Handler: server.Routes()}

	slog.Info("relayer starting",
		"addr", addr,
		"rpc_network", cfg.RPCNetwork,
		"chain_id", cfg.ChainID,
		"snapshot_file", cfg.SnapshotFile,
	)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	if cfg.MetricsAddr != "" {
		go func() {
			slog.Info("metrics starting", "addr", cfg.MetricsAddr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics server error", "err", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
	}

	if cfg.SnapshotFile != "" {
		if err := relayer.SaveSnapshot(cfg.SnapshotFile); err != nil {
			slog.Error("snapshot save failed", "err", err)
		} else {
			slog.Info("snapshot saved", "path", cfg.SnapshotFile)
		}
	}
}

// buildRelayer wires the JSON-RPC transport, the remote signer backend,
// the durable-log snapshot, the static asset seed, and the bootstrap
// config values a fresh Relayer needs to accept its first submission.
func buildRelayer(cfg *config.Config) (*pipeline.Relayer, error) {
	transport := rpc.NewHTTPTransport()

	backend, err := resolveSignerBackend(cfg)
	if err != nil {
		return nil, err
	}

	relayer, err := pipeline.NewFromSnapshot(transport, backend, cfg.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	if err := relayer.SetRPCTarget(cfg.RPCNetwork); err != nil {
		return nil, fmt.Errorf("setting rpc target %q: %w", cfg.RPCNetwork, err)
	}
	relayer.SetChainID(new(big.Int).SetUint64(cfg.ChainID))
	relayer.SetThreshold(new(big.Int).SetUint64(cfg.ThresholdWei))
	relayer.SetMaxFeeMultiplier(cfg.MaxFeeMultiplier)
	relayer.SetPriorityMultiplier(cfg.PriorityMultiplier)
	relayer.SetRateLimit(cfg.RateLimitPerMin, cfg.DailyCapToken)
	relayer.SetEcdsaKeyName(cfg.EcdsaKeyName)
	if len(cfg.EcdsaDerivationPath) > 0 {
		relayer.SetEcdsaDerivationPath(decodeDerivationPath(cfg.EcdsaDerivationPath))
	}

	if cfg.RelayerAddress != "" {
		if _, err := relayer.SetRelayerAddress(cfg.RelayerAddress); err != nil {
			return nil, fmt.Errorf("setting relayer address %q: %w", cfg.RelayerAddress, err)
		}
	} else {
		addr, err := relayer.DeriveRelayerAddress(context.Background())
		if err != nil {
			slog.Warn("relayer address not configured and derivation failed; set RELAYER_ADDRESS or call derive_relayer_address", "err", err)
		} else {
			slog.Info("relayer address derived at startup", "address", addr)
		}
	}

	entries, err := assetseed.Load(cfg.AssetsFile)
	if err != nil {
		return nil, err
	}
	if err := relayer.SeedAssets(entries); err != nil {
		return nil, fmt.Errorf("seeding assets: %w", err)
	}
	if len(entries) > 0 {
		slog.Info("asset registry seeded", "count", len(entries), "file", cfg.AssetsFile)
	}

	return relayer, nil
}

func resolveSignerBackend(cfg *config.Config) (signer.Backend, error) {
	if url := os.Getenv("SIGNER_URL"); url != "" {
		return signer.NewRemoteBackend(url), nil
	}
	slog.Warn("SIGNER_URL not set; falling back to an in-process development signing key (do not use in production)")
	return signer.NewLocalBackend()
}

// decodeDerivationPath hex-decodes each colon-separated component of
// ECDSA_DERIVATION_PATH; a component that isn't valid hex is kept
// verbatim as raw bytes so a plain path label still works.
func decodeDerivationPath(parts []string) [][]byte {
	out := make([][]byte, 0, len(parts))
	for _, p := range parts {
		if raw, err := hex.DecodeString(p); err == nil {
			out = append(out, raw)
			continue
		}
		out = append(out, []byte(p))
	}
	return out
}
