// Package config loads the relayer's process configuration from
// environment variables, with optional .env support for local dev and
// fail-fast validation of the few fields that have no usable default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full set of process-wide settings. Fields that mirror
// RelayerConfig in the domain model are optional (pointer-like zero
// values) because the admin surface can set them after startup; Load
// only establishes the bootstrap defaults.
type Config struct {
	// ListenAddr is the bind address for the HTTP admin/submission surface.
	ListenAddr string
	// LogLevel controls the slog handler's minimum level ("debug", "info", "warn", "error").
	LogLevel string

	// RPCNetwork is the network tag resolved by rpc.ResolveNetwork.
	RPCNetwork string
	// ChainID is the EIP-155 chain id the relayer submits transactions on.
	ChainID uint64

	// ThresholdWei is the minimum native-gas balance required to proceed.
	ThresholdWei uint64
	// MaxFeeMultiplier scales the quoted base fee (default 2.0).
	MaxFeeMultiplier float64
	// PriorityMultiplier scales the quoted priority fee (default 1.2).
	PriorityMultiplier float64

	// RateLimitPerMin is the per-sender per-minute submission ceiling (0 disables).
	RateLimitPerMin uint32
	// DailyCapToken is the per-sender 24h cumulative cap in whole tokens (0 disables).
	DailyCapToken uint64

	// EcdsaKeyName identifies the signing key at the remote signer backend.
	EcdsaKeyName string
	// EcdsaDerivationPath is a colon-separated list of hex-encoded path components.
	EcdsaDerivationPath []string
	// RelayerAddress optionally pins the relayer's EVM address; if empty,
	// startup derives it from the signer backend, and if that fails it
	// must be derived via the admin derive_relayer_address operation before
	// submissions can succeed.
	RelayerAddress string

	// AdminJWTSecret signs and verifies admin bearer tokens.
	AdminJWTSecret string

	// AssetsFile optionally seeds the asset registry at startup.
	AssetsFile string
	// SnapshotFile persists the payment log (entries and next id) across restarts.
	SnapshotFile string

	// MetricsAddr is the bind address for the Prometheus /metrics endpoint; empty disables it.
	MetricsAddr string
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvUint64(key string, fallback uint64) uint64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Load reads a .env file if present (errors ignored, it is a local dev
// convenience only), then builds a Config from the environment with
// sane defaults, and fails fast on a small set of required fields.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RPCNetwork:         getEnv("RPC_NETWORK", ""),
		ChainID:            getEnvUint64("CHAIN_ID", 0),
		ThresholdWei:       getEnvUint64("THRESHOLD_WEI", 0),
		MaxFeeMultiplier:   getEnvFloat("MAX_FEE_MULTIPLIER", 2.0),
		PriorityMultiplier: getEnvFloat("PRIORITY_MULTIPLIER", 1.2),
		RateLimitPerMin:    uint32(getEnvInt("RATE_LIMIT_PER_MIN", 0)),
		DailyCapToken:      getEnvUint64("DAILY_CAP_TOKEN", 0),
		EcdsaKeyName:       getEnv("ECDSA_KEY_NAME", ""),
		RelayerAddress:     getEnv("RELAYER_ADDRESS", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		AssetsFile:         getEnv("ASSETS_FILE", ""),
		SnapshotFile:       getEnv("SNAPSHOT_FILE", "relayer-state.json"),
		MetricsAddr:        getEnv("METRICS_ADDR", ""),
	}

	if path := getEnv("ECDSA_DERIVATION_PATH", ""); path != "" {
		cfg.EcdsaDerivationPath = strings.Split(path, ":")
	}

	if cfg.RPCNetwork == "" {
		return nil, fmt.Errorf("config: RPC_NETWORK is required")
	}
	if cfg.EcdsaKeyName == "" {
		return nil, fmt.Errorf("config: ECDSA_KEY_NAME is required")
	}
	if cfg.AdminJWTSecret == "" {
		return nil, fmt.Errorf("config: ADMIN_JWT_SECRET is required")
	}

	return cfg, nil
}
