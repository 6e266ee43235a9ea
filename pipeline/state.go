// Package pipeline is the authorization pipeline orchestrator: the
// single entry point that validates inputs, enforces rate limits,
// reserves a log entry, sequences replay-check → simulate → estimate →
// fee → nonce → sign → broadcast, and finalises the log. It owns the
// singleton RelayerState and mutates it only in short critical sections
// that never span an external call — config/asset snapshots are copied
// out under the lock before any RPC, signer, or HTTP round trip.
package pipeline

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethdenver2026/relayer/assetseed"
	"github.com/ethdenver2026/relayer/paymentlog"
	"github.com/ethdenver2026/relayer/ratelimit"
	"github.com/ethdenver2026/relayer/relayerr"
	"github.com/ethdenver2026/relayer/rpc"
	"github.com/ethdenver2026/relayer/signer"
)

// AssetStatus is the lifecycle state of a registered token.
type AssetStatus int

const (
	AssetActive AssetStatus = iota
	AssetDeprecated
	AssetDisabled
)

// AssetConfig describes one registered token.
type AssetConfig struct {
	TokenID    string
	EVMAddress string
	Status     AssetStatus
	FeeBps     uint16
}

// RelayerConfig is the singleton mutable configuration, mutated only by
// the admin operations below.
type RelayerConfig struct {
	EvmAddr             string
	EcdsaKeyName        string
	EcdsaDerivationPath [][]byte
	ChainID             *big.Int
	ThresholdWei        *big.Int
	RPCNetwork          string
	MaxFeeMultiplier    float64
	PriorityMultiplier  float64
	Paused              bool
}

// Info is the read-only observation surface.
type Info struct {
	RelayerAddr  string
	GasWei       *big.Int
	ThresholdWei *big.Int
	Assets       []AssetConfig
}

// Relayer is the process-scoped singleton: config, asset registry, rate
// limiter, durable log, and the last-observed gas balance. Every field
// mutation happens under mu in a non-suspending critical section.
type Relayer struct {
	mu sync.Mutex

	config       RelayerConfig
	assets       map[string]AssetConfig
	rateLimitCfg ratelimit.Config
	limiter      *ratelimit.Limiter
	logs         *paymentlog.Log
	lastKnownGas *big.Int

	signerAdapter *signer.Adapter
	transport     rpc.Transport
	rpcClient     *rpc.Client

	// Now returns the current unix time in seconds; overridable in tests.
	Now func() int64
}

// New constructs a Relayer with default config (unpaused, default
// multipliers, no rate limits, no RPC target configured yet). The log
// is freshly started; callers that need restart durability should use
// NewFromSnapshot instead.
func New(transport rpc.Transport, backend signer.Backend) *Relayer {
	return &Relayer{
		config: RelayerConfig{
			MaxFeeMultiplier:   2.0,
			PriorityMultiplier: 1.2,
			ThresholdWei:       new(big.Int),
		},
		assets:        make(map[string]AssetConfig),
		limiter:       ratelimit.New(),
		logs:          paymentlog.New(),
		lastKnownGas:  new(big.Int),
		signerAdapter: signer.New(backend),
		transport:     transport,
		Now:           func() int64 { return time.Now().Unix() },
	}
}

// NewFromSnapshot is like New but restores the durable log from path
// if it exists, so log ids keep climbing across restarts.
func NewFromSnapshot(transport rpc.Transport, backend signer.Backend, path string) (*Relayer, error) {
	r := New(transport, backend)
	if path == "" {
		return r, nil
	}
	log, err := paymentlog.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	r.logs = log
	return r, nil
}

// SaveSnapshot persists the durable log to path.
func (r *Relayer) SaveSnapshot(path string) error {
	return r.logs.SaveSnapshot(path)
}

// SeedAssets registers assets loaded from a static file at startup.
// Invalid status strings are rejected; admin calls still take
// precedence for any mutation after this point.
func (r *Relayer) SeedAssets(entries []assetseed.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		normalized, err := normalizeEvmAddress(e.EVMAddress)
		if err != nil {
			return err
		}
		status, err := parseAssetStatus(e.Status)
		if err != nil {
			return err
		}
		r.assets[e.TokenID] = AssetConfig{
			TokenID:    e.TokenID,
			EVMAddress: normalized,
			Status:     status,
			FeeBps:     e.FeeBps,
		}
	}
	return nil
}

func parseAssetStatus(s string) (AssetStatus, error) {
	switch s {
	case "", "active":
		return AssetActive, nil
	case "deprecated":
		return AssetDeprecated, nil
	case "disabled":
		return AssetDisabled, nil
	default:
		return 0, relayerr.ConfigurationMissing("unsupported asset status: " + s)
	}
}

// --- Admin operations ---

// SetRPCTarget installs the JSON-RPC backend reference, resolving the
// network tag eagerly so misconfiguration surfaces immediately rather
// than on the first submission.
func (r *Relayer) SetRPCTarget(network string) error {
	url, err := rpc.ResolveNetwork(network)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.RPCNetwork = network
	r.rpcClient = rpc.New(r.transport, url)
	return nil
}

// SetThreshold sets the minimum native balance required to proceed.
func (r *Relayer) SetThreshold(wei *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.ThresholdWei = new(big.Int).Set(wei)
}

// SetChainID sets the target chain id.
func (r *Relayer) SetChainID(chainID *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.ChainID = new(big.Int).Set(chainID)
}

// SetEcdsaDerivationPath sets the signer key derivation path.
func (r *Relayer) SetEcdsaDerivationPath(path [][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.EcdsaDerivationPath = path
}

// SetEcdsaKeyName sets the signer key name.
func (r *Relayer) SetEcdsaKeyName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.EcdsaKeyName = name
}

// SetRelayerAddress overrides the on-chain address used for signing and
// balance checks.
func (r *Relayer) SetRelayerAddress(address string) (string, error) {
	normalized, err := normalizeEvmAddress(address)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.EvmAddr = normalized
	return normalized, nil
}

// DeriveRelayerAddress queries the signer's public key, computes the
// address, persists and returns it.
func (r *Relayer) DeriveRelayerAddress(ctx context.Context) (string, error) {
	r.mu.Lock()
	keyName := r.config.EcdsaKeyName
	path := r.config.EcdsaDerivationPath
	r.mu.Unlock()

	addr, err := r.signerAdapter.Backend.PublicKeyAddress(ctx, keyName, path)
	if err != nil {
		return "", relayerr.RpcTransportError("signer", err.Error())
	}
	hexAddr, err := toHexAddress(addr[:])
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.config.EvmAddr = hexAddr
	r.mu.Unlock()
	return hexAddr, nil
}

// AddAsset registers or updates an asset's on-chain address and fee.
func (r *Relayer) AddAsset(tokenID, evmAddr string, feeBps uint16) error {
	normalized, err := normalizeEvmAddress(evmAddr)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[tokenID] = AssetConfig{TokenID: tokenID, EVMAddress: normalized, Status: AssetActive, FeeBps: feeBps}
	return nil
}

// DeprecateAsset marks an asset Deprecated (still accepts submissions,
// but signals sunset to integrators).
func (r *Relayer) DeprecateAsset(tokenID string) error {
	return r.setAssetStatus(tokenID, AssetDeprecated)
}

// DisableAsset marks an asset Disabled (rejects all new submissions).
func (r *Relayer) DisableAsset(tokenID string) error {
	return r.setAssetStatus(tokenID, AssetDisabled)
}

func (r *Relayer) setAssetStatus(tokenID string, status AssetStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[tokenID]
	if !ok {
		return relayerr.AssetNotRegistered()
	}
	asset.Status = status
	r.assets[tokenID] = asset
	return nil
}

// RefreshGasBalance re-fetches the relayer's native balance and stores
// it as the last known gas reading, so GetInfo reflects a current value
// on a freshly started or idle relayer without waiting for the next
// submission to run.
func (r *Relayer) RefreshGasBalance(ctx context.Context) (*big.Int, error) {
	r.mu.Lock()
	relayerAddr := r.config.EvmAddr
	rpcClient := r.rpcClient
	r.mu.Unlock()

	if rpcClient == nil {
		return nil, relayerr.ConfigurationMissing("rpc_network")
	}
	if relayerAddr == "" {
		return nil, relayerr.RelayerAddressMissing()
	}

	balance, err := rpcClient.GetBalance(ctx, relayerAddr)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.lastKnownGas = new(big.Int).Set(balance)
	r.mu.Unlock()
	return balance, nil
}

// Pause hard-gates all submissions when flag is true.
func (r *Relayer) Pause(flag bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.Paused = flag
}

// SetRateLimit installs the rate-limit rule set.
func (r *Relayer) SetRateLimit(perAddrPerMin uint32, dailyCapToken uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimitCfg = ratelimit.Config{PerAddrPerMin: perAddrPerMin, DailyCapToken: dailyCapToken}
}

// SetMaxFeeMultiplier sets the base-fee scaling multiplier.
func (r *Relayer) SetMaxFeeMultiplier(m float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.MaxFeeMultiplier = m
}

// SetPriorityMultiplier sets the priority-fee scaling multiplier.
func (r *Relayer) SetPriorityMultiplier(m float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.PriorityMultiplier = m
}

// GetInfo returns a snapshot of relayer identity, gas balance, threshold,
// and the registered asset list.
func (r *Relayer) GetInfo() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	assets := make([]AssetConfig, 0, len(r.assets))
	for _, a := range r.assets {
		assets = append(assets, a)
	}
	return Info{
		RelayerAddr:  r.config.EvmAddr,
		GasWei:       new(big.Int).Set(r.lastKnownGas),
		ThresholdWei: new(big.Int).Set(r.config.ThresholdWei),
		Assets:       assets,
	}
}

// Logs returns up to max(limit,1) log entries in reverse-chronological
// order, restricted to id > startAfter when set.
func (r *Relayer) Logs(startAfter *uint64, limit uint64) []paymentlog.Entry {
	return r.logs.List(startAfter, limit)
}
