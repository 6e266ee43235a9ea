package pipeline

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethdenver2026/relayer/abi"
	"github.com/ethdenver2026/relayer/fees"
	"github.com/ethdenver2026/relayer/metrics"
	"github.com/ethdenver2026/relayer/relayerr"
	"github.com/ethdenver2026/relayer/tx"
)

// Authorization is the EIP-3009 transferWithAuthorization payload
// submitted by a client, addresses already validated to 20 raw bytes
// and nonce to 32 raw bytes by the caller (httpapi).
type Authorization struct {
	TokenID     string
	From        [20]byte
	To          [20]byte
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       [32]byte
	V           uint8
	R           [32]byte
	S           [32]byte
}

// SubmitResult is returned on a successful relay.
type SubmitResult struct {
	LogID  uint64
	TxHash string
}

// Submit runs the full authorization pipeline: validate, rate-limit,
// reserve log, replay check, simulate, estimate gas, fee, nonce, sign,
// broadcast, finalize log. Once an entry has been reserved, every early
// exit marks it Failed before returning.
func (r *Relayer) Submit(ctx context.Context, nowSec int64, req Authorization) (SubmitResult, error) {
	r.mu.Lock()
	paused := r.config.Paused
	asset, assetOK := r.assets[req.TokenID]
	rlCfg := r.rateLimitCfg
	chainID := r.config.ChainID
	relayerAddr := r.config.EvmAddr
	ecdsaKeyName := r.config.EcdsaKeyName
	ecdsaPath := r.config.EcdsaDerivationPath
	threshold := r.config.ThresholdWei
	maxFeeMultiplier := r.config.MaxFeeMultiplier
	priorityMultiplier := r.config.PriorityMultiplier
	rpcClient := r.rpcClient
	r.mu.Unlock()

	if paused {
		return SubmitResult{}, relayerr.Paused()
	}
	if !assetOK {
		return SubmitResult{}, relayerr.AssetNotRegistered()
	}
	if asset.Status == AssetDisabled {
		return SubmitResult{}, relayerr.AssetNotActive()
	}
	if req.ValidBefore != nil && req.ValidBefore.Cmp(big.NewInt(nowSec)) <= 0 {
		return SubmitResult{}, relayerr.AuthorizationExpired()
	}

	fromHex, err := toHexAddress(req.From[:])
	if err != nil {
		return SubmitResult{}, err
	}

	if err := r.limiter.Enforce(rlCfg, fromHex, req.Value, nowSec); err != nil {
		metrics.RateLimitRejectionsTotal.Inc()
		return SubmitResult{}, err
	}

	logID := r.logs.Reserve(nowSec, req.TokenID, fromHex, mustHex(req.To), req.Value)
	slog.Debug("submission accepted", "log_id", logID, "asset", req.TokenID, "sender", fromHex)

	fail := func(reason string, cause error) (SubmitResult, error) {
		r.logs.MarkFailure(logID, reason)
		slog.Warn("submission failed", "log_id", logID, "asset", req.TokenID, "sender", fromHex, "stage", reason, "err", cause)
		return SubmitResult{}, cause
	}

	if rpcClient == nil {
		return fail("rpc target not configured", relayerr.ConfigurationMissing("rpc_network"))
	}
	if relayerAddr == "" {
		return fail("relayer address not configured", relayerr.RelayerAddressMissing())
	}
	if chainID == nil {
		return fail("chain id not configured", relayerr.ConfigurationMissing("chain_id"))
	}

	tokenAddrBytes, err := evmAddressBytes(asset.EVMAddress)
	if err != nil {
		return fail("invalid token address", err)
	}

	// Replay check: authorizationState(owner, nonce) must be false.
	usedCall, err := abi.EncodeAuthorizationStateCall(req.From[:], req.Nonce[:])
	if err != nil {
		return fail("failed to encode authorizationState call", err)
	}
	usedResult, err := rpcClient.EthCall(ctx, "", mustHex(to20(tokenAddrBytes)), usedCall)
	if err != nil {
		return fail("authorizationState call failed", err)
	}
	if abi.DecodeBool(usedResult) {
		return fail("authorization already used", relayerr.AuthorizationAlreadyUsed())
	}

	transferCall, err := abi.EncodeTransferWithAuthorizationCall(abi.TransferWithAuthorizationParams{
		From:        req.From[:],
		To:          req.To[:],
		Value:       req.Value,
		ValidAfter:  req.ValidAfter,
		ValidBefore: req.ValidBefore,
		Nonce:       req.Nonce[:],
		V:           req.V,
		R:           req.R[:],
		S:           req.S[:],
	})
	if err != nil {
		return fail("failed to encode transferWithAuthorization call", err)
	}

	relayerAddrBytes, err := evmAddressBytes(relayerAddr)
	if err != nil {
		return fail("invalid relayer address", err)
	}
	tokenHex := mustHex(to20(tokenAddrBytes))
	relayerHex := mustHex(to20(relayerAddrBytes))

	if _, err := rpcClient.EthCall(ctx, relayerHex, tokenHex, transferCall); err != nil {
		if re, ok := err.(*relayerr.RelayError); ok && re.Kind == relayerr.KindRpcError {
			return fail("simulation reverted", relayerr.SimulationFailed(re.Message))
		}
		return fail("simulation failed", err)
	}

	gasEstimate, err := rpcClient.EstimateGas(ctx, relayerHex, tokenHex, transferCall)
	if err != nil {
		return fail("gas estimation failed", err)
	}
	gasLimit, err := fees.GasLimit(gasEstimate)
	if err != nil {
		return fail("gas limit computation failed", err)
	}

	baseFeeQuoted, err := rpcClient.BaseFee(ctx)
	if err != nil {
		return fail("base fee fetch failed", err)
	}
	priorityQuoted, err := rpcClient.MaxPriorityFeePerGas(ctx)
	if err != nil {
		return fail("priority fee fetch failed", err)
	}
	baseFeeScaled, err := fees.BaseFeeScaled(baseFeeQuoted, maxFeeMultiplier)
	if err != nil {
		return fail("base fee scaling failed", err)
	}
	priorityFeeEffective, err := fees.PriorityFee(priorityQuoted, priorityMultiplier)
	if err != nil {
		return fail("priority fee scaling failed", err)
	}
	maxFeePerGas := fees.MaxFeePerGas(baseFeeScaled, priorityFeeEffective)

	balance, err := rpcClient.GetBalance(ctx, relayerHex)
	if err != nil {
		return fail("balance fetch failed", err)
	}
	r.mu.Lock()
	r.lastKnownGas = new(big.Int).Set(balance)
	r.mu.Unlock()
	if balance.Cmp(threshold) < 0 {
		return fail("relayer gas balance below threshold", relayerr.GasBalanceLow(threshold.String(), balance.String()))
	}

	nonce, err := rpcClient.GetTransactionCount(ctx, relayerHex)
	if err != nil {
		return fail("nonce fetch failed", err)
	}

	unsigned := tx.UnsignedFields{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: priorityFeeEffective,
		MaxFeePerGas:         maxFeePerGas,
		GasLimit:             gasLimit,
		To:                   tokenAddrBytes,
		Value:                big.NewInt(0),
		Data:                 transferCall,
	}
	digest, err := unsigned.SigningDigest()
	if err != nil {
		return fail("failed to build signing digest", err)
	}

	sig, err := r.signerAdapter.SignPrehashed(ctx, ecdsaKeyName, ecdsaPath, digest, to20(relayerAddrBytes))
	if err != nil {
		return fail("signing failed", err)
	}

	rawTx, err := unsigned.SignedRawTransaction(sig)
	if err != nil {
		return fail("failed to assemble signed transaction", err)
	}

	txHash, err := rpcClient.SendRawTransaction(ctx, rawTx)
	if err != nil {
		return fail("broadcast failed", err)
	}

	r.logs.MarkSuccess(logID, txHash)
	slog.Info("authorization broadcasted", "log_id", logID, "asset", req.TokenID, "sender", fromHex, "tx_hash", txHash)
	return SubmitResult{LogID: logID, TxHash: txHash}, nil
}

func mustHex(addr [20]byte) string {
	s, _ := toHexAddress(addr[:])
	return s
}

func to20(b []byte) [20]byte {
	var out [20]byte
	copy(out[:], b)
	return out
}
