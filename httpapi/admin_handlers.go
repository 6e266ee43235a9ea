package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethdenver2026/relayer/relayerr"
)

func decodeAdminBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

func decodeDecimalOrHex(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "0x") {
		n, ok := new(big.Int).SetString(strings.TrimPrefix(trimmed, "0x"), 16)
		if !ok {
			return nil, relayerr.NumberOutOfRange(trimmed)
		}
		return n, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, relayerr.NumberOutOfRange(trimmed)
	}
	return n, nil
}

// handleSetRPCTarget installs the JSON-RPC backend reference, eagerly
// resolving and validating the network tag.
func (s *Server) handleSetRPCTarget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Network string `json:"network"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	if err := s.relayer.SetRPCTarget(body.Network); err != nil {
		writeError(w, statusFromError(err), "rpc_target_failed", err.Error())
		return
	}
	slog.Info("admin: rpc target set", "network", body.Network)
	writeJSON(w, http.StatusOK, map[string]string{"network": body.Network})
}

// handleSetThreshold sets the minimum native balance required to proceed.
func (s *Server) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wei string `json:"wei"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	wei, err := decodeDecimalOrHex(body.Wei)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.relayer.SetThreshold(wei)
	slog.Info("admin: threshold set", "wei", wei.String())
	writeJSON(w, http.StatusOK, map[string]string{"threshold_wei": wei.String()})
}

// handleSetChainID sets the target chain id (EIP-155).
func (s *Server) handleSetChainID(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChainID uint64 `json:"chain_id"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	chainID := new(big.Int).SetUint64(body.ChainID)
	s.relayer.SetChainID(chainID)
	slog.Info("admin: chain id set", "chain_id", body.ChainID)
	writeJSON(w, http.StatusOK, map[string]uint64{"chain_id": body.ChainID})
}

// handleSetPause is the hard gate for submissions.
func (s *Server) handleSetPause(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Paused bool `json:"paused"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	s.relayer.Pause(body.Paused)
	slog.Info("admin: pause set", "paused", body.Paused)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": body.Paused})
}

// handleSetRateLimit installs the rate-limit rule set.
func (s *Server) handleSetRateLimit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PerAddrPerMin uint32 `json:"per_addr_per_min"`
		DailyCapToken uint64 `json:"daily_cap_token"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	s.relayer.SetRateLimit(body.PerAddrPerMin, body.DailyCapToken)
	slog.Info("admin: rate limit set", "per_addr_per_min", body.PerAddrPerMin, "daily_cap_token", body.DailyCapToken)
	writeJSON(w, http.StatusOK, body)
}

// handleSetFeeMultipliers sets the base-fee and priority-fee scaling
// multipliers (defaults 2.0 and 1.2).
func (s *Server) handleSetFeeMultipliers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxFeeMultiplier   *float64 `json:"max_fee_multiplier"`
		PriorityMultiplier *float64 `json:"priority_multiplier"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	if body.MaxFeeMultiplier != nil {
		s.relayer.SetMaxFeeMultiplier(*body.MaxFeeMultiplier)
	}
	if body.PriorityMultiplier != nil {
		s.relayer.SetPriorityMultiplier(*body.PriorityMultiplier)
	}
	slog.Info("admin: fee multipliers set")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type assetRequest struct {
	TokenID    string `json:"token_id"`
	EVMAddress string `json:"evm_address"`
	FeeBps     uint16 `json:"fee_bps"`
}

// handleAddAsset registers or updates an asset in the registry.
func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var body assetRequest
	if !decodeAdminBody(w, r, &body) {
		return
	}
	if err := s.relayer.AddAsset(body.TokenID, body.EVMAddress, body.FeeBps); err != nil {
		writeError(w, statusFromError(err), "add_asset_failed", err.Error())
		return
	}
	slog.Info("admin: asset added", "token_id", body.TokenID, "evm_address", body.EVMAddress)
	writeJSON(w, http.StatusOK, map[string]string{"token_id": body.TokenID})
}

func (s *Server) handleDeprecateAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenID string `json:"token_id"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	if err := s.relayer.DeprecateAsset(body.TokenID); err != nil {
		writeError(w, statusFromError(err), "deprecate_asset_failed", err.Error())
		return
	}
	slog.Info("admin: asset deprecated", "token_id", body.TokenID)
	writeJSON(w, http.StatusOK, map[string]string{"token_id": body.TokenID, "status": "deprecated"})
}

func (s *Server) handleDisableAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenID string `json:"token_id"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	if err := s.relayer.DisableAsset(body.TokenID); err != nil {
		writeError(w, statusFromError(err), "disable_asset_failed", err.Error())
		return
	}
	slog.Info("admin: asset disabled", "token_id", body.TokenID)
	writeJSON(w, http.StatusOK, map[string]string{"token_id": body.TokenID, "status": "disabled"})
}

// handleSetRelayerAddress overrides the on-chain address used for
// signing and balance checks.
func (s *Server) handleSetRelayerAddress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	normalized, err := s.relayer.SetRelayerAddress(body.Address)
	if err != nil {
		writeError(w, statusFromError(err), "set_relayer_address_failed", err.Error())
		return
	}
	slog.Info("admin: relayer address set", "address", normalized)
	writeJSON(w, http.StatusOK, map[string]string{"address": normalized})
}

// handleDeriveRelayerAddress queries the signer's public key, computes
// the address, persists and returns it.
func (s *Server) handleDeriveRelayerAddress(w http.ResponseWriter, r *http.Request) {
	address, err := s.relayer.DeriveRelayerAddress(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "derive_relayer_address_failed", err.Error())
		return
	}
	slog.Info("admin: relayer address derived", "address", address)
	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

// handleRefreshGasBalance re-queries the relayer's native balance and
// persists it, so /info reflects a current reading without waiting for
// a submission to run.
func (s *Server) handleRefreshGasBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.relayer.RefreshGasBalance(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "refresh_gas_balance_failed", err.Error())
		return
	}
	slog.Info("admin: gas balance refreshed", "gas_wei", balance.String())
	writeJSON(w, http.StatusOK, map[string]string{"gas_wei": balance.String()})
}

// handleSetEcdsaKey sets the signer key name and, optionally, the
// derivation path (colon-separated hex components, matching config's
// ECDSA_DERIVATION_PATH convention).
func (s *Server) handleSetEcdsaKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		KeyName        string `json:"key_name"`
		DerivationPath string `json:"derivation_path"`
	}
	if !decodeAdminBody(w, r, &body) {
		return
	}
	s.relayer.SetEcdsaKeyName(body.KeyName)
	if body.DerivationPath != "" {
		parts := strings.Split(body.DerivationPath, ":")
		path := make([][]byte, 0, len(parts))
		for _, p := range parts {
			raw, err := hex.DecodeString(p)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", "invalid derivation path component: "+p)
				return
			}
			path = append(path, raw)
		}
		s.relayer.SetEcdsaDerivationPath(path)
	}
	slog.Info("admin: ecdsa key set", "key_name", body.KeyName)
	writeJSON(w, http.StatusOK, map[string]string{"key_name": body.KeyName})
}
