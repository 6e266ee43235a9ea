package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ethdenver2026/relayer/metrics"
	"github.com/ethdenver2026/relayer/paymentlog"
	"github.com/ethdenver2026/relayer/pipeline"
	"github.com/ethdenver2026/relayer/relayerr"
)

// Server wires pipeline.Relayer onto an http.Handler.
type Server struct {
	relayer *pipeline.Relayer
	admin   *AdminAuth
}

func NewServer(relayer *pipeline.Relayer, admin *AdminAuth) *Server {
	return &Server{relayer: relayer, admin: admin}
}

// Routes builds the full mux: anonymous /submit, /info, /logs, and the
// admin surface gated by AdminAuth.Middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /info", s.handleInfo)
	mux.HandleFunc("GET /logs", s.handleLogs)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /admin/rpc-target", s.handleSetRPCTarget)
	adminMux.HandleFunc("POST /admin/threshold", s.handleSetThreshold)
	adminMux.HandleFunc("POST /admin/chain-id", s.handleSetChainID)
	adminMux.HandleFunc("POST /admin/pause", s.handleSetPause)
	adminMux.HandleFunc("POST /admin/rate-limit", s.handleSetRateLimit)
	adminMux.HandleFunc("POST /admin/fee-multipliers", s.handleSetFeeMultipliers)
	adminMux.HandleFunc("POST /admin/assets", s.handleAddAsset)
	adminMux.HandleFunc("POST /admin/assets/deprecate", s.handleDeprecateAsset)
	adminMux.HandleFunc("POST /admin/assets/disable", s.handleDisableAsset)
	adminMux.HandleFunc("POST /admin/relayer-address", s.handleSetRelayerAddress)
	adminMux.HandleFunc("POST /admin/derive-relayer-address", s.handleDeriveRelayerAddress)
	adminMux.HandleFunc("POST /admin/ecdsa-key", s.handleSetEcdsaKey)
	adminMux.HandleFunc("POST /admin/refresh-gas-balance", s.handleRefreshGasBalance)

	mux.Handle("/admin/", s.admin.Middleware(adminMux))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// statusFromError maps a *relayerr.RelayError to an HTTP status code;
// any other error is treated as internal.
func statusFromError(err error) int {
	re, ok := err.(*relayerr.RelayError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch re.Kind {
	case relayerr.KindNotAuthorized:
		return http.StatusForbidden
	case relayerr.KindPaused, relayerr.KindAssetNotActive, relayerr.KindAuthorizationExpired,
		relayerr.KindAuthorizationAlreadyUsed, relayerr.KindRateLimited:
		return http.StatusConflict
	case relayerr.KindAssetNotRegistered:
		return http.StatusNotFound
	case relayerr.KindInvalidAddressLength, relayerr.KindInvalidNonceLength,
		relayerr.KindInvalidSignatureLength, relayerr.KindNumberOutOfRange,
		relayerr.KindHexDecodeFailed:
		return http.StatusBadRequest
	case relayerr.KindConfigurationMissing, relayerr.KindRelayerAddressMissing,
		relayerr.KindGasBalanceLow:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func decodeHex20(value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimPrefix(value, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != 20 {
		return out, relayerr.InvalidAddressLength("address", 20, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func decodeHex32(value string) ([32]byte, error) {
	var out [32]byte
	trimmed := strings.TrimPrefix(value, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != 32 {
		return out, relayerr.InvalidNonceLength(32, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func decodeBigIntDecimal(value string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, relayerr.NumberOutOfRange("decimal integer")
	}
	return n, nil
}

// submitRequest is the wire shape of an EIP-3009 authorization,
// addresses/nonce/signature as 0x-prefixed hex, amounts as decimal
// strings to avoid float precision loss in JSON.
type submitRequest struct {
	TokenID     string `json:"token_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"valid_after"`
	ValidBefore string `json:"valid_before"`
	Nonce       string `json:"nonce"`
	V           uint8  `json:"v"`
	R           string `json:"r"`
	S           string `json:"s"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	correlationID := uuid.New().String()
	log := slog.With("correlation_id", correlationID)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	from, err := decodeHex20(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	to, err := decodeHex20(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	nonce, err := decodeHex32(req.Nonce)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	rWord, err := decodeHex32(req.R)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	sWord, err := decodeHex32(req.S)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	value, err := decodeBigIntDecimal(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	validAfter, err := decodeBigIntDecimal(req.ValidAfter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	validBefore, err := decodeBigIntDecimal(req.ValidBefore)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	auth := pipeline.Authorization{
		TokenID:     req.TokenID,
		From:        from,
		To:          to,
		Value:       value,
		ValidAfter:  validAfter,
		ValidBefore: validBefore,
		Nonce:       nonce,
		V:           req.V,
		R:           rWord,
		S:           sWord,
	}

	log.Info("submission received", "token_id", req.TokenID)
	result, err := s.relayer.Submit(r.Context(), time.Now().Unix(), auth)
	if err != nil {
		log.Warn("submission failed", "err", err)
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		writeError(w, statusFromError(err), "submission_failed", err.Error())
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("broadcasted").Inc()
	log.Info("submission broadcasted", "tx_hash", result.TxHash, "log_id", result.LogID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"log_id":         result.LogID,
		"tx_hash":        result.TxHash,
		"correlation_id": correlationID,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := s.relayer.GetInfo()
	assets := make([]map[string]interface{}, 0, len(info.Assets))
	for _, a := range info.Assets {
		assets = append(assets, map[string]interface{}{
			"token_id":    a.TokenID,
			"evm_address": a.EVMAddress,
			"status":      assetStatusLabel(a.Status),
			"fee_bps":     a.FeeBps,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"relayer_address": info.RelayerAddr,
		"gas_wei":         info.GasWei.String(),
		"threshold_wei":   info.ThresholdWei.String(),
		"assets":          assets,
	})
}

func assetStatusLabel(status pipeline.AssetStatus) string {
	switch status {
	case pipeline.AssetDeprecated:
		return "deprecated"
	case pipeline.AssetDisabled:
		return "disabled"
	default:
		return "active"
	}
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var startAfter *uint64
	if raw := q.Get("start_after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid start_after")
			return
		}
		startAfter = &v
	}
	limit := uint64(20)
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
		limit = v
	}

	entries := s.relayer.Logs(startAfter, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": toWireEntries(entries)})
}

func toWireEntries(entries []paymentlog.Entry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"id":          e.ID,
			"ts_sec":      e.TsSec,
			"asset":       e.Asset,
			"from":        e.From,
			"to":          e.To,
			"value":       e.Value.String(),
			"status":      string(e.Status),
			"tx_hash":     e.TxHash,
			"fail_reason": e.FailReason,
		})
	}
	return out
}
