package rpc

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethdenver2026/relayer/relayerr"
)

// HTTPTransport posts JSON-RPC payloads to a single HTTP(S) endpoint.
// It is the production Transport: a thin *http.Client wrapper that
// logs and normalises failures into TransportError variants.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: 30 * time.Second}}
}

func (t *HTTPTransport) Do(ctx context.Context, url string, payloadJSON []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadJSON))
	if err != nil {
		return nil, &TransportError{Kind: TransportErrorValidation, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		slog.Warn("rpc transport error", "url", url, "err", err)
		return nil, &TransportError{Kind: TransportErrorHTTPOutcall, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: TransportErrorHTTPOutcall, Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{
			Kind:    TransportErrorHTTPOutcall,
			Message: "upstream returned status " + strconv.Itoa(resp.StatusCode),
		}
	}
	return body, nil
}

// presetNetworks maps the preset network tags to concrete public
// JSON-RPC endpoints, since a plain HTTP transport has no provider-id
// concept of its own.
var presetNetworks = map[string]string{
	"polygon-amoy":     "https://rpc-amoy.polygon.technology",
	"polygon-mainnet":  "https://polygon-rpc.com",
	"eth-mainnet":      "https://ethereum.publicnode.com",
	"eth-sepolia":      "https://ethereum-sepolia.publicnode.com",
	"arbitrum-one":     "https://arbitrum-one.publicnode.com",
	"base-mainnet":     "https://base.publicnode.com",
	"optimism-mainnet": "https://optimism.publicnode.com",
}

// ResolveNetwork implements the network tag grammar: provider:<u64> |
// custom:<url> | http(s)://<url> | one of the preset tags. A plain HTTP
// transport has no notion of numbered providers, so provider:<id> is
// rejected as unsupported rather than silently guessing an endpoint.
func ResolveNetwork(network string) (string, error) {
	trimmed := strings.TrimSpace(network)
	if trimmed == "" {
		return "", relayerr.ConfigurationMissing("rpc_target.network")
	}
	if rest, ok := strings.CutPrefix(trimmed, "provider:"); ok {
		return "", relayerr.NotImplemented("numbered rpc providers (provider:" + rest + ") require a direct-URL transport")
	}
	if rest, ok := strings.CutPrefix(trimmed, "custom:"); ok {
		url := strings.TrimSpace(rest)
		if url == "" {
			return "", relayerr.ConfigurationMissing("rpc_target.network (custom url)")
		}
		return url, nil
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, nil
	}
	if url, ok := presetNetworks[trimmed]; ok {
		return url, nil
	}
	return "", relayerr.ConfigurationMissing("unsupported rpc network: " + trimmed)
}
