package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethdenver2026/relayer/relayerr"
)

// RemoteBackend talks to a threshold-ECDSA signing service over HTTP,
// the production Backend implementation: a thin *http.Client wrapper
// with a narrow JSON request/response contract. The signing key never
// leaves the remote service.
type RemoteBackend struct {
	url    string
	client *http.Client
}

// NewRemoteBackend creates a RemoteBackend that calls signerURL.
func NewRemoteBackend(signerURL string) *RemoteBackend {
	return &RemoteBackend{
		url:    signerURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type signRequest struct {
	KeyName        string   `json:"key_name"`
	DerivationPath []string `json:"derivation_path"`
	Digest         string   `json:"digest"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

// Sign submits digest to the remote signing service and returns the
// raw 64- or 65-byte signature it reports, for Adapter.SignPrehashed
// to interpret.
func (b *RemoteBackend) Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error) {
	req := signRequest{
		KeyName:        keyName,
		DerivationPath: hexEncodeAll(derivationPath),
		Digest:         "0x" + hex.EncodeToString(digest[:]),
	}
	var resp signResponse
	if err := b.post(ctx, "/sign", req, &resp); err != nil {
		return nil, fmt.Errorf("remote signer sign: %w", err)
	}
	return hex.DecodeString(trimHexPrefix(resp.Signature))
}

type publicKeyAddressRequest struct {
	KeyName        string   `json:"key_name"`
	DerivationPath []string `json:"derivation_path"`
}

type publicKeyAddressResponse struct {
	Address string `json:"address"`
}

// PublicKeyAddress queries the remote signer's public key and derives
// the EVM address, used by the derive_relayer_address admin operation.
func (b *RemoteBackend) PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error) {
	req := publicKeyAddressRequest{KeyName: keyName, DerivationPath: hexEncodeAll(derivationPath)}
	var resp publicKeyAddressResponse
	if err := b.post(ctx, "/public-key-address", req, &resp); err != nil {
		return [20]byte{}, fmt.Errorf("remote signer public key: %w", err)
	}
	raw, err := hex.DecodeString(trimHexPrefix(resp.Address))
	if err != nil || len(raw) != 20 {
		return [20]byte{}, relayerr.InvalidAddressLength("signer address", 20, len(raw))
	}
	var addr [20]byte
	copy(addr[:], raw)
	return addr, nil
}

func (b *RemoteBackend) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("signer returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}

func hexEncodeAll(path [][]byte) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = hex.EncodeToString(p)
	}
	return out
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
