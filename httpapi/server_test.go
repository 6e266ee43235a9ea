package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ethdenver2026/relayer/pipeline"
)

type fakeTransport struct {
	responses map[string]string
}

func (f *fakeTransport) Do(ctx context.Context, url string, payloadJSON []byte) ([]byte, error) {
	var req struct {
		ID     uint64        `json:"id"`
		Method string        `json:"method"`
		Params []interface{} `json:"params"`
	}
	if err := json.Unmarshal(payloadJSON, &req); err != nil {
		return nil, err
	}
	result, ok := f.responses[req.Method]
	if !ok {
		result = `"0x0"`
	}
	idJSON, _ := json.Marshal(req.ID)
	return []byte(`{"jsonrpc":"2.0","id":` + string(idJSON) + `,"result":` + result + `}`), nil
}

func defaultResponses() map[string]string {
	return map[string]string{
		"eth_call":                 `"0x0000000000000000000000000000000000000000000000000000000000000000"`,
		"eth_estimateGas":          `"0x5208"`,
		"eth_getBlockByNumber":     `{"baseFeePerGas":"0x3b9aca00"}`,
		"eth_maxPriorityFeePerGas": `"0x77359400"`,
		"eth_getBalance":           `"0xde0b6b3a7640000"`,
		"eth_getTransactionCount":  `"0x1"`,
		"eth_sendRawTransaction":   `"0xabc123"`,
	}
}

type fakeSigner struct{ addr [20]byte }

func (f fakeSigner) Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error) {
	out := make([]byte, 65)
	out[64] = 1
	return out, nil
}

func (f fakeSigner) PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error) {
	return f.addr, nil
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	ft := &fakeTransport{responses: defaultResponses()}
	r := pipeline.New(ft, fakeSigner{})
	if err := r.SetRPCTarget("custom:https://example-node.test"); err != nil {
		t.Fatalf("SetRPCTarget: %v", err)
	}

	const secret = "test-admin-secret"
	admin := NewAdminAuth(secret)
	token, err := IssueAdminToken(secret, "operator", jwt.NumericDate{Time: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("IssueAdminToken: %v", err)
	}
	return NewServer(r, admin), token
}

func doAdmin(t *testing.T, srv *Server, token, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRejectMissingBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/pause", strings.NewReader(`{"paused":true}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminPauseGatesSubmission(t *testing.T) {
	srv, token := newTestServer(t)

	rec := doAdmin(t, srv, token, "/admin/assets", assetRequest{TokenID: "usdc", EVMAddress: "0x" + strings.Repeat("22", 20)})
	if rec.Code != http.StatusOK {
		t.Fatalf("add asset failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doAdmin(t, srv, token, "/admin/chain-id", map[string]uint64{"chain_id": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("set chain id failed: %d", rec.Code)
	}
	rec = doAdmin(t, srv, token, "/admin/threshold", map[string]string{"wei": "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set threshold failed: %d", rec.Code)
	}
	rec = doAdmin(t, srv, token, "/admin/relayer-address", map[string]string{"address": "0x" + strings.Repeat("11", 20)})
	if rec.Code != http.StatusOK {
		t.Fatalf("set relayer address failed: %d", rec.Code)
	}

	rec = doAdmin(t, srv, token, "/admin/pause", map[string]bool{"paused": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("pause failed: %d", rec.Code)
	}

	submitBody := submitRequest{
		TokenID:     "usdc",
		From:        "0x" + strings.Repeat("33", 20),
		To:          "0x" + strings.Repeat("44", 20),
		Value:       "1000",
		ValidAfter:  "0",
		ValidBefore: "9999999999",
		Nonce:       "0x" + strings.Repeat("01", 32),
		V:           27,
		R:           "0x" + strings.Repeat("02", 32),
		S:           "0x" + strings.Repeat("03", 32),
	}
	payload, _ := json.Marshal(submitBody)
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(payload))
	submitRec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(submitRec, req)
	if submitRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 paused, got %d: %s", submitRec.Code, submitRec.Body.String())
	}
}

func TestInfoAndLogsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/logs?limit=5", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Entries []map[string]interface{} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Entries) != 0 {
		t.Fatalf("expected no log entries yet, got %d", len(body.Entries))
	}
}
