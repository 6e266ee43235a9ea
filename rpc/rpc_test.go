package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ethdenver2026/relayer/relayerr"
)

type fakeTransport struct {
	response []byte
	err      error
	lastReq  rpcRequestEnvelope
}

func (f *fakeTransport) Do(ctx context.Context, url string, payloadJSON []byte) ([]byte, error) {
	_ = json.Unmarshal(payloadJSON, &f.lastReq)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func TestCallAssignsMonotonicIDs(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`)}
	c := New(ft, "http://example.test")

	if _, err := c.GetBalance(context.Background(), "0xabc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstID := ft.lastReq.ID
	if _, err := c.GetBalance(context.Background(), "0xabc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft.lastReq.ID <= firstID {
		t.Fatalf("expected monotonically increasing ids, got %d then %d", firstID, ft.lastReq.ID)
	}
}

func TestCallSurfacesRpcError(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)}
	c := New(ft, "http://example.test")

	_, err := c.GetBalance(context.Background(), "0xabc")
	re, ok := err.(*relayerr.RelayError)
	if !ok || re.Kind != relayerr.KindRpcError {
		t.Fatalf("expected RpcError, got %v", err)
	}
}

func TestCallMissingResultIsTypeMismatch(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1}`)}
	c := New(ft, "http://example.test")

	_, err := c.GetBalance(context.Background(), "0xabc")
	re, ok := err.(*relayerr.RelayError)
	if !ok || re.Kind != relayerr.KindRpcResultTypeMismatch {
		t.Fatalf("expected RpcResultTypeMismatch, got %v", err)
	}
}

func TestEstimateGasWrapsRpcErrorAsGasEstimateFailed(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"out of gas"}}`)}
	c := New(ft, "http://example.test")

	_, err := c.EstimateGas(context.Background(), "0xfrom", "0xto", []byte{0x01})
	re, ok := err.(*relayerr.RelayError)
	if !ok || re.Kind != relayerr.KindGasEstimateFailed {
		t.Fatalf("expected GasEstimateFailed, got %v", err)
	}
}

func TestEstimateGasNonStringResultIsTypeMismatch(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"result":{"gas":"0x5208"}}`)}
	c := New(ft, "http://example.test")

	_, err := c.EstimateGas(context.Background(), "0xfrom", "0xto", []byte{0x01})
	re, ok := err.(*relayerr.RelayError)
	if !ok || re.Kind != relayerr.KindRpcResultTypeMismatch {
		t.Fatalf("expected RpcResultTypeMismatch to pass through unwrapped, got %v", err)
	}
}

func TestBaseFeeExtractsField(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"result":{"baseFeePerGas":"0x6fc23ac00"}}`)}
	c := New(ft, "http://example.test")

	fee, err := c.BaseFee(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee.Sign() <= 0 {
		t.Fatalf("expected positive base fee, got %s", fee)
	}
}

func TestGetBalanceZeroDefaultFor0x(t *testing.T) {
	ft := &fakeTransport{response: []byte(`{"jsonrpc":"2.0","id":1,"result":"0x"}`)}
	c := New(ft, "http://example.test")

	balance, err := c.GetBalance(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", balance)
	}
}

func TestResolveNetworkPresets(t *testing.T) {
	url, err := ResolveNetwork("polygon-amoy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Fatalf("expected non-empty url")
	}
}

func TestResolveNetworkCustom(t *testing.T) {
	url, err := ResolveNetwork("custom:https://my-node.example/rpc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://my-node.example/rpc" {
		t.Fatalf("got %s", url)
	}
}

func TestResolveNetworkBareURL(t *testing.T) {
	url, err := ResolveNetwork("https://my-node.example/rpc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://my-node.example/rpc" {
		t.Fatalf("got %s", url)
	}
}

func TestResolveNetworkRejectsUnknownTag(t *testing.T) {
	if _, err := ResolveNetwork("made-up-network"); err == nil {
		t.Fatalf("expected error for unknown network tag")
	}
}

func TestResolveNetworkRejectsEmpty(t *testing.T) {
	if _, err := ResolveNetwork(""); err == nil {
		t.Fatalf("expected error for empty network tag")
	}
}
