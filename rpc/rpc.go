// Package rpc frames JSON-RPC 2.0 calls with monotonically increasing
// ids and dispatches them through an injected Transport, normalising
// whatever comes back into either a node-level RpcError or a
// below-JSON-RPC RpcTransportError. The pipeline never talks to a
// concrete network client directly, only to this abstraction.
package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethdenver2026/relayer/metrics"
	"github.com/ethdenver2026/relayer/relayerr"
)

// TransportErrorKind classifies a failure raised below the JSON-RPC
// layer, mirroring the {ProviderError, ValidationError, HttpOutcallError}
// variants a multi-provider backend can surface.
type TransportErrorKind string

const (
	TransportErrorProvider    TransportErrorKind = "ProviderError"
	TransportErrorValidation  TransportErrorKind = "ValidationError"
	TransportErrorHTTPOutcall TransportErrorKind = "HttpOutcallError"
)

// TransportError is returned by a Transport when the failure happened
// before or below the JSON-RPC response body (connection refused,
// malformed request, provider quota, etc).
type TransportError struct {
	Kind    TransportErrorKind
	Message string
}

func (e *TransportError) Error() string { return e.Message }

// Transport is the injected backend a Client dispatches framed JSON-RPC
// requests through. It returns the raw response body on success; any
// error it returns that is not a *TransportError is treated as an
// HttpOutcallError.
type Transport interface {
	Do(ctx context.Context, url string, payloadJSON []byte) ([]byte, error)
}

// Client frames and dispatches JSON-RPC 2.0 calls against a single
// resolved endpoint URL.
type Client struct {
	transport Transport
	url       string
	nextID    atomic.Uint64
}

// New constructs a Client against a resolved endpoint URL. Routing is
// entirely determined by url; multi-chain dispatch is the caller's
// responsibility (one Client per configured rpc target).
func New(transport Transport, url string) *Client {
	c := &Client{transport: transport, url: url}
	c.nextID.Store(1)
	return c
}

type rpcRequestEnvelope struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcErrorBody struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type rpcResponseEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	start := time.Now()
	result, err := c.callUninstrumented(ctx, method, params)
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		if re, ok := err.(*relayerr.RelayError); ok {
			metrics.RPCErrorsTotal.WithLabelValues(kindLabel(re)).Inc()
		}
	}
	return result, err
}

func kindLabel(re *relayerr.RelayError) string {
	switch re.Kind {
	case relayerr.KindRpcTransportError:
		return re.TransportCode
	case relayerr.KindRpcError:
		return "RpcError"
	default:
		return "Other"
	}
}

func (c *Client) callUninstrumented(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	id := c.nextID.Add(1) - 1
	req := rpcRequestEnvelope{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, relayerr.JsonError(err.Error())
	}

	body, err := c.transport.Do(ctx, c.url, payload)
	if err != nil {
		if te, ok := err.(*TransportError); ok {
			return nil, relayerr.RpcTransportError(string(te.Kind), te.Message)
		}
		return nil, relayerr.RpcTransportError(string(TransportErrorHTTPOutcall), err.Error())
	}

	var resp rpcResponseEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, relayerr.JsonError(err.Error())
	}
	if resp.Error != nil {
		code := resp.Error.Code
		if code == 0 {
			code = -32000
		}
		msg := resp.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, relayerr.RpcError(code, msg)
	}
	if resp.Result == nil {
		return nil, relayerr.RpcResultTypeMismatch("result")
	}
	return resp.Result, nil
}

func resultString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", relayerr.RpcResultTypeMismatch("hex string")
	}
	return s, nil
}

// ParseHexBytes decodes a 0x-prefixed hex string. Odd-length bodies
// are zero-padded on the left before decoding, since nodes routinely
// return quantities like "0x1".
func ParseHexBytes(value string) ([]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "0x") {
		return nil, relayerr.HexDecodeFailed(trimmed)
	}
	body := trimmed[2:]
	if body == "" {
		return []byte{}, nil
	}
	if len(body)%2 != 0 {
		body = "0" + body
	}
	out, err := hex.DecodeString(body)
	if err != nil {
		return nil, relayerr.HexDecodeFailed(trimmed)
	}
	return out, nil
}

func natFromHex(value string) (*big.Int, error) {
	bytes, err := ParseHexBytes(value)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(bytes), nil
}

func natFromHexWithZeroDefault(value string) (*big.Int, error) {
	if value == "0x" {
		return new(big.Int), nil
	}
	return natFromHex(value)
}

func toHexPrefixed(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// EthCall invokes eth_call against to with the given calldata at the
// "latest" block, optionally supplying a from address (used for
// simulation where msg.sender matters). Returns the raw ABI-encoded
// result bytes.
func (c *Client) EthCall(ctx context.Context, from, to string, data []byte) ([]byte, error) {
	callObj := map[string]interface{}{"to": to, "data": toHexPrefixed(data)}
	if from != "" {
		callObj["from"] = from
	}
	raw, err := c.call(ctx, "eth_call", []interface{}{callObj, "latest"})
	if err != nil {
		return nil, err
	}
	hex, err := resultString(raw)
	if err != nil {
		return nil, err
	}
	return ParseHexBytes(hex)
}

// EstimateGas invokes eth_estimateGas.
func (c *Client) EstimateGas(ctx context.Context, from, to string, data []byte) (*big.Int, error) {
	callObj := map[string]interface{}{"from": from, "to": to, "data": toHexPrefixed(data)}
	raw, err := c.call(ctx, "eth_estimateGas", []interface{}{callObj})
	if err != nil {
		if re, ok := err.(*relayerr.RelayError); ok && re.Kind == relayerr.KindRpcError {
			return nil, relayerr.GasEstimateFailed(re.Message)
		}
		return nil, err
	}
	hex, err := resultString(raw)
	if err != nil {
		return nil, err
	}
	n, err := natFromHex(hex)
	if err != nil {
		if re, ok := err.(*relayerr.RelayError); ok && re.Kind == relayerr.KindHexDecodeFailed {
			return nil, relayerr.GasEstimateFailed(re.Value)
		}
		return nil, err
	}
	return n, nil
}

// GetBalance invokes eth_getBalance at the "latest" block.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_getBalance", []interface{}{address, "latest"})
	if err != nil {
		return nil, err
	}
	hex, err := resultString(raw)
	if err != nil {
		return nil, err
	}
	return natFromHexWithZeroDefault(hex)
}

// GetTransactionCount invokes eth_getTransactionCount at the "pending"
// block, which is what the relayer needs to avoid nonce reuse across
// back-to-back submissions.
func (c *Client) GetTransactionCount(ctx context.Context, address string) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_getTransactionCount", []interface{}{address, "pending"})
	if err != nil {
		return nil, err
	}
	hex, err := resultString(raw)
	if err != nil {
		return nil, err
	}
	return natFromHexWithZeroDefault(hex)
}

// MaxPriorityFeePerGas invokes eth_maxPriorityFeePerGas.
func (c *Client) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_maxPriorityFeePerGas", []interface{}{})
	if err != nil {
		return nil, err
	}
	hex, err := resultString(raw)
	if err != nil {
		return nil, err
	}
	return natFromHexWithZeroDefault(hex)
}

// BaseFee invokes eth_getBlockByNumber("latest", false) and extracts
// baseFeePerGas.
func (c *Client) BaseFee(ctx context.Context) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_getBlockByNumber", []interface{}{"latest", false})
	if err != nil {
		return nil, err
	}
	var block map[string]interface{}
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, relayerr.RpcResultTypeMismatch("block object")
	}
	baseFeeHex, ok := block["baseFeePerGas"].(string)
	if !ok {
		return nil, relayerr.RpcResultTypeMismatch("baseFeePerGas")
	}
	return natFromHexWithZeroDefault(baseFeeHex)
}

// SendRawTransaction invokes eth_sendRawTransaction and returns the
// transaction hash.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (string, error) {
	raw, err := c.call(ctx, "eth_sendRawTransaction", []interface{}{toHexPrefixed(rawTx)})
	if err != nil {
		return "", err
	}
	return resultString(raw)
}
