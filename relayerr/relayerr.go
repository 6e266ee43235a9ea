// Package relayerr defines the error taxonomy shared by every stage of the
// authorization pipeline. A single RelayError carries a Kind plus whatever
// structured fields that kind needs, and renders a canonical display string
// the same way the rest of the pipeline surfaces errors to callers.
package relayerr

import "fmt"

// Kind enumerates every distinct failure mode the relayer can report.
type Kind int

const (
	KindNotAuthorized Kind = iota
	KindNotInitialized
	KindPaused
	KindConfigurationMissing
	KindRelayerAddressMissing
	KindAssetNotRegistered
	KindAssetNotActive
	KindAuthorizationExpired
	KindAuthorizationAlreadyUsed
	KindInvalidAddressLength
	KindInvalidNonceLength
	KindInvalidSignatureLength
	KindSignatureRecoveryFailed
	KindRpcError
	KindRpcTransportError
	KindRpcResultTypeMismatch
	KindHexDecodeFailed
	KindNumberOutOfRange
	KindSimulationFailed
	KindGasEstimateFailed
	KindGasBalanceLow
	KindRateLimited
	KindJsonError
	KindNotImplemented
)

// RelayError is the single error type returned by every package in this
// module. Fields are populated according to Kind; unused fields are zero.
type RelayError struct {
	Kind Kind

	Field    string // ConfigurationMissing, InvalidAddressLength, InvalidSignatureLength, NumberOutOfRange
	Expected int    // InvalidAddressLength, InvalidNonceLength, InvalidSignatureLength
	Actual   int    // InvalidAddressLength, InvalidNonceLength, InvalidSignatureLength

	Message string // SignatureRecoveryFailed, RpcError, RpcTransportError, RpcResultTypeMismatch, SimulationFailed, GasEstimateFailed, JsonError
	Value   string // HexDecodeFailed

	Code int64 // RpcError
	// RpcTransportError code is a string (transport backends report codes as
	// strings, e.g. "ProviderError" or "HttpOutcallError"); RpcError code is
	// numeric per JSON-RPC.
	TransportCode string

	Required string // GasBalanceLow
	Have     string // GasBalanceLow

	Feature string // NotImplemented
}

func (e *RelayError) Error() string {
	switch e.Kind {
	case KindNotAuthorized:
		return "not authorized"
	case KindNotInitialized:
		return "state not initialized"
	case KindPaused:
		return "service paused"
	case KindConfigurationMissing:
		return fmt.Sprintf("configuration missing: %s", e.Field)
	case KindRelayerAddressMissing:
		return "relayer address not configured"
	case KindAssetNotRegistered:
		return "asset not registered"
	case KindAssetNotActive:
		return "asset not active"
	case KindAuthorizationExpired:
		return "authorization expired"
	case KindAuthorizationAlreadyUsed:
		return "authorization already used"
	case KindInvalidAddressLength:
		return fmt.Sprintf("invalid %s length: expected %d, got %d", e.Field, e.Expected, e.Actual)
	case KindInvalidNonceLength:
		return fmt.Sprintf("invalid nonce length: expected %d, got %d", e.Expected, e.Actual)
	case KindInvalidSignatureLength:
		return fmt.Sprintf("invalid %s length: expected %d, got %d", e.Field, e.Expected, e.Actual)
	case KindSignatureRecoveryFailed:
		return fmt.Sprintf("signature recovery failed: %s", e.Message)
	case KindRpcError:
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	case KindRpcTransportError:
		return fmt.Sprintf("rpc transport error %s: %s", e.TransportCode, e.Message)
	case KindRpcResultTypeMismatch:
		return fmt.Sprintf("unexpected rpc result type, expected %s", e.Message)
	case KindHexDecodeFailed:
		return fmt.Sprintf("failed to decode hex: %s", e.Value)
	case KindNumberOutOfRange:
		return fmt.Sprintf("number out of range: %s", e.Field)
	case KindSimulationFailed:
		return fmt.Sprintf("simulation failed: %s", e.Message)
	case KindGasEstimateFailed:
		return fmt.Sprintf("gas estimation failed: %s", e.Message)
	case KindGasBalanceLow:
		return fmt.Sprintf("gas balance low: required %s, actual %s", e.Required, e.Have)
	case KindRateLimited:
		return "rate limit exceeded"
	case KindJsonError:
		return fmt.Sprintf("json error: %s", e.Message)
	case KindNotImplemented:
		return fmt.Sprintf("feature not implemented: %s", e.Feature)
	default:
		return "unknown relay error"
	}
}

// Is reports whether err is a *RelayError of the given kind, so callers can
// branch with errors.Is(err, relayerr.KindX) style checks via helpers below.
func Is(err error, kind Kind) bool {
	re, ok := err.(*RelayError)
	return ok && re.Kind == kind
}

func NotAuthorized() error { return &RelayError{Kind: KindNotAuthorized} }

func Paused() error { return &RelayError{Kind: KindPaused} }

func ConfigurationMissing(field string) error {
	return &RelayError{Kind: KindConfigurationMissing, Field: field}
}

func RelayerAddressMissing() error { return &RelayError{Kind: KindRelayerAddressMissing} }

func AssetNotRegistered() error { return &RelayError{Kind: KindAssetNotRegistered} }

func AssetNotActive() error { return &RelayError{Kind: KindAssetNotActive} }

func AuthorizationExpired() error { return &RelayError{Kind: KindAuthorizationExpired} }

func AuthorizationAlreadyUsed() error { return &RelayError{Kind: KindAuthorizationAlreadyUsed} }

func InvalidAddressLength(field string, expected, actual int) error {
	return &RelayError{Kind: KindInvalidAddressLength, Field: field, Expected: expected, Actual: actual}
}

func InvalidNonceLength(expected, actual int) error {
	return &RelayError{Kind: KindInvalidNonceLength, Expected: expected, Actual: actual}
}

func InvalidSignatureLength(field string, expected, actual int) error {
	return &RelayError{Kind: KindInvalidSignatureLength, Field: field, Expected: expected, Actual: actual}
}

func SignatureRecoveryFailed(message string) error {
	return &RelayError{Kind: KindSignatureRecoveryFailed, Message: message}
}

func RpcError(code int64, message string) error {
	return &RelayError{Kind: KindRpcError, Code: code, Message: message}
}

func RpcTransportError(code, message string) error {
	return &RelayError{Kind: KindRpcTransportError, TransportCode: code, Message: message}
}

func RpcResultTypeMismatch(expected string) error {
	return &RelayError{Kind: KindRpcResultTypeMismatch, Message: expected}
}

func HexDecodeFailed(value string) error {
	return &RelayError{Kind: KindHexDecodeFailed, Value: value}
}

func NumberOutOfRange(field string) error {
	return &RelayError{Kind: KindNumberOutOfRange, Field: field}
}

func SimulationFailed(message string) error {
	return &RelayError{Kind: KindSimulationFailed, Message: message}
}

func GasEstimateFailed(message string) error {
	return &RelayError{Kind: KindGasEstimateFailed, Message: message}
}

func GasBalanceLow(required, actual string) error {
	return &RelayError{Kind: KindGasBalanceLow, Required: required, Have: actual}
}

func RateLimited() error { return &RelayError{Kind: KindRateLimited} }

func JsonError(message string) error {
	return &RelayError{Kind: KindJsonError, Message: message}
}

func NotImplemented(feature string) error {
	return &RelayError{Kind: KindNotImplemented, Feature: feature}
}
