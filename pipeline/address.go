package pipeline

import (
	"encoding/hex"
	"strings"

	"github.com/ethdenver2026/relayer/relayerr"
)

// toHexAddress renders 20 raw bytes as a "0x"-prefixed lowercase hex address.
func toHexAddress(b []byte) (string, error) {
	if len(b) != 20 {
		return "", relayerr.InvalidAddressLength("address", 20, len(b))
	}
	return "0x" + hex.EncodeToString(b), nil
}

// normalizeEvmAddress validates and canonicalises a "0x"+40-hex address
// string: 42 characters total including the 0x prefix, lowercase output.
func normalizeEvmAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if len(trimmed) != 42 || !strings.HasPrefix(trimmed, "0x") {
		return "", relayerr.InvalidAddressLength("evm_address", 42, len(trimmed))
	}
	raw, err := hex.DecodeString(trimmed[2:])
	if err != nil {
		return "", relayerr.HexDecodeFailed(trimmed)
	}
	if len(raw) != 20 {
		return "", relayerr.InvalidAddressLength("evm_address", 20, len(raw))
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// evmAddressBytes decodes a normalized "0x"+40-hex address back to 20 raw bytes.
func evmAddressBytes(address string) ([]byte, error) {
	trimmed := strings.TrimPrefix(address, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, relayerr.HexDecodeFailed(address)
	}
	if len(raw) != 20 {
		return nil, relayerr.InvalidAddressLength("address", 20, len(raw))
	}
	return raw, nil
}
