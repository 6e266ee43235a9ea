// Package signer adapts an injected threshold-ECDSA signing backend to
// the EIP-1559 (y_parity, r, s) signature shape. Backends that already
// return a 65-byte recoverable signature are used verbatim; backends
// that return only a 64-byte (r, s) pair require y_parity to be
// reconstructed by secp256k1 public-key recovery against the known
// relayer address.
package signer

import (
	"context"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ethdenver2026/relayer/keccak"
	"github.com/ethdenver2026/relayer/relayerr"
	"github.com/ethdenver2026/relayer/tx"
)

// Backend is the injected remote signer. Implementations submit the
// digest to a threshold-ECDSA key (or a local key for development) and
// return either a 64-byte (r,s) or 65-byte (r,s,v) signature.
type Backend interface {
	Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error)
	// PublicKeyAddress derives the 20-byte EVM address for keyName at
	// derivationPath without producing a signature, used by the
	// derive_relayer_address admin operation.
	PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error)
}

// Adapter wraps a Backend and reconstructs y_parity when needed.
type Adapter struct {
	Backend Backend
}

func New(backend Backend) *Adapter {
	return &Adapter{Backend: backend}
}

func trimLeadingZeroes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	if i >= len(b) {
		return []byte{0}
	}
	return b[i:]
}

// SignPrehashed submits digest to the backend and returns a canonical
// EIP-1559 signature triple, with r and s leading-zero trimmed.
func (a *Adapter) SignPrehashed(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte, expectedAddress [20]byte) (tx.Signature, error) {
	raw, err := a.Backend.Sign(ctx, keyName, derivationPath, digest)
	if err != nil {
		return tx.Signature{}, relayerr.RpcTransportError("signer", err.Error())
	}

	var rBytes, sBytes []byte
	var yParity uint8

	switch len(raw) {
	case 65:
		rBytes = raw[0:32]
		sBytes = raw[32:64]
		yParity = raw[64]
	case 64:
		var rs [64]byte
		copy(rs[:], raw)
		y, err := DeriveYParity(digest, rs, expectedAddress)
		if err != nil {
			return tx.Signature{}, err
		}
		rBytes = rs[0:32]
		sBytes = rs[32:64]
		yParity = y
	default:
		return tx.Signature{}, relayerr.InvalidSignatureLength("signature", 64, len(raw))
	}

	return tx.Signature{
		YParity: yParity,
		R:       trimLeadingZeroes(rBytes),
		S:       trimLeadingZeroes(sBytes),
	}, nil
}

// DeriveYParity tries each of the four canonical secp256k1 recovery ids
// against (digest, rs) and returns the low bit (the y_parity) of the
// first one whose recovered public key hashes to expectedAddress. Fails
// with SignatureRecoveryFailed if none match.
func DeriveYParity(digest [32]byte, rs [64]byte, expectedAddress [20]byte) (uint8, error) {
	for recoveryID := uint8(0); recoveryID <= 3; recoveryID++ {
		compact := make([]byte, 65)
		compact[0] = 27 + recoveryID
		copy(compact[1:33], rs[0:32])
		copy(compact[33:65], rs[32:64])

		pubKey, _, err := ecdsa.RecoverCompact(compact, digest[:])
		if err != nil {
			continue
		}

		uncompressed := pubKey.SerializeUncompressed() // 0x04 || X(32) || Y(32)
		if len(uncompressed) != 65 {
			continue
		}
		hash := keccak.Sum256(uncompressed[1:])
		if [20]byte(hash[12:32]) == expectedAddress {
			return recoveryID & 1, nil
		}
	}
	return 0, relayerr.SignatureRecoveryFailed("no recovery id produced expected relayer address")
}
