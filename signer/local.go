package signer

import (
	"context"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ethdenver2026/relayer/keccak"
)

// LocalBackend signs with an in-process secp256k1 key. It exists for
// local development and tests where no threshold-ECDSA service is
// available; production deployments inject a real remote Backend.
type LocalBackend struct {
	priv *secp256k1.PrivateKey
}

// NewLocalBackend generates a fresh secp256k1 keypair.
func NewLocalBackend() (*LocalBackend, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &LocalBackend{priv: priv}, nil
}

// Address returns the 20-byte EVM address derived from the backend's
// public key: the low-order 20 bytes of Keccak-256 of the uncompressed
// public key, sans the 0x04 prefix.
func (b *LocalBackend) Address() [20]byte {
	pub := b.priv.PubKey().SerializeUncompressed()
	hash := keccak.Sum256(pub[1:])
	var addr [20]byte
	copy(addr[:], hash[12:32])
	return addr
}

// Sign always returns a 64-byte (r, s) signature, exercising the
// y_parity recovery path in Adapter.SignPrehashed.
func (b *LocalBackend) Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error) {
	sig := ecdsa.SignCompact(b.priv, digest[:], false)
	// ecdsa.SignCompact returns [header(1) || r(32) || s(32)]; drop the
	// header byte to produce the bare 64-byte (r,s) pair.
	out := make([]byte, 64)
	copy(out, sig[1:])
	return out, nil
}

// PublicKeyAddress returns the same address as Address, wrapped to
// satisfy Backend.
func (b *LocalBackend) PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error) {
	return b.Address(), nil
}
