package signer

import (
	"context"
	"testing"
)

func TestAdapterSignPrehashedRecoversYParityFor64ByteSignature(t *testing.T) {
	backend, err := NewLocalBackend()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	adapter := New(backend)

	var digest [32]byte
	for i := range digest {
		digest[i] = byte(i)
	}

	sig, err := adapter.SignPrehashed(context.Background(), "key", nil, digest, backend.Address())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.YParity > 1 {
		t.Fatalf("y_parity must be 0 or 1, got %d", sig.YParity)
	}
	if len(sig.R) == 0 || len(sig.S) == 0 {
		t.Fatalf("expected non-empty r/s")
	}
}

type fixed65Backend struct {
	sig []byte
}

func (b fixed65Backend) Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error) {
	return b.sig, nil
}

func (b fixed65Backend) PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error) {
	return [20]byte{}, nil
}

func TestAdapterUsesVerbatim65ByteSignature(t *testing.T) {
	raw := make([]byte, 65)
	raw[64] = 1
	adapter := New(fixed65Backend{sig: raw})

	var digest [32]byte
	var addr [20]byte
	sig, err := adapter.SignPrehashed(context.Background(), "key", nil, digest, addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.YParity != 1 {
		t.Fatalf("expected y_parity taken verbatim (1), got %d", sig.YParity)
	}
}

type wrongLengthBackend struct{}

func (wrongLengthBackend) Sign(ctx context.Context, keyName string, derivationPath [][]byte, digest [32]byte) ([]byte, error) {
	return make([]byte, 10), nil
}

func (wrongLengthBackend) PublicKeyAddress(ctx context.Context, keyName string, derivationPath [][]byte) ([20]byte, error) {
	return [20]byte{}, nil
}

func TestAdapterRejectsUnsupportedSignatureWidth(t *testing.T) {
	adapter := New(wrongLengthBackend{})
	var digest [32]byte
	var addr [20]byte
	if _, err := adapter.SignPrehashed(context.Background(), "key", nil, digest, addr); err == nil {
		t.Fatalf("expected error for unsupported signature width")
	}
}

func TestDeriveYParityFailsForWrongExpectedAddress(t *testing.T) {
	backend, err := NewLocalBackend()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var digest [32]byte
	sig := ecdsaSignRS(t, backend, digest)

	var wrongAddr [20]byte
	wrongAddr[0] = 0xff
	if _, err := DeriveYParity(digest, sig, wrongAddr); err == nil {
		t.Fatalf("expected SignatureRecoveryFailed for mismatched address")
	}
}

func ecdsaSignRS(t *testing.T, backend *LocalBackend, digest [32]byte) [64]byte {
	t.Helper()
	raw, err := backend.Sign(context.Background(), "k", nil, digest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rs [64]byte
	copy(rs[:], raw)
	return rs
}
