package keccak

import (
	"encoding/hex"
	"testing"
)

func TestSum256KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", []byte{}, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", []byte("abc"), "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
		{"transfer selector preimage", []byte("transfer(address,uint256)"), "a9059cbb2ab09eb219583f4a59a5d0623ade346d962bcd4e46b11da047c9049b"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Sum256(c.in)
			gotHex := hex.EncodeToString(got[:])
			if gotHex != c.want {
				t.Fatalf("Sum256(%q) = %s, want %s", c.in, gotHex, c.want)
			}
		})
	}
}

func TestSum256Deterministic(t *testing.T) {
	data := []byte("transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32)")
	a := Sum256(data)
	b := Sum256(data)
	if a != b {
		t.Fatalf("Sum256 not deterministic")
	}
}

func TestSum256DifferentInputsDiffer(t *testing.T) {
	a := Sum256([]byte("a"))
	b := Sum256([]byte("b"))
	if a == b {
		t.Fatalf("expected different digests for different inputs")
	}
}
