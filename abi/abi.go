// Package abi hand-packs the small, fixed set of Ethereum ABI call
// data this relayer needs (authorizationState and
// transferWithAuthorization): fixed 32-byte words written into a
// buffer, no reflection-based ABI machinery.
package abi

import (
	"math/big"

	"github.com/ethdenver2026/relayer/keccak"
	"github.com/ethdenver2026/relayer/relayerr"
)

const wordSize = 32

// Selector returns the first 4 bytes of keccak256(signature), e.g.
// Selector("transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)").
func Selector(signature string) [4]byte {
	digest := keccak.Sum256([]byte(signature))
	var sel [4]byte
	copy(sel[:], digest[:4])
	return sel
}

func padLeft(word []byte) ([wordSize]byte, error) {
	var out [wordSize]byte
	if len(word) > wordSize {
		return out, relayerr.NumberOutOfRange("word")
	}
	copy(out[wordSize-len(word):], word)
	return out, nil
}

func encodeAddress(addr []byte) ([wordSize]byte, error) {
	if len(addr) != 20 {
		return [wordSize]byte{}, relayerr.InvalidAddressLength("address", 20, len(addr))
	}
	return padLeft(addr)
}

func encodeUint(n *big.Int) ([wordSize]byte, error) {
	if n == nil {
		return [wordSize]byte{}, nil
	}
	if n.Sign() < 0 || len(n.Bytes()) > wordSize {
		return [wordSize]byte{}, relayerr.NumberOutOfRange("uint256")
	}
	return padLeft(n.Bytes())
}

func encodeBytes32(b []byte) ([wordSize]byte, error) {
	if len(b) != wordSize {
		return [wordSize]byte{}, relayerr.InvalidNonceLength(wordSize, len(b))
	}
	var out [wordSize]byte
	copy(out[:], b)
	return out, nil
}

func encodeUint8(v uint8) [wordSize]byte {
	var out [wordSize]byte
	out[wordSize-1] = v
	return out
}

// EncodeAuthorizationStateCall packs authorizationState(address,bytes32).
func EncodeAuthorizationStateCall(owner []byte, nonce []byte) ([]byte, error) {
	ownerWord, err := encodeAddress(owner)
	if err != nil {
		return nil, err
	}
	nonceWord, err := encodeBytes32(nonce)
	if err != nil {
		return nil, err
	}

	sel := Selector("authorizationState(address,bytes32)")
	out := make([]byte, 0, 4+2*wordSize)
	out = append(out, sel[:]...)
	out = append(out, ownerWord[:]...)
	out = append(out, nonceWord[:]...)
	return out, nil
}

// TransferWithAuthorizationParams holds the 9 arguments of
// transferWithAuthorization per EIP-3009.
type TransferWithAuthorizationParams struct {
	From        []byte
	To          []byte
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       []byte
	V           uint8
	R           []byte
	S           []byte
}

// EncodeTransferWithAuthorizationCall packs
// transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32).
func EncodeTransferWithAuthorizationCall(p TransferWithAuthorizationParams) ([]byte, error) {
	fromWord, err := encodeAddress(p.From)
	if err != nil {
		return nil, err
	}
	toWord, err := encodeAddress(p.To)
	if err != nil {
		return nil, err
	}
	valueWord, err := encodeUint(p.Value)
	if err != nil {
		return nil, err
	}
	validAfterWord, err := encodeUint(p.ValidAfter)
	if err != nil {
		return nil, err
	}
	validBeforeWord, err := encodeUint(p.ValidBefore)
	if err != nil {
		return nil, err
	}
	nonceWord, err := encodeBytes32(p.Nonce)
	if err != nil {
		return nil, err
	}
	if len(p.R) != wordSize {
		return nil, relayerr.InvalidSignatureLength("r", wordSize, len(p.R))
	}
	if len(p.S) != wordSize {
		return nil, relayerr.InvalidSignatureLength("s", wordSize, len(p.S))
	}
	rWord, err := encodeBytes32(p.R)
	if err != nil {
		return nil, err
	}
	sWord, err := encodeBytes32(p.S)
	if err != nil {
		return nil, err
	}
	vWord := encodeUint8(p.V)

	sel := Selector("transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)")
	out := make([]byte, 0, 4+9*wordSize)
	out = append(out, sel[:]...)
	out = append(out, fromWord[:]...)
	out = append(out, toWord[:]...)
	out = append(out, valueWord[:]...)
	out = append(out, validAfterWord[:]...)
	out = append(out, validBeforeWord[:]...)
	out = append(out, nonceWord[:]...)
	out = append(out, vWord[:]...)
	out = append(out, rWord[:]...)
	out = append(out, sWord[:]...)
	return out, nil
}

// DecodeBool decodes an ABI-encoded bool return value: empty result
// (e.g. from a node that returns "0x") is false, otherwise the last byte
// of the (left-padded 32-byte) word determines truthiness.
func DecodeBool(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return data[len(data)-1] != 0
}
