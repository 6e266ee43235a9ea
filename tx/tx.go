// Package tx assembles the EIP-1559 typed-2 transaction envelope: the
// unsigned 9-field pre-image used to produce the signing digest, and the
// signed 12-field envelope broadcast to the network.
package tx

import (
	"math/big"

	"github.com/ethdenver2026/relayer/keccak"
	"github.com/ethdenver2026/relayer/relayerr"
	"github.com/ethdenver2026/relayer/rlp"
)

const typeByte = 0x02

// UnsignedFields holds the 9 fields of a type-2 transaction envelope
// before signing, in wire order.
type UnsignedFields struct {
	ChainID              *big.Int
	Nonce                *big.Int
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             *big.Int
	To                   []byte // 20-byte contract address
	Value                *big.Int
	Data                 []byte
}

func (f UnsignedFields) items() ([]byte, error) {
	if len(f.To) != 20 {
		return nil, relayerr.InvalidAddressLength("to", 20, len(f.To))
	}
	items := [][]byte{
		rlp.EncodeBigInt(f.ChainID),
		rlp.EncodeBigInt(f.Nonce),
		rlp.EncodeBigInt(f.MaxPriorityFeePerGas),
		rlp.EncodeBigInt(f.MaxFeePerGas),
		rlp.EncodeBigInt(f.GasLimit),
		rlp.EncodeBytes(f.To),
		rlp.EncodeBigInt(f.Value),
		rlp.EncodeBytes(f.Data),
		rlp.EncodeList(), // empty access list
	}
	return rlp.EncodeList(items...), nil
}

// SigningPreimage returns the 0x02-prefixed RLP of the 9-field envelope —
// the bytes a compliant EIP-1559 signer hashes and signs.
func (f UnsignedFields) SigningPreimage() ([]byte, error) {
	body, err := f.items()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(body))
	out = append(out, typeByte)
	out = append(out, body...)
	return out, nil
}

// SigningDigest returns the Keccak-256 hash of the signing pre-image.
func (f UnsignedFields) SigningDigest() ([32]byte, error) {
	preimage, err := f.SigningPreimage()
	if err != nil {
		return [32]byte{}, err
	}
	return keccak.Sum256(preimage), nil
}

// Signature is the (y_parity, r, s) triple appended to produce the
// broadcastable, signed envelope. r and s must already be leading-zero
// trimmed (RLP canonical form).
type Signature struct {
	YParity uint8
	R       []byte
	S       []byte
}

// SignedRawTransaction builds the 0x02-prefixed RLP of the 12-field
// signed envelope ready for eth_sendRawTransaction.
func (f UnsignedFields) SignedRawTransaction(sig Signature) ([]byte, error) {
	if len(f.To) != 20 {
		return nil, relayerr.InvalidAddressLength("to", 20, len(f.To))
	}
	items := [][]byte{
		rlp.EncodeBigInt(f.ChainID),
		rlp.EncodeBigInt(f.Nonce),
		rlp.EncodeBigInt(f.MaxPriorityFeePerGas),
		rlp.EncodeBigInt(f.MaxFeePerGas),
		rlp.EncodeBigInt(f.GasLimit),
		rlp.EncodeBytes(f.To),
		rlp.EncodeBigInt(f.Value),
		rlp.EncodeBytes(f.Data),
		rlp.EncodeList(),
		rlp.EncodeBigInt(new(big.Int).SetUint64(uint64(sig.YParity))),
		rlp.EncodeBytes(sig.R),
		rlp.EncodeBytes(sig.S),
	}
	body := rlp.EncodeList(items...)
	out := make([]byte, 0, 1+len(body))
	out = append(out, typeByte)
	out = append(out, body...)
	return out, nil
}
