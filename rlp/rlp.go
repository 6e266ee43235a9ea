// Package rlp implements canonical Recursive Length Prefix encoding, the
// wire format Ethereum uses for transaction envelopes. Only encoding is
// implemented; the relayer never needs to decode RLP it did not just
// build itself.
package rlp

import "math/big"

// trimLeadingZeroes drops leading zero bytes, matching RLP's canonical
// big-endian integer representation (no leading zero bytes, and the
// zero value itself encodes as the empty byte string).
func trimLeadingZeroes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func lengthToBytes(n int) []byte {
	if n == 0 {
		return nil
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte(n & 0xff)}, buf...)
		n >>= 8
	}
	return buf
}

// EncodeBytes RLP-encodes a byte string.
func EncodeBytes(data []byte) []byte {
	if len(data) == 1 && data[0] < 0x80 {
		return []byte{data[0]}
	}
	if len(data) <= 55 {
		out := make([]byte, 0, len(data)+1)
		out = append(out, byte(0x80+len(data)))
		return append(out, data...)
	}
	lenBytes := lengthToBytes(len(data))
	out := make([]byte, 0, len(lenBytes)+len(data)+1)
	out = append(out, byte(0xb7+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, data...)
}

// EncodeUint RLP-encodes a non-negative integer as a canonical (no
// leading zero) big-endian byte string; zero encodes as the empty string.
func EncodeUint(value []byte) []byte {
	return EncodeBytes(trimLeadingZeroes(value))
}

// EncodeBigInt RLP-encodes a non-negative *big.Int. A nil value is
// treated as zero and encodes as the empty byte string.
func EncodeBigInt(n *big.Int) []byte {
	if n == nil || n.Sign() == 0 {
		return EncodeBytes(nil)
	}
	return EncodeBytes(n.Bytes())
}

// EncodeList RLP-encodes a list of already-encoded items.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, item := range items {
		payload = append(payload, item...)
	}
	if len(payload) <= 55 {
		out := make([]byte, 0, len(payload)+1)
		out = append(out, byte(0xc0+len(payload)))
		return append(out, payload...)
	}
	lenBytes := lengthToBytes(len(payload))
	out := make([]byte, 0, len(lenBytes)+len(payload)+1)
	out = append(out, byte(0xf7+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}
