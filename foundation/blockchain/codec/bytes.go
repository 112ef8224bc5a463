// Package codec provides the deterministic byte and hex encodings shared by
// the hashing algorithm and the wire format. The byte layout feeds the block
// hash directly, so it can never change without breaking hash compatibility
// between nodes.
package codec

import "encoding/binary"

// Uint32Bytes returns the 4 byte little endian representation of v.
func Uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Uint64Bytes returns the 8 byte little endian representation of v.
func Uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
