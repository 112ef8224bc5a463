package database

import (
	"context"
	"crypto/sha256"

	"github.com/chainforge/minichain/foundation/blockchain/codec"
)

// MaxDifficulty is the largest number of leading zero bytes a hash can be
// required to have. A sha256 digest only has HashSize bytes.
const MaxDifficulty = 32

// ComputeHash calculates the block's digest from every field except the hash
// field itself. The fields are fed to the accumulator in a fixed order so
// every node produces the identical digest for the identical block.
func (b Block) ComputeHash() Hash {
	h := sha256.New()

	h.Write(codec.Uint32Bytes(b.Index))
	h.Write(codec.Uint64Bytes(b.TimeStamp))
	h.Write(codec.Uint64Bytes(b.Nonce))
	h.Write(b.PrevHash[:])

	for _, tx := range b.Trans {
		h.Write([]byte(tx.Sender))
		h.Write([]byte(tx.Receiver))
		h.Write(codec.Uint64Bytes(tx.Amount))
	}

	h.Write(b.Data)

	var hash Hash
	h.Sum(hash[:0])

	return hash
}

// MeetsDifficulty reports whether the first difficulty bytes of the hash are
// all zero. A difficulty of zero is met by any hash. Difficulties beyond
// MaxDifficulty are clamped.
func MeetsDifficulty(hash Hash, difficulty uint32) bool {
	if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}

	for _, b := range hash[:difficulty] {
		if b != 0 {
			return false
		}
	}

	return true
}

// Mine performs the proof of work search for the block. The nonce is
// incremented by one until the hash meets the specified difficulty, at which
// point the hash field is set and the block must no longer be mutated. The
// expected number of iterations grows as 256^difficulty, so this call can
// block the calling goroutine for a very long time. Run it off any goroutine
// that must remain responsive.
func (b *Block) Mine(ctx context.Context, difficulty uint32, ev func(v string, args ...any)) error {
	ev("database: mine: started: blk[%d] difficulty[%d]", b.Index, difficulty)
	defer ev("database: mine: completed: blk[%d]", b.Index)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: mine: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: mine: CANCELLED")
			return ctx.Err()
		}

		hash := b.ComputeHash()
		if !MeetsDifficulty(hash, difficulty) {
			b.Nonce++
			continue
		}

		b.BlockHash = hash

		ev("database: mine: SOLVED: blk[%d] hash[%s] attempts[%d]", b.Index, hash.Hex(), attempts)

		return nil
	}
}

// Verify recomputes the hash from the block's own fields and requires it to
// match the stored hash and to satisfy the node's difficulty. This is the
// sole admission gate before a block enters the chain.
func (b Block) Verify(difficulty uint32) bool {
	hash := b.ComputeHash()

	if hash != b.BlockHash {
		return false
	}

	return MeetsDifficulty(hash, difficulty)
}
