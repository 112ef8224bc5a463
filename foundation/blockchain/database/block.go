// Package database maintains the blockchain in memory and implements the
// proof of work rules that gate which blocks are admitted to it.
package database

import (
	"fmt"
	"time"

	"github.com/chainforge/minichain/foundation/blockchain/codec"
)

// HashSize is the number of bytes in a block hash.
const HashSize = 32

// Hash represents the sha256 digest of a block.
type Hash [HashSize]byte

// ZeroHash represents a hash of all zeroes. It is the predecessor hash of
// the genesis block and the hash of a block that has not been mined yet.
var ZeroHash Hash

// Hex returns the lowercase hex representation of the hash.
func (h Hash) Hex() string {
	return codec.EncodeHex(h[:])
}

// IsZero reports whether every byte of the hash is zero.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ToHash converts hex text into a Hash, requiring exactly HashSize bytes.
func ToHash(s string) (Hash, error) {
	b, err := codec.DecodeHex(s)
	if err != nil {
		return Hash{}, err
	}

	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}

	var h Hash
	copy(h[:], b)

	return h, nil
}

// =============================================================================

// Tx is the transactional information between two parties. A transaction is
// created when a block is authored and is immutable once embedded in it.
type Tx struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

// NewTx constructs a transaction between the two specified parties.
func NewTx(sender string, receiver string, amount uint64) (Tx, error) {
	if sender == "" {
		return Tx{}, fmt.Errorf("sender identifier is required")
	}
	if receiver == "" {
		return Tx{}, fmt.Errorf("receiver identifier is required")
	}

	tx := Tx{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}

	return tx, nil
}

// =============================================================================

// Block represents one link in the chain. A block is constructed unmined,
// mutated in place by the mining loop until the difficulty is met and treated
// as immutable from then on.
type Block struct {
	Index     uint32 `json:"index"`
	TimeStamp uint64 `json:"timestamp"`
	PrevHash  Hash   `json:"prev_hash"`
	Trans     []Tx   `json:"transactions"`
	Nonce     uint64 `json:"nonce"`
	Data      []byte `json:"data"`
	BlockHash Hash   `json:"hash"`
}

// CreateNextBlock constructs the unmined successor of the specified
// predecessor block. Passing the zero value Block as the predecessor
// constructs the genesis block. The caller must mine the block before it can
// be admitted to a chain.
func CreateNextBlock(data []byte, trans []Tx, prevBlock Block) Block {
	nb := Block{
		Index:     0,
		TimeStamp: uint64(time.Now().UTC().Unix()),
		PrevHash:  ZeroHash,
		Trans:     trans,
		Nonce:     0,
		Data:      data,
	}

	if !prevBlock.BlockHash.IsZero() {
		nb.Index = prevBlock.Index + 1
		nb.PrevHash = prevBlock.BlockHash
	}

	return nb
}
