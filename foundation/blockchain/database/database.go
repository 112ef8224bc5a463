package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotLonger is returned by ReplaceIfLonger when the candidate chain does
// not have more blocks than the current chain.
var ErrNotLonger = errors.New("candidate chain is not longer")

// Database manages the ordered collection of accepted blocks. All mutations
// go through Append and ReplaceIfLonger, which hold the lock so connection
// goroutines and the mining goroutine never race on the chain.
type Database struct {
	mu         sync.RWMutex
	difficulty uint32
	blocks     []Block
	evHandler  func(v string, args ...any)
}

// New constructs the in memory chain store for the specified difficulty.
func New(difficulty uint32, evHandler func(v string, args ...any)) *Database {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Database{
		difficulty: difficulty,
		evHandler:  ev,
	}
}

// Difficulty returns the difficulty blocks must satisfy to be admitted.
func (db *Database) Difficulty() uint32 {
	return db.difficulty
}

// Append admits a candidate block to the chain. The block must carry a valid
// proof of work for the node's difficulty and must be the direct successor of
// the current tip. On any failure the chain is left untouched.
func (db *Database) Append(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.validateBlock(block, uint32(len(db.blocks))); err != nil {
		return err
	}

	db.blocks = append(db.blocks, block)

	db.evHandler("database: append: accepted: blk[%d] hash[%s]", block.Index, block.BlockHash.Hex())

	return nil
}

// ReplaceIfLonger adopts the candidate chain in full when it has more blocks
// than the current chain. Every candidate block is re-verified before the
// swap so a longer but invalid chain is never adopted.
func (db *Database) ReplaceIfLonger(candidate []Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(candidate) <= len(db.blocks) {
		return fmt.Errorf("candidate blocks %d, current %d: %w", len(candidate), len(db.blocks), ErrNotLonger)
	}

	for i, block := range candidate {
		if err := db.validateAgainst(block, candidate[:i], uint32(i)); err != nil {
			return fmt.Errorf("candidate blk[%d]: %w", i, err)
		}
	}

	db.blocks = append([]Block{}, candidate...)

	db.evHandler("database: replace: adopted chain of %d blocks, tip[%s]", len(candidate), candidate[len(candidate)-1].BlockHash.Hex())

	return nil
}

// Height returns the number of blocks in the chain.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// GetBlock returns the block stored at the specified index.
func (db *Database) GetBlock(index uint32) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index >= uint32(len(db.blocks)) {
		return Block{}, fmt.Errorf("block %d does not exist", index)
	}

	return db.blocks[index], nil
}

// LatestBlock returns the current tip of the chain. The zero value Block is
// returned when the chain is empty.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}
	}

	return db.blocks[len(db.blocks)-1]
}

// AllBlocks returns a copy of the chain in order.
func (db *Database) AllBlocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return append([]Block{}, db.blocks...)
}

// =============================================================================

// validateBlock checks a candidate against the chain currently in the store.
// The caller must hold the lock.
func (db *Database) validateBlock(block Block, height uint32) error {
	return db.validateAgainst(block, db.blocks, height)
}

// validateAgainst checks the proof of work and the continuity of a candidate
// block against the specified predecessor chain.
func (db *Database) validateAgainst(block Block, chain []Block, height uint32) error {
	if !block.Verify(db.difficulty) {
		return fmt.Errorf("invalid proof of work for blk[%d] hash[%s]", block.Index, block.BlockHash.Hex())
	}

	if block.Index != height {
		return fmt.Errorf("block is not the next in the chain, got %d, exp %d", block.Index, height)
	}

	if len(chain) == 0 {
		if !block.PrevHash.IsZero() {
			return fmt.Errorf("genesis block must have a zero predecessor hash, got %s", block.PrevHash.Hex())
		}
		return nil
	}

	tip := chain[len(chain)-1]
	if block.PrevHash != tip.BlockHash {
		return fmt.Errorf("predecessor hash does not match the tip, got %s, exp %s", block.PrevHash.Hex(), tip.BlockHash.Hex())
	}

	return nil
}
