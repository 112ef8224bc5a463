package state

import (
	"github.com/chainforge/minichain/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint32(0)

// =============================================================================

// Height returns the number of blocks in the local chain.
func (s *State) Height() int {
	return s.db.Height()
}

// Difficulty returns the difficulty this node requires of every block.
func (s *State) Difficulty() uint32 {
	return s.difficulty
}

// RetrieveHost returns the host this node is configured with.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveLatestBlock returns the current tip of the chain.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// QueryBlock returns the block at the specified index.
func (s *State) QueryBlock(index uint32) (database.Block, error) {
	return s.db.GetBlock(index)
}

// QueryBlocksByNumber returns the blocks in the half open range the caller
// asks for. Use QueryLatest for the to value to read through the tip.
func (s *State) QueryBlocksByNumber(from uint32, to uint32) []database.Block {
	latest := s.db.LatestBlock()

	if from == QueryLatest {
		from = latest.Index
	}
	if to == QueryLatest {
		to = latest.Index
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			break
		}
		out = append(out, block)
	}

	return out
}

// QueryAllBlocks returns a copy of the full chain in order.
func (s *State) QueryAllBlocks() []database.Block {
	return s.db.AllBlocks()
}
