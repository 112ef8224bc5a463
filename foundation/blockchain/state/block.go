package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/metrics"
)

// ErrNoPayload is returned when a mining operation is requested without
// any payload data.
var ErrNoPayload = errors.New("no payload to mine")

// =============================================================================

// SubmitPayload hands application data to the mining worker. The call
// returns once the work is queued; mining and broadcast happen on the
// worker goroutine.
func (s *State) SubmitPayload(payload Payload) error {
	s.evHandler("state: SubmitPayload: data[%d bytes] trans[%d]", len(payload.Data), len(payload.Trans))

	if len(payload.Data) == 0 && len(payload.Trans) == 0 {
		return ErrNoPayload
	}

	return s.Worker.SignalStartMining(payload)
}

// MineNewBlock builds the successor of the current tip from the payload and
// performs the proof of work search. On success the block has been admitted
// to the local chain and is ready to broadcast.
func (s *State) MineNewBlock(ctx context.Context, payload Payload) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: create next block")

	block := database.CreateNextBlock(payload.Data, payload.Trans, s.db.LatestBlock())

	if err := block.Mine(ctx, s.difficulty, s.evHandler); err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local chain")

	if err := s.validateUpdateDatabase(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, verifies its
// proof of work and continuity and, if that passes, admits it to the local
// chain. A successful admission cancels any in flight mining operation so
// the node does not keep searching for a successor that lost the race.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%d] hash[%s]", block.Index, block.BlockHash.Hex())
	defer s.evHandler("state: ProcessProposedBlock: completed")

	if err := s.validateUpdateDatabase(block); err != nil {
		return err
	}

	// If a mining operation is running it needs to stop immediately. The G
	// executing the operation will not return until done is called, which
	// lets this function finish its chain changes first.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	return nil
}

// ReplaceChain adopts the candidate chain wholesale when it is longer than
// the current chain. Every candidate block is re-verified by the store
// before the swap takes place.
func (s *State) ReplaceChain(candidate []database.Block) error {
	s.evHandler("state: ReplaceChain: candidate blocks[%d] current height[%d]", len(candidate), s.db.Height())

	if err := s.db.ReplaceIfLonger(candidate); err != nil {
		return err
	}

	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		done()
	}

	tip := candidate[len(candidate)-1]
	s.blockEvent(tip)

	return nil
}

// =============================================================================

// validateUpdateDatabase runs the candidate block through the admission gate
// and updates the chain if it passes.
func (s *State) validateUpdateDatabase(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Append(block); err != nil {
		metrics.BlocksRejected.Inc()
		return fmt.Errorf("block rejected: %w", err)
	}

	metrics.BlocksAccepted.Inc()
	s.blockEvent(block)

	return nil
}

// blockEvent provides a specific event about a new tip in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	s.evHandler(`viewer: block: {"index":%d,"hash":%q,"prev_hash":%q,"trans":%d}`, block.Index, block.BlockHash.Hex(), block.PrevHash.Hex(), len(block.Trans))
}
