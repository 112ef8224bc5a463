package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/blockchain/state"
	"github.com/chainforge/minichain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// broadcaster records the blocks the mining workflow hands to the network.
type broadcaster struct {
	blocks chan database.Block
}

func newBroadcaster() *broadcaster {
	return &broadcaster{blocks: make(chan database.Block, 10)}
}

func (b *broadcaster) SendBlockToPeers(block database.Block, excludeHost string) {
	b.blocks <- block
}

// newTestState constructs a running node state with a mining worker and a
// recording broadcaster.
func newTestState(t *testing.T) (*state.State, *broadcaster) {
	t.Helper()

	st, err := state.New(state.Config{
		Host:       "test:0",
		Difficulty: 1,
	})
	if err != nil {
		t.Fatalf("constructing state: %v", err)
	}

	bc := newBroadcaster()
	st.Net = bc

	worker.Run(st, func(v string, args ...any) {})
	t.Cleanup(func() { st.Shutdown() })

	return st, bc
}

func Test_SubmitMineFlow(t *testing.T) {
	t.Log("Given the need to mine submitted payloads into the chain.")
	{
		st, bc := newTestState(t)

		t.Log("\tTest 0:\tWhen submitting the first payload.")
		{
			tx, err := database.NewTx("alice", "bob", 100)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a transaction: %v", failed, err)
			}

			payload := state.Payload{
				Data:  []byte("Hello, Chain!"),
				Trans: []database.Tx{tx},
			}
			if err := st.SubmitPayload(payload); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to submit the payload: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to submit the payload.", success)

			var block database.Block
			select {
			case block = <-bc.blocks:
			case <-time.After(30 * time.Second):
				t.Fatalf("\t%s\tTest 0:\tShould broadcast the mined block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould broadcast the mined block.", success)

			if st.Height() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have height 1, got %d.", failed, st.Height())
			}
			if block.Index != 0 || !block.PrevHash.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould mine the genesis block first.", failed)
			}
			if string(block.Data) != "Hello, Chain!" || len(block.Trans) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the submitted payload.", failed)
			}
			if !block.Verify(st.Difficulty()) {
				t.Fatalf("\t%s\tTest 0:\tShould produce a verifiable block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a verifiable genesis block.", success)
		}

		t.Log("\tTest 1:\tWhen submitting a second payload.")
		{
			if err := st.SubmitPayload(state.Payload{Data: []byte("second")}); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to submit the payload: %v", failed, err)
			}

			var block database.Block
			select {
			case block = <-bc.blocks:
			case <-time.After(30 * time.Second):
				t.Fatalf("\t%s\tTest 1:\tShould broadcast the mined block.", failed)
			}

			if st.Height() != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould have height 2, got %d.", failed, st.Height())
			}
			if block.Index != 1 || block.PrevHash.IsZero() {
				t.Fatalf("\t%s\tTest 1:\tShould chain to the genesis block.", failed)
			}
			genesis, err := st.QueryBlock(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the genesis block: %v", failed, err)
			}
			if block.PrevHash != genesis.BlockHash {
				t.Fatalf("\t%s\tTest 1:\tShould reference the predecessor hash.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould chain to the genesis block.", success)
		}
	}
}

func Test_SubmitEmptyPayload(t *testing.T) {
	t.Log("Given the need to reject empty payloads.")
	{
		st, _ := newTestState(t)

		if err := st.SubmitPayload(state.Payload{}); !errors.Is(err, state.ErrNoPayload) {
			t.Fatalf("\t%s\tTest 0:\tShould get ErrNoPayload, got %v.", failed, err)
		}
		t.Logf("\t%s\tTest 0:\tShould get ErrNoPayload.", success)

		if st.Height() != 0 {
			t.Fatalf("\t%s\tTest 0:\tShould leave the chain empty.", failed)
		}
		t.Logf("\t%s\tTest 0:\tShould leave the chain empty.", success)
	}
}

func Test_ProcessProposedBlock(t *testing.T) {
	t.Log("Given the need to admit blocks proposed by peers.")
	{
		st, _ := newTestState(t)

		block := database.CreateNextBlock([]byte("remote"), nil, database.Block{})

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := block.Mine(ctx, st.Difficulty(), func(v string, args ...any) {}); err != nil {
			t.Fatalf("\t%s\tTest 0:\tShould be able to mine the proposed block: %v", failed, err)
		}

		t.Log("\tTest 0:\tWhen the proposed block is valid.")
		{
			if err := st.ProcessProposedBlock(block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould admit the block: %v", failed, err)
			}
			if st.Height() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have height 1, got %d.", failed, st.Height())
			}
			t.Logf("\t%s\tTest 0:\tShould admit the block.", success)
		}

		t.Log("\tTest 1:\tWhen the same block is proposed again.")
		{
			if err := st.ProcessProposedBlock(block); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject the duplicate block.", failed)
			}
			if st.Height() != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould keep the chain unchanged.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the duplicate block.", success)
		}
	}
}

func Test_ReplaceChain(t *testing.T) {
	t.Log("Given the need to adopt a longer chain from a peer.")
	{
		st, _ := newTestState(t)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		ev := func(v string, args ...any) {}

		var candidate []database.Block
		prev := database.Block{}
		for i := 0; i < 3; i++ {
			block := database.CreateNextBlock([]byte("fork"), nil, prev)
			if err := block.Mine(ctx, st.Difficulty(), ev); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine the candidate chain: %v", failed, err)
			}
			candidate = append(candidate, block)
			prev = block
		}

		t.Log("\tTest 0:\tWhen the candidate chain is longer.")
		{
			if err := st.ReplaceChain(candidate); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the candidate chain: %v", failed, err)
			}
			if st.Height() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould have height 3, got %d.", failed, st.Height())
			}
			if st.RetrieveLatestBlock().BlockHash != candidate[2].BlockHash {
				t.Fatalf("\t%s\tTest 0:\tShould have the candidate tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the candidate chain.", success)
		}

		t.Log("\tTest 1:\tWhen the candidate chain is not longer.")
		{
			if err := st.ReplaceChain(candidate); !errors.Is(err, database.ErrNotLonger) {
				t.Fatalf("\t%s\tTest 1:\tShould get ErrNotLonger, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get ErrNotLonger.", success)
		}
	}
}
