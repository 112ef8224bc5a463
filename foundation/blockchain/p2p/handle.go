package p2p

import (
	"bufio"

	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/blockchain/peer"
	"github.com/chainforge/minichain/foundation/metrics"
)

// readOperations runs the framing loop for one peer. Bytes accumulate until
// a newline is found, then the complete message is dispatched. The loop ends
// on read error, peer close, or an overlong line, and the peer is removed.
func (e *Engine) readOperations(p *peer.Peer) {
	e.evHandler("p2p: readOperations: G started: %s", p.Host)
	defer e.evHandler("p2p: readOperations: G completed: %s", p.Host)

	defer e.removePeer(p)

	scanner := bufio.NewScanner(p.Conn())
	scanner.Buffer(make([]byte, 0, 4096), maxMessageSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		e.dispatch(p, line)
	}

	if err := scanner.Err(); err != nil {
		e.evHandler("p2p: readOperations: %s: read: ERROR: %s", p.Host, err)
	}
}

// dispatch decodes one framed message and runs the operation it asks for.
// A malformed message is logged and dropped; the connection stays open.
func (e *Engine) dispatch(p *peer.Peer, line []byte) {
	kind, payload := parseMessage(line)
	metrics.MessagesReceived.WithLabelValues(kind.String()).Inc()

	switch kind {
	case kindBlock:
		e.processBlockMessage(p, payload)

	case kindGetChain:
		e.processChainRequest(p)

	default:
		e.evHandler("p2p: dispatch: %s: ignoring unknown message [%.40s]", p.Host, line)
	}
}

// processBlockMessage applies one block announcement: decode, admit,
// rebroadcast. A block that does not extend the local chain may still be
// part of a longer chain being streamed to us, so it is fed to the
// candidate collection as a fallback.
func (e *Engine) processBlockMessage(p *peer.Peer, payload []byte) {
	block, err := database.Decode(payload)
	if err != nil {
		metrics.BlocksRejected.Inc()
		e.evHandler("p2p: processBlockMessage: %s: decode: ERROR: %s", p.Host, err)
		return
	}

	if err := e.state.ProcessProposedBlock(block); err != nil {
		e.evHandler("p2p: processBlockMessage: %s: blk[%d]: %s", p.Host, block.Index, err)
		e.collectCandidate(p, block)
		return
	}

	// The block was admitted. Whatever chain this peer was streaming is
	// obsolete now.
	e.dropCandidate(p.Host)

	e.SendBlockToPeers(block, p.Host)
}

// processChainRequest streams the full local chain to the requester, one
// newline terminated block announcement per block, in chain order.
func (e *Engine) processChainRequest(p *peer.Peer) {
	blocks := e.state.QueryAllBlocks()
	e.evHandler("p2p: processChainRequest: %s: streaming %d blocks", p.Host, len(blocks))

	for _, block := range blocks {
		msg, err := encodeBlockMessage(block)
		if err != nil {
			e.evHandler("p2p: processChainRequest: encode blk[%d]: ERROR: %s", block.Index, err)
			return
		}

		if err := p.Send(msg); err != nil {
			e.evHandler("p2p: processChainRequest: %s: write: ERROR: %s", p.Host, err)
			return
		}
	}
}

// =============================================================================
// These methods implement the state.Broadcaster interface.

// SendBlockToPeers announces the block to every live peer except the one
// identified by excludeHost. A peer whose write fails is dropped.
func (e *Engine) SendBlockToPeers(block database.Block, excludeHost string) {
	msg, err := encodeBlockMessage(block)
	if err != nil {
		e.evHandler("p2p: SendBlockToPeers: encode: ERROR: %s", err)
		return
	}

	for _, p := range e.state.RetrievePeers(excludeHost) {
		if err := p.Send(msg); err != nil {
			e.evHandler("p2p: SendBlockToPeers: %s: write: ERROR: %s", p.Host, err)
			e.removePeer(p)
			continue
		}
		e.evHandler("p2p: SendBlockToPeers: sent blk[%d] to %s", block.Index, p.Host)
	}
}

// =============================================================================

// collectCandidate accumulates blocks from a peer that is streaming a chain
// which cannot be appended block by block, typically in answer to GET_CHAIN
// when the local chain has diverged or fallen behind. Once the collected
// chain is internally consistent and longer than the local one it is adopted
// wholesale under the longest chain rule.
func (e *Engine) collectCandidate(p *peer.Peer, block database.Block) {
	e.candMu.Lock()
	defer e.candMu.Unlock()

	cand := e.candidates[p.Host]

	switch {
	case block.Index == 0 && block.PrevHash.IsZero():

		// A genesis block restarts the collection.
		cand = []database.Block{block}

	case len(cand) > 0 && block.Index == cand[len(cand)-1].Index+1 && block.PrevHash == cand[len(cand)-1].BlockHash:
		cand = append(cand, block)

	default:

		// The block fits neither our chain nor the collection.
		delete(e.candidates, p.Host)
		return
	}

	if len(cand) > e.state.Height() {
		if err := e.state.ReplaceChain(cand); err != nil {
			e.evHandler("p2p: collectCandidate: %s: replace: %s", p.Host, err)
			e.candidates[p.Host] = cand
			return
		}

		e.evHandler("p2p: collectCandidate: %s: adopted longer chain of %d blocks", p.Host, len(cand))
		delete(e.candidates, p.Host)
		return
	}

	e.candidates[p.Host] = cand
}

// dropCandidate forgets any partial chain collected from the host.
func (e *Engine) dropCandidate(host string) {
	e.candMu.Lock()
	defer e.candMu.Unlock()

	delete(e.candidates, host)
}
