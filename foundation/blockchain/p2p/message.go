package p2p

import (
	"bytes"

	"github.com/chainforge/minichain/foundation/blockchain/database"
)

// maxMessageSize bounds the framing buffer. A connection that produces this
// many bytes without a newline is treated as faulted and closed, which
// protects the node from unbounded memory growth on a misbehaving peer.
const maxMessageSize = 1 << 20

// msgKind identifies a framed message. The line prefix is decoded once per
// message into this tag and dispatch works off the tag.
type msgKind int

const (
	kindUnknown msgKind = iota
	kindBlock
	kindGetChain
)

// String implements the fmt.Stringer interface for metrics labels.
func (k msgKind) String() string {
	switch k {
	case kindBlock:
		return "block"
	case kindGetChain:
		return "get_chain"
	}
	return "unknown"
}

var (
	blockPrefix  = []byte("BLOCK:")
	getChainWord = []byte("GET_CHAIN")
)

// parseMessage classifies one framed line and returns its payload. Only
// block announcements carry a payload.
func parseMessage(line []byte) (msgKind, []byte) {
	switch {
	case bytes.HasPrefix(line, blockPrefix):
		return kindBlock, line[len(blockPrefix):]
	case bytes.Equal(line, getChainWord):
		return kindGetChain, nil
	}

	return kindUnknown, nil
}

// encodeBlockMessage renders one newline terminated block announcement.
func encodeBlockMessage(block database.Block) ([]byte, error) {
	doc, err := database.Encode(block)
	if err != nil {
		return nil, err
	}

	msg := make([]byte, 0, len(blockPrefix)+len(doc)+1)
	msg = append(msg, blockPrefix...)
	msg = append(msg, doc...)
	msg = append(msg, '\n')

	return msg, nil
}

// encodeGetChain renders one newline terminated chain request.
func encodeGetChain() []byte {
	return append(append([]byte{}, getChainWord...), '\n')
}
