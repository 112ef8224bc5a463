package public

import (
	"github.com/chainforge/minichain/business/sys/validate"
	"github.com/chainforge/minichain/foundation/blockchain/database"
)

// status represents the node status reported to API clients.
type status struct {
	Host       string   `json:"host"`
	Height     int      `json:"height"`
	LatestHash string   `json:"latest_hash"`
	Difficulty uint32   `json:"difficulty"`
	KnownPeers []string `json:"known_peers"`
}

// tx represents a transaction inside a block or a submission.
type tx struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver" validate:"required"`
	Amount   uint64 `json:"amount"`
}

// block represents a block reported to API clients.
type block struct {
	Index     uint32 `json:"index"`
	TimeStamp uint64 `json:"timestamp"`
	Nonce     uint64 `json:"nonce"`
	Data      string `json:"data"`
	PrevHash  string `json:"prev_hash"`
	Hash      string `json:"hash"`
	Trans     []tx   `json:"transactions"`
}

// toAppBlock converts a database block to the API representation.
func toAppBlock(b database.Block) block {
	trans := make([]tx, len(b.Trans))
	for i, t := range b.Trans {
		trans[i] = tx{
			Sender:   t.Sender,
			Receiver: t.Receiver,
			Amount:   t.Amount,
		}
	}

	return block{
		Index:     b.Index,
		TimeStamp: b.TimeStamp,
		Nonce:     b.Nonce,
		Data:      string(b.Data),
		PrevHash:  b.PrevHash.Hex(),
		Hash:      b.BlockHash.Hex(),
		Trans:     trans,
	}
}

// submitPayload is what API clients post to have data mined into the chain.
type submitPayload struct {
	Data  string `json:"data"`
	Trans []tx   `json:"transactions" validate:"dive"`
}

// Validate checks the payload is valid.
func (sp submitPayload) Validate() error {
	return validate.Check(sp)
}
