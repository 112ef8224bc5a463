package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFormat is returned when a block document is structurally invalid,
// a present field has the wrong type, a hash field is not 32 bytes, or a
// transaction is incomplete.
var ErrInvalidFormat = errors.New("invalid block format")

// DefaultData is the payload assumed for a block document that carries no
// data field.
const DefaultData = "<no data>"

// blockJSON is the wire/JSON form of a block. Every field is optional on
// decode; pointer semantics let the decoder distinguish a missing field
// from a zero value.
type blockJSON struct {
	Index     *uint32  `json:"index"`
	TimeStamp *uint64  `json:"timestamp"`
	Nonce     *uint64  `json:"nonce"`
	Data      *string  `json:"data"`
	PrevHash  *string  `json:"prev_hash"`
	Hash      *string  `json:"hash"`
	Trans     []txJSON `json:"transactions"`
}

// txJSON is the wire/JSON form of a transaction. Unlike block fields, all
// three fields are mandatory when a transaction is present.
type txJSON struct {
	Sender   *string      `json:"sender"`
	Receiver *string      `json:"receiver"`
	Amount   *json.Number `json:"amount"`
}

// Encode renders the block as its JSON document. The transactions field is
// an empty array rather than null when the block carries no transactions.
func Encode(b Block) ([]byte, error) {
	index := b.Index
	timeStamp := b.TimeStamp
	nonce := b.Nonce
	data := string(b.Data)
	prevHash := b.PrevHash.Hex()
	hash := b.BlockHash.Hex()

	trans := make([]txJSON, len(b.Trans))
	for i, tx := range b.Trans {
		sender := tx.Sender
		receiver := tx.Receiver
		amount := json.Number(strconv.FormatUint(tx.Amount, 10))
		trans[i] = txJSON{
			Sender:   &sender,
			Receiver: &receiver,
			Amount:   &amount,
		}
	}

	doc := blockJSON{
		Index:     &index,
		TimeStamp: &timeStamp,
		Nonce:     &nonce,
		Data:      &data,
		PrevHash:  &prevHash,
		Hash:      &hash,
		Trans:     trans,
	}

	return json.Marshal(doc)
}

// Decode parses a block JSON document. Missing numeric fields default to
// zero, a missing data field defaults to DefaultData and missing hash fields
// default to the zero hash. Any present field with the wrong type fails the
// decode with ErrInvalidFormat.
func Decode(data []byte) (Block, error) {

	// A root like null or a bare scalar unmarshals into the zero document
	// without error, so the object check has to happen up front.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Block{}, fmt.Errorf("%w: document root is not an object", ErrInvalidFormat)
	}

	var doc blockJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Block{}, fmt.Errorf("%w: %s", ErrInvalidFormat, err)
	}

	b := Block{
		Data:  []byte(DefaultData),
		Trans: []Tx{},
	}

	if doc.Index != nil {
		b.Index = *doc.Index
	}
	if doc.TimeStamp != nil {
		b.TimeStamp = *doc.TimeStamp
	}
	if doc.Nonce != nil {
		b.Nonce = *doc.Nonce
	}
	if doc.Data != nil {
		b.Data = []byte(*doc.Data)
	}

	if doc.PrevHash != nil {
		hash, err := ToHash(*doc.PrevHash)
		if err != nil {
			return Block{}, fmt.Errorf("%w: prev_hash: %s", ErrInvalidFormat, err)
		}
		b.PrevHash = hash
	}
	if doc.Hash != nil {
		hash, err := ToHash(*doc.Hash)
		if err != nil {
			return Block{}, fmt.Errorf("%w: hash: %s", ErrInvalidFormat, err)
		}
		b.BlockHash = hash
	}

	for i, tx := range doc.Trans {
		if tx.Sender == nil || tx.Receiver == nil || tx.Amount == nil {
			return Block{}, fmt.Errorf("%w: transaction %d is incomplete", ErrInvalidFormat, i)
		}

		amount, err := strconv.ParseUint(tx.Amount.String(), 10, 64)
		if err != nil {
			return Block{}, fmt.Errorf("%w: transaction %d amount %s", ErrInvalidFormat, i, tx.Amount.String())
		}

		b.Trans = append(b.Trans, Tx{
			Sender:   *tx.Sender,
			Receiver: *tx.Receiver,
			Amount:   amount,
		})
	}

	return b, nil
}
