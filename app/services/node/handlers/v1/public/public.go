// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/chainforge/minichain/business/web/v1"
	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/blockchain/state"
	"github.com/chainforge/minichain/foundation/events"
	"github.com/chainforge/minichain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the current state of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()

	st := status{
		Host:       h.State.RetrieveHost(),
		Height:     h.State.Height(),
		LatestHash: latest.BlockHash.Hex(),
		Difficulty: h.State.Difficulty(),
		KnownPeers: h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// BlocksByNumber returns the blocks in the specified range.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "" {
		fromStr = "0"
	}
	toStr := web.Param(r, "to")
	if toStr == "" {
		toStr = "latest"
	}

	from, err := parseBlockNumber(fromStr)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}
	to, err := parseBlockNumber(toStr)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByNumber(from, to)

	blocks := make([]block, len(dbBlocks))
	for i, b := range dbBlocks {
		blocks[i] = toAppBlock(b)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// SubmitPayload accepts new data to be mined into the next block. The call
// queues the work and returns; mining and broadcast happen asynchronously.
func (h Handlers) SubmitPayload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sp submitPayload
	if err := web.Decode(r, &sp); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	trans := make([]database.Tx, len(sp.Trans))
	for i, t := range sp.Trans {
		tx, err := database.NewTx(t.Sender, t.Receiver, t.Amount)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		trans[i] = tx
	}

	h.Log.Infow("submit payload", "traceid", v.TraceID, "data", sp.Data, "trans", len(trans))

	payload := state.Payload{
		Data:  []byte(sp.Data),
		Trans: trans,
	}
	if err := h.State.SubmitPayload(payload); err != nil {
		if errors.Is(err, state.ErrNoPayload) {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		return v1.NewRequestError(err, http.StatusTooManyRequests)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "payload queued for mining",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// =============================================================================

// parseBlockNumber converts a route parameter to a block number, accepting
// the word latest for the tip.
func parseBlockNumber(s string) (uint32, error) {
	if s == "latest" {
		return state.QueryLatest, nil
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return uint32(n), nil
}
