// Package state is the core API for the blockchain node and implements all
// the business rules and processing.
package state

import (
	"sync"

	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events occur in the
// processing of blocks and peers.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining(payload Payload) error
	SignalCancelMining() (done func())
}

// Broadcaster interface represents the behavior required to be implemented
// by any package providing support for sharing blocks with peer nodes.
type Broadcaster interface {
	SendBlockToPeers(block database.Block, excludeHost string)
}

// Payload is the application data an external collaborator submits to be
// mined into the next block.
type Payload struct {
	Data  []byte
	Trans []database.Tx
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Host       string
	Difficulty uint32
	EvHandler  EventHandler
}

// State manages the blockchain node.
type State struct {
	mu sync.Mutex

	host       string
	difficulty uint32
	evHandler  EventHandler

	db    *database.Database
	peers *peer.Set

	// Worker and Net are not set here. The workers register themselves when
	// they are started, after the state exists.
	Worker Worker
	Net    Broadcaster
}

// New constructs a new blockchain node state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	state := State{
		host:       cfg.Host,
		difficulty: cfg.Difficulty,
		evHandler:  ev,
		db:         database.New(cfg.Difficulty, ev),
		peers:      peer.NewSet(),
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// AddPeer records a live peer connection. It reports false when a peer with
// the same remote address is already present.
func (s *State) AddPeer(p *peer.Peer) bool {
	return s.peers.Add(p)
}

// RemovePeer drops a peer from the live set.
func (s *State) RemovePeer(host string) {
	s.peers.Remove(host)
}

// RetrievePeers returns the live peers, excluding the specified host.
func (s *State) RetrievePeers(excludeHost string) []*peer.Peer {
	return s.peers.Copy(excludeHost)
}

// RetrieveKnownPeers returns the remote addresses of the live peers.
func (s *State) RetrieveKnownPeers() []string {
	return s.peers.Hosts()
}
