// Package p2p implements the TCP peer protocol: newline framed text
// messages, block announcements, chain requests and broadcast with sender
// exclusion. A node runs one goroutine per accepted connection and one per
// configured outbound peer; outbound dials retry forever on a fixed backoff.
package p2p

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/chainforge/minichain/foundation/blockchain/database"
	"github.com/chainforge/minichain/foundation/blockchain/peer"
	"github.com/chainforge/minichain/foundation/blockchain/state"
	"github.com/chainforge/minichain/foundation/metrics"
)

// retryDelay is the fixed backoff between outbound dial attempts and
// between reconnects after a peer drops.
const retryDelay = 3 * time.Second

// =============================================================================

// Config represents the configuration required to start the engine.
type Config struct {
	State      *state.State
	ListenHost string
	DialPeers  []string
	EvHandler  state.EventHandler
}

// Engine manages the peer connections and the message traffic on them.
type Engine struct {
	state      *state.State
	listenHost string
	dialPeers  []string
	evHandler  state.EventHandler

	listener net.Listener
	wg       sync.WaitGroup
	shut     chan struct{}

	candMu     sync.Mutex
	candidates map[string][]database.Block
}

// New constructs the engine and registers it with the state package as the
// node's broadcaster.
func New(cfg Config) *Engine {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	e := Engine{
		state:      cfg.State,
		listenHost: cfg.ListenHost,
		dialPeers:  cfg.DialPeers,
		evHandler:  ev,
		shut:       make(chan struct{}),
		candidates: make(map[string][]database.Block),
	}

	cfg.State.Net = &e

	return &e
}

// Start binds the listener and launches the accept and dial goroutines.
func (e *Engine) Start() error {
	listener, err := net.Listen("tcp", e.listenHost)
	if err != nil {
		return fmt.Errorf("p2p listen on %s: %w", e.listenHost, err)
	}
	e.listener = listener

	e.evHandler("p2p: start: listening on %s", listener.Addr())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.acceptOperations()
	}()

	for _, host := range e.dialPeers {
		e.wg.Add(1)
		go func(host string) {
			defer e.wg.Done()
			e.dialOperations(host)
		}(host)
	}

	return nil
}

// Addr returns the address the listener is bound to. Useful when the
// configuration asked for port 0.
func (e *Engine) Addr() string {
	return e.listener.Addr().String()
}

// Shutdown closes the listener and every live connection and waits for the
// connection goroutines to drain.
func (e *Engine) Shutdown() {
	e.evHandler("p2p: shutdown: started")
	defer e.evHandler("p2p: shutdown: completed")

	close(e.shut)
	e.listener.Close()

	for _, p := range e.state.RetrievePeers("") {
		p.Close()
	}

	e.wg.Wait()
}

// =============================================================================

// acceptOperations runs the accept loop for inbound peers. Each accepted
// connection gets its own goroutine for the framing loop.
func (e *Engine) acceptOperations() {
	e.evHandler("p2p: acceptOperations: G started")
	defer e.evHandler("p2p: acceptOperations: G completed")

	for {
		conn, err := e.listener.Accept()
		if err != nil {
			if e.isShutdown() {
				return
			}
			e.evHandler("p2p: acceptOperations: accept: ERROR: %s", err)
			continue
		}

		p := peer.New(conn, false)
		if !e.addPeer(p) {
			conn.Close()
			continue
		}

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.readOperations(p)
		}()
	}
}

// dialOperations keeps one outbound peer alive. Dial failures and dropped
// connections are retried after a fixed delay, indefinitely, and are never
// surfaced as fatal.
func (e *Engine) dialOperations(host string) {
	e.evHandler("p2p: dialOperations: G started: %s", host)
	defer e.evHandler("p2p: dialOperations: G completed: %s", host)

	for {
		if e.isShutdown() {
			return
		}

		conn, err := net.Dial("tcp", host)
		if err != nil {
			e.evHandler("p2p: dialOperations: dial %s: ERROR: %s", host, err)
			if !e.sleep(retryDelay) {
				return
			}
			continue
		}

		p := peer.New(conn, true)
		if !e.addPeer(p) {
			conn.Close()
			if !e.sleep(retryDelay) {
				return
			}
			continue
		}

		// Ask the new peer for its full chain so this node catches up
		// before it sees any announcements.
		if err := p.Send(encodeGetChain()); err != nil {
			e.evHandler("p2p: dialOperations: request chain %s: ERROR: %s", host, err)
		}

		e.readOperations(p)

		if !e.sleep(retryDelay) {
			return
		}
	}
}

// =============================================================================

// addPeer records a live connection with the state.
func (e *Engine) addPeer(p *peer.Peer) bool {
	if !e.state.AddPeer(p) {
		e.evHandler("p2p: addPeer: duplicate connection from %s", p.Host)
		return false
	}

	metrics.ConnectedPeers.Inc()
	e.evHandler("p2p: addPeer: connected: %s outbound[%v]", p.Host, p.Outbound)

	return true
}

// removePeer drops a dead connection from the state and releases any
// candidate chain that was being collected from it.
func (e *Engine) removePeer(p *peer.Peer) {
	e.state.RemovePeer(p.Host)
	p.Close()

	e.candMu.Lock()
	delete(e.candidates, p.Host)
	e.candMu.Unlock()

	metrics.ConnectedPeers.Dec()
	e.evHandler("p2p: removePeer: disconnected: %s", p.Host)
}

// isShutdown is used to test if a shutdown has been signaled.
func (e *Engine) isShutdown() bool {
	select {
	case <-e.shut:
		return true
	default:
		return false
	}
}

// sleep pauses for the specified duration. It reports false when the engine
// shut down while sleeping.
func (e *Engine) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-e.shut:
		return false
	}
}
