// Package peer maintains the set of live peer connections. A peer exists
// from the moment a connection is accepted or successfully dialed until the
// first read or write failure on its stream.
package peer

import (
	"net"
	"sync"
)

// Peer represents a live bidirectional stream to another node plus the
// remote network address that identifies it.
type Peer struct {
	Host     string
	Outbound bool

	conn net.Conn
	wmu  sync.Mutex
}

// New constructs a peer around an established connection. The remote
// address is captured as the peer's identity for broadcast exclusion.
func New(conn net.Conn, outbound bool) *Peer {
	return &Peer{
		Host:     conn.RemoteAddr().String(),
		Outbound: outbound,
		conn:     conn,
	}
}

// Match validates if the specified host matches this peer.
func (p *Peer) Match(host string) bool {
	return p.Host == host
}

// Conn returns the underlying connection for reading.
func (p *Peer) Conn() net.Conn {
	return p.conn
}

// Send writes one complete message to the peer. Writes are serialized so
// concurrent broadcasts never interleave partial messages on the stream.
func (p *Peer) Send(msg []byte) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	_, err := p.conn.Write(msg)
	return err
}

// Close closes the peer's connection.
func (p *Peer) Close() error {
	return p.conn.Close()
}

// =============================================================================

// Set represents the data representation to maintain a set of live peers.
type Set struct {
	mu  sync.RWMutex
	set map[string]*Peer
}

// NewSet constructs a new set to manage live peer connections.
func NewSet() *Set {
	return &Set{
		set: make(map[string]*Peer),
	}
}

// Add adds a new peer to the set.
func (ps *Set) Add(peer *Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer.Host]; exists {
		return false
	}

	ps.set[peer.Host] = peer
	return true
}

// Remove removes a peer from the set.
func (ps *Set) Remove(host string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, host)
}

// Copy returns a list of the live peers, excluding any peer matching the
// specified host. Pass an empty host to copy every peer.
func (ps *Set) Copy(host string) []*Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []*Peer
	for _, peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}

// Hosts returns the remote addresses of the live peers.
func (ps *Set) Hosts() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	hosts := make([]string, 0, len(ps.set))
	for host := range ps.set {
		hosts = append(hosts, host)
	}

	return hosts
}

// Count returns the number of live peers.
func (ps *Set) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}
