package peer_test

import (
	"bufio"
	"net"
	"testing"

	"github.com/chainforge/minichain/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []*peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []*peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewSet()

			for _, peer := range tst.peers {
				if !ps.Add(peer) {
					t.Fatalf("Test %s:\tShould be able to add peer %s.", tst.name, peer.Host)
				}
			}

			if ps.Add(&peer.Peer{Host: "host2"}) {
				t.Fatalf("Test %s:\tShould not be able to add a duplicate host.", tst.name)
			}

			if ps.Count() != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, ps.Count())
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould count the peers.", tst.name)
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}
			for _, p := range peers {
				if p.Match("host2") {
					t.Fatalf("Test %s:\tShould exclude the specified host.", tst.name)
				}
			}

			ps.Remove("host1")
			if ps.Count() != len(tst.peers)-1 {
				t.Fatalf("Test %s:\tShould remove a peer by host.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Send(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	p := peer.New(client, true)
	defer p.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Send([]byte("BLOCK:{}\n"))
	}()

	line, err := bufio.NewReader(server).ReadString('\n')
	if err != nil {
		t.Fatalf("Should be able to read the message: %v", err)
	}
	if line != "BLOCK:{}\n" {
		t.Fatalf("Should receive the full message, got %q.", line)
	}

	if err := <-errCh; err != nil {
		t.Fatalf("Should be able to send the message: %v", err)
	}
}
