// Package metrics constructs the Prometheus collectors the node maintains
// about chain and peer activity. The collectors register themselves on the
// default registry and are served from the debug mux.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlocksAccepted counts blocks admitted to the local chain, both mined
	// locally and received from peers.
	BlocksAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "blocks_accepted_total",
		Help:      "Number of blocks admitted to the local chain.",
	})

	// BlocksRejected counts candidate blocks dropped by the admission gate.
	BlocksRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "blocks_rejected_total",
		Help:      "Number of candidate blocks rejected by verification.",
	})

	// MessagesReceived counts framed messages by kind, including unknown.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "peer_messages_received_total",
		Help:      "Number of framed peer messages received by kind.",
	}, []string{"kind"})

	// ConnectedPeers tracks the number of live peer connections.
	ConnectedPeers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minichain",
		Name:      "connected_peers",
		Help:      "Number of live peer connections.",
	})

	// Requests counts web API requests handled.
	Requests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "web_requests_total",
		Help:      "Number of web API requests handled.",
	})

	// Errors counts web API requests that resulted in an error.
	Errors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "web_errors_total",
		Help:      "Number of web API requests that resulted in an error.",
	})

	// Panics counts web API requests that resulted in a panic.
	Panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Name:      "web_panics_total",
		Help:      "Number of web API requests that resulted in a panic.",
	})
)
