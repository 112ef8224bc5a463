// Package worker implements the mining workflow for the blockchain node.
// Mining is CPU bound and unbounded in time, so it runs on a dedicated
// goroutine that never blocks connection handling.
package worker

import (
	"errors"
	"sync"

	"github.com/chainforge/minichain/foundation/blockchain/state"
)

// maxPayloadRequests represents the max number of pending mining requests
// that can be outstanding before submissions are rejected. To keep this
// simple, a buffered channel of this arbitrary number is being used.
const maxPayloadRequests = 100

// ErrQueueFull is returned when a payload is submitted while the mining
// queue has no capacity left.
var ErrQueueFull = errors.New("mining queue is full")

// =============================================================================

// Worker manages the POW workflow for the blockchain node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan state.Payload
	cancelMining chan chan struct{}
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up the mining goroutine.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		startMining:  make(chan state.Payload, maxPayloadRequests),
		cancelMining: make(chan chan struct{}, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	done := w.SignalCancelMining()
	done()

	w.evHandler("worker: shutdown: terminate goroutine")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining queues a mining operation for the specified payload.
func (w *Worker) SignalStartMining(payload state.Payload) error {
	select {
	case w.startMining <- payload:
		w.evHandler("worker: SignalStartMining: mining signaled")
		return nil
	default:
		return ErrQueueFull
	}
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not return from the function until done
// is called. This allows the caller to complete any state changes before a
// new mining operation takes place.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:

		// A cancel signal is already pending and its signaler owns that
		// handshake channel. Nothing for this caller to wait on.
		return func() {}
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
