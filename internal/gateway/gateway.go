// Package gateway accepts inbound messages from front-end adapters, wraps
// them in runs, and feeds them through per-user FIFO lanes to the processor.
package gateway

import (
	"context"
	"sync"

	"github.com/user/copilot/internal/types"
)

// Apology is the canned response sent when a run fails after processing was
// attempted.
const Apology = "Sorry, something went wrong processing your message. Please try again."

// Gateway orchestrates inbound messages into runs and enqueues them for
// processing.
type Gateway struct {
	Queue *Queue
	retry *RetryPolicy

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Gateway with the given concurrency limit for simultaneous
// run processing.
func New(maxConcurrent int64) *Gateway {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Gateway{
		Queue: NewQueue(maxConcurrent),
		retry: DefaultRetryPolicy(),
	}
}

// Start initialises the gateway's context and starts the internal queue.
func (g *Gateway) Start(ctx context.Context) {
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.Queue.Start(g.ctx)
}

// Stop cancels the gateway context, stops the queue, and waits for any
// outstanding work to finish.
func (g *Gateway) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
	g.Queue.Stop()
	g.wg.Wait()
}

// RunOption configures optional behavior on a Run.
type RunOption func(*Run)

// WithOnComplete sets a callback invoked when the run produces a final response.
func WithOnComplete(fn func(string)) RunOption {
	return func(r *Run) { r.OnComplete = fn }
}

// HandleInbound wraps the message in a Run and enqueues it on the user's lane.
func (g *Gateway) HandleInbound(ctx context.Context, msg *types.InboundMessage, opts ...RunOption) error {
	run := NewRun(msg.UserID, msg)
	for _, opt := range opts {
		opt(run)
	}
	return g.Queue.Enqueue(run)
}
