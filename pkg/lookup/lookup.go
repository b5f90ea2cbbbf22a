// Package lookup runs the searches a sync controller dispatches.
//
// Two dispatchers are provided. [Async] runs each request on its own
// goroutine and delivers responses on a channel, which the owner drains on
// its event loop. [Queue] turns requests into bubbletea commands, so the
// responses arrive as [Resolved] messages in the program's Update loop.
//
// Neither dispatcher cancels earlier requests when a newer one is issued;
// ordering is left to the controller's response policy.
package lookup

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Searcher performs one search. The cpanmeta API client implements it.
type Searcher interface {
	Search(ctx context.Context, p search.Params) (*search.Results, error)
}

// SearcherFunc adapts a function to [Searcher].
type SearcherFunc func(ctx context.Context, p search.Params) (*search.Results, error)

// Search calls f(ctx, p).
func (f SearcherFunc) Search(ctx context.Context, p search.Params) (*search.Results, error) {
	return f(ctx, p)
}

// Run performs req with s, bounded by timeout when it is positive.
func Run(ctx context.Context, s Searcher, req navsync.Request, timeout time.Duration) navsync.Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := s.Search(ctx, req.Params)
	return navsync.Response{Seq: req.Seq, Params: req.Params, Results: res, Err: err}
}

// =============================================================================
// Async
// =============================================================================

// Async dispatches each request on a new goroutine.
type Async struct {
	searcher Searcher
	timeout  time.Duration
	out      chan navsync.Response
	wg       sync.WaitGroup
}

// NewAsync creates an Async dispatcher whose response channel holds up to
// buffer responses before senders block.
func NewAsync(s Searcher, buffer int, timeout time.Duration) *Async {
	return &Async{
		searcher: s,
		timeout:  timeout,
		out:      make(chan navsync.Response, buffer),
	}
}

// Dispatch starts req and returns immediately. A response whose context is
// done before it can be delivered is dropped.
func (a *Async) Dispatch(ctx context.Context, req navsync.Request) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		resp := Run(ctx, a.searcher, req, a.timeout)
		select {
		case a.out <- resp:
		case <-ctx.Done():
		}
	}()
}

// Responses returns the channel responses are delivered on, in completion
// order.
func (a *Async) Responses() <-chan navsync.Response {
	return a.out
}

// Wait blocks until every dispatched request has delivered or dropped its
// response.
func (a *Async) Wait() {
	a.wg.Wait()
}

// =============================================================================
// Queue
// =============================================================================

// Resolved is the message a [Queue] command produces.
type Resolved struct {
	navsync.Response
}

// Queue collects requests as bubbletea commands. Dispatch runs inside the
// program's Update, which must return [Queue.Drain] so the runtime executes
// the commands.
type Queue struct {
	searcher Searcher
	timeout  time.Duration
	pending  []tea.Cmd
}

// NewQueue creates a Queue dispatcher.
func NewQueue(s Searcher, timeout time.Duration) *Queue {
	return &Queue{searcher: s, timeout: timeout}
}

// Dispatch records a command that performs req.
func (q *Queue) Dispatch(ctx context.Context, req navsync.Request) {
	s, timeout := q.searcher, q.timeout
	q.pending = append(q.pending, func() tea.Msg {
		return Resolved{Run(ctx, s, req, timeout)}
	})
}

// Len returns the number of commands waiting to be drained.
func (q *Queue) Len() int { return len(q.pending) }

// Drain returns the pending commands as one batch and empties the queue.
// It returns nil when nothing is pending.
func (q *Queue) Drain() tea.Cmd {
	if len(q.pending) == 0 {
		return nil
	}
	cmds := q.pending
	q.pending = nil
	return tea.Batch(cmds...)
}

var (
	_ navsync.Dispatcher = (*Async)(nil)
	_ navsync.Dispatcher = (*Queue)(nil)
)
