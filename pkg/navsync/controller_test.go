package navsync

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmeta/pkg/history"
	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/observability"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// recorder collects dispatched requests.
type recorder struct {
	reqs []Request
}

func (r *recorder) Dispatch(_ context.Context, req Request) {
	r.reqs = append(r.reqs, req)
}

func (r *recorder) last() Request {
	return r.reqs[len(r.reqs)-1]
}

type fixture struct {
	h     *history.History
	state *search.State
	disp  *recorder
	c     *Controller
}

// newFixture wires a controller to an in-memory history whose listener feeds
// every change back into LocationChanged, the way a hashchange handler would.
func newFixture(t *testing.T, initial string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		h:     history.New(initial),
		state: search.NewState(search.Packages),
		disp:  &recorder{},
	}
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	f.c = New(f.state, f.h, location.QueryCodec{Type: search.Packages}, f.disp, opts...)
	f.h.Subscribe(func(ch history.Change) {
		f.c.LocationChanged(context.Background(), ch.Location)
	})
	return f
}

func moose(mode search.MatchMode) search.Params {
	return search.Params{Type: search.Packages, Query: "Moose", Mode: mode}
}

func TestUserChangedWritesAndDispatches(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	if !f.c.UserChanged(ctx, moose(search.Exact)) {
		t.Fatal("UserChanged() should be handled when idle")
	}

	want := "/packages?author=&module=Moose&match_mode=exact"
	if got := f.h.Current(); got != want {
		t.Errorf("location = %q, want %q", got, want)
	}
	if f.c.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", f.c.Writes())
	}
	if len(f.disp.reqs) != 1 || f.disp.last().Seq != 1 {
		t.Fatalf("dispatched %+v, want one request with seq 1", f.disp.reqs)
	}
	if f.state.Pending != 1 {
		t.Errorf("Pending = %d, want 1", f.state.Pending)
	}
	if f.c.Phase() != Idle {
		t.Errorf("Phase() = %v, want idle", f.c.Phase())
	}
}

func TestUserChangedSkipsIdenticalLocation(t *testing.T) {
	f := newFixture(t, "/packages?author=&module=Moose&match_mode=exact")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Exact))

	if f.c.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0 when location already matches", f.c.Writes())
	}
	if f.h.Len() != 1 {
		t.Errorf("history length = %d, want 1", f.h.Len())
	}
	if len(f.disp.reqs) != 1 {
		t.Errorf("dispatched %d, want 1", len(f.disp.reqs))
	}
}

func TestRoundTripIsIdempotent(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Prefix))
	for i := 0; i < 5; i++ {
		if f.c.LocationChanged(ctx, f.h.Current()) {
			t.Fatalf("round trip %d changed the state", i)
		}
	}

	if f.c.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", f.c.Writes())
	}
	if len(f.disp.reqs) != 1 {
		t.Errorf("dispatched %d, want 1", len(f.disp.reqs))
	}
}

func TestOwnWriteEchoIsIgnored(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	var phases []Phase
	var handled []bool
	f.h.Subscribe(func(ch history.Change) {
		phases = append(phases, f.c.Phase())
		handled = append(handled, f.c.LocationChanged(ctx, ch.Location))
	})

	f.c.UserChanged(ctx, moose(search.Prefix))

	if len(phases) != 1 || phases[0] != ApplyingUser {
		t.Fatalf("echo observed phases %v, want [applying-user]", phases)
	}
	if handled[0] {
		t.Error("echo of own write should be ignored")
	}
	if len(f.disp.reqs) != 1 {
		t.Errorf("dispatched %d, want 1", len(f.disp.reqs))
	}
}

func TestBackNavigation(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Prefix))
	f.c.UserChanged(ctx, moose(search.Exact))

	if !f.h.Back() {
		t.Fatal("Back() failed")
	}

	if got := f.state.Params; got != moose(search.Prefix) {
		t.Errorf("state after back = %+v", got)
	}
	if f.c.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2 (back must not write)", f.c.Writes())
	}
	if len(f.disp.reqs) != 3 {
		t.Fatalf("dispatched %d, want 3", len(f.disp.reqs))
	}
	if got := f.disp.last().Params; got != moose(search.Prefix) {
		t.Errorf("lookup after back = %+v", got)
	}
}

func TestUndecodableLocationLeavesState(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Exact))
	before := f.state.Params

	for _, raw := range []string{"", "/packages", "#", "%%%"} {
		if f.c.LocationChanged(ctx, raw) {
			t.Errorf("LocationChanged(%q) reported a change", raw)
		}
	}
	if f.state.Params != before {
		t.Errorf("state changed to %+v", f.state.Params)
	}
	if len(f.disp.reqs) != 1 {
		t.Errorf("dispatched %d, want 1", len(f.disp.reqs))
	}
}

func TestViewEchoDuringLocationIsIgnored(t *testing.T) {
	h := history.New("/packages")
	state := search.NewState(search.Packages)
	ctx := context.Background()

	var c *Controller
	var echoed []bool
	// The view re-renders the decoded params and fires its change handler.
	d := DispatcherFunc(func(ctx context.Context, req Request) {
		echoed = append(echoed, c.UserChanged(ctx, req.Params))
	})
	c = New(state, h, location.QueryCodec{}, d, WithLogger(log.New(io.Discard)))

	if !c.LocationChanged(ctx, "/perms?author=ETHER&module=Moose&match_mode=exact") {
		t.Fatal("LocationChanged() should apply a new location")
	}
	if len(echoed) != 1 || echoed[0] {
		t.Errorf("view echo handled = %v, want [false]", echoed)
	}
	if c.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", c.Writes())
	}
	want := search.Params{Type: search.Perms, Author: "ETHER", Query: "Moose", Mode: search.Exact}
	if state.Params != want {
		t.Errorf("state = %+v, want %+v", state.Params, want)
	}
}

type transitionRecorder struct {
	observability.NoopSyncHooks
	pairs [][2]string
}

func (r *transitionRecorder) OnTransition(_ context.Context, from, to string) {
	r.pairs = append(r.pairs, [2]string{from, to})
}

func TestNoNestedApplyingPhases(t *testing.T) {
	rec := &transitionRecorder{}
	observability.SetSyncHooks(rec)
	defer observability.Reset()

	f := newFixture(t, "/packages")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Prefix))
	f.c.UserChanged(ctx, search.Params{Type: search.Authors, Author: "ETHER", Mode: search.Exact})
	f.h.Back()
	f.h.Forward()

	if len(rec.pairs) == 0 {
		t.Fatal("no transitions recorded")
	}
	for _, p := range rec.pairs {
		if p[0] != Idle.String() && p[1] != Idle.String() {
			t.Errorf("transition %s -> %s skips idle", p[0], p[1])
		}
	}
}

func TestShortInputClearsResults(t *testing.T) {
	for _, policy := range []Policy{LatestWins, LastResolvedWins} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, "/packages", WithPolicy(policy))
			ctx := context.Background()

			f.c.UserChanged(ctx, moose(search.Prefix))
			first := f.disp.last()

			f.c.UserChanged(ctx, search.Params{Query: "M", Mode: search.Prefix})
			if len(f.disp.reqs) != 1 {
				t.Fatalf("dispatched %d, want 1 (short input must not dispatch)", len(f.disp.reqs))
			}
			if f.state.HasResults() || f.state.Pending != 0 {
				t.Error("short input should clear results and pending")
			}

			// The response for the earlier input must not resurrect results.
			resp := Response{Seq: first.Seq, Params: first.Params, Results: &search.Results{Records: []search.Record{{Module: "Moose"}}}}
			if f.c.Resolve(ctx, resp) {
				t.Error("response issued before the clear was applied")
			}
			if f.state.HasResults() {
				t.Errorf("results for %v shown while params are %v", f.state.ResultsFor, f.state.Params)
			}

			// A single character is enough in exact mode.
			f.c.UserChanged(ctx, search.Params{Query: "M", Mode: search.Exact})
			if len(f.disp.reqs) != 2 {
				t.Fatalf("dispatched %d, want 2", len(f.disp.reqs))
			}
			next := f.disp.last()
			if !f.c.Resolve(ctx, Response{Seq: next.Seq, Params: next.Params, Results: &search.Results{}}) {
				t.Error("response issued after the clear should apply")
			}
		})
	}
}

func TestOutOfOrderResolution(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   string
	}{
		{"latest wins", LatestWins, "Moose"},
		{"last resolved wins", LastResolvedWins, "Mo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "/packages", WithPolicy(tt.policy))
			ctx := context.Background()

			f.c.UserChanged(ctx, search.Params{Query: "Mo"})
			f.c.UserChanged(ctx, search.Params{Query: "Moose"})
			older, newer := f.disp.reqs[0], f.disp.reqs[1]

			respond := func(req Request) Response {
				return Response{
					Seq:     req.Seq,
					Params:  req.Params,
					Results: &search.Results{Records: []search.Record{{Module: req.Params.Query}}},
				}
			}
			f.c.Resolve(ctx, respond(newer))
			f.c.Resolve(ctx, respond(older))

			if got := f.state.Results.Records[0].Module; got != tt.want {
				t.Errorf("results for %q, want %q", got, tt.want)
			}
			if f.state.Pending != 0 {
				t.Errorf("Pending = %d, want 0", f.state.Pending)
			}
		})
	}
}

func TestLatestWinsInvariant(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	queries := []string{"Mo", "Moo", "Moos", "Moose"}
	for _, q := range queries {
		f.c.UserChanged(ctx, search.Params{Query: q})
	}
	// Resolve in reverse order; only the newest may land.
	for i := len(f.disp.reqs) - 1; i >= 0; i-- {
		req := f.disp.reqs[i]
		f.c.Resolve(ctx, Response{Seq: req.Seq, Params: req.Params, Results: &search.Results{}})
		if f.state.HasResults() && f.state.ResultsFor != f.state.Params {
			t.Fatalf("results for %+v shown with params %+v", f.state.ResultsFor, f.state.Params)
		}
	}
	if f.state.Stale() {
		t.Error("state should hold results for the current params")
	}
}

func TestErrorResponseIsDiscarded(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	f.c.UserChanged(ctx, moose(search.Exact))
	req := f.disp.last()
	f.c.Resolve(ctx, Response{Seq: req.Seq, Params: req.Params, Results: &search.Results{Records: []search.Record{{Module: "Moose"}}}})

	f.c.UserChanged(ctx, moose(search.Prefix))
	req = f.disp.last()
	if f.c.Resolve(ctx, Response{Seq: req.Seq, Params: req.Params, Err: errors.New("boom")}) {
		t.Error("failed lookup should not be applied")
	}
	if !f.state.HasResults() || f.state.ResultsFor != moose(search.Exact) {
		t.Error("previous results should remain after a failed lookup")
	}
	if f.state.Pending != 0 {
		t.Errorf("Pending = %d, want 0", f.state.Pending)
	}
}

func TestResolveUnknownSeq(t *testing.T) {
	f := newFixture(t, "/packages")
	ctx := context.Background()

	if f.c.Resolve(ctx, Response{Seq: 0}) {
		t.Error("seq 0 should never resolve")
	}
	if f.c.Resolve(ctx, Response{Seq: 7, Results: &search.Results{}}) {
		t.Error("unissued seq should never resolve")
	}
}

func TestSeed(t *testing.T) {
	f := newFixture(t, "/perms?author=ETHER&module=&match_mode=prefix&other_authors=1")
	ctx := context.Background()

	if !f.c.Seed(ctx) {
		t.Fatal("Seed() should load parameters from the location")
	}
	want := search.Params{Type: search.Perms, Author: "ETHER", Mode: search.Prefix, OtherAuthors: true}
	if f.state.Params != want {
		t.Errorf("state = %+v, want %+v", f.state.Params, want)
	}
	if f.c.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", f.c.Writes())
	}
	if len(f.disp.reqs) != 1 {
		t.Errorf("dispatched %d, want 1", len(f.disp.reqs))
	}
}

func TestPhaseResetAfterPanic(t *testing.T) {
	h := history.New("/packages")
	d := DispatcherFunc(func(context.Context, Request) { panic("dispatcher failed") })
	c := New(search.NewState(search.Packages), h, location.QueryCodec{}, d, WithLogger(log.New(io.Discard)))

	func() {
		defer func() { _ = recover() }()
		c.UserChanged(context.Background(), moose(search.Exact))
	}()

	if c.Phase() != Idle {
		t.Errorf("Phase() = %v after panic, want idle", c.Phase())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", LatestWins, true},
		{"latest-wins", LatestWins, true},
		{"last-resolved-wins", LastResolvedWins, true},
		{"fastest", LatestWins, false},
	}
	for _, tt := range tests {
		got, ok := ParsePolicy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
