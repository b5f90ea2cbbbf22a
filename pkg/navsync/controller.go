package navsync

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/observability"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Phase is the reentrancy state of a [Controller].
type Phase int

// Controller phases.
const (
	Idle Phase = iota
	ApplyingLocation
	ApplyingUser
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ApplyingLocation:
		return "applying-location"
	case ApplyingUser:
		return "applying-user"
	}
	return "unknown"
}

// Policy decides which lookup responses are applied.
type Policy int

const (
	// LatestWins applies a response only if it answers the most recently
	// issued request.
	LatestWins Policy = iota
	// LastResolvedWins applies every successful response in arrival order,
	// so a slow stale response can overwrite a newer one.
	LastResolvedWins
)

func (p Policy) String() string {
	if p == LastResolvedWins {
		return "last-resolved-wins"
	}
	return "latest-wins"
}

// ParsePolicy returns the policy named by s.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "latest", "latest-wins":
		return LatestWins, true
	case "last-resolved", "last-resolved-wins":
		return LastResolvedWins, true
	}
	return LatestWins, false
}

// Location is the browser location as seen by the controller.
type Location interface {
	Current() string
	// Push adds a history entry. Implementations may notify listeners
	// synchronously, before Push returns.
	Push(loc string)
}

// Request is one lookup issued by the controller.
type Request struct {
	Seq    uint64
	Params search.Params
}

// Response is the outcome of a [Request]. Seq and Params are copied from the
// request.
type Response struct {
	Seq     uint64
	Params  search.Params
	Results *search.Results
	Err     error
}

// Dispatcher starts a lookup. Dispatch must not block on the lookup itself;
// the response is delivered later through [Controller.Resolve].
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request)
}

// DispatcherFunc adapts a function to [Dispatcher].
type DispatcherFunc func(ctx context.Context, req Request)

// Dispatch calls f(ctx, req).
func (f DispatcherFunc) Dispatch(ctx context.Context, req Request) { f(ctx, req) }

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger. Transitions and dropped events log at debug.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPolicy sets the response policy. The default is [LatestWins].
func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// Controller synchronizes a search state with a location.
type Controller struct {
	state      *search.State
	loc        Location
	codec      location.Codec
	dispatcher Dispatcher
	policy     Policy
	logger     *log.Logger

	phase   Phase
	seq     uint64
	cleared uint64 // seq at the last results clear
	writes  int
}

// New creates an idle controller. The state is used as is; call
// [Controller.Seed] to load it from the current location.
func New(state *search.State, loc Location, codec location.Codec, d Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		state:      state,
		loc:        loc,
		codec:      codec,
		dispatcher: d,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Seq returns the sequence number of the most recently issued request.
func (c *Controller) Seq() uint64 { return c.seq }

// State returns the controlled state.
func (c *Controller) State() *search.State { return c.state }

// Policy returns the response policy.
func (c *Controller) Policy() Policy { return c.policy }

// Writes returns how many times the controller has written the location.
func (c *Controller) Writes() int { return c.writes }

// Seed loads the state from the current location, as on page load. Unlike
// [Controller.LocationChanged] it dispatches even when the decoded
// parameters equal the current ones. It reports whether the location held
// parameters.
func (c *Controller) Seed(ctx context.Context) bool {
	if c.phase != Idle {
		return false
	}
	return c.applyLocation(ctx, c.loc.Current(), true)
}

// UserChanged applies parameters edited by the user: the state is updated,
// the location is written if it differs, and a lookup is dispatched.
// It reports false when the event was suppressed by the reentrancy guard.
func (c *Controller) UserChanged(ctx context.Context, p search.Params) bool {
	if c.phase != Idle {
		c.ignore(ctx, "user", p.String())
		return false
	}
	defer c.enter(ctx, ApplyingUser)()

	p = p.Normalize()
	c.state.SetParams(p)

	loc := c.codec.Encode(p)
	if loc != c.loc.Current() {
		c.writes++
		observability.Sync().OnLocationWrite(ctx, loc)
		c.logger.Debug("writing location", "location", loc)
		c.loc.Push(loc)
	}

	c.lookup(ctx, p)
	return true
}

// LocationChanged applies a location change not caused by the controller.
// Undecodable locations and locations whose parameters equal the current
// state leave everything untouched. It reports whether the state changed.
func (c *Controller) LocationChanged(ctx context.Context, raw string) bool {
	if c.phase != Idle {
		c.ignore(ctx, "location", raw)
		return false
	}
	return c.applyLocation(ctx, raw, false)
}

func (c *Controller) applyLocation(ctx context.Context, raw string, force bool) bool {
	defer c.enter(ctx, ApplyingLocation)()

	p, ok := c.codec.Decode(raw)
	if !ok {
		c.logger.Debug("location carries no search", "location", raw)
		return false
	}
	if !force && p == c.state.Params {
		c.logger.Debug("location matches state", "location", raw)
		return false
	}

	c.state.SetParams(p)
	c.lookup(ctx, p)
	return true
}

// Resolve delivers the response to an earlier request. It reports whether
// the response was written into the state.
func (c *Controller) Resolve(ctx context.Context, resp Response) bool {
	if resp.Seq == 0 || resp.Seq > c.seq {
		c.discard(ctx, resp.Seq, "unknown request")
		return false
	}
	latest := resp.Seq == c.seq
	if latest {
		c.state.Pending = 0
	}
	if resp.Err != nil {
		c.logger.Debug("lookup failed", "seq", resp.Seq, "err", resp.Err)
		c.discard(ctx, resp.Seq, "error")
		return false
	}
	if resp.Seq <= c.cleared {
		c.discard(ctx, resp.Seq, "cleared")
		return false
	}
	if c.policy == LatestWins && !latest {
		c.discard(ctx, resp.Seq, "stale")
		return false
	}

	results := resp.Results
	if results == nil {
		results = &search.Results{}
	}
	c.state.SetResults(resp.Params, results)
	observability.Sync().OnLookupApplied(ctx, resp.Seq, results.Len())
	c.logger.Debug("applied lookup", "seq", resp.Seq, "records", results.Len())
	return true
}

// lookup dispatches a request for p, or clears the results when p is not
// searchable. Either way earlier requests stop being the latest.
func (c *Controller) lookup(ctx context.Context, p search.Params) {
	c.seq++
	if !p.Searchable() {
		c.cleared = c.seq
		c.state.ClearResults()
		c.logger.Debug("input too short, cleared results", "params", p.String())
		return
	}

	req := Request{Seq: c.seq, Params: p}
	c.state.Pending = req.Seq
	observability.Sync().OnLookupIssued(ctx, req.Seq, p.String())
	c.logger.Debug("dispatching lookup", "seq", req.Seq, "params", p.String())
	c.dispatcher.Dispatch(ctx, req)
}

// enter moves to phase to and returns the function that moves back to Idle.
func (c *Controller) enter(ctx context.Context, to Phase) func() {
	from := c.phase
	c.phase = to
	observability.Sync().OnTransition(ctx, from.String(), to.String())
	return func() {
		c.phase = Idle
		observability.Sync().OnTransition(ctx, to.String(), Idle.String())
	}
}

func (c *Controller) ignore(ctx context.Context, event, detail string) {
	observability.Sync().OnIgnored(ctx, event, c.phase.String())
	c.logger.Debug("ignoring event", "event", event, "phase", c.phase, "detail", detail)
}

func (c *Controller) discard(ctx context.Context, seq uint64, reason string) {
	observability.Sync().OnLookupDiscarded(ctx, seq, reason)
	c.logger.Debug("discarding lookup", "seq", seq, "reason", reason)
}
