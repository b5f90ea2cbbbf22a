// Package navsync keeps search state and the browser location in step.
//
// A [Controller] owns a [search.State] and is the only component that writes
// the location. Two event sources drive it: the user editing the search
// ([Controller.UserChanged]) and the location changing underneath it, for
// example through back or forward navigation ([Controller.LocationChanged]).
// Each handler would naturally trigger the other; the controller breaks that
// loop with a three-phase guard:
//
//	Idle ──UserChanged──▶ ApplyingUser ──(push, dispatch)──▶ Idle
//	Idle ──LocationChanged──▶ ApplyingLocation ──(decode, dispatch)──▶ Idle
//
// A location event that arrives while the controller is applying a user
// change is the echo of its own write and is ignored. A user event that
// arrives while applying a location comes from the view re-rendering the
// decoded parameters and is ignored as well. Both handlers leave the phase
// through a deferred reset, so a panicking collaborator cannot wedge the
// controller.
//
// # Lookups
//
// Every searchable parameter change dispatches exactly one lookup through a
// [Dispatcher], tagged with a monotonically increasing sequence number.
// Responses come back through [Controller.Resolve], which applies or drops
// them according to the controller's [Policy]. With [LatestWins] a response
// is applied only if it answers the most recent request, so out-of-order
// completion can never show results for stale parameters.
//
// The controller is not safe for concurrent use. Call every method from the
// goroutine that owns the view, and hand responses back to that goroutine
// before calling Resolve.
package navsync
