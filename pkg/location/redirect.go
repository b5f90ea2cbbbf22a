package location

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// RedirectTarget converts the legacy fragment in raw into the equivalent
// current location for a page of search type t.
//
// raw may be a bare fragment ("#PERLANCAR+~Foo") or any location containing
// one. It reports false when raw has no parsable fragment or when neither an
// author nor a module survives parsing, in which case there is nothing to
// migrate.
func RedirectTarget(raw string, t search.SearchType) (string, bool) {
	f, ok := parseFragment(fragmentOf(raw))
	if !ok {
		return "", false
	}
	p := Decoded{Version: V2, Fields: f}.Params(t)
	if p.Empty() {
		return "", false
	}
	return QueryCodec{}.Encode(p), true
}

// Navigator is the part of the browser location the redirector needs.
type Navigator interface {
	Current() string
	// Navigate replaces the current document with target. Any fragment on
	// the previous location is discarded.
	Navigate(target string)
}

// Redirector migrates a legacy location once per page load.
//
// Run it before the sync controller is attached to the location: a redirect
// replaces the document, and the controller is then seeded from the new
// current-version location instead.
type Redirector struct {
	nav    Navigator
	logger *log.Logger
	once   sync.Once
}

// NewRedirector creates a redirector for nav. A nil logger discards output.
func NewRedirector(nav Navigator, logger *log.Logger) *Redirector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Redirector{nav: nav, logger: logger}
}

// Run performs the redirect for a page of search type t if the current
// location carries a legacy fragment. Only the first call has any effect.
// It returns the navigation target and whether a navigation happened.
func (r *Redirector) Run(t search.SearchType) (target string, redirected bool) {
	r.once.Do(func() {
		from := r.nav.Current()
		target, redirected = RedirectTarget(from, t)
		if !redirected {
			return
		}
		r.logger.Info("redirecting legacy location", "from", from, "to", target)
		r.nav.Navigate(target)
	})
	return target, redirected
}
