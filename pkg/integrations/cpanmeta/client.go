package cpanmeta

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/cpanmeta/pkg/buildinfo"
	"github.com/matzehuels/cpanmeta/pkg/cache"
	"github.com/matzehuels/cpanmeta/pkg/integrations"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// DefaultBaseURL is the public CPAN meta API host.
const DefaultBaseURL = "https://cpanmeta.grinnz.com"

// DefaultAPIVersion is used when [Options.APIVersion] is zero.
const DefaultAPIVersion = 2

// Options configures a [Client].
type Options struct {
	// BaseURL of the API host. Empty means [DefaultBaseURL].
	BaseURL string

	// APIVersion is 1 or 2. Zero means [DefaultAPIVersion].
	APIVersion int
}

// Client provides access to the CPAN meta API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	version int
	group   singleflight.Group
}

// NewClient creates a CPAN meta client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached
//   - opts: Base URL and API version
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.APIVersion == 0 {
		opts.APIVersion = DefaultAPIVersion
	}
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	}
	namespace := "cpanmeta:v" + strconv.Itoa(opts.APIVersion)
	return &Client{
		Client:  integrations.NewClient(backend, namespace, cacheTTL, headers),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		version: opts.APIVersion,
	}
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// APIVersion returns the API version in use.
func (c *Client) APIVersion() int { return c.version }

// Search runs the lookup described by p.
//
// The endpoint follows from the search type:
//   - packages: /packages/<module>
//   - authors: /authors/<author>
//   - perms: /perms/by-module/<module> or /perms/by-author/<author>; with
//     both texts set, v2 uses the combined /perms endpoint and v1 filters
//     the by-module result by author
//
// Returns [integrations.ErrNotFound] if the API reports no such resource and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) Search(ctx context.Context, p search.Params) (*search.Results, error) {
	p = p.Normalize()
	switch p.Type {
	case search.Packages:
		return c.Packages(ctx, p.Query, p.Mode)
	case search.Authors:
		return c.Authors(ctx, p.Author, p.Mode)
	case search.Perms:
		switch {
		case p.Query != "" && p.Author != "":
			return c.Perms(ctx, p.Author, p.Query, p.Mode, p.OtherAuthors)
		case p.Query != "":
			return c.PermsByModule(ctx, p.Query, p.Mode)
		case p.OtherAuthors && c.version >= 2:
			return c.Perms(ctx, p.Author, "", search.Exact, true)
		default:
			return c.PermsByAuthor(ctx, p.Author)
		}
	}
	return nil, fmt.Errorf("unknown search type %q", p.Type)
}

// Packages looks up index entries for module names matching query.
func (c *Client) Packages(ctx context.Context, query string, mode search.MatchMode) (*search.Results, error) {
	return c.fetch(ctx, []string{"packages", query}, c.matchValues(mode))
}

// PermsByModule looks up permissions on modules matching module.
func (c *Client) PermsByModule(ctx context.Context, module string, mode search.MatchMode) (*search.Results, error) {
	return c.fetch(ctx, []string{"perms", "by-module", module}, c.matchValues(mode))
}

// PermsByAuthor looks up every permission held by author. Author lookups are
// always exact.
func (c *Client) PermsByAuthor(ctx context.Context, author string) (*search.Results, error) {
	return c.fetch(ctx, []string{"perms", "by-author", author}, nil)
}

// Perms looks up permissions filtered by author and module together. The
// mode applies to module. otherAuthors asks for the permissions other
// authors hold on the same modules.
//
// The combined endpoint only exists in v2; with v1 the by-module results are
// filtered by author on the client and otherAuthors is ignored.
func (c *Client) Perms(ctx context.Context, author, module string, mode search.MatchMode, otherAuthors bool) (*search.Results, error) {
	if c.version < 2 {
		res, err := c.PermsByModule(ctx, module, mode)
		if err != nil {
			return nil, err
		}
		return filterAuthor(res, author), nil
	}

	q := c.matchValues(mode)
	q.Set("author", author)
	q.Set("module", module)
	if otherAuthors {
		q.Set("other_authors", "1")
	}
	return c.fetch(ctx, []string{"perms"}, q)
}

// Authors looks up author profiles whose id matches query.
func (c *Client) Authors(ctx context.Context, query string, mode search.MatchMode) (*search.Results, error) {
	return c.fetch(ctx, []string{"authors", query}, c.matchValues(mode))
}

func (c *Client) matchValues(mode search.MatchMode) url.Values {
	q := url.Values{}
	if mode == search.Exact {
		q.Set("as_prefix", "0")
	} else {
		q.Set("as_prefix", "1")
	}
	if mode == search.Infix && c.version >= 2 {
		q.Set("match_mode", string(search.Infix))
	}
	return q
}

// URL returns the request URL for an endpoint below /api/v<n>.
func (c *Client) URL(segments []string, q url.Values) string {
	segs := append([]string{"api", "v" + strconv.Itoa(c.version)}, segments...)
	u := integrations.JoinURL(c.baseURL, segs...)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) fetch(ctx context.Context, segments []string, q url.Values) (*search.Results, error) {
	u := c.URL(segments, q)
	// Cache keys are host-relative; the keyer scopes them per host.
	key := strings.TrimPrefix(u, c.baseURL)

	v, err, _ := c.group.Do(u, func() (any, error) {
		var res search.Results
		err := c.Cached(ctx, key, false, &res, func() error {
			return c.get(ctx, u, &res)
		})
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", err, strings.Join(segments, "/"))
		}
		return nil, err
	}

	// Callers sharing a flight get their own Results value.
	res := *v.(*search.Results)
	return &res, nil
}

func (c *Client) get(ctx context.Context, u string, res *search.Results) error {
	if c.version < 2 {
		var records []search.Record
		if err := c.Get(ctx, u, &records); err != nil {
			return err
		}
		*res = search.Results{Records: records}
		return nil
	}

	var env envelope
	if err := c.Get(ctx, u, &env); err != nil {
		return err
	}
	*res = search.Results{
		Records:   env.Data,
		Freshness: search.FreshnessFromEpoch(env.LastUpdated),
	}
	return nil
}

// envelope is the v2 response body.
type envelope struct {
	Data        []search.Record `json:"data"`
	LastUpdated int64           `json:"last_updated"`
}

// filterAuthor keeps the records whose author equals author, ignoring case.
func filterAuthor(res *search.Results, author string) *search.Results {
	out := &search.Results{Freshness: res.Freshness}
	for _, r := range res.Records {
		if strings.EqualFold(r.Author, author) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}
