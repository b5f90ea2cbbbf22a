package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/cpanmeta/pkg/errors"
	"github.com/matzehuels/cpanmeta/pkg/integrations"
	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/observability"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// searchOptions holds flags for the search command.
type searchOptions struct {
	clientFlags
	searchType   string
	author       string
	mode         string
	otherAuthors bool
	asJSON       bool
	links        bool
}

// searchCommand creates the one-shot search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [text | location]",
		Short: "Run one search and print the results",
		Long: `Run one search against the CPAN meta API and print the results as a table.

The argument is either search text or a page location of the web interface.
Locations may use the current query form or the old fragment forms:

  cpanmeta search Moose
  cpanmeta search --type perms --author ETHER
  cpanmeta search '/perms?author=ETHER&module=Moose&match_mode=exact'
  cpanmeta search --type authors '#~PERL'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return c.runSearch(cmd.Context(), arg, opts)
		},
	}

	opts.clientFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.searchType, "type", "t", string(search.Packages), "search type: packages, perms, authors")
	cmd.Flags().StringVarP(&opts.author, "author", "a", "", "author id")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "match mode: exact, prefix, infix (default from config)")
	cmd.Flags().BoolVar(&opts.otherAuthors, "other-authors", false, "perms: include other authors of the matched modules")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.links, "links", false, "show link targets under linked cells")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, arg string, opts searchOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.apply(&cfg); err != nil {
		return err
	}

	p, err := paramsFromArgs(arg, opts, cfg.MatchMode())
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)
	logger.Debug("search", "params", p.String())

	client, backend, err := c.newClient(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	hits := &cacheCounter{}
	observability.SetCacheHooks(hits)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching %s for %q...", p.Type, p.Text()))
	if !opts.asJSON {
		spinner.Start()
	}
	res, err := client.Search(ctx, p)
	if !opts.asJSON {
		spinner.Stop()
	}
	if err != nil {
		return searchError(ctx, err, p)
	}
	prog.done(fmt.Sprintf("Found %d records", res.Len()))

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Len() == 0 {
		printInfo("No results for %s", location.QueryCodec{}.Encode(p))
		return nil
	}
	fmt.Println(resultsTable(p.Type, res, opts.links).Render())
	printSummary(res.Len(), res.Freshness, hits.cached())
	return nil
}

// searchError codes a failed search. Cancellation is returned as is.
func searchError(ctx context.Context, err error, p search.Params) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "search %s", p.Type)
	case errors.Is(err, integrations.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "search %s: endpoint not found at this host", p.Type)
	}
	return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "search %s", p.Type)
}

// paramsFromArgs builds search parameters from the argument and flags.
// A location argument takes precedence over text flags; an explicit --type
// is only the fallback for locations that do not name their page.
func paramsFromArgs(arg string, opts searchOptions, defaultMode search.MatchMode) (search.Params, error) {
	t, err := parseTypeFlag(opts.searchType)
	if err != nil {
		return search.Params{}, err
	}

	mode := defaultMode
	if opts.mode != "" {
		m, ok := search.ParseMatchMode(opts.mode)
		if !ok {
			return search.Params{}, apperrors.New(apperrors.ErrCodeInvalidMatchMode, "unknown match mode %q", opts.mode)
		}
		mode = m
	}

	var p search.Params
	if looksLikeLocation(arg) {
		d, ok := location.Decode(arg)
		if !ok {
			return search.Params{}, apperrors.New(apperrors.ErrCodeInvalidLocation, "no search in location %q", arg)
		}
		p = d.Params(pageType(arg, t))
	} else {
		p = search.Params{
			Type:         t,
			Query:        arg,
			Author:       opts.author,
			Mode:         mode,
			OtherAuthors: opts.otherAuthors,
		}
		if t == search.Authors && arg != "" {
			p.Author, p.Query = arg, ""
		}
		p = p.Normalize()
	}

	if p.Query != "" {
		if err := apperrors.ValidateQuery(p.Query); err != nil {
			return p, err
		}
	}
	if p.Author != "" {
		if err := apperrors.ValidateAuthorID(p.Author); err != nil {
			return p, err
		}
	}
	if !p.Searchable() {
		return p, apperrors.New(apperrors.ErrCodeInvalidQuery,
			"%s search needs more text (one character is only searchable in exact mode)", p.Type)
	}
	return p, nil
}

// cacheCounter records cache hooks to tell whether a lookup was served
// entirely from cache.
type cacheCounter struct {
	observability.NoopCacheHooks
	hits, misses atomic.Int64
}

func (c *cacheCounter) OnCacheHit(context.Context, string)  { c.hits.Add(1) }
func (c *cacheCounter) OnCacheMiss(context.Context, string) { c.misses.Add(1) }

func (c *cacheCounter) cached() bool {
	return c.hits.Load() > 0 && c.misses.Load() == 0
}
