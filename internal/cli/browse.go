package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/cpanmeta/pkg/errors"
	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// browseOptions holds flags for the browse command.
type browseOptions struct {
	clientFlags
	searchType string
	policy     string
	logFile    string
}

// browseCommand creates the interactive browser command.
func (c *CLI) browseCommand() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse [location]",
		Short: "Search interactively, with back and forward history",
		Long: `Open an interactive search. Results update as you type, and every change
is recorded as a location you can return to with alt+left and alt+right.

The optional argument is the starting location. Old fragment links are
migrated to the current form before the first search:

  cpanmeta browse
  cpanmeta browse '/perms?author=ETHER&module=&match_mode=exact'
  cpanmeta browse --type perms '#ETHER~Moose'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return c.runBrowse(cmd, initial, opts)
		},
	}

	opts.clientFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.searchType, "type", "t", string(search.Packages), "page to open when the location names none")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "response policy: latest or last-resolved (overrides config)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the browser runs")

	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, initial string, opts browseOptions) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.policy != "" {
		cfg.Policy = opts.policy
	}
	if err := opts.apply(&cfg); err != nil {
		return err
	}
	t, err := parseTypeFlag(opts.searchType)
	if err != nil {
		return err
	}

	// The terminal belongs to the program; logs go to a file or nowhere.
	logger := log.New(io.Discard)
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open log file")
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}

	client, backend, err := c.newClient(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	m := newBrowseModel(ctx, browseConfig{
		searcher:   client,
		initial:    initial,
		searchType: t,
		mode:       cfg.MatchMode(),
		policy:     cfg.ResponsePolicy(),
		timeout:    cfg.Timeout,
		logger:     logger,
	})
	logger.Info("browser started", "location", m.hist.Current(), "policy", m.ctrl.Policy())

	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("browser: %w", err)
	}

	if bm, ok := final.(*browseModel); ok {
		printLastLocation(bm, cfg.BaseURL)
	}
	return nil
}

// printLastLocation shows where the session ended so it can be reopened or
// shared as a web link.
func printLastLocation(m *browseModel, baseURL string) {
	loc := m.hist.Current()
	if p := m.ctrl.State().Params; p.Empty() {
		return
	}
	printKeyValue("location", loc)
	printKeyValue("web", baseURL+loc)
	printKeyValue("policy", m.ctrl.Policy().String())
	if m.ctrl.Policy() == navsync.LastResolvedWins && m.ctrl.State().Stale() {
		printWarning("Shown results belong to an earlier search")
	}
}
