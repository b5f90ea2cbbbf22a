package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmeta/pkg/history"
	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/lookup"
	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Browser styles
var (
	browseTabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(colorDim)
	browseActiveStyle = StyleHighlight.Padding(0, 1).Bold(true)
	browseLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	browseErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// browseModel - Interactive search with location history
// =============================================================================

// browseConfig holds what the browser needs besides its terminal.
type browseConfig struct {
	searcher   lookup.Searcher
	initial    string // starting location; empty opens the page of searchType
	searchType search.SearchType
	mode       search.MatchMode
	policy     navsync.Policy
	timeout    time.Duration
	logger     *log.Logger
}

// field identifies a text input.
type field int

const (
	fieldModule field = iota
	fieldAuthor
)

// browseModel is the bubbletea model for the interactive browser.
//
// The text inputs are the view of the controller's state. Keystrokes that
// change an input become user events; history navigation becomes location
// events through the history listener. After either, the inputs are
// re-rendered from the state.
type browseModel struct {
	ctx    context.Context
	logger *log.Logger

	hist       *history.History
	ctrl       *navsync.Controller
	queue      *lookup.Queue
	redirected string

	inputs [2]textinput.Model
	focus  field

	lastErr error
	offset  int
	width   int
	height  int
}

// newBrowseModel builds the browser. A legacy initial location is migrated
// first, then the controller is seeded from whatever location is current.
func newBrowseModel(ctx context.Context, cfg browseConfig) *browseModel {
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}
	initial := cfg.initial
	if initial == "" {
		initial = location.QueryCodec{}.Encode(search.Params{Type: cfg.searchType, Mode: cfg.mode})
	}

	m := &browseModel{
		ctx:    ctx,
		logger: cfg.logger,
		hist:   history.New(initial),
		queue:  lookup.NewQueue(cfg.searcher, cfg.timeout),
	}

	t := pageType(initial, cfg.searchType)
	if target, ok := location.NewRedirector(m.hist, m.logger).Run(t); ok {
		m.redirected = target
	}

	state := search.NewState(t)
	if cfg.mode != "" {
		state.Params.Mode = cfg.mode
	}
	m.ctrl = navsync.New(state, m.hist, location.QueryCodec{Type: t}, m.queue,
		navsync.WithLogger(m.logger),
		navsync.WithPolicy(cfg.policy),
	)
	m.hist.Subscribe(func(ch history.Change) {
		m.ctrl.LocationChanged(m.ctx, ch.Location)
	})

	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	m.inputs[fieldModule].Placeholder = "Module::Name"
	m.inputs[fieldAuthor].Placeholder = "AUTHOR"

	m.ctrl.Seed(ctx)
	m.render()
	m.focusField(m.fields()[0])
	return m
}

func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.queue.Drain())
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lookup.Resolved:
		m.resolve(msg.Response)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.cycleFocus()
			return m, nil
		case "alt+left":
			m.hist.Back()
			m.render()
			return m, m.queue.Drain()
		case "alt+right":
			m.hist.Forward()
			m.render()
			return m, m.queue.Drain()
		case "ctrl+t":
			p := m.params()
			p.Type = nextType(p.Type)
			return m, m.userChanged(p)
		case "ctrl+e":
			p := m.params()
			p.Mode = nextMode(p.Mode)
			return m, m.userChanged(p)
		case "ctrl+o":
			p := m.params()
			p.OtherAuthors = !p.OtherAuthors
			return m, m.userChanged(p)
		case "up":
			if m.offset > 0 {
				m.offset--
			}
			return m, nil
		case "down":
			if m.offset < m.ctrl.State().Results.Len()-1 {
				m.offset++
			}
			return m, nil
		}

		before := m.inputs[m.focus].Value()
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if m.inputs[m.focus].Value() == before {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.userChanged(m.params()))
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// userChanged hands an edit to the controller and returns the lookups it
// dispatched.
func (m *browseModel) userChanged(p search.Params) tea.Cmd {
	m.lastErr = nil
	m.offset = 0
	m.ctrl.UserChanged(m.ctx, p)
	m.render()
	return m.queue.Drain()
}

func (m *browseModel) resolve(resp navsync.Response) {
	applied := m.ctrl.Resolve(m.ctx, resp)
	if resp.Err != nil && resp.Seq == m.ctrl.Seq() {
		m.lastErr = resp.Err
		m.logger.Warn("lookup failed", "params", resp.Params.String(), "err", resp.Err)
	}
	if applied {
		m.lastErr = nil
		m.offset = 0
	}
}

// params reads the inputs as search parameters of the current page.
func (m *browseModel) params() search.Params {
	p := m.ctrl.State().Params
	p.Query = ""
	p.Author = ""
	for _, f := range m.fields() {
		switch f {
		case fieldModule:
			p.Query = m.inputs[fieldModule].Value()
		case fieldAuthor:
			p.Author = m.inputs[fieldAuthor].Value()
		}
	}
	return p
}

// render copies the state into the inputs. SetValue never produces a key
// message, so re-rendering cannot loop back into the controller.
func (m *browseModel) render() {
	p := m.ctrl.State().Params
	if m.inputs[fieldModule].Value() != p.Query {
		m.inputs[fieldModule].SetValue(p.Query)
	}
	if m.inputs[fieldAuthor].Value() != p.Author {
		m.inputs[fieldAuthor].SetValue(p.Author)
	}
	if !m.visible(m.focus) {
		m.focusField(m.fields()[0])
	}
}

// fields lists the inputs the current search type shows.
func (m *browseModel) fields() []field {
	switch m.ctrl.State().Params.Type {
	case search.Authors:
		return []field{fieldAuthor}
	case search.Perms:
		return []field{fieldModule, fieldAuthor}
	default:
		return []field{fieldModule}
	}
}

func (m *browseModel) visible(f field) bool {
	for _, v := range m.fields() {
		if v == f {
			return true
		}
	}
	return false
}

func (m *browseModel) cycleFocus() {
	fs := m.fields()
	for i, f := range fs {
		if f == m.focus {
			m.focusField(fs[(i+1)%len(fs)])
			return
		}
	}
	m.focusField(fs[0])
}

func (m *browseModel) focusField(f field) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = f
	m.inputs[f].Focus()
}

func (m *browseModel) View() string {
	state := m.ctrl.State()
	p := state.Params
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName))
	b.WriteString(" ")
	for _, t := range search.SearchTypes {
		style := browseTabStyle
		if t == p.Type {
			style = browseActiveStyle
		}
		b.WriteString(style.Render(t.String()))
	}
	b.WriteString("\n\n")

	for _, f := range m.fields() {
		label := "module"
		if f == fieldAuthor {
			label = "author"
		}
		b.WriteString(browseLabelStyle.Render(label))
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
	}

	opts := "match: " + p.Mode.String()
	if p.OtherAuthors {
		opts += "  +other authors"
	}
	b.WriteString(StyleDim.Render(opts))
	b.WriteString("\n")
	b.WriteString(StyleLink.Render(m.hist.Current()))
	if m.redirected != "" && m.hist.Len() == 1 {
		b.WriteString(StyleDim.Render("  (migrated from an old link)"))
	}
	b.WriteString("\n\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(browseErrorStyle.Render(iconError + " " + m.lastErr.Error()))
	case !p.Searchable():
		b.WriteString(StyleDim.Render("Type at least two characters, or one in exact mode."))
	case state.Pending != 0 && !state.HasResults():
		b.WriteString(StyleDim.Render("Searching..."))
	case state.Results.Len() == 0:
		b.WriteString(StyleDim.Render("No results."))
	default:
		b.WriteString(m.resultsView(state))
	}

	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("tab field · ctrl+t type · ctrl+e match · ctrl+o others · alt+←/→ history · ↑/↓ scroll · esc quit"))
	return b.String()
}

func (m *browseModel) resultsView(state *search.State) string {
	res := state.Results
	start := m.offset
	if start >= res.Len() {
		start = 0
	}
	end := start + m.visibleRows()
	if end > res.Len() {
		end = res.Len()
	}
	page := &search.Results{Records: res.Records[start:end], Freshness: res.Freshness}

	var b strings.Builder
	t := resultsTable(state.ResultsFor.Type, page, false)
	if m.width > 0 {
		t = t.Width(m.width)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	status := fmt.Sprintf("%d-%d of %d", start+1, end, res.Len())
	if res.Freshness != nil {
		status += " · refreshed " + formatFreshness(*res.Freshness)
	}
	if state.Pending != 0 || state.Stale() {
		status += " · updating"
	}
	b.WriteString(StyleDim.Render(status))
	return b.String()
}

// visibleRows estimates how many records fit below the header lines.
func (m *browseModel) visibleRows() int {
	if m.height == 0 {
		return 20
	}
	n := (m.height - 14) / 2
	if n < 3 {
		n = 3
	}
	return n
}

func nextType(t search.SearchType) search.SearchType {
	for i, v := range search.SearchTypes {
		if v == t {
			return search.SearchTypes[(i+1)%len(search.SearchTypes)]
		}
	}
	return search.Packages
}

var modeCycle = []search.MatchMode{search.Exact, search.Prefix, search.Infix}

func nextMode(mode search.MatchMode) search.MatchMode {
	for i, v := range modeCycle {
		if v == mode {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return search.DefaultMatchMode
}
