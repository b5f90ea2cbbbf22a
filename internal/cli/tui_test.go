package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmeta/pkg/lookup"
	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// fakeSearcher answers every search with one record named after the query.
func fakeSearcher(calls *[]search.Params) lookup.Searcher {
	return lookup.SearcherFunc(func(ctx context.Context, p search.Params) (*search.Results, error) {
		*calls = append(*calls, p)
		if p.Query == "fail" {
			return nil, errors.New("boom")
		}
		return &search.Results{Records: []search.Record{{Module: p.Query, Author: p.Author}}}, nil
	})
}

func newTestBrowser(t *testing.T, initial string, s lookup.Searcher) *browseModel {
	t.Helper()
	return newBrowseModel(context.Background(), browseConfig{
		searcher:   s,
		initial:    initial,
		searchType: search.Packages,
		mode:       search.Prefix,
		policy:     navsync.LatestWins,
		logger:     log.New(io.Discard),
	})
}

// collect runs cmd and returns the lookup responses it produces. Commands
// that do not finish promptly, such as cursor blink ticks, are skipped.
func collect(cmd tea.Cmd) []lookup.Resolved {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case lookup.Resolved:
		return []lookup.Resolved{msg}
	case tea.BatchMsg:
		var out []lookup.Resolved
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	}
	return nil
}

// feed sends msg to the model and delivers every resulting lookup back.
func feed(m *browseModel, msg tea.Msg) {
	_, cmd := m.Update(msg)
	for _, r := range collect(cmd) {
		m.Update(r)
	}
}

func typeText(m *browseModel, text string) {
	for _, r := range text {
		feed(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBrowseTypingSearchesAndWritesLocation(t *testing.T) {
	var calls []search.Params
	m := newTestBrowser(t, "", fakeSearcher(&calls))

	typeText(m, "Moo")

	if got := m.hist.Current(); got != "/packages?author=&module=Moo&match_mode=prefix" {
		t.Errorf("location = %q", got)
	}
	// "M" alone is too short; "Mo" and "Moo" dispatch.
	if len(calls) != 2 {
		t.Fatalf("searches = %d, want 2", len(calls))
	}
	state := m.ctrl.State()
	if state.Results.Len() != 1 || state.Results.Records[0].Module != "Moo" {
		t.Errorf("results = %+v", state.Results)
	}
	if state.Pending != 0 {
		t.Errorf("Pending = %d after resolution", state.Pending)
	}
	if !strings.Contains(m.View(), "Moo") {
		t.Error("view should show the result")
	}
}

func TestBrowseHistoryNavigation(t *testing.T) {
	var calls []search.Params
	m := newTestBrowser(t, "", fakeSearcher(&calls))
	typeText(m, "Moo")
	writes := m.ctrl.Writes()

	feed(m, tea.KeyMsg{Type: tea.KeyLeft, Alt: true})

	if got := m.inputs[fieldModule].Value(); got != "Mo" {
		t.Errorf("input after back = %q, want Mo", got)
	}
	if got := m.ctrl.State().Params.Query; got != "Mo" {
		t.Errorf("state query after back = %q", got)
	}
	if got := m.ctrl.State().Results.Records[0].Module; got != "Mo" {
		t.Errorf("results after back are for %q", got)
	}
	if m.ctrl.Writes() != writes {
		t.Error("back navigation must not write the location")
	}

	feed(m, tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	if got := m.inputs[fieldModule].Value(); got != "Moo" {
		t.Errorf("input after forward = %q, want Moo", got)
	}
}

func TestBrowseMigratesLegacyLocation(t *testing.T) {
	var calls []search.Params
	m := newTestBrowser(t, "/perms#ETHER+~Moose", fakeSearcher(&calls))

	want := "/perms?author=ETHER&module=Moose&match_mode=prefix&other_authors=1"
	if got := m.hist.Current(); got != want {
		t.Errorf("location = %q, want %q", got, want)
	}
	if m.redirected != want {
		t.Errorf("redirected = %q", m.redirected)
	}
	if m.hist.Loads() != 2 {
		t.Errorf("Loads = %d, want a full navigation", m.hist.Loads())
	}
	if m.inputs[fieldModule].Value() != "Moose" || m.inputs[fieldAuthor].Value() != "ETHER" {
		t.Errorf("inputs = %q, %q", m.inputs[fieldModule].Value(), m.inputs[fieldAuthor].Value())
	}

	for _, r := range collect(m.Init()) {
		m.Update(r)
	}
	if len(calls) != 1 || !calls[0].OtherAuthors {
		t.Fatalf("seed searches = %+v", calls)
	}
	if !m.ctrl.State().HasResults() {
		t.Error("seeded search should have results")
	}
}

func TestBrowseSwitchTypeAndMode(t *testing.T) {
	var calls []search.Params
	m := newTestBrowser(t, "", fakeSearcher(&calls))
	typeText(m, "Moose")

	feed(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.ctrl.State().Params.Type; got != search.Perms {
		t.Fatalf("type = %v, want perms", got)
	}
	if !strings.HasPrefix(m.hist.Current(), "/perms?") {
		t.Errorf("location = %q", m.hist.Current())
	}

	feed(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if got := m.ctrl.State().Params.Mode; got != search.Infix {
		t.Errorf("mode = %v, want infix", got)
	}

	feed(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldAuthor {
		t.Errorf("focus = %v, want author", m.focus)
	}
	typeText(m, "ET")
	if got := m.ctrl.State().Params.Author; got != "ET" {
		t.Errorf("author = %q", got)
	}
}

func TestBrowseLookupError(t *testing.T) {
	var calls []search.Params
	m := newTestBrowser(t, "", fakeSearcher(&calls))
	typeText(m, "fail")

	if m.lastErr == nil {
		t.Fatal("lastErr should be set")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("view should show the error")
	}

	// The next edit clears it.
	feed(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.lastErr != nil {
		t.Errorf("lastErr = %v after edit", m.lastErr)
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestBrowser(t, "", lookup.SearcherFunc(func(context.Context, search.Params) (*search.Results, error) {
		return &search.Results{}, nil
	}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
}

func TestNextTypeAndMode(t *testing.T) {
	if nextType(search.Authors) != search.Packages {
		t.Error("type cycle should wrap")
	}
	if nextMode(search.Infix) != search.Exact {
		t.Error("mode cycle should wrap")
	}
	if nextMode("") != search.Prefix {
		t.Error("unknown mode should reset to prefix")
	}
}
