package cli

import (
	"net/url"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// resultsTable lays out records as rows of the search type's columns.
// With links set, linked cells show their target on a second line.
func resultsTable(t search.SearchType, res *search.Results, links bool) *table.Table {
	rows := make([][]string, 0, res.Len())
	if res != nil {
		for _, r := range res.Records {
			rows = append(rows, cellTexts(search.Row(t, r), links))
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(search.Columns(t)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})
}

func cellTexts(cells []search.Cell, links bool) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		text := c.Text
		if c.Title != "" {
			text += "\n" + StyleDim.Render(c.Title)
		}
		if links && c.Link != "" && c.Link != c.Text {
			text += "\n" + StyleLink.Render(c.Link)
		}
		out[i] = text
	}
	return out
}

// looksLikeLocation reports whether arg is a page location rather than
// search text. Module names and author ids never contain these characters.
func looksLikeLocation(arg string) bool {
	return strings.HasPrefix(arg, "/") || strings.ContainsAny(arg, "#?")
}

// pageType returns the search type named by the last path segment of raw,
// or fallback when the path names none.
func pageType(raw string, fallback search.SearchType) search.SearchType {
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	if t, ok := search.ParseSearchType(path.Base(u.Path)); ok {
		return t
	}
	return fallback
}
