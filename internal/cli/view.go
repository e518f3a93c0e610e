package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/repoexplorer/pkg/repo"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

// maxDescriptionWidth truncates descriptions in the repository table.
const maxDescriptionWidth = 60

// renderView formats a finished search for the terminal.
func renderView(v search.View, now time.Time) string {
	var b strings.Builder

	if v.Error != "" {
		b.WriteString(StyleError.Render(iconError+" "+v.Error) + "\n")
		return b.String()
	}

	if v.Searched {
		b.WriteString(renderSummary(v) + "\n")
	}
	if p := v.Placeholder(); p != "" {
		b.WriteString(StyleDim.Render(p) + "\n")
		return b.String()
	}

	if facets := renderFacets(v.Repositories, v.Filter.LanguageSelector); facets != "" {
		b.WriteString(facets + "\n")
	}
	b.WriteString(renderTable(v.Visible, now, -1) + "\n")
	return b.String()
}

func renderSummary(v search.View) string {
	title := StyleTitle.Render(v.Username)
	count := fmt.Sprintf("%d repositories", len(v.Repositories))
	if len(v.Visible) != len(v.Repositories) {
		count = fmt.Sprintf("%d of %d repositories", len(v.Visible), len(v.Repositories))
	}
	return title + StyleDim.Render(" · "+count)
}

// renderFacets lists the languages with their counts, highlighting the
// selected one.
func renderFacets(repos []repo.Repository, selected string) string {
	facets := repo.LanguageFacets(repos)
	if len(facets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(facets))
	for _, f := range facets {
		label := fmt.Sprintf("%s %d", f.Name, f.Count)
		style := StyleDim
		if f.Name == selected {
			style = StyleHighlight.Bold(true)
		}
		parts = append(parts, languageDot(f.Name)+" "+style.Render(label))
	}
	return strings.Join(parts, "  ")
}

func languageDot(name string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(repo.LanguageColor(name))).Render(iconDot)
}

// renderTable draws repos as a table. The row at cursor (if >= 0) is
// highlighted.
func renderTable(repos []repo.Repository, now time.Time, cursor int) string {
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		lang := "—"
		if name := r.LanguageName(); name != "" {
			lang = languageDot(name) + " " + name
		}
		forks := ""
		if r.ForkCount > 0 {
			forks = iconFork + " " + repo.FormatCount(r.ForkCount)
		}
		rows = append(rows, []string{
			r.Name,
			lang,
			styleStars.Render(iconStar) + " " + repo.FormatCount(r.StargazerCount),
			forks,
			repo.FormatUpdated(r.UpdatedAt, now),
			truncate(r.DescriptionText(repo.NoDescription), maxDescriptionWidth),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Repository", "Language", "Stars", "Forks", "Updated", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleHeader
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 0:
				return StyleValue
			case col == 5:
				return StyleDim
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		}).
		Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// writeViewJSON writes v as indented JSON.
func writeViewJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
