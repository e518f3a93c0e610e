package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repoexplorer/pkg/history"
	"github.com/matzehuels/repoexplorer/pkg/repo"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [username]",
		Short: "Search and filter repositories interactively",
		Long: `Open an interactive view. Type a username and press enter to search.

  /      filter by name
  tab    cycle the language filter
  ↑/↓    move through the list
  esc    leave the name filter, or quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				loggerFromContext(ctx).Warn("history unavailable", "err", err)
				store = history.Nop{}
			}
			defer store.Close()

			ctrl := c.newController(ctx)
			defer ctrl.Cancel()

			m := newBrowseModel(ctx, ctrl, func(v search.View) { c.recordSearch(ctx, store, v) })
			if len(args) == 1 {
				m.input = args[0]
			}

			p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
			unsubscribe := ctrl.OnChange(func(search.View) {
				// Send blocks until the event loop reads it, and listeners
				// may run on the event loop itself.
				go p.Send(viewChangedMsg{})
			})
			defer unsubscribe()

			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// browseModel - Interactive search
// =============================================================================

type inputMode int

const (
	modeUsername inputMode = iota
	modeFilter
)

// viewChangedMsg signals that the controller state changed.
type viewChangedMsg struct{}

// searchDoneMsg is sent when a search started by the model returns.
type searchDoneMsg struct{}

// browseModel is the bubbletea model for interactive search.
type browseModel struct {
	ctx    context.Context
	ctrl   *search.Controller
	record func(search.View)
	now    func() time.Time

	input   string
	mode    inputMode
	view    search.View
	langIdx int // 0 selects all languages

	Cursor int
	Height int
	Offset int
}

func newBrowseModel(ctx context.Context, ctrl *search.Controller, record func(search.View)) browseModel {
	return browseModel{
		ctx:    ctx,
		ctrl:   ctrl,
		record: record,
		now:    time.Now,
		view:   ctrl.View(),
		Height: 15,
	}
}

func (m browseModel) Init() tea.Cmd {
	if strings.TrimSpace(m.input) != "" {
		return m.searchCmd(m.input)
	}
	return nil
}

// searchCmd runs a search off the event loop.
func (m browseModel) searchCmd(username string) tea.Cmd {
	ctx, ctrl, record := m.ctx, m.ctrl, m.record
	return func() tea.Msg {
		v := ctrl.Search(ctx, username)
		if record != nil && v.Phase == search.PhaseSucceeded && v.Username == strings.TrimSpace(username) {
			record(v)
		}
		return searchDoneMsg{}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewChangedMsg, searchDoneMsg:
		m = m.refresh(m.ctrl.View())
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Cancel()
		return m, tea.Quit
	case "esc":
		if m.mode == modeFilter {
			m.mode = modeUsername
			return m, nil
		}
		m.ctrl.Cancel()
		return m, tea.Quit
	case "enter":
		if m.mode == modeFilter {
			m.mode = modeUsername
			return m, nil
		}
		m.langIdx = 0
		m.Cursor, m.Offset = 0, 0
		return m, m.searchCmd(m.input)
	case "tab":
		return m.cycleLanguage(), nil
	case "up":
		m.moveCursor(-1)
		return m, nil
	case "down":
		m.moveCursor(1)
		return m, nil
	case "backspace":
		if m.mode == modeFilter {
			f := []rune(m.view.Filter.NameSubstring)
			if len(f) > 0 {
				m = m.refresh(m.ctrl.SetNameFilter(string(f[:len(f)-1])))
			}
			return m, nil
		}
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	}

	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		return m, nil
	}
	text := string(msg.Runes)
	if msg.Type == tea.KeySpace {
		text = " "
	}
	if m.mode == modeUsername && text == "/" {
		m.mode = modeFilter
		return m, nil
	}
	if m.mode == modeFilter {
		m = m.refresh(m.ctrl.SetNameFilter(m.view.Filter.NameSubstring + text))
		return m, nil
	}
	m.input += text
	return m, nil
}

// cycleLanguage moves the language filter to the next facet, wrapping
// around to all languages.
func (m browseModel) cycleLanguage() browseModel {
	langs := m.view.Languages
	m.langIdx = (m.langIdx + 1) % (len(langs) + 1)
	sel := repo.AllLanguages
	if m.langIdx > 0 {
		sel = langs[m.langIdx-1]
	}
	return m.refresh(m.ctrl.SetLanguageFilter(sel))
}

func (m *browseModel) moveCursor(delta int) {
	n := len(m.view.Visible)
	if n == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// refresh adopts v and keeps the cursor inside the visible list.
func (m browseModel) refresh(v search.View) browseModel {
	m.view = v
	if v.Filter.LanguageSelector == repo.AllLanguages {
		m.langIdx = 0
	}
	if m.Cursor >= len(v.Visible) {
		m.Cursor = max(len(v.Visible)-1, 0)
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
	return m
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("GitHub Repository Explorer"))
	b.WriteString("\n\n")

	b.WriteString(m.inputLine("User", m.input, m.mode == modeUsername))
	b.WriteString("\n")
	b.WriteString(m.inputLine("Filter", m.view.Filter.NameSubstring, m.mode == modeFilter))
	b.WriteString("\n")
	b.WriteString(m.languageLine())
	b.WriteString("\n\n")

	switch {
	case m.view.Loading:
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render(fmt.Sprintf("Fetching repositories for %s...", m.view.Username)))
	case m.view.Error != "":
		b.WriteString(StyleError.Render(iconError + " " + m.view.Error))
	case m.view.Placeholder() != "":
		b.WriteString(listDimStyle.Render(m.view.Placeholder()))
	case len(m.view.Visible) == 0:
		b.WriteString(listDimStyle.Render(search.NoMatchesMessage))
	default:
		end := min(m.Offset+m.Height, len(m.view.Visible))
		page := m.view.Visible[m.Offset:end]
		b.WriteString(renderTable(page, m.now(), m.Cursor-m.Offset))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.view.Visible))))
		if r := m.view.Visible[m.Cursor]; r.URL != "" {
			b.WriteString("  " + StyleLink.Render(r.URL))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("⏎ search  / filter  tab language  ↑/↓ navigate  esc quit"))
	return b.String()
}

func (m browseModel) inputLine(label, value string, active bool) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(8)
	if active {
		return keyStyle.Render(label) + listSelectedStyle.Render(value+"▌")
	}
	return keyStyle.Render(label) + listNormalStyle.Render(value)
}

func (m browseModel) languageLine() string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(8)
	parts := []string{m.languageLabel("All", repo.AllLanguages)}
	for _, lang := range m.view.Languages {
		parts = append(parts, m.languageLabel(languageDot(lang)+" "+lang, lang))
	}
	return keyStyle.Render("Lang") + strings.Join(parts, "  ")
}

func (m browseModel) languageLabel(label, selector string) string {
	if m.view.Filter.LanguageSelector == selector {
		return listSelectedStyle.Render("[" + label + "]")
	}
	return listDimStyle.Render(label)
}
