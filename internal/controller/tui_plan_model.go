package controller

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Simple delegate for plan list items.
type planDelegate struct {
	offset int
}

func (d planDelegate) Height() int  { return 1 }
func (d planDelegate) Spacing() int { return 0 }
func (d planDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d planDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}

	isSelected := index == lm.Index()

	var pathStyle, countStyle lipgloss.Style

	var displayPath string

	width := lm.Width() - 8 // count width (6) + spacing (2)

	if isSelected {
		pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true).
			Width(6).
			Align(lipgloss.Right)

		displayPath = animateScroll(file.label(), width, d.offset)
	} else {
		pathStyle = lipgloss.NewStyle().Foreground(outcomeColor(file.outcome))
		countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Width(6).
			Align(lipgloss.Right)

		displayPath = truncateToWidth(file.label(), width)
	}

	line := fmt.Sprintf("%s  %s",
		countStyle.Render(fmt.Sprintf("%d", file.count)),
		pathStyle.Render(displayPath),
	)
	_, _ = fmt.Fprint(w, line)
}

// label is the path followed by the planned functions, or the outcome when
// nothing would be wrapped.
func (f fileItem) label() string {
	if f.functions != "" {
		return f.path + "  " + f.functions
	}

	return f.path + "  (" + string(f.outcome) + ")"
}

func animateScroll(text string, width int, offset int) string {
	if width <= 0 {
		return ""
	}

	textWidth := lipgloss.Width(text)
	if textWidth <= width {
		return text
	}

	// Gap between repeats
	gap := "   "

	// Initial pause before scrolling starts (in ticks)
	pause := 5

	if offset < pause {
		return truncateToWidth(text, width)
	}

	effectiveStep := offset - pause

	runes := []rune(text + gap)
	n := len(runes)

	start := effectiveStep % n

	res := make([]rune, 0, width)
	for i := 0; i < width; i++ {
		idx := (start + i) % n
		res = append(res, runes[idx])
	}

	return string(res)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	if width <= 1 {
		return ellipsis
	}

	maxWidth := width - lipgloss.Width(ellipsis)
	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}

// planModel lists what a run would wrap without touching any file.
type planModel struct {
	width        int
	height       int
	fileList     list.Model
	delegate     planDelegate
	kind         string
	totalFiles   int
	wrappable    int
	functions    int
	rendered     bool
	animOffset   int
	lastSelected int
}

func newPlanModel() planModel {
	delegate := planDelegate{}
	fileList := list.New([]list.Item{}, delegate, 80, 20)
	fileList.SetShowPagination(false)
	fileList.SetShowFilter(true)
	fileList.SetShowHelp(false)
	fileList.SetShowTitle(false)
	fileList.SetShowStatusBar(false)
	fileList.FilterInput.Placeholder = "Filter by path…"

	return planModel{
		width:        80,
		height:       24,
		fileList:     fileList,
		delegate:     delegate,
		lastSelected: -1,
	}
}

func (m planModel) Init() tea.Cmd {
	return tea.Tick(time.Second/2, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m planModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetWidth(m.width)

	case tickMsg:
		if m.fileList.FilterState() != list.Filtering && m.rendered {
			m.animOffset++
			m.delegate.offset = m.animOffset
			m.fileList.SetDelegate(m.delegate)

			return m, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
				return tickMsg(t)
			})
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			m.fileList, cmd = m.fileList.Update(msg)

			// Detect selection change to reset animation
			if m.fileList.Index() != m.lastSelected {
				m.lastSelected = m.fileList.Index()
				m.animOffset = 0
				m.delegate.offset = 0
				m.fileList.SetDelegate(m.delegate)
			}

			return m, cmd
		}

	case planMsg:
		m = m.handlePlanMsg(msg)
		cmd = tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})
	}

	return m, cmd
}

func (m planModel) handlePlanMsg(msg planMsg) planModel {
	report := msg.report

	m.kind = report.Kind
	m.totalFiles = report.Attempted
	m.wrappable = report.Succeeded()
	m.functions = 0

	items := make([]list.Item, 0, len(report.Files))
	for _, f := range report.Files {
		items = append(items, newFileItem(f))
		m.functions += len(f.Functions)
	}

	m.fileList.SetItems(items)
	m.rendered = true

	if len(items) > 0 && m.lastSelected == -1 {
		m.lastSelected = 0
	}

	return m
}

func (m planModel) View() string {
	if !m.rendered {
		return "Loading wrap plan…\n"
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan

	title := titleStyle.Render("🛡 guardwrap plan: " + m.kind)

	summary := summaryStyle.Render(fmt.Sprintf(
		"Files: %s   Wrappable: %s   Functions: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.totalFiles)),
		accentStyle.Render(fmt.Sprintf("%d", m.wrappable)),
		accentStyle.Render(fmt.Sprintf("%d", m.functions)),
	))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/k up • ↓/j down • g/G top/bottom • / filter • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		m.renderTable(),
		footer,
	)
}

func (m planModel) renderTable() string {
	// Title (2), summary (2), footer (1), border (2), headers (2)
	listHeight := m.height - 9
	if listHeight < 5 {
		listHeight = 5
	}

	// Margin (2), border (2), padding (2)
	listWidth := m.width - 6

	m.fileList.SetHeight(listHeight)
	m.fileList.SetWidth(listWidth)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth)

	headers := headerStyle.Render(fmt.Sprintf("%6s  %s", "Wraps", "File Path"))

	tableContainer := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Margin(0, 1).
		Padding(0, 1)

	return tableContainer.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headers,
			m.fileList.View(),
		),
	)
}
