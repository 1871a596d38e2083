package controller

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// resultDelegate renders one processed file per line.
type resultDelegate struct {
	offset int
}

func (d resultDelegate) Height() int  { return 1 }
func (d resultDelegate) Spacing() int { return 0 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d resultDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	result, ok := item.(fileItem)
	if !ok {
		return
	}

	isSelected := index == lm.Index()
	fileWidth := lm.Width() - 32 // outcome and function count columns

	outcomeStyle := lipgloss.NewStyle().
		Foreground(outcomeColor(result.outcome)).
		Bold(true).
		Width(22).
		Align(lipgloss.Left)
	countStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Width(6).
		Align(lipgloss.Right)
	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	displayFile := truncateToWidth(result.path, fileWidth)

	if isSelected {
		selected := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		outcomeStyle = selected.Width(22).Align(lipgloss.Left)
		countStyle = selected.Width(6).Align(lipgloss.Right)
		fileStyle = selected
		displayFile = animateScroll(result.path, fileWidth, d.offset)
	}

	line := fmt.Sprintf("%s  %s  %s",
		outcomeStyle.Render(string(result.outcome)),
		countStyle.Render(fmt.Sprintf("%d", result.count)),
		fileStyle.Render(displayFile),
	)
	_, _ = fmt.Fprint(w, line)
}

func outcomeColor(outcome m.Outcome) lipgloss.Color {
	switch {
	case outcome == m.OutcomeSuccess:
		return lipgloss.Color("2") // Green
	case outcome.Failed() || outcome == m.OutcomeNotFound:
		return lipgloss.Color("1") // Red
	case outcome == m.OutcomeMissingPrecondition || outcome == m.OutcomeNoFunction:
		return lipgloss.Color("3") // Yellow
	default:
		return lipgloss.Color("8") // Gray
	}
}

// runModel handles the TUI display while a batch is running and shows the
// results once the report arrives.
type runModel struct {
	width            int
	height           int
	progressBar      progress.Model
	info             RunInfo
	completedCount   int
	progressPercent  float64
	workerFiles      map[int]string
	rendered         bool
	finished         bool
	report           *m.BatchReport
	results          []fileItem
	resultsList      list.Model
	delegate         resultDelegate
	animOffset       int
	lastSelected     int
	showDiff         bool
	selectedDiff     string
	selectedDiffPath string
}

func newRunModel() runModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	delegate := resultDelegate{}
	resultsList := list.New([]list.Item{}, delegate, 80, 20)
	resultsList.SetShowPagination(false)
	resultsList.SetShowFilter(true)
	resultsList.SetShowHelp(false)
	resultsList.SetShowTitle(false)
	resultsList.SetShowStatusBar(false)
	resultsList.FilterInput.Placeholder = "Filter results…"

	return runModel{
		width:        80,
		height:       24,
		progressBar:  prog,
		resultsList:  resultsList,
		delegate:     delegate,
		workerFiles:  make(map[int]string),
		lastSelected: -1,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)

	case tea.KeyMsg:
		m, cmd = m.handleKeyMsg(msg)

	case tea.MouseMsg:
		m, cmd = m.handleMouseMsg(msg)

	case tickMsg:
		return m.handleTickMsg(msg)

	case runInfoMsg:
		m.info = msg.info
		m.completedCount = 0
		m.progressPercent = 0
		m.rendered = true

	case fileStartedMsg:
		m.workerFiles[msg.worker] = msg.path
		m.rendered = true

	case fileDoneMsg:
		m = m.handleFileDone(msg)

	case reportMsg:
		m = m.handleReport(msg)
	}

	return m, cmd
}

func (m runModel) View() string {
	if !m.rendered {
		return "Preparing wrapper run…\n"
	}

	if m.finished {
		return m.viewResults()
	}

	return m.viewProgress()
}

func (m runModel) viewProgress() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("🛡 guardwrap " + m.info.Kind + dryRunSuffix(m.info.DryRun))

	summary := summaryStyle.Render(fmt.Sprintf(
		"Progress: %s / %s  •  Workers: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.completedCount)),
		accentStyle.Render(fmt.Sprintf("%d", m.info.Files)),
		accentStyle.Render(fmt.Sprintf("%d", m.info.Parallel)),
	))

	progressView := lipgloss.NewStyle().
		Padding(0, 2).
		Render(m.progressBar.ViewAs(m.progressPercent))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width).
		Render("Press q to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		progressView,
		m.renderWorkerBox(accentColor),
		footer,
	)
}

func (m runModel) renderWorkerBox(accentColor lipgloss.Color) string {
	contentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Margin(1, 1, 1, 0).
		Width(m.width - 4)

	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	workers := m.info.Parallel
	if workers < 1 {
		workers = 1
	}

	availableWidth := m.width - 4 - 2 - 2
	prefixWidth := 0
	labelFormat := ""

	if workers > 1 {
		digits := len(fmt.Sprintf("%d", workers-1))
		prefixWidth = 7 + digits + 2 // "Worker " + digits + ": "
		labelFormat = fmt.Sprintf("Worker %%%dd: %%s", digits)
	}

	lines := make([]string, 0, workers)

	for i := 0; i < workers; i++ {
		content := "idle"
		if file := m.workerFiles[i]; file != "" {
			remaining := availableWidth - prefixWidth
			if remaining < 10 {
				remaining = 10
			}

			content = fileStyle.Render(truncateToWidth(file, remaining))
		}

		if workers > 1 {
			content = fmt.Sprintf(labelFormat, i, content)
		}

		lines = append(lines, content)
	}

	return contentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m runModel) viewResults() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("🛡 guardwrap results" + dryRunSuffix(m.info.DryRun))

	summary := summaryStyle.Render(fmt.Sprintf(
		"Total: %s  •  Wrapped: %s  •  Skipped: %s  •  Failed: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.report.Attempted)),
		accentStyle.Render(fmt.Sprintf("%d", m.report.Succeeded())),
		accentStyle.Render(fmt.Sprintf("%d", m.report.Attempted-m.report.Succeeded()-m.report.Failures())),
		accentStyle.Render(fmt.Sprintf("%d", m.report.Failures())),
	))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/k up • ↓/j down • g/G top/bottom • / filter • enter/space/click diff • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		m.renderResultsBox(accentColor),
		footer,
	)
}

func (m runModel) renderResultsBox(accentColor lipgloss.Color) string {
	listWidth := m.width - 4

	listHeight := m.height - 9 - m.diffBoxHeight()
	if listHeight < 5 {
		listHeight = 5
	}

	m.resultsList.SetHeight(listHeight)
	m.resultsList.SetWidth(listWidth)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth)

	headers := headerStyle.Render(fmt.Sprintf("%-22s  %6s  %s", "Outcome", "Wraps", "File"))

	resultsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, headers, m.resultsList.View()))

	diffBox := m.renderDiffBox(accentColor, listWidth)
	if diffBox == "" {
		return resultsBox
	}

	return lipgloss.JoinVertical(lipgloss.Left, resultsBox, diffBox)
}

func (m runModel) handleFileDone(msg fileDoneMsg) runModel {
	m.completedCount++
	m.rendered = true

	path := string(msg.result.Path)
	for worker, file := range m.workerFiles {
		if file == path {
			delete(m.workerFiles, worker)
		}
	}

	m.results = append(m.results, newFileItem(msg.result))

	if m.info.Files > 0 {
		m.progressPercent = float64(m.completedCount) / float64(m.info.Files)
	}

	return m
}

// handleReport replaces the streamed results with the report, which is in
// discovery order.
func (m runModel) handleReport(msg reportMsg) runModel {
	m.report = msg.report
	m.finished = true
	m.rendered = true
	m.progressPercent = 1
	m.info.DryRun = msg.report.DryRun
	m.workerFiles = make(map[int]string)

	m.results = make([]fileItem, 0, len(msg.report.Files))
	items := make([]list.Item, 0, len(msg.report.Files))

	for _, f := range msg.report.Files {
		item := newFileItem(f)
		m.results = append(m.results, item)
		items = append(items, item)
	}

	m.resultsList.SetItems(items)

	return m
}

func (m runModel) handleKeyMsg(msg tea.KeyMsg) (runModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if !m.finished {
		return m, nil
	}

	if msg.String() == "enter" || msg.String() == " " {
		m.toggleSelectedDiff()
		return m, nil
	}

	var cmd tea.Cmd

	m.resultsList, cmd = m.resultsList.Update(msg)
	m.resetSelection()

	return m, cmd
}

func (m runModel) handleMouseMsg(msg tea.MouseMsg) (runModel, tea.Cmd) {
	if !m.finished {
		return m, nil
	}

	var cmd tea.Cmd

	m.resultsList, cmd = m.resultsList.Update(msg)
	m.resetSelection()

	if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease && m.resultsList.FilterState() != list.Filtering {
		m.toggleSelectedDiff()
	}

	return m, cmd
}

// resetSelection restarts the scroll animation and hides the diff when the
// selected row changed.
func (m *runModel) resetSelection() {
	if m.resultsList.Index() == m.lastSelected {
		return
	}

	m.lastSelected = m.resultsList.Index()
	m.animOffset = 0
	m.delegate.offset = 0
	m.resultsList.SetDelegate(m.delegate)
	m.showDiff = false
	m.selectedDiff = ""
	m.selectedDiffPath = ""
}

func (m *runModel) toggleSelectedDiff() {
	result, ok := m.resultsList.SelectedItem().(fileItem)
	if !ok {
		return
	}

	diff := strings.TrimSpace(result.diff)
	if diff == "" {
		diff = strings.TrimSpace(result.detail)
	}

	if diff == "" || (m.showDiff && m.selectedDiff == diff) {
		m.showDiff = false
		m.selectedDiff = ""
		m.selectedDiffPath = ""

		return
	}

	m.showDiff = true
	m.selectedDiff = diff
	m.selectedDiffPath = result.path
}

func (m runModel) diffMaxLines() int {
	return min(max(m.height/3, 6), 20)
}

func (m runModel) diffBoxHeight() int {
	if !m.showDiff || m.selectedDiff == "" {
		return 0
	}

	return min(len(strings.Split(m.selectedDiff, "\n")), m.diffMaxLines()) + 3
}

func (m runModel) renderDiffBox(accentColor lipgloss.Color, width int) string {
	if !m.showDiff || m.selectedDiff == "" {
		return ""
	}

	lines := strings.Split(m.selectedDiff, "\n")
	maxLines := m.diffMaxLines()
	truncated := false

	if len(lines) > maxLines {
		lines = lines[:maxLines-1]
		truncated = true
	}

	contentWidth := max(width-4, 10)

	bodyLines := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		bodyLines = append(bodyLines, renderDiffLine(line, contentWidth))
	}

	if truncated {
		bodyLines = append(bodyLines, "…")
	}

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Render(truncateToWidth("Diff • "+m.selectedDiffPath, contentWidth))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinVertical(lipgloss.Left, bodyLines...)))
}

func renderDiffLine(line string, width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	switch {
	case strings.HasPrefix(line, "+++"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	case strings.HasPrefix(line, "---"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	case strings.HasPrefix(line, "+"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case strings.HasPrefix(line, "-"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case strings.TrimSpace(line) == "":
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}

	return style.Render(truncateToWidth(line, width))
}

func (m runModel) handleWindowSize(msg tea.WindowSizeMsg) runModel {
	m.width = msg.Width
	m.height = msg.Height

	m.progressBar.Width = max(m.width-8, 20)

	return m
}

func (m runModel) handleTickMsg(_ tickMsg) (runModel, tea.Cmd) {
	if m.finished && m.resultsList.FilterState() != list.Filtering {
		m.animOffset++
		m.delegate.offset = m.animOffset
		m.resultsList.SetDelegate(m.delegate)
	}

	return m, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func dryRunSuffix(dryRun bool) string {
	if dryRun {
		return " (dry run)"
	}

	return ""
}
