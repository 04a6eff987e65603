package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/internal/observability"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

// Dashboard panel indices.
const (
	panelActive = iota
	panelToday
	panelAlerts
	panelCount
)

// dashboardRefresh is how often the dashboard reloads its data.
const dashboardRefresh = time.Second

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	active   []models.TimerSession
	special  core.SpecialState
	today    *models.DailySummary
	alerts   []observability.Alert
	loadedAt time.Time

	// State.
	loading bool
	err     error
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	active   []models.TimerSession
	special  core.SpecialState
	today    *models.DailySummary
	alerts   []observability.Alert
	loadedAt time.Time
	err      error
}

// tickMsg triggers a periodic reload.
type tickMsg time.Time

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelActive,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadData, tickEvery())
}

func tickEvery() tea.Cmd {
	return tea.Tick(dashboardRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(loadData, tickEvery())

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.active = msg.active
		m.special = msg.special
		m.today = msg.today
		m.alerts = msg.alerts
		m.loadedAt = msg.loadedAt
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Context Timer ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading && m.loadedAt.IsZero() {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	activePanel := m.renderActivePanel()
	todayPanel := m.renderTodayPanel()
	alertsPanel := m.renderAlertsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		activePanel = m.applyPanelStyle(panelActive, activePanel, colWidth-4)
		todayPanel = m.applyPanelStyle(panelToday, todayPanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, activePanel, todayPanel, alertsPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		activePanel = m.applyPanelStyle(panelActive, activePanel, panelWidth)
		todayPanel = m.applyPanelStyle(panelToday, todayPanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, activePanel, todayPanel, alertsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderActivePanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Running"))
	b.WriteString("\n")

	for _, row := range []struct {
		kind    models.SpecialKind
		session *models.TimerSession
	}{
		{models.SpecialWorkDay, m.special.WorkDay},
		{models.SpecialLunch, m.special.Lunch},
		{models.SpecialBreak, m.special.Break},
	} {
		if row.session == nil {
			b.WriteString(stoppedStyle.Render(fmt.Sprintf("  %-12s --:--:--", row.kind.Name())))
		} else {
			b.WriteString(runningStyle.Render(fmt.Sprintf("  %-12s %s", row.kind.Name(), core.ElapsedDisplay(*row.session, m.loadedAt))))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	regular := 0
	for _, s := range m.active {
		if _, special := models.SpecialKindForName(s.TaskName); special {
			continue
		}
		regular++
		b.WriteString(fmt.Sprintf("  %-12s %s\n", truncate(sessionName(s), 12), core.ElapsedDisplay(s, m.loadedAt)))
	}
	if regular == 0 {
		b.WriteString("  No tasks running.")
	}

	return b.String()
}

func (m dashboardModel) renderTodayPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Today"))
	b.WriteString("\n")

	if m.today == nil {
		b.WriteString("  No report available.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Tracked", core.FormatDuration(m.today.TotalSeconds)))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Switches", m.today.TotalSwitches))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Tasks", len(m.today.Tasks)))

	if len(m.today.Tasks) > 0 {
		b.WriteString("\n")
		for _, t := range m.today.Tasks {
			b.WriteString(fmt.Sprintf("  %-14s %s\n", truncate(t.Name, 14), core.FormatDuration(t.TotalSeconds)))
		}
	}

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(string(a.Severity)).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.Message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func loadData() tea.Msg {
	result := dataLoadedMsg{loadedAt: now()}

	if Tracker != nil {
		active, err := Tracker.ListActive()
		if err != nil {
			result.err = fmt.Errorf("loading running sessions: %w", err)
			return result
		}
		result.active = active

		special, err := Tracker.SpecialState()
		if err != nil {
			result.err = fmt.Errorf("loading special timers: %w", err)
			return result
		}
		result.special = special
	}

	if Reports != nil {
		today, err := Reports.DailySummary(result.loadedAt)
		if err != nil {
			result.err = fmt.Errorf("loading today's report: %w", err)
			return result
		}
		result.today = today
	}

	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		sort.SliceStable(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})
		result.alerts = alerts
	}

	return result
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live terminal view of running timers, today, and alerts",
	Long: `Launch an interactive terminal dashboard showing running timers with
their elapsed time, today's totals, and active alerts. The view refreshes
every second.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil || Reports == nil {
			return errTimerNotInitialized
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
