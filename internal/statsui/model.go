// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spelldaily/internal/model"
	"spelldaily/internal/record"
	"spelldaily/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
	tabLeaderboard
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// LeaderboardSource fetches the cross-player standings. The sync server
// client implements it; offline sessions pass nil.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	records *record.Store
	board   LeaderboardSource
	userID  string

	snapshot model.UserStats
	history  []model.GameRecord
	entries  []model.LeaderboardEntry
	synced   bool

	errMsg   string
	boardErr string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model and loads the first snapshot.
func NewModel(records *record.Store, board LeaderboardSource, userID string) *Model {
	m := &Model{
		records: records,
		board:   board,
		userID:  userID,
		tabs:    []string{"Overview", "History", "Leaderboard"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.historyTable = table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(1),
	)
	m.historyTable.SetStyles(historyTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabHistory {
			m.historyTable.Focus()
		} else {
			m.historyTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refresh()
			m.updateLayout()
			m.renderTabContents()
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// refresh reloads history and stats, preferring a merged view of the
// local and remote histories when the sync server is reachable.
func (m *Model) refresh() {
	ctx := context.Background()
	local, err := m.records.History(ctx, m.userID)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.history = local
	m.synced = false

	remoteHistory, err := m.records.RemoteHistory(ctx, m.userID)
	switch {
	case err == nil && remoteHistory != nil:
		m.history = stats.MergeRecords(local, remoteHistory)
		m.snapshot = stats.ReconcileHistories(local, remoteHistory, time.Now())
		m.snapshot.UserID = m.userID
		m.synced = true
	default:
		snapshot, statsErr := m.records.Stats(ctx, m.userID)
		if statsErr != nil {
			m.errMsg = statsErr.Error()
			return
		}
		m.snapshot = snapshot
		// The per-record history may be unavailable even when the
		// aggregate snapshot is not.
		if remoteStats, rsErr := m.records.RemoteStats(ctx, m.userID); rsErr == nil && remoteStats != nil {
			m.snapshot = stats.MergeSnapshots(m.snapshot, *remoteStats)
			m.synced = true
		}
	}

	m.refreshLeaderboard(ctx)
	m.applyHistoryRows()
	m.renderTabContents()
}

func (m *Model) refreshLeaderboard(ctx context.Context) {
	if m.board == nil {
		m.entries = nil
		m.boardErr = "Leaderboard requires a sync server."
		return
	}
	entries, err := m.board.Leaderboard(ctx)
	if err != nil {
		m.boardErr = err.Error()
		return
	}
	m.boardErr = ""
	m.entries = entries
}

func (m *Model) applyHistoryRows() {
	ordered := stats.SortByDate(m.history)
	rows := make([]table.Row, 0, len(ordered))
	// Newest first.
	for i := len(ordered) - 1; i >= 0; i-- {
		rec := ordered[i]
		rows = append(rows, table.Row{
			rec.GameDate,
			rec.PuzzleID,
			strconv.Itoa(rec.Score),
			string(rec.Rank),
			strconv.Itoa(len(rec.WordsFound)),
			strconv.Itoa(len(rec.PangramsFound)),
		})
	}
	m.historyTable.SetRows(rows)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	source := "local only"
	if m.synced {
		source = "synced"
	}
	summary := fmt.Sprintf("Player: %s  Games: %d  Source: %s", m.userID, m.snapshot.GamesPlayed, source)
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabHistory {
		if len(m.history) == 0 {
			return "No games found."
		}
		return tableMutedStyle.Render(m.historyTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.snapshot, m.history, width))
	m.viewports[tabLeaderboard].SetContent(m.renderLeaderboard())
}

func renderOverview(snapshot model.UserStats, history []model.GameRecord, width int) string {
	if snapshot.GamesPlayed == 0 && len(history) == 0 {
		return "No games found."
	}
	lastPlayed := snapshot.LastPlayedDate
	if lastPlayed == "" {
		lastPlayed = "never"
	}
	cards := []string{
		metricCard("Games", fmt.Sprintf("%d", snapshot.GamesPlayed)),
		metricCard("Avg Score", fmt.Sprintf("%d", stats.AverageScore(history))),
		metricCard("Best Rank", string(snapshot.BestRank)),
		metricCard("Streak", formatDays(snapshot.CurrentStreak)),
		metricCard("Best Streak", formatDays(snapshot.BestStreak)),
		metricCard("Last Played", lastPlayed),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	curve := renderScoreCurve(history)
	if curve == "" {
		return strings.TrimRight(grid, "\n")
	}
	return strings.TrimRight(grid+"\n\n"+curve, "\n")
}

func renderScoreCurve(history []model.GameRecord) string {
	series := stats.ScoreSeries(stats.SortByDate(history))
	if len(series) == 0 {
		return ""
	}
	smoothed := stats.MovingAverage(series, 5)
	return headerStyle.Render("Scores: ") + stats.Sparkline(smoothed)
}

func (m *Model) renderLeaderboard() string {
	if m.boardErr != "" {
		return errorStyle.Render(m.boardErr)
	}
	var buf bytes.Buffer
	if err := stats.RenderLeaderboard(&buf, m.entries); err != nil {
		return errorStyle.Render(err.Error())
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Puzzle", Width: 16},
		{Title: "Score", Width: 6},
		{Title: "Rank", Width: 11},
		{Title: "Words", Width: 6},
		{Title: "Pangrams", Width: 8},
	}
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func formatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
