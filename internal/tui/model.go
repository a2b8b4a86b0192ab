// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spelldaily/internal/model"
	"spelldaily/internal/puzzle"
	"spelldaily/internal/record"
	"spelldaily/internal/scorer"
	"spelldaily/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bufferStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	letterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	centerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	pangramStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Model implements the Bubble Tea game UI. It is the single writer of the
// session: all input, submit, and shuffle operations run on the update
// loop.
type Model struct {
	session  *session.Session
	records  *record.Store
	provider puzzle.Provider

	width  int
	height int

	message    string
	messageErr bool
}

// NewModel constructs a game UI model around an already-seeded session.
func NewModel(sess *session.Session, records *record.Store, provider puzzle.Provider) *Model {
	return &Model{
		session:  sess,
		records:  records,
		provider: provider,
	}
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
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.session.Clear()
			m.clearMessage()
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			m.session.DeleteLast()
			m.clearMessage()
			return m, nil
		case tea.KeyEnter:
			m.handleSubmit()
			return m, nil
		case tea.KeyTab:
			m.session.Shuffle()
			m.setNotice("Letters shuffled!")
			return m, nil
		case tea.KeyCtrlN:
			m.handleForceNew()
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.session.Append(r)
			}
			m.clearMessage()
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	p := m.session.Puzzle()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Daily Word Puzzle · %s", p.ID)))
	b.WriteString("\n\n")
	b.WriteString(m.renderScore())
	b.WriteString("\n\n")
	b.WriteString(m.renderBuffer())
	b.WriteString("\n\n")
	b.WriteString(m.renderLetters())
	b.WriteString("\n\n")
	b.WriteString(m.renderWords())
	b.WriteString("\n")
	b.WriteString(m.renderMessage())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Type letters  Enter: submit  Backspace: delete  Tab: shuffle  Ctrl+N: new puzzle  Ctrl+C: quit"))

	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) handleSubmit() {
	if m.session.Empty() {
		return
	}
	verdict := m.session.Submit()
	if !verdict.Accepted() {
		m.setError(rejectMessage(verdict, m.session.Puzzle()))
		return
	}
	if verdict.Pangram {
		m.setNotice(fmt.Sprintf("Pangram! +%d points!", verdict.Score))
	} else {
		m.setNotice(fmt.Sprintf("+%d points!", verdict.Score))
	}
	m.persist()
}

func (m *Model) persist() {
	now := time.Now()
	rec := m.session.Record(now.Format(model.DateLayout), now)
	if err := m.records.Save(context.Background(), rec); err != nil {
		logErrf("failed to save game: %v\n", err)
		m.setError("Save failed! Progress may not survive a reload.")
	}
}

func (m *Model) handleForceNew() {
	p, err := m.provider.ForceNew()
	if err != nil {
		logErrf("failed to load new puzzle: %v\n", err)
		m.setError("Could not load a new puzzle.")
		return
	}
	m.session.Reset(p)
	m.setNotice("New puzzle loaded!")
}

func (m *Model) renderScore() string {
	p := m.session.Puzzle()
	score := m.session.Score()
	return progressStyle.Render(fmt.Sprintf("%s · %d / %d points · %d words",
		m.session.Rank(), score, p.MaxScore, len(m.session.Words())))
}

func (m *Model) renderBuffer() string {
	if m.session.Empty() {
		return hintStyle.Render("Type or press letters")
	}
	return bufferStyle.Render(strings.ToUpper(m.session.Buffer()))
}

func (m *Model) renderLetters() string {
	p := m.session.Puzzle()
	outer := m.session.OuterLetters()
	parts := make([]string, 0, len(outer)+1)
	// Center letter sits in the middle of the row.
	half := len(outer) / 2
	for i, r := range outer {
		if i == half {
			parts = append(parts, centerStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(p.CenterLetter)))))
		}
		parts = append(parts, letterStyle.Render(strings.ToUpper(string(r))))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderWords() string {
	words := m.session.Words()
	if len(words) == 0 {
		return hintStyle.Render("No words found yet.")
	}
	pangrams := map[string]struct{}{}
	for _, word := range m.session.Pangrams() {
		pangrams[word] = struct{}{}
	}
	width := m.width / 2
	if width < 20 {
		width = 20
	}
	return layoutWords(words, pangrams, width, wordStyle, pangramStyle)
}

func (m *Model) renderMessage() string {
	if m.message == "" {
		return ""
	}
	if m.messageErr {
		return errorStyle.Render(m.message)
	}
	return noticeStyle.Render(m.message)
}

func (m *Model) setNotice(text string) {
	m.message = text
	m.messageErr = false
}

func (m *Model) setError(text string) {
	m.message = text
	m.messageErr = true
}

func (m *Model) clearMessage() {
	m.message = ""
}

func rejectMessage(v scorer.Verdict, p model.Puzzle) string {
	switch v.Reason {
	case scorer.ReasonTooShort:
		return "Word must be at least 4 letters!"
	case scorer.ReasonMissingCenterLetter:
		return fmt.Sprintf("Word must contain %s!", strings.ToUpper(string(p.CenterLetter)))
	case scorer.ReasonAlreadyFound:
		return "Already found!"
	case scorer.ReasonNotInWordList:
		return "Not in word list!"
	default:
		return "Try again!"
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
