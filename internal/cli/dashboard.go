package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/models"
	"github.com/elyxlabs/journeyboard/internal/timeline"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive journey dashboard",
	Long: `Open a terminal dashboard: the event timeline on the left, the source
conversation of the selected event on the right, and the engagement summary
at the bottom.

Keys: up/down or j/k move, enter selects an event, u/d scroll the
transcript, q quits.`,
	RunE: runDashboard,
}

// Theme holds the color scheme for the dashboard.
type Theme struct {
	Title    lipgloss.Color
	Date     lipgloss.Color
	Member   lipgloss.Color
	Team     lipgloss.Color
	Friction lipgloss.Color
	Hint     lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Title:    lipgloss.Color("#5FAFD7"), // light blue
	Date:     lipgloss.Color("#00D787"), // green
	Member:   lipgloss.Color("#FFD700"), // gold
	Team:     lipgloss.Color("#87D7FF"), // sky
	Friction: lipgloss.Color("#FF005F"), // red
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) dateStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Date)
}

func (t Theme) memberStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Member).Bold(true)
}

func (t Theme) teamStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Team).Bold(true)
}

func (t Theme) frictionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Friction)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// dashboardModel is the bubbletea model for the journey dashboard.
// Which event is selected is transient presentation state; it lives here
// and nowhere else.
type dashboardModel struct {
	title    string
	events   []models.Event
	messages []models.Message
	summary  engagement.Summary

	cursor     int
	selected   int // index into events, -1 when nothing selected
	transcript []models.Message
	missing    int
	scroll     int

	ratio    progress.Model
	theme    Theme
	width    int
	height   int
	quitting bool
}

func newDashboardModel(title string, events []models.Event, messages []models.Message) dashboardModel {
	ratio := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return dashboardModel{
		title:    title,
		events:   events,
		messages: messages,
		summary:  engagement.Summarize(messages),
		selected: -1,
		ratio:    ratio,
		theme:    defaultTheme,
		width:    100,
		height:   30,
	}
}

// Init returns the initial command.
func (m dashboardModel) Init() tea.Cmd {
	return m.ratio.Init()
}

// Update handles messages and returns the updated model.
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}

		case "enter":
			if len(m.events) > 0 {
				m.selected = m.cursor
				m.transcript, m.missing = timeline.Resolve(m.events[m.cursor], m.messages)
				m.scroll = 0
			}

		case "u", "pgup":
			if m.scroll > 0 {
				m.scroll--
			}

		case "d", "pgdown":
			if m.scroll < len(m.transcript)-1 {
				m.scroll++
			}
		}

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.ratio, cmd = m.ratio.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m dashboardModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m dashboardModel) renderContent() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render(m.title))
	b.WriteString("\n\n")

	paneHeight := m.height - 10
	if paneHeight < 5 {
		paneHeight = 5
	}
	paneWidth := m.width/2 - 2
	if paneWidth < 40 {
		paneWidth = 40
	}

	left := m.renderTimeline(paneHeight)
	right := m.renderTranscript(paneHeight, paneWidth)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Member engagement %s %.1f%%  (%d member / %d team)\n",
		m.ratio.ViewAs(m.summary.EngagementRatio),
		m.summary.EngagementRatio*100,
		m.summary.MemberInitiations,
		m.summary.TeamResponses,
	))

	b.WriteString(m.theme.hintStyle().Render("j/k move · enter select · u/d scroll transcript · q quit"))
	b.WriteString("\n")

	return b.String()
}

// renderTimeline renders the event list with the cursor window.
func (m dashboardModel) renderTimeline(height int) string {
	if len(m.events) == 0 {
		return m.theme.hintStyle().Render("No events in the timeline.")
	}

	// Keep the cursor inside the visible window
	top := 0
	if m.cursor >= height {
		top = m.cursor - height + 1
	}

	var lines []string
	for i := top; i < len(m.events) && i < top+height; i++ {
		e := m.events[i]

		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		label := e.Type.Label()
		if e.Type == models.EventFriction {
			label = m.theme.frictionStyle().Render(label)
		}

		line := fmt.Sprintf("%s%s  %-12s %s", marker,
			m.theme.dateStyle().Render(e.Date), label, truncate(e.Title, 32))
		if i == m.selected {
			line = m.theme.titleStyle().Render(line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderTranscript renders the source conversation of the selected event.
func (m dashboardModel) renderTranscript(height, width int) string {
	if m.selected < 0 {
		return m.theme.hintStyle().Render("Select an event to see the conversation\nthat led to it.")
	}

	e := m.events[m.selected]
	var lines []string
	lines = append(lines, m.theme.titleStyle().Render(truncate(e.Title, width-12)))
	if e.Summary != "" {
		lines = append(lines, truncate("Summary: "+e.Summary, width))
	}
	if e.Rationale != "" {
		lines = append(lines, truncate("Why: "+e.Rationale, width))
	}
	lines = append(lines, "")

	if len(m.transcript) == 0 {
		lines = append(lines, m.theme.hintStyle().Render("No source conversations linked."))
		return strings.Join(lines, "\n")
	}

	if m.missing > 0 {
		lines = append(lines, m.theme.hintStyle().Render(
			fmt.Sprintf("(%d referenced id(s) missing from the log)", m.missing)))
	}

	remaining := height - len(lines)
	for i := m.scroll; i < len(m.transcript) && remaining > 1; i++ {
		msg := m.transcript[i]

		name := m.theme.teamStyle().Render(msg.SenderName)
		if msg.IsMember() {
			name = m.theme.memberStyle().Render(msg.SenderName)
		}

		ts := msg.Timestamp
		if msg.HasTime() {
			ts = msg.Time.Format("2006-01-02 15:04")
		}

		lines = append(lines, fmt.Sprintf("%s %s", name, m.theme.hintStyle().Render(ts)))
		lines = append(lines, truncate(msg.Text, width))
		remaining -= 2
	}

	return strings.Join(lines, "\n")
}

// truncate shortens s to maxLen runes so multibyte text never gets cut
// mid-character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func runDashboard(cmd *cobra.Command, args []string) error {
	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return err
	}

	ordered, err := timeline.OrderEvents(snap.Events)
	if err != nil {
		return err
	}

	model := newDashboardModel(manifest.Title, ordered, snap.Messages)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
