package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickMsg drives the periodic status refresh.
type tickMsg struct{}

const tuiRefresh = 500 * time.Millisecond

// TUI is the full-screen front end. It renders the session status and a
// command bar; the engine itself runs in a separate goroutine.
type TUI struct {
	Engine *Engine
	Theme  Theme
}

// tuiModel implements tea.Model.
type tuiModel struct {
	engine *Engine
	styles styles

	textInput textinput.Model
	response  string

	width  int
	height int
}

// Run starts the TUI and blocks until the operator quits or the session
// stops. Stopping the TUI also stops the engine.
func (t *TUI) Run(ctx context.Context) error {
	ti := textinput.New()
	ti.Placeholder = "command (help for list)"
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	m := &tuiModel{
		engine:    t.Engine,
		styles:    newStyles(t.Theme),
		textInput: ti,
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	t.Engine.Stop()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, scheduleTick())
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tuiRefresh, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			command := m.textInput.Value()
			m.textInput.SetValue("")
			response, stop := m.engine.Execute(command)
			m.response = response
			if stop {
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Redraw with fresh engine state. Quit when the engine stopped
		// behind our back (context cancel, control socket stop).
		if m.engine.State() == StateIdle && m.engine.Uptime() > 0 {
			return m, tea.Quit
		}
		return m, scheduleTick()
	}

	return m, nil
}

func (m *tuiModel) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("cursor-automator"))
	b.WriteString("\n\n")

	state := m.engine.State()
	var stateLine string
	switch state {
	case StateRunning:
		stateLine = s.running.Render("● running")
	case StatePaused:
		stateLine = s.paused.Render("● paused")
	default:
		stateLine = s.idle.Render("● idle")
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", stateLine,
		s.dim.Render("uptime "+m.engine.Uptime().Round(time.Second).String())))

	step := m.engine.CurrentStep()
	if step == "" {
		step = "(none)"
	}
	b.WriteString(s.text.Render("step: ") + s.step.Render(step) + "\n")

	commands, messages := m.engine.Counters()
	b.WriteString(s.counter.Render(fmt.Sprintf("commands %d  messages %d", commands, messages)))
	b.WriteString("\n\n")

	b.WriteString(s.border.Render(strings.Repeat("─", m.lineWidth())))
	b.WriteString("\n")
	for _, ev := range m.recentLines() {
		b.WriteString(s.dim.Render(ev.Time.Format("15:04:05")) + " " + s.text.Render(ev.Line) + "\n")
	}
	b.WriteString(s.border.Render(strings.Repeat("─", m.lineWidth())))
	b.WriteString("\n")

	if m.response != "" {
		b.WriteString(s.text.Render(m.response))
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	b.WriteString(s.hintKey.Render("enter") + s.hintDesc.Render(" run command  ") +
		s.hintKey.Render("esc") + s.hintDesc.Render(" quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// recentLines returns the newest activity that fits the layout.
func (m *tuiModel) recentLines() []Event {
	events := m.engine.Recent()
	limit := 10
	if m.height > 0 {
		// Leave room for the header, counters, command bar, and hints.
		if avail := m.height - 14; avail > 0 && avail < limit {
			limit = avail
		}
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events
}

func (m *tuiModel) lineWidth() int {
	if m.width > 4 {
		return m.width - 4
	}
	return 60
}
