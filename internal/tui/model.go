// Package tui is the live countdown view behind "cwctl watch".
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

// Source is where the model reads the countdown from.
type Source interface {
	Countdown() (ipc.CountdownView, error)
	InterruptCycle() (bool, error)
}

var (
	digitStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#E1E1E6")).
			Background(lipgloss.Color("#29292E"))

	separatorStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#00875F"))

	taskStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00B37E"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C7C8A"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F75A68"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00875F")).
			Padding(1, 3)
)

const (
	progressWidth = 30
	appTitle      = "CycleWarden"
)

type tickMsg time.Time

type viewMsg struct {
	view ipc.CountdownView
	err  error
}

type interruptedMsg struct {
	ok  bool
	err error
}

// Model is the bubbletea model for the countdown screen.
type Model struct {
	src      Source
	interval time.Duration

	view   ipc.CountdownView
	err    error
	notice string
	loaded bool
	title  string
}

func New(src Source, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{src: src, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Msg {
	v, err := m.src.Countdown()
	return viewMsg{view: v, err: err}
}

func (m Model) interrupt() tea.Msg {
	ok, err := m.src.InterruptCycle()
	return interruptedMsg{ok: ok, err: err}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "i":
			if m.view.Active {
				return m, m.interrupt
			}
		}

	case tickMsg:
		return m, tea.Batch(m.fetch, m.tick())

	case viewMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.view = msg.view
		}
		if title := windowTitle(m.view); title != m.title {
			m.title = title
			return m, tea.SetWindowTitle(title)
		}

	case interruptedMsg:
		switch {
		case msg.err != nil:
			m.err = msg.err
		case msg.ok:
			m.notice = "Cycle interrupted"
		}
		return m, m.fetch
	}
	return m, nil
}

// windowTitle mirrors the countdown in the terminal title while a cycle runs.
func windowTitle(v ipc.CountdownView) string {
	if !v.Active {
		return appTitle
	}
	return v.Digits + " - " + appTitle
}

func (m Model) View() string {
	var b strings.Builder

	switch {
	case !m.loaded:
		b.WriteString(idleStyle.Render("Connecting to cyclewardend..."))
	case m.view.Active && m.view.Cycle != nil:
		b.WriteString(taskStyle.Render(m.view.Cycle.Task))
		b.WriteString(idleStyle.Render(fmt.Sprintf("  %d minutes", m.view.Cycle.MinutesAmount)))
		b.WriteString("\n\n")
		b.WriteString(renderDigits(m.view.Digits))
		b.WriteString("\n\n")
		b.WriteString(progressBar(m.view.Countdown.Progress(), progressWidth))
	default:
		b.WriteString(renderDigits("00:00"))
		b.WriteString("\n\n")
		b.WriteString(idleStyle.Render("No cycle running. Start one with: cwctl start <task> -m <minutes>"))
	}

	if m.notice != "" {
		b.WriteString("\n\n" + idleStyle.Render(m.notice))
	}
	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	help := helpStyle.Render("q quit")
	if m.view.Active {
		help = helpStyle.Render("i interrupt • q quit")
	}
	return boxStyle.Render(b.String()) + "\n" + help + "\n"
}

// renderDigits draws MM:SS as separate digit cells.
func renderDigits(digits string) string {
	cells := make([]string, 0, len(digits))
	for _, r := range digits {
		if r == ':' {
			cells = append(cells, separatorStyle.Render(":"))
			continue
		}
		cells = append(cells, digitStyle.Render(string(r)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

func progressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return taskStyle.Render(bar) + idleStyle.Render(fmt.Sprintf(" %3.0f%%", ratio*100))
}

// Run starts the program on the alternate screen.
func Run(src Source, interval time.Duration) error {
	_, err := tea.NewProgram(New(src, interval), tea.WithAltScreen()).Run()
	return err
}
