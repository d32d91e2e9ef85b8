package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type interactiveModel struct {
	log     *zap.Logger
	runs    []workload
	results []result
	spinner spinner.Model
	current int
	done    bool
}

type runDoneMsg struct {
	res result
}

func newInteractiveModel(runs []workload, log *zap.Logger) *interactiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = metricStyle
	return &interactiveModel{
		log:     log,
		runs:    runs,
		spinner: sp,
	}
}

func runInteractive(runs []workload, log *zap.Logger) error {
	_, err := tea.NewProgram(newInteractiveModel(runs, log)).Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runNext())
}

func (m *interactiveModel) runNext() tea.Cmd {
	if m.current >= len(m.runs) {
		return nil
	}
	w := m.runs[m.current]
	return func() tea.Msg {
		return runDoneMsg{res: w.run(context.Background(), m.log)}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.done {
				m.results = nil
				m.current = 0
				m.done = false
				return m, tea.Batch(m.spinner.Tick, m.runNext())
			}
		}

	case runDoneMsg:
		m.results = append(m.results, msg.res)
		m.current++
		if m.current >= len(m.runs) {
			m.done = true
			return m, nil
		}
		return m, m.runNext()

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	styled := func(s lipgloss.Style, text string) string { return s.Render(text) }

	var b strings.Builder
	b.WriteString(titleStyle.Render("slicewalk"))
	b.WriteString("\n\n")
	for _, r := range m.results {
		b.WriteString(renderResult(r, styled))
		b.WriteByte('\n')
	}
	if !m.done && m.current < len(m.runs) {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(nameStyle.Render(m.runs[m.current].Name))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(helpStyle.Render("r: run again • q: quit"))
	} else {
		b.WriteString(helpStyle.Render("q: quit"))
	}
	b.WriteByte('\n')
	return b.String()
}
