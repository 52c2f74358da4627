// Package tui renders firmware update progress as a terminal progress
// bar.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/getyourway/scanpad-go/internal/ota"
)

var (
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// finishedMsg ends the program when the update terminates.
type finishedMsg struct {
	err error
}

type model struct {
	bar     progress.Model
	updates <-chan ota.Progress
	result  <-chan error

	stage   ota.State
	percent float64
	err     error
	done    bool
}

func newModel(updates <-chan ota.Progress, result <-chan error) model {
	return model{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		updates: updates,
		result:  result,
	}
}

// listen waits for either the next progress sample or the final result.
func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case p, ok := <-m.updates:
			if !ok {
				return finishedMsg{err: <-m.result}
			}
			return p
		case err := <-m.result:
			return finishedMsg{err: err}
		}
	}
}

func (m model) Init() tea.Cmd {
	return m.listen()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ota.Progress:
		m.stage = msg.State
		m.percent = float64(msg.Percent) / 100
		return m, m.listen()
	case finishedMsg:
		m.done = true
		m.err = msg.err
		if m.err == nil {
			m.percent = 1
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ota.ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.err != nil {
			return errStyle.Render(fmt.Sprintf("update failed: %v", m.err)) + "\n"
		}
		return doneStyle.Render("update complete") + "\n"
	}
	return stageStyle.Render(m.stage.String()) + "\n" + m.bar.ViewAs(m.percent) + "\n"
}

// RunUpdate displays progress for a running update. updates must be
// closed (or result delivered) when the session ends; the session's
// error is returned.
func RunUpdate(updates <-chan ota.Progress, result <-chan error) error {
	m := newModel(updates, result)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok {
		return fm.err
	}
	return nil
}
