package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type markDoneMsg struct {
	outcome application.MarkOutcome
	err     error
}

var markSessionStyle = lipgloss.NewStyle().Bold(true)

// markSpinnerModel shows which session is being marked and when its window
// closes while the submission is in flight.
type markSpinnerModel struct {
	spinner spinner.Model
	session string
	closes  string
	submit  tea.Cmd
	outcome application.MarkOutcome
	err     error
	done    bool
}

func newMarkSpinnerModel(session domain.Session, submit tea.Cmd) markSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return markSpinnerModel{
		spinner: s,
		session: session.Label(),
		closes:  session.EndsAt.Local().Format("15:04"),
		submit:  submit,
	}
}

func (m markSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.submit)
}

func (m markSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case markDoneMsg:
		m.done = true
		m.outcome = msg.outcome
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m markSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s Marking attendance for %s", m.spinner.View(), markSessionStyle.Render(m.session))
	if m.closes != "" {
		line += fmt.Sprintf(" (closes %s)", m.closes)
	}
	return line
}

// runMarkSpinner shows a spinner on output while submit runs.
func runMarkSpinner(ctx context.Context, output io.Writer, session domain.Session, submit func(context.Context) (application.MarkOutcome, error)) (application.MarkOutcome, error) {
	submitCmd := func() tea.Msg {
		outcome, err := submit(ctx)
		return markDoneMsg{outcome: outcome, err: err}
	}

	p := tea.NewProgram(
		newMarkSpinnerModel(session, submitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.MarkOutcome{}, err
	}

	result, ok := finalModel.(markSpinnerModel)
	if !ok {
		return application.MarkOutcome{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.outcome, result.err
}
