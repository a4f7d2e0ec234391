package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmOptions configures the confirmation prompt.
type ConfirmOptions struct {
	Title       string
	Message     string
	Details     []string
	YesLabel    string
	NoLabel     string
	Width       int
	AutoApprove bool
}

// NewConfirmOptions creates default confirmation options.
func NewConfirmOptions(message string) ConfirmOptions {
	return ConfirmOptions{
		Message:  message,
		YesLabel: "Yes",
		NoLabel:  "No",
		Width:    60,
	}
}

// WithTitle sets the title shown above the message.
func (o ConfirmOptions) WithTitle(title string) ConfirmOptions {
	o.Title = title
	return o
}

// WithDetails sets the lines listed under the message.
func (o ConfirmOptions) WithDetails(details ...string) ConfirmOptions {
	o.Details = details
	return o
}

// WithLabels sets the button labels.
func (o ConfirmOptions) WithLabels(yes, no string) ConfirmOptions {
	o.YesLabel = yes
	o.NoLabel = no
	return o
}

// WithAutoApprove skips the prompt and confirms.
func (o ConfirmOptions) WithAutoApprove(auto bool) ConfirmOptions {
	o.AutoApprove = auto
	return o
}

// ConfirmResult is the outcome of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

// RunConfirm shows the confirmation prompt and waits for an answer.
func RunConfirm(ctx context.Context, opts ConfirmOptions, programOpts ...tea.ProgramOption) (*ConfirmResult, error) {
	if opts.AutoApprove {
		return &ConfirmResult{Confirmed: true}, nil
	}

	programOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, programOpts...)
	p := tea.NewProgram(newConfirmModel(opts), programOpts...)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := finalModel.(confirmModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return &ConfirmResult{Confirmed: m.confirmed, Cancelled: m.cancelled}, nil
}

type confirmModel struct {
	opts      ConfirmOptions
	yes       bool // focused button
	confirmed bool
	cancelled bool
	done      bool
	keys      KeyMap
	styles    Styles
}

func newConfirmModel(opts ConfirmOptions) confirmModel {
	if opts.YesLabel == "" {
		opts.YesLabel = "Yes"
	}
	if opts.NoLabel == "" {
		opts.NoLabel = "No"
	}
	if opts.Width <= 0 {
		opts.Width = 60
	}
	return confirmModel{
		opts:   opts,
		yes:    true,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		if msg.Width > 4 && msg.Width < m.opts.Width {
			m.opts.Width = msg.Width - 4
		}
	}
	return m, nil
}

func (m confirmModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left) || key.Matches(msg, m.keys.VimLeft):
		m.yes = true
	case key.Matches(msg, m.keys.Right) || key.Matches(msg, m.keys.VimRight):
		m.yes = false
	case key.Matches(msg, m.keys.Toggle):
		m.yes = !m.yes
	case key.Matches(msg, m.keys.Select):
		return m.finish(m.yes, false)
	case key.Matches(msg, m.keys.Accept):
		return m.finish(true, false)
	case key.Matches(msg, m.keys.Reject):
		return m.finish(false, false)
	case key.Matches(msg, m.keys.Cancel):
		return m.finish(false, true)
	}
	return m, nil
}

func (m confirmModel) finish(confirmed, cancelled bool) (tea.Model, tea.Cmd) {
	m.confirmed = confirmed
	m.cancelled = cancelled
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(m.styles.Title.Render(m.opts.Title))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Paragraph.Width(m.opts.Width).Render(m.opts.Message))
	b.WriteString("\n")
	for _, d := range m.opts.Details {
		b.WriteString(m.styles.Detail.Render("• " + d))
		b.WriteString("\n")
	}

	yesStyle, noStyle := m.styles.Button, m.styles.Button
	if m.yes {
		yesStyle = m.styles.ButtonActive
	} else {
		noStyle = m.styles.ButtonActive
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render(m.opts.YesLabel), "  ", noStyle.Render(m.opts.NoLabel))
	row := lipgloss.NewStyle().Width(m.opts.Width).Align(lipgloss.Center).Render(buttons)

	b.WriteString("\n")
	b.WriteString(row)
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render("y/n answer • ←/→ move • enter select • esc cancel"))
	return b.String()
}
