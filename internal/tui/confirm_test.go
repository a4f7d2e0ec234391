package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmOptions(t *testing.T) {
	t.Parallel()

	opts := NewConfirmOptions("Remove foo?").
		WithTitle("Remove plugin").
		WithDetails("https://github.com/user/foo").
		WithLabels("Remove", "Keep")

	assert.Equal(t, "Remove foo?", opts.Message)
	assert.Equal(t, "Remove plugin", opts.Title)
	assert.Equal(t, []string{"https://github.com/user/foo"}, opts.Details)
	assert.Equal(t, "Remove", opts.YesLabel)
	assert.Equal(t, "Keep", opts.NoLabel)
	assert.False(t, opts.AutoApprove)
}

func TestRunConfirm_AutoApprove(t *testing.T) {
	t.Parallel()

	res, err := RunConfirm(context.Background(), NewConfirmOptions("Proceed?").WithAutoApprove(true))
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.False(t, res.Cancelled)
}

func TestConfirmModel_Navigation(t *testing.T) {
	t.Parallel()

	m := newConfirmModel(NewConfirmOptions("Confirm?"))
	assert.True(t, m.yes)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(confirmModel)
	assert.False(t, m.yes)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = updated.(confirmModel)
	assert.True(t, m.yes)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = updated.(confirmModel)
	assert.False(t, m.yes)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(confirmModel)
	assert.True(t, m.yes)
}

func TestConfirmModel_Answers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		keys          []tea.KeyMsg
		wantConfirmed bool
		wantCancelled bool
	}{
		{"enter on yes", []tea.KeyMsg{{Type: tea.KeyEnter}}, true, false},
		{"enter on no", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, false, false},
		{"y", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune{'y'}}}, true, false},
		{"n", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune{'n'}}}, false, false},
		{"esc", []tea.KeyMsg{{Type: tea.KeyEsc}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var model tea.Model = newConfirmModel(NewConfirmOptions("Proceed?"))
			var cmd tea.Cmd
			for _, k := range tt.keys {
				model, cmd = model.Update(k)
			}

			m := model.(confirmModel)
			assert.True(t, m.done)
			assert.Equal(t, tt.wantConfirmed, m.confirmed)
			assert.Equal(t, tt.wantCancelled, m.cancelled)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestConfirmModel_View(t *testing.T) {
	t.Parallel()

	m := newConfirmModel(NewConfirmOptions("Remove foo?").
		WithTitle("Remove plugin").
		WithDetails("https://github.com/user/foo").
		WithLabels("Remove", "Keep"))

	view := m.View()
	assert.Contains(t, view, "Remove plugin")
	assert.Contains(t, view, "Remove foo?")
	assert.Contains(t, view, "https://github.com/user/foo")
	assert.Contains(t, view, "Keep")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Empty(t, updated.View())
}

func TestConfirmModel_DefaultsLabels(t *testing.T) {
	t.Parallel()

	m := newConfirmModel(ConfirmOptions{Message: "Go?"})
	assert.Equal(t, "Yes", m.opts.YesLabel)
	assert.Equal(t, "No", m.opts.NoLabel)
	assert.Equal(t, 60, m.opts.Width)
}
