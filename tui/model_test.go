package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gridsynth/engine"
	"go-gridsynth/sequencer"
	"go-gridsynth/theme"
)

func newModel(t *testing.T) Model {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Width = 4
	opts.Height = 2
	opts.BufferSize = 8
	e, err := engine.New(opts)
	require.NoError(t, err)
	mgr := sequencer.NewManager(e, sequencer.Options{})
	return NewModel(mgr, theme.New(theme.MustLoadPalette("")), nil)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlaceAndRender(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("s"), runes("l"), runes("t"))

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "entities:2 chains:1")
	assert.Contains(t, view, "● ◆ · ·")
	assert.Contains(t, view, "t 480bpm")
}

func TestEditSettingFlow(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("t"), tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.editing)
	assert.Equal(t, "480", m.editor.Value())

	m.editor.SetValue("fast")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.editing, "a rejected value keeps the editor open")

	m.editor.SetValue("120")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.Equal(t, "t 120bpm", m.Manager.Snapshot().Selected.Prompt)
}

func TestEditorTabCyclesSettings(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("t"), tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.editIndex)
	assert.Equal(t, "0.25", m.editor.Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.editIndex)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
}

func TestEditOnEmptyCellDoesNothing(t *testing.T) {
	m := newModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.Contains(t, ansi.Strip(m.View()), "empty")
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(Model).View())
}

func TestHelpToggle(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("?"))
	assert.Contains(t, ansi.Strip(m.View()), "add at the nearest empty cell")
}
