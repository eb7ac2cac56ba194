package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-gridsynth/command"
	"go-gridsynth/debug"
	"go-gridsynth/entity"
	"go-gridsynth/sequencer"
	"go-gridsynth/theme"
	"go-gridsynth/widgets"
)

const meterWidth = 24

// Meter reports device health; implemented by audio.Reader
type Meter interface {
	Underruns() uint64
}

type Model struct {
	Manager *sequencer.Manager
	Theme   *theme.Theme
	Meter   Meter // nil when audio is disabled

	editor    textinput.Model
	editing   bool
	editIndex int
	showHelp  bool
	quitting  bool
}

type UpdateMsg struct{}

func NewModel(manager *sequencer.Manager, th *theme.Theme, meter Meter) Model {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 16
	ti.Prompt = ""
	ti.PromptStyle = lipgloss.NewStyle().Foreground(th.Accent())
	ti.TextStyle = lipgloss.NewStyle().Foreground(th.Success())
	return Model{
		Manager: manager,
		Theme:   th,
		Meter:   meter,
		editor:  ti,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		if msg.String() == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		c, ok := m.Manager.HandleKey(msg.String())
		if !ok {
			return m, nil
		}
		switch c.Op {
		case command.OpQuit:
			m.quitting = true
			return m, tea.Quit
		case command.OpEdit:
			return m.openEditor(0)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

// openEditor starts editing setting i of the selected entity
func (m Model) openEditor(i int) (tea.Model, tea.Cmd) {
	sel := m.Manager.Snapshot().Selected
	if sel == nil || len(sel.Settings) == 0 {
		m.editing = false
		return m, nil
	}
	i %= len(sel.Settings)
	s := sel.Settings[i]
	m.editing = true
	m.editIndex = i
	m.editor.Prompt = s.Description + ": "
	m.editor.SetValue(s.Value())
	m.editor.CursorEnd()
	debug.Log("tui", "editing %v setting %s", sel.Kind, s.Description)
	return m, m.editor.Focus()
}

func (m Model) closeEditor() Model {
	m.editing = false
	m.editor.Blur()
	return m
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+[":
		return m.closeEditor(), nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m.openEditor(m.editIndex + 1)
	case "enter":
		if err := m.Manager.EditSetting(m.editIndex, m.editor.Value()); err != nil {
			// keep the editor open so the value can be fixed
			return m, nil
		}
		return m.closeEditor(), nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Manager.Snapshot()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	state := "LIVE"
	if snap.Muted {
		state = "MUTE"
	}
	header := headerStyle.Render(fmt.Sprintf("go-gridsynth  %s  %dx%d  %v  entities:%d chains:%d",
		state, snap.Rect.Width, snap.Rect.Height, snap.Cursor, snap.Entities, snap.Chains))

	gridView := widgets.RenderGrid(m.Theme, snap.Cells)

	meters := widgets.RenderMeter(m.Theme, "L", snap.PeakL, meterWidth) + "\n" +
		widgets.RenderMeter(m.Theme, "R", snap.PeakR, meterWidth)
	if m.Meter != nil {
		meters += dimStyle.Render(fmt.Sprintf("\npasses:%d underruns:%d", snap.Passes, m.Meter.Underruns()))
	} else {
		meters += dimStyle.Render(fmt.Sprintf("\npasses:%d audio off", snap.Passes))
	}

	var status string
	switch {
	case m.editing:
		status = m.editor.View()
	case snap.Pending != "":
		status = fgStyle.Render(snap.Pending)
	case snap.Message != "":
		status = warnStyle.Render(snap.Message)
	case snap.Selected != nil:
		status = fgStyle.Render(selectionLine(snap.Selected))
	}

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(gridView)
	out.WriteString("\n\n")
	out.WriteString(meters)
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n")

	if m.showHelp {
		out.WriteString("\n")
		out.WriteString(m.helpView())
	} else {
		out.WriteString(dimStyle.Render("hjkl:nav  s/t/o:add  dd:del  enter:edit  space:mute  ?:help  q:quit"))
	}

	return out.String()
}

func selectionLine(sel *sequencer.Selection) string {
	parts := []string{sel.Prompt}
	for _, s := range sel.Settings {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "  ")
}

func (m Model) helpView() string {
	legend := strings.Join([]string{
		widgets.RenderLegendItem(m.Theme, entity.KindStep, "s", "step: charges while gated, then plays back"),
		widgets.RenderLegendItem(m.Theme, entity.KindTrigger, "t", "trigger: periodic gate pulse"),
		widgets.RenderLegendItem(m.Theme, entity.KindSampler, "o", "sampler: plays a clip on a rising gate"),
	}, "\n")
	return legend + "\n\n" + widgets.RenderKeyHelp(keySections)
}

var keySections = []widgets.KeySection{
	{Title: "Move", Keys: []widgets.KeyBinding{
		{Key: "hjkl/arrows", Desc: "move, prefix a count to repeat"},
		{Key: "gg / G", Desc: "origin / far corner"},
		{Key: "0 / $", Desc: "line start / end"},
		{Key: "ctrl+u/d", Desc: "8 rows up / down"},
		{Key: "{ / }", Desc: "4 rows up / down"},
		{Key: "b / w e", Desc: "4 columns back / forward"},
	}},
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "s t o", Desc: "add step, trigger, sampler"},
		{Key: "S T O", Desc: "add at the nearest empty cell"},
		{Key: "dd", Desc: "delete"},
		{Key: "enter", Desc: "edit settings (tab: next)"},
		{Key: "esc", Desc: "clear input"},
	}},
	{Title: "Output", Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "mute"},
		{Key: "q", Desc: "quit"},
	}},
}
