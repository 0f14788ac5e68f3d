package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi2keys/config"
	"midi2keys/dispatch"
	"midi2keys/midi"
	"midi2keys/presser"
)

// row is one adjustable setting. Toggle handles space/enter, adjust
// handles left/right; either may be nil.
type row struct {
	label  string
	value  func() string
	toggle func()
	adjust func(delta int)
}

type Model struct {
	Settings *config.Settings
	Presser  *presser.Presser
	Disp     *dispatch.Dispatcher
	Watcher  *midi.Watcher

	keys       keyMap
	help       help.Model
	rows       []row
	cursor     int
	port       string
	showInput  bool
	showOutput bool
	quitting   bool
}

type UpdateMsg struct{}

type WatchEventMsg midi.Event

func NewModel(s *config.Settings, pr *presser.Presser, disp *dispatch.Dispatcher, watcher *midi.Watcher) Model {
	m := Model{
		Settings:   s,
		Presser:    pr,
		Disp:       disp,
		Watcher:    watcher,
		keys:       defaultKeyMap(),
		help:       help.New(),
		showInput:  true,
		showOutput: true,
	}
	m.rows = buildRows(s)
	return m
}

func buildRows(s *config.Settings) []row {
	onoff := func(get func() bool) func() string {
		return func() string {
			if get() {
				return "on"
			}
			return "off"
		}
	}
	flip := func(get func() bool, set func(bool)) func() {
		return func() { set(!get()) }
	}
	num := func(get func() int) func() string {
		return func() string { return strconv.Itoa(get()) }
	}

	return []row{
		{
			label:  "solver",
			value:  onoff(s.SolverEnabled),
			toggle: flip(s.SolverEnabled, s.SetSolverEnabled),
		},
		{
			label: "mode",
			value: func() string {
				if s.Efficiency() {
					return config.ModeEfficiency
				}
				return config.ModeAccuracy
			},
			toggle: flip(s.Efficiency, s.SetEfficiency),
		},
		{
			label: "max jump",
			value: num(s.MaxJump),
			adjust: func(d int) {
				s.SetMaxJump(s.MaxJump() + d)
			},
		},
		{
			label: "transpose range",
			value: num(s.TransposeRange),
			adjust: func(d int) {
				s.SetTransposeRange(s.TransposeRange() + d)
			},
		},
		{
			label:  "quantize",
			value:  onoff(s.QuantizeEnabled),
			toggle: flip(s.QuantizeEnabled, s.SetQuantizeEnabled),
		},
		{
			label: "quantize grid ms",
			value: func() string { return s.QuantizeGrid().String() },
			adjust: func(d int) {
				s.SetQuantizeGridMs(int(s.QuantizeGrid().Milliseconds()) + d*10)
			},
		},
		{
			label:  "low range",
			value:  onoff(s.LowRange),
			toggle: flip(s.LowRange, s.SetLowRange),
		},
		{
			label:  "base range",
			value:  onoff(s.BaseRange),
			toggle: flip(s.BaseRange, s.SetBaseRange),
		},
		{
			label:  "high range",
			value:  onoff(s.HighRange),
			toggle: flip(s.HighRange, s.SetHighRange),
		},
		{
			label:  "auto octave",
			value:  onoff(s.AutoOctave),
			toggle: flip(s.AutoOctave, s.SetAutoOctave),
		},
		{
			label:  "hold ctrl keys",
			value:  onoff(s.HoldCtrl),
			toggle: flip(s.HoldCtrl, s.SetHoldCtrl),
		},
		{
			label:  "transpose for sharps",
			value:  onoff(s.TransposeShift),
			toggle: flip(s.TransposeShift, s.SetTransposeShift),
		},
		{
			label:  "lazy transpose",
			value:  onoff(s.LazyTranspose),
			toggle: flip(s.LazyTranspose, s.SetLazyTranspose),
		},
		{
			label: "transpose delay ms",
			value: func() string { return s.TransposeDelay().String() },
			adjust: func(d int) {
				s.SetTransposeDelayMs(int(s.TransposeDelay().Milliseconds()) + d*5)
			},
		},
	}
}

func ListenForUpdates(d *dispatch.Dispatcher) tea.Cmd {
	return func() tea.Msg {
		<-d.Updates()
		return UpdateMsg{}
	}
}

func ListenForEvents(w *midi.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return WatchEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Disp),
		ListenForEvents(m.Watcher),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Left):
			if r := m.rows[m.cursor]; r.adjust != nil {
				r.adjust(-1)
			}

		case key.Matches(msg, m.keys.Right):
			if r := m.rows[m.cursor]; r.adjust != nil {
				r.adjust(1)
			}

		case key.Matches(msg, m.keys.Toggle):
			if r := m.rows[m.cursor]; r.toggle != nil {
				r.toggle()
			}

		case key.Matches(msg, m.keys.Panic):
			m.Presser.ReleaseAll()

		case key.Matches(msg, m.keys.Resync):
			m.Presser.ResyncTransposition()

		case key.Matches(msg, m.keys.Input):
			m.showInput = !m.showInput

		case key.Matches(msg, m.keys.Output):
			m.showOutput = !m.showOutput

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Disp)

	case WatchEventMsg:
		if msg.Type == midi.Connected {
			m.port = msg.Port
		} else {
			m.port = ""
		}
		return m, ListenForEvents(m.Watcher)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	port := m.port
	if port == "" {
		port = "no device"
	}
	header := headerStyle.Render(fmt.Sprintf("midi2keys  %s  transpose:%+d  held:%d",
		port, m.Presser.Transposition(), m.Presser.HeldKeyCount()))

	var list strings.Builder
	for i, r := range m.rows {
		line := fmt.Sprintf("%-20s %s", r.label, r.value())
		if i == m.cursor {
			list.WriteString(cursorStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}

	var input, output map[uint8]bool
	if m.showInput {
		input = m.Disp.ActiveInput()
	}
	if m.showOutput {
		output = m.Disp.ActiveOutput()
	}
	strip := pianoStrip(input, output)
	legend := dimStyle.Render("input") + " " + inputStyle.Render("█") +
		"  " + dimStyle.Render("output") + " " + outputStyle.Render("█")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(list.String())
	out.WriteString("\n")
	out.WriteString(strip)
	out.WriteString("\n")
	out.WriteString(legend)
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))

	return out.String()
}
