// Package tui implements the terminal user interface
package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/synth"
	"github.com/oisee/synthkeys/pkg/visual"
)

// TickInterval drives release detection and animation
const TickInterval = 16 * time.Millisecond

// Model is the main TUI model
type Model struct {
	Synth  *synth.Synth
	Router *keyboard.Router
	Scene  *visual.Scene
	Hold   *keyboard.HoldTracker

	// Panel is shared with the router, which snapshots it at every trigger
	Panel *synth.Panel

	// View state
	Width    int
	Height   int
	ShowHelp bool

	// Status message
	StatusMsg string

	logger *slog.Logger
	now    func() time.Time
}

// NewModel creates a new TUI model. The router must read its config from panel.
func NewModel(s *synth.Synth, r *keyboard.Router, scene *visual.Scene, panel *synth.Panel, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		Synth:  s,
		Router: r,
		Scene:  scene,
		Hold:   keyboard.NewHoldTracker(),
		Panel:  panel,
		Width:  80,
		Height: 24,
		logger: logger,
		now:    time.Now,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// tickMsg is sent periodically to expire held keys
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tickMsg:
		for _, code := range m.Hold.Expire(time.Time(msg)) {
			m.Router.Release(code)
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Synth.Panic(m.Panel.Config().Envelope)
		return m, tea.Quit

	case "f1":
		m.ShowHelp = !m.ShowHelp

	case "f2":
		m.StatusMsg = "Mode: " + m.Panel.CycleMode().String()

	case "f3":
		m.StatusMsg = "Waveform: " + m.Panel.CycleWaveform().String()

	case "f4":
		m.StatusMsg = "LFO: " + m.Panel.CycleLFO().String()

	case "f5":
		m.StatusMsg = "Harmony: " + onOff(m.Panel.ToggleHarmony())

	// Parameter panel
	case "left":
		m.Panel.Select(-1)

	case "right":
		m.Panel.Select(1)

	case "up":
		m.StatusMsg = m.Panel.Adjust(1)

	case "down":
		m.StatusMsg = m.Panel.Adjust(-1)

	// Octave
	case "*":
		m.StatusMsg = fmt.Sprintf("Octave: %+d", m.Router.Keys().ShiftOctave(1))

	case "/":
		m.StatusMsg = fmt.Sprintf("Octave: %+d", m.Router.Keys().ShiftOctave(-1))

	case " ":
		n := m.Synth.Panic(m.Panel.Config().Envelope)
		m.Hold.Reset()
		m.StatusMsg = fmt.Sprintf("Released %d voices", n)

	default:
		// Note input
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			m.pressRune(msg.Runes[0])
		}
	}

	return m, nil
}

func (m Model) pressRune(ch rune) {
	k, ok := m.Router.Keys().LookupRune(ch)
	if !ok {
		m.logger.Debug("unmapped key", "key", string(ch))
		return
	}
	// Auto-repeat only extends the hold
	if m.Hold.Press(k.Code, m.now()) {
		m.Router.Press(k.Code)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
