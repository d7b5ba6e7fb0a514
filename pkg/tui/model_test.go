package tui

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oisee/synthkeys/pkg/audio"
	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/synth"
	"github.com/oisee/synthkeys/pkg/visual"
)

func newTestModel(t *testing.T) (Model, *time.Time) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := synth.DefaultConfig()
	scene := visual.NewScene(nil)
	s := synth.New(audio.NewContext(1000), cfg.MasterVolume, synth.WithObserver(scene), synth.WithLogger(logger))
	panel := synth.NewPanel(s, cfg)
	r := keyboard.NewRouter(s, keyboard.NewKeyMap(), panel.Config, logger)

	m := NewModel(s, r, scene, panel, logger)
	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func runeKey(ch rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{ch}}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestKeyPressStartsVoice(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, runeKey('z'))

	if !m.Synth.Active("90") {
		t.Fatal("expected Z to start a voice")
	}
	if _, ok := m.Scene.Lit("90"); !ok {
		t.Fatal("expected Z to light up")
	}
	m = update(m, runeKey('p'))
	if m.Synth.Voices().Len() != 1 {
		t.Fatalf("unmapped key changed voices: %d", m.Synth.Voices().Len())
	}
}

func TestHeldKeyReleasedAfterRepeatsStop(t *testing.T) {
	m, clock := newTestModel(t)
	t0 := *clock

	m = update(m, runeKey('z'))
	*clock = t0.Add(500 * time.Millisecond)
	m = update(m, runeKey('z'))
	*clock = t0.Add(550 * time.Millisecond)
	m = update(m, runeKey('Z'))

	m = update(m, tickMsg(t0.Add(600*time.Millisecond)))
	if !m.Synth.Active("90") {
		t.Fatal("released while still repeating")
	}
	m = update(m, tickMsg(t0.Add(750*time.Millisecond)))
	if m.Synth.Active("90") {
		t.Fatal("expected release once repeats stopped")
	}
	if _, ok := m.Scene.Lit("90"); ok {
		t.Fatal("released key still lit")
	}
}

func TestTickReschedules(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tickMsg(time.Unix(0, 0)))
	if cmd == nil {
		t.Fatal("tick must schedule the next tick")
	}
}

func TestFunctionKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(m, tea.KeyMsg{Type: tea.KeyF2})
	if m.Panel.Config().Mode != synth.ModeAdditive {
		t.Fatalf("F2: mode %v", m.Panel.Config().Mode)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyF3})
	if m.Panel.Config().Waveform != audio.Triangle {
		t.Fatalf("F3: waveform %v", m.Panel.Config().Waveform)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyF4})
	if m.Panel.Config().LFO.Target != synth.LFOPitch {
		t.Fatalf("F4: lfo %v", m.Panel.Config().LFO.Target)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyF5})
	if !m.Panel.Config().Harmony {
		t.Fatal("F5: harmony not enabled")
	}

	// The router reads the same config.
	m = update(m, runeKey('n'))
	v, ok := m.Synth.Voices().Voice("78")
	if !ok || v.Mode != synth.ModeAdditive {
		t.Fatalf("voice did not use the edited config: %+v", v)
	}
}

func TestKnobAdjust(t *testing.T) {
	m, _ := newTestModel(t)
	attack := m.Panel.Config().Envelope.Attack

	m = update(m, tea.KeyMsg{Type: tea.KeyUp})
	if !almostEqual(m.Panel.Config().Envelope.Attack, attack+0.01) {
		t.Fatalf("attack: %f", m.Panel.Config().Envelope.Attack)
	}

	// Walk to the last knob, master volume.
	for i := 0; i < 20; i++ {
		m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if k, _ := m.Panel.Selected(); k.Name != "master" {
		t.Fatalf("last knob: %s", k.Name)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyDown})
	if !almostEqual(m.Synth.Volume(), 0.55) {
		t.Fatalf("master volume not applied: %f", m.Synth.Volume())
	}
}

func TestModeChangeResetsKnob(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 20; i++ {
		m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyF2})
	if _, i := m.Panel.Selected(); i != 0 {
		t.Fatalf("knob index %d after mode change", i)
	}
}

func TestOctaveKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, runeKey('*'))
	if m.Router.Keys().Octave() != 1 {
		t.Fatalf("octave: %d", m.Router.Keys().Octave())
	}
	m = update(m, runeKey('n'))
	v, _ := m.Synth.Voices().Voice("78")
	if !almostEqual(v.Frequency, 880) {
		t.Fatalf("frequency: %f", v.Frequency)
	}
	m = update(m, runeKey('/'))
	m = update(m, runeKey('/'))
	if m.Router.Keys().Octave() != -1 {
		t.Fatalf("octave: %d", m.Router.Keys().Octave())
	}
}

func TestSpaceReleasesAll(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, runeKey('z'))
	m = update(m, runeKey('x'))
	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if n := m.Synth.Voices().Len(); n != 0 {
		t.Fatalf("voices after space: %d", n)
	}
	if m.Hold.Len() != 0 {
		t.Fatal("hold tracker not reset")
	}
	// A fresh press plays again at once.
	m = update(m, runeKey('z'))
	if !m.Synth.Active("90") {
		t.Fatal("press after space did not play")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, runeKey('z'))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if next.(Model).Synth.Voices().Len() != 0 {
		t.Fatal("voices left sounding on quit")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, runeKey('z'))
	out := m.View()
	for _, want := range []string{"SYNTHKEYS", "waveform", "sawtooth", "Attack", "Voices:1"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyF1})
	if !strings.Contains(m.View(), "HELP") {
		t.Error("help view missing")
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
