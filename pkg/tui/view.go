package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/visual"
)

const (
	whiteWidth = 4
	blackWidth = 3
)

// View implements tea.Model
func (m Model) View() string {
	if m.ShowHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.burstView())
	b.WriteString("\n")
	b.WriteString(m.blendView())
	b.WriteString("\n\n")
	b.WriteString(m.keyboardView())
	b.WriteString("\n\n")
	b.WriteString(m.panelView())
	b.WriteString("\n\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14")).
		Render("SYNTHKEYS")

	cfg := m.Panel.Config()
	harmony := "off"
	if cfg.Harmony {
		harmony = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Render("on")
	}

	info := fmt.Sprintf(" │ Mode:%s Wave:%s │ LFO:%s │ Harmony:%s │ Oct:%+d │ Voices:%d",
		cfg.Mode, cfg.Waveform, cfg.LFO.Target, harmony,
		m.Router.Keys().Octave(), m.Synth.Voices().Len())

	return title + info
}

func (m Model) keyboardWidth() int {
	var whites int
	for _, k := range keyboard.Layout {
		if !k.Black {
			whites++
		}
	}
	return whites * whiteWidth
}

// blendView renders the mixed colour of all sounding notes as a bar
func (m Model) blendView() string {
	width := m.keyboardWidth()
	c, ok := m.Scene.Blend()
	if !ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(strings.Repeat("─", width))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(strings.Repeat("█", width))
}

// burstView places a glyph per live burst, fading with age. Particles sit
// underneath as small rings.
func (m Model) burstView() string {
	width := m.keyboardWidth()
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}

	now := m.now()
	for _, p := range m.Scene.Particles(now) {
		if p.Alpha(now) <= 0 {
			continue
		}
		col := min(width-1, int(p.X*float64(width)))
		cells[col] = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color.Hex())).Render("∘")
	}
	for _, b := range m.Scene.Bursts(now) {
		a := b.Alpha(now)
		if a <= 0 {
			continue
		}
		glyph := "·"
		switch {
		case a > 0.5:
			glyph = "●"
		case a > 0.25:
			glyph = "•"
		}
		col := min(width-1, int(b.X*float64(width)))
		cells[col] = lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color.Hex())).Render(glyph)
	}
	return strings.Join(cells, "")
}

func (m Model) keyboardView() string {
	var top, bottom, names strings.Builder
	top.WriteString(strings.Repeat(" ", whiteWidth-1))

	layout := keyboard.Layout
	for i, k := range layout {
		if k.Black {
			continue
		}
		bottom.WriteString(m.keyCell(k, whiteWidth))
		names.WriteString(lipgloss.NewStyle().
			Width(whiteWidth).
			Foreground(lipgloss.Color("8")).
			Render(strings.Replace(k.Name(), "-", "", 1)))

		if i+1 < len(layout) && layout[i+1].Black {
			top.WriteString(m.keyCell(layout[i+1], blackWidth))
			top.WriteString(" ")
		} else {
			top.WriteString(strings.Repeat(" ", whiteWidth))
		}
	}
	return top.String() + "\n" + bottom.String() + "\n" + names.String()
}

func (m Model) keyCell(k keyboard.Key, width int) string {
	style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if k.Black {
		style = style.Background(lipgloss.Color("0")).Foreground(lipgloss.Color("15"))
	} else {
		style = style.Background(lipgloss.Color("15")).Foreground(lipgloss.Color("0"))
	}
	if c, ok := m.Scene.Lit(k.Code); ok {
		style = style.Background(lipgloss.Color(c.Hex())).Foreground(lipgloss.Color("0")).Bold(true)
	}
	return style.Render(string(k.Char))
}

func (m Model) panelView() string {
	cfg := m.Panel.Config()
	_, selected := m.Panel.Selected()
	var parts []string
	for i, k := range m.Panel.Knobs() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		text := " " + k.Format(cfg) + " "
		if i == selected {
			style = style.Foreground(lipgloss.Color("11")).Bold(true)
			text = ">" + k.Format(cfg) + "<"
		}
		parts = append(parts, style.Render(text))
	}

	// Four knobs per line
	var lines []string
	for i := 0; i < len(parts); i += 4 {
		lines = append(lines, strings.Join(parts[i:min(i+4, len(parts))], " "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) statusView() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Render(m.StatusMsg)
}

func (m Model) footerView() string {
	keys := " [F2]Mode [F3]Wave [F4]LFO [F5]Harmony [←→]Knob [↑↓]Adjust [*/]Oct [Space]Silence [F1]Help [Esc]Quit"
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(keys)
}

// Colour swatches for the help screen
func paletteView() string {
	var b strings.Builder
	for pc, c := range visual.Palette {
		name := strings.TrimSuffix(keyboard.NoteName(pc+12)[:2], "-")
		b.WriteString(lipgloss.NewStyle().
			Background(lipgloss.Color(c.Hex())).
			Foreground(lipgloss.Color("0")).
			Width(3).
			Align(lipgloss.Center).
			Render(name))
	}
	return b.String()
}

func (m Model) helpView() string {
	help := `
╔══════════════════════════════════════════════════════════════════╗
║                      SYNTHKEYS HELP                              ║
╠══════════════════════════════════════════════════════════════════╣
║ PLAYING                                                          ║
║   Z S X D C V G B H N J M  - Lower octave (C to B)               ║
║   Q 2 W 3 E R 5 T 6 Y 7 U  - Upper octave                        ║
║   * /       Octave up/down                                       ║
║   Space     Release every voice                                  ║
║                                                                  ║
║ SOUND                                                            ║
║   F2        Mode: waveform, additive, am, fm                     ║
║   F3        Waveform (waveform mode)                             ║
║   F4        LFO target: none, pitch, amplitude                   ║
║   F5        Harmony: random fifth above                          ║
║   ←→        Select parameter                                     ║
║   ↑↓        Adjust parameter                                     ║
║                                                                  ║
║ Terminals report no key release: a note stops shortly after      ║
║ its key stops repeating.                                         ║
║                                                                  ║
║                              [F1] Close help                     ║
╚══════════════════════════════════════════════════════════════════╝
`
	return lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Render(help) + "\n" + paletteView()
}
