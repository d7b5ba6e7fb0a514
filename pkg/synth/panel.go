package synth

import (
	"github.com/oisee/synthkeys/pkg/audio"
)

// Panel is the front-panel state shared by the user interfaces. Edits apply
// to the next trigger; sounding voices keep the snapshot they started with.
type Panel struct {
	cfg   Config
	knob  int
	synth *Synth
}

// NewPanel creates a panel editing cfg. Master volume changes go to s.
func NewPanel(s *Synth, cfg Config) *Panel {
	return &Panel{cfg: cfg, synth: s}
}

// Config returns the current snapshot
func (p *Panel) Config() Config {
	return p.cfg
}

// Knobs returns the knobs of the current mode
func (p *Panel) Knobs() []Knob {
	return KnobsFor(p.cfg.Mode)
}

// Selected returns the selected knob and its index
func (p *Panel) Selected() (Knob, int) {
	ks := p.Knobs()
	i := min(p.knob, len(ks)-1)
	return ks[i], i
}

// Select moves the knob selection by delta, stopping at either end
func (p *Panel) Select(delta int) {
	p.knob = max(0, min(len(p.Knobs())-1, p.knob+delta))
}

// Adjust moves the selected knob by steps and returns its display text
func (p *Panel) Adjust(steps int) string {
	k, _ := p.Selected()
	k.Adjust(&p.cfg, steps)
	if k.Name == "master" && p.synth != nil {
		p.synth.SetVolume(p.cfg.MasterVolume)
	}
	return k.Format(p.cfg)
}

// CycleMode selects the next synthesis mode
func (p *Panel) CycleMode() Mode {
	p.cfg.Mode = next(Modes, p.cfg.Mode)
	p.knob = 0
	return p.cfg.Mode
}

// CycleWaveform selects the next oscillator shape
func (p *Panel) CycleWaveform() audio.Waveform {
	p.cfg.Waveform = next(audio.Waveforms, p.cfg.Waveform)
	return p.cfg.Waveform
}

// CycleLFO selects the next LFO target
func (p *Panel) CycleLFO() LFOTarget {
	p.cfg.LFO.Target = next(LFOTargets, p.cfg.LFO.Target)
	return p.cfg.LFO.Target
}

// ToggleHarmony flips ghost fifths on or off
func (p *Panel) ToggleHarmony() bool {
	p.cfg.Harmony = !p.cfg.Harmony
	return p.cfg.Harmony
}

func next[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
