// Package synth implements the voice synthesis and envelope engine
package synth

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/oisee/synthkeys/pkg/audio"
)

// Mode selects the voice topology
type Mode uint8

const (
	ModeWaveform Mode = iota
	ModeAdditive
	ModeAM
	ModeFM
)

var modeNames = [...]string{"waveform", "additive", "am", "fm"}

// Modes lists every synthesis mode in display order
var Modes = []Mode{ModeWaveform, ModeAdditive, ModeAM, ModeFM}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode converts a mode name to its value
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, errors.Errorf("synth: unknown mode %q", s)
}

// LFOTarget selects what the low-frequency oscillator modulates
type LFOTarget uint8

const (
	LFONone LFOTarget = iota
	LFOPitch
	LFOAmplitude
)

var lfoTargetNames = [...]string{"none", "pitch", "amplitude"}

// LFOTargets lists every LFO target in display order
var LFOTargets = []LFOTarget{LFONone, LFOPitch, LFOAmplitude}

func (l LFOTarget) String() string {
	if int(l) < len(lfoTargetNames) {
		return lfoTargetNames[l]
	}
	return "unknown"
}

// ParseLFOTarget converts a target name to its value
func ParseLFOTarget(s string) (LFOTarget, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range lfoTargetNames {
		if n == name {
			return LFOTarget(i), nil
		}
	}
	return 0, errors.Errorf("synth: unknown lfo target %q", s)
}

// Envelope holds ADSR times in seconds and the sustain fraction of peak
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// AdditiveParams configures the partial stack
type AdditiveParams struct {
	Partials int
	Rolloff  float64
}

// AMParams configures the amplitude modulator
type AMParams struct {
	Frequency float64 // Hz
	Depth     float64 // 0-1
}

// FMParams configures the frequency modulator
type FMParams struct {
	Ratio float64 // modulator frequency / carrier frequency
	Index float64 // deviation / modulator frequency
}

// LFOParams configures the low-frequency oscillator
type LFOParams struct {
	Target LFOTarget
	Rate   float64 // Hz
	Depth  float64 // 0-1
}

// Config is the parameter snapshot read at every trigger
type Config struct {
	Envelope     Envelope
	Mode         Mode
	Waveform     audio.Waveform
	Additive     AdditiveParams
	AM           AMParams
	FM           FMParams
	LFO          LFOParams
	MasterVolume float64
	Harmony      bool
}

// DefaultConfig returns the start-up configuration
func DefaultConfig() Config {
	return Config{
		Envelope: Envelope{Attack: 0.02, Decay: 0.15, Sustain: 0.7, Release: 0.4},
		Mode:     ModeWaveform,
		Waveform: audio.Sawtooth,
		Additive: AdditiveParams{Partials: 6, Rolloff: 1.0},
		AM:       AMParams{Frequency: 6, Depth: 0.5},
		FM:       FMParams{Ratio: 2, Index: 3},
		LFO:      LFOParams{Target: LFONone, Rate: 5, Depth: 0.3},

		MasterVolume: 0.6,
	}
}

// Patch returns the voice topology for the selected mode
func (c Config) Patch() Patch {
	switch c.Mode {
	case ModeAdditive:
		return AdditivePatch{Partials: c.Additive.Partials, Rolloff: c.Additive.Rolloff}
	case ModeAM:
		return AMPatch{Frequency: c.AM.Frequency, Depth: c.AM.Depth}
	case ModeFM:
		return FMPatch{Ratio: c.FM.Ratio, Index: c.FM.Index}
	default:
		return WaveformPatch{Waveform: c.Waveform}
	}
}

// Normalize clamps every numeric field into its range
func (c Config) Normalize() Config {
	for _, k := range Knobs {
		k.Set(&c, k.Clamp(k.Get(c)))
	}
	if int(c.Mode) >= len(modeNames) {
		c.Mode = ModeWaveform
	}
	if int(c.Waveform) >= len(audio.Waveforms) {
		c.Waveform = audio.Sine
	}
	if int(c.LFO.Target) >= len(lfoTargetNames) {
		c.LFO.Target = LFONone
	}
	return c
}

// Validate reports the first field outside its range
func (c Config) Validate() error {
	for _, k := range Knobs {
		if v := k.Get(c); math.IsNaN(v) || v < k.Min || v > k.Max {
			return errors.Errorf("synth: %s %g outside [%g, %g]", k.Name, v, k.Min, k.Max)
		}
	}
	if int(c.Mode) >= len(modeNames) {
		return errors.Errorf("synth: invalid mode %d", c.Mode)
	}
	if int(c.LFO.Target) >= len(lfoTargetNames) {
		return errors.Errorf("synth: invalid lfo target %d", c.LFO.Target)
	}
	return nil
}
