package synth

import (
	"fmt"
	"math"
)

// Knob describes one adjustable numeric parameter of Config
type Knob struct {
	Name  string
	Label string
	Min   float64
	Max   float64
	Step  float64
	// Modes limits the knob to some synthesis modes; empty means every mode.
	Modes []Mode
	Get   func(Config) float64
	Set   func(*Config, float64)
}

// Clamp limits v to the knob range
func (k Knob) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return k.Min
	}
	return math.Max(k.Min, math.Min(k.Max, v))
}

// Adjust moves the knob by steps and returns the new value
func (k Knob) Adjust(c *Config, steps int) float64 {
	v := k.Clamp(k.Get(*c) + float64(steps)*k.Step)
	k.Set(c, v)
	return k.Get(*c)
}

// Format renders the current value for display
func (k Knob) Format(c Config) string {
	v := k.Get(c)
	switch {
	case k.Step >= 1:
		return fmt.Sprintf("%s: %d", k.Label, int(math.Round(v)))
	case k.Step >= 0.1:
		return fmt.Sprintf("%s: %.1f", k.Label, v)
	default:
		return fmt.Sprintf("%s: %.2f", k.Label, v)
	}
}

// Applies reports whether the knob is relevant in mode
func (k Knob) Applies(mode Mode) bool {
	if len(k.Modes) == 0 {
		return true
	}
	for _, m := range k.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Knobs lists every adjustable parameter in front-panel order
var Knobs = []Knob{
	{Name: "attack", Label: "Attack", Min: 0, Max: 2, Step: 0.01,
		Get: func(c Config) float64 { return c.Envelope.Attack },
		Set: func(c *Config, v float64) { c.Envelope.Attack = v }},
	{Name: "decay", Label: "Decay", Min: 0, Max: 2, Step: 0.01,
		Get: func(c Config) float64 { return c.Envelope.Decay },
		Set: func(c *Config, v float64) { c.Envelope.Decay = v }},
	{Name: "sustain", Label: "Sustain", Min: 0, Max: 1, Step: 0.05,
		Get: func(c Config) float64 { return c.Envelope.Sustain },
		Set: func(c *Config, v float64) { c.Envelope.Sustain = v }},
	{Name: "release", Label: "Release", Min: 0, Max: 3, Step: 0.05,
		Get: func(c Config) float64 { return c.Envelope.Release },
		Set: func(c *Config, v float64) { c.Envelope.Release = v }},
	{Name: "partials", Label: "Partials", Min: 1, Max: 16, Step: 1, Modes: []Mode{ModeAdditive},
		Get: func(c Config) float64 { return float64(c.Additive.Partials) },
		Set: func(c *Config, v float64) { c.Additive.Partials = int(math.Round(v)) }},
	{Name: "rolloff", Label: "Rolloff", Min: 0, Max: 3, Step: 0.1, Modes: []Mode{ModeAdditive},
		Get: func(c Config) float64 { return c.Additive.Rolloff },
		Set: func(c *Config, v float64) { c.Additive.Rolloff = v }},
	{Name: "am.frequency", Label: "Mod Hz", Min: 0.5, Max: 100, Step: 0.5, Modes: []Mode{ModeAM},
		Get: func(c Config) float64 { return c.AM.Frequency },
		Set: func(c *Config, v float64) { c.AM.Frequency = v }},
	{Name: "am.depth", Label: "Depth", Min: 0, Max: 1, Step: 0.05, Modes: []Mode{ModeAM},
		Get: func(c Config) float64 { return c.AM.Depth },
		Set: func(c *Config, v float64) { c.AM.Depth = v }},
	{Name: "fm.ratio", Label: "Ratio", Min: 0.5, Max: 8, Step: 0.1, Modes: []Mode{ModeFM},
		Get: func(c Config) float64 { return c.FM.Ratio },
		Set: func(c *Config, v float64) { c.FM.Ratio = v }},
	{Name: "fm.index", Label: "Index", Min: 0, Max: 20, Step: 0.1, Modes: []Mode{ModeFM},
		Get: func(c Config) float64 { return c.FM.Index },
		Set: func(c *Config, v float64) { c.FM.Index = v }},
	{Name: "lfo.rate", Label: "LFO Hz", Min: 0.1, Max: 20, Step: 0.1,
		Get: func(c Config) float64 { return c.LFO.Rate },
		Set: func(c *Config, v float64) { c.LFO.Rate = v }},
	{Name: "lfo.depth", Label: "LFO Depth", Min: 0, Max: 1, Step: 0.05,
		Get: func(c Config) float64 { return c.LFO.Depth },
		Set: func(c *Config, v float64) { c.LFO.Depth = v }},
	{Name: "master", Label: "Volume", Min: 0, Max: 1, Step: 0.05,
		Get: func(c Config) float64 { return c.MasterVolume },
		Set: func(c *Config, v float64) { c.MasterVolume = v }},
}

// KnobsFor returns the knobs relevant in mode, in display order
func KnobsFor(mode Mode) []Knob {
	var out []Knob
	for _, k := range Knobs {
		if k.Applies(mode) {
			out = append(out, k)
		}
	}
	return out
}
