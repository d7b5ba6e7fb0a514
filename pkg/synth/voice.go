package synth

import (
	"log/slog"

	"github.com/oisee/synthkeys/pkg/audio"
)

const (
	// BaseLevel is the envelope peak of every voice before anti-clipping
	BaseLevel = 0.35
	// VibratoScale maps LFO depth to a fraction of the note frequency (about 50 cents at full depth)
	VibratoScale = 0.03
	// TremoloScale maps LFO depth to an additive swing on the amplitude control
	TremoloScale = 0.3
)

// KeyID identifies the owner of a voice
type KeyID string

// GhostSuffix marks identifiers of harmony voices
const GhostSuffix = "_h"

// Ghost returns the identifier of the harmony voice derived from k
func (k KeyID) Ghost() KeyID {
	return k + GhostSuffix
}

// IsGhost reports whether k was derived by Ghost
func (k KeyID) IsGhost() bool {
	n := len(k) - len(GhostSuffix)
	return n > 0 && k[n:] == GhostSuffix
}

// Voice is one sounding note
type Voice struct {
	Key       KeyID
	Frequency float64
	Mode      Mode
	BaseLevel float64
	Started   float64 // graph time of the trigger

	// Amp is the single amplitude control shaped by the envelope
	Amp audio.GainNode
	// Trim carries the anti-clipping scale after Amp
	Trim audio.GainNode
	// Sources are every generating oscillator, LFOs included
	Sources []audio.OscillatorNode

	scale float64
}

// Scale returns the anti-clipping scale last applied
func (v *Voice) Scale() float64 {
	return v.scale
}

// Level returns the post-scale amplitude target, BaseLevel * Scale
func (v *Voice) Level() float64 {
	return v.BaseLevel * v.scale
}

// Factory builds voice graphs from a configuration snapshot
type Factory struct {
	Graph     audio.Graph
	Output    audio.Node
	BaseLevel float64
	Logger    *slog.Logger
}

// NewFactory creates a factory routing voices into out
func NewFactory(g audio.Graph, out audio.Node) *Factory {
	return &Factory{Graph: g, Output: out, BaseLevel: BaseLevel, Logger: slog.Default()}
}

// NewVoice builds, shapes and starts a voice at freq. scale is the initial
// anti-clipping scale. It must run inside Graph.Update.
func (f *Factory) NewVoice(freq float64, cfg Config, scale float64) *Voice {
	g := f.Graph
	now := g.CurrentTime()

	amp := g.NewGain()
	amp.Gain().SetValueAtTime(Floor, now)
	trim := g.NewGain()
	trim.Gain().SetValueAtTime(scale, now)
	amp.Connect(trim)
	trim.Connect(f.Output)

	sources := cfg.Patch().Wire(g, freq, amp, now)
	if lfo := attachLFO(g, cfg.LFO, freq, sources[0], amp, now); lfo != nil {
		sources = append(sources, lfo)
	}

	ApplyAttackDecaySustain(amp.Gain(), now, f.BaseLevel, cfg.Envelope)
	for _, src := range sources {
		if err := src.Start(now); err != nil {
			f.Logger.Debug("source start failed", "freq", freq, "err", err)
		}
	}

	return &Voice{
		Frequency: freq,
		Mode:      cfg.Mode,
		BaseLevel: f.BaseLevel,
		Started:   now,
		Amp:       amp,
		Trim:      trim,
		Sources:   sources,
		scale:     scale,
	}
}

// attachLFO routes a sine LFO to the primary oscillator's pitch or to the
// amplitude control and returns it, or nil when no LFO is configured.
func attachLFO(g audio.Graph, p LFOParams, freq float64, primary audio.OscillatorNode, amp audio.GainNode, now float64) audio.OscillatorNode {
	var depth float64
	var dst audio.Param
	switch p.Target {
	case LFOPitch:
		depth = freq * p.Depth * VibratoScale
		dst = primary.Frequency()
	case LFOAmplitude:
		depth = p.Depth * TremoloScale
		dst = amp.Gain()
	default:
		return nil
	}

	lfo := g.NewOscillator(audio.Sine)
	lfo.Frequency().SetValueAtTime(p.Rate, now)
	scale := g.NewGain()
	scale.Gain().SetValueAtTime(depth, now)
	lfo.Connect(scale)
	scale.ConnectParam(dst)
	return lfo
}
