package synth

import (
	"math/rand/v2"
)

const (
	// HarmonyProbability is the default chance of a ghost fifth per note
	HarmonyProbability = 0.30
	// FifthRatio is a just perfect fifth
	FifthRatio = 3.0 / 2.0
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Harmonizer layers probabilistic ghost fifths over a Manager
type Harmonizer struct {
	voices      *Manager
	rand        RandomSource
	Probability float64
}

// NewHarmonizer wraps m. A nil source uses the global generator.
func NewHarmonizer(m *Manager, src RandomSource) *Harmonizer {
	if src == nil {
		src = globalRand{}
	}
	return &Harmonizer{voices: m, rand: src, Probability: HarmonyProbability}
}

// NoteOn starts key and, with harmony enabled, possibly its ghost a fifth above.
// It reports whether the real voice started.
func (h *Harmonizer) NoteOn(key KeyID, freq float64, cfg Config) bool {
	if !h.voices.NoteOn(key, freq, cfg) {
		return false
	}
	if cfg.Harmony && h.rand.Float64() < h.Probability {
		h.voices.NoteOn(key.Ghost(), freq*FifthRatio, cfg)
	}
	return true
}

// NoteOff releases key and its ghost; either may already be silent
func (h *Harmonizer) NoteOff(key KeyID, env Envelope) bool {
	released := h.voices.NoteOff(key, env)
	h.voices.NoteOff(key.Ghost(), env)
	return released
}

// Active reports whether key sounds
func (h *Harmonizer) Active(key KeyID) bool {
	return h.voices.Active(key)
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
