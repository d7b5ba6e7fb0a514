package synth

import (
	"math/rand/v2"
	"testing"
)

type fixedRand []float64

func (f *fixedRand) Float64() float64 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func newTestHarmonizer(values ...float64) (*Manager, *Harmonizer) {
	_, m := newTestManager(nil)
	r := fixedRand(values)
	return m, NewHarmonizer(m, &r)
}

func TestHarmonizerAddsGhostFifth(t *testing.T) {
	m, h := newTestHarmonizer(0.1)
	cfg := DefaultConfig()
	cfg.Harmony = true

	if !h.NoteOn("65", 440, cfg) {
		t.Fatal("expected the real voice to start")
	}
	ghost, ok := m.Voice("65_h")
	if !ok {
		t.Fatal("expected a ghost voice below the probability")
	}
	if ghost.Frequency != 660 {
		t.Fatalf("ghost frequency: got %f want 660", ghost.Frequency)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 voices, got %d", m.Len())
	}
}

func TestHarmonizerSkipsGhostAboveProbability(t *testing.T) {
	m, h := newTestHarmonizer(0.3)
	cfg := DefaultConfig()
	cfg.Harmony = true

	h.NoteOn("65", 440, cfg)
	if m.Active("65_h") {
		t.Fatal("a draw equal to the probability must not add a ghost")
	}
}

func TestHarmonizerDisabledDrawsNothing(t *testing.T) {
	m, h := newTestHarmonizer()
	h.NoteOn("65", 440, DefaultConfig())
	if m.Len() != 1 {
		t.Fatalf("expected only the real voice, got %d", m.Len())
	}
}

func TestHarmonizerRepeatDoesNotRetry(t *testing.T) {
	m, h := newTestHarmonizer(0.9)
	cfg := DefaultConfig()
	cfg.Harmony = true

	h.NoteOn("65", 440, cfg)
	// A second trial would panic on the exhausted source.
	if h.NoteOn("65", 440, cfg) {
		t.Fatal("repeat should be ignored")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 voice, got %d", m.Len())
	}
}

func TestHarmonizerNoteOffReleasesGhost(t *testing.T) {
	m, h := newTestHarmonizer(0)
	cfg := DefaultConfig()
	cfg.Harmony = true
	h.NoteOn("65", 440, cfg)

	if !h.NoteOff("65", cfg.Envelope) {
		t.Fatal("expected release")
	}
	if m.Len() != 0 {
		t.Fatalf("ghost survived release: %v", m.Keys())
	}
	if h.NoteOff("65", cfg.Envelope) {
		t.Fatal("second release should report nothing released")
	}
}

func TestHarmonizerGhostRate(t *testing.T) {
	_, m := newTestManager(nil)
	h := NewHarmonizer(m, rand.New(rand.NewPCG(1, 2)))
	cfg := DefaultConfig()
	cfg.Harmony = true

	const trials = 10000
	var ghosts int
	for i := 0; i < trials; i++ {
		h.NoteOn("65", 440, cfg)
		if m.Active("65_h") {
			ghosts++
		}
		h.NoteOff("65", cfg.Envelope)
	}
	rate := float64(ghosts) / trials
	if rate < 0.27 || rate > 0.33 {
		t.Fatalf("ghost rate %f outside [0.27, 0.33]", rate)
	}
}
