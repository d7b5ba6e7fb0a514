package synth

import (
	"log/slog"

	"github.com/oisee/synthkeys/pkg/audio"
)

// Synth wires the polyphony manager and harmonizer behind a master gain
type Synth struct {
	graph   audio.Graph
	master  audio.GainNode
	voices  *Manager
	harmony *Harmonizer
	volume  float64
}

// Option configures a Synth
type Option func(*options)

type options struct {
	observer    Observer
	logger      *slog.Logger
	rand        RandomSource
	probability float64
	baseLevel   float64
}

// WithObserver receives voice start/stop notifications
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithRand sets the random source used for harmony trials
func WithRand(r RandomSource) Option {
	return func(opts *options) { opts.rand = r }
}

// WithHarmonyProbability sets the ghost voice probability
func WithHarmonyProbability(p float64) Option {
	return func(opts *options) { opts.probability = p }
}

// WithBaseLevel sets the envelope peak of each voice
func WithBaseLevel(level float64) Option {
	return func(opts *options) { opts.baseLevel = level }
}

// New creates a synth on g with the master volume taken from volume
func New(g audio.Graph, volume float64, opts ...Option) *Synth {
	o := options{probability: HarmonyProbability, baseLevel: BaseLevel}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Synth{graph: g, volume: volume}
	g.Update(func() {
		s.master = g.NewGain()
		s.master.Gain().SetValueAtTime(volume, g.CurrentTime())
		s.master.Connect(g.Destination())
	})

	s.voices = NewManager(g, s.master, o.observer, o.logger)
	s.voices.Factory().BaseLevel = o.baseLevel
	s.harmony = NewHarmonizer(s.voices, o.rand)
	s.harmony.Probability = o.probability
	return s
}

// NoteOn triggers key at freq with the given snapshot
func (s *Synth) NoteOn(key KeyID, freq float64, cfg Config) bool {
	return s.harmony.NoteOn(key, freq, cfg)
}

// NoteOff releases key and its ghost
func (s *Synth) NoteOff(key KeyID, env Envelope) bool {
	return s.harmony.NoteOff(key, env)
}

// Active reports whether key sounds
func (s *Synth) Active(key KeyID) bool {
	return s.voices.Active(key)
}

// Panic releases every voice
func (s *Synth) Panic(env Envelope) int {
	return s.voices.ReleaseAll(env)
}

// Voices returns the polyphony manager
func (s *Synth) Voices() *Manager {
	return s.voices
}

// Volume returns the last master volume set
func (s *Synth) Volume() float64 {
	return s.volume
}

// SetVolume glides the master gain to v
func (s *Synth) SetVolume(v float64) {
	if v == s.volume {
		return
	}
	s.volume = v
	s.graph.Update(func() {
		now := s.graph.CurrentTime()
		p := s.master.Gain()
		p.CancelAndHoldAtTime(now)
		p.SetTargetAtTime(v, now, ScaleTimeConstant)
	})
}
