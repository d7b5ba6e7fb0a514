package synth

import (
	"log/slog"
	"math"
	"sort"

	"github.com/oisee/synthkeys/pkg/audio"
)

// ScaleTimeConstant smooths anti-clipping changes so they do not click
const ScaleTimeConstant = 0.01

// Observer is notified when voices start and stop. Return values are not consulted.
type Observer interface {
	VoiceStarted(key KeyID, freq float64)
	VoiceStopped(key KeyID)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped
type ObserverFuncs struct {
	Started func(key KeyID, freq float64)
	Stopped func(key KeyID)
}

func (o ObserverFuncs) VoiceStarted(key KeyID, freq float64) {
	if o.Started != nil {
		o.Started(key, freq)
	}
}

func (o ObserverFuncs) VoiceStopped(key KeyID) {
	if o.Stopped != nil {
		o.Stopped(key)
	}
}

// Observers fans events out to several observers in order
type Observers []Observer

func (os Observers) VoiceStarted(key KeyID, freq float64) {
	for _, o := range os {
		o.VoiceStarted(key, freq)
	}
}

func (os Observers) VoiceStopped(key KeyID) {
	for _, o := range os {
		o.VoiceStopped(key)
	}
}

// AntiClipScale returns the per-voice scale for n concurrent voices
func AntiClipScale(n int) float64 {
	return 1 / math.Sqrt(float64(max(1, n)))
}

// Manager owns the active voice registry. It holds at most one voice per key.
//
// A Manager is driven from a single control goroutine and is not safe for
// concurrent use; rendering runs concurrently through Graph.Update.
type Manager struct {
	graph    audio.Graph
	factory  *Factory
	voices   map[KeyID]*Voice
	observer Observer
	logger   *slog.Logger
}

// NewManager creates a manager building voices into out
func NewManager(g audio.Graph, out audio.Node, observer Observer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	factory := NewFactory(g, out)
	factory.Logger = logger
	return &Manager{
		graph:    g,
		factory:  factory,
		voices:   make(map[KeyID]*Voice),
		observer: observer,
		logger:   logger,
	}
}

// Factory returns the voice factory, e.g. to change the base level
func (m *Manager) Factory() *Factory {
	return m.factory
}

// NoteOn starts a voice for key. It returns false if key already sounds.
func (m *Manager) NoteOn(key KeyID, freq float64, cfg Config) bool {
	if _, ok := m.voices[key]; ok {
		m.logger.Debug("duplicate note on ignored", "key", key)
		return false
	}

	m.graph.Update(func() {
		v := m.factory.NewVoice(freq, cfg, AntiClipScale(len(m.voices)+1))
		v.Key = key
		m.voices[key] = v
		m.rescale()
	})

	m.logger.Debug("note on", "key", key, "freq", freq, "mode", cfg.Mode, "voices", len(m.voices))
	if m.observer != nil {
		m.observer.VoiceStarted(key, freq)
	}
	return true
}

// NoteOff releases the voice for key. The voice leaves the registry at once
// while its tail keeps decaying until the scheduled stop. It returns false if
// key was not sounding.
func (m *Manager) NoteOff(key KeyID, env Envelope) bool {
	v, ok := m.voices[key]
	if !ok {
		return false
	}

	m.graph.Update(func() {
		m.release(v, env)
		delete(m.voices, key)
		m.rescale()
	})

	m.logger.Debug("note off", "key", key, "voices", len(m.voices))
	if m.observer != nil {
		m.observer.VoiceStopped(key)
	}
	return true
}

// ReleaseAll releases every active voice
func (m *Manager) ReleaseAll(env Envelope) int {
	keys := m.Keys()
	m.graph.Update(func() {
		for _, key := range keys {
			m.release(m.voices[key], env)
			delete(m.voices, key)
		}
	})
	if m.observer != nil {
		for _, key := range keys {
			m.observer.VoiceStopped(key)
		}
	}
	return len(keys)
}

// Active reports whether key has a voice
func (m *Manager) Active(key KeyID) bool {
	_, ok := m.voices[key]
	return ok
}

// Voice returns the voice for key
func (m *Manager) Voice(key KeyID) (*Voice, bool) {
	v, ok := m.voices[key]
	return v, ok
}

// Len returns the number of active voices
func (m *Manager) Len() int {
	return len(m.voices)
}

// Keys returns the active keys in sorted order
func (m *Manager) Keys() []KeyID {
	keys := make([]KeyID, 0, len(m.voices))
	for k := range m.voices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (m *Manager) release(v *Voice, env Envelope) {
	stopAt := ApplyRelease(v.Amp.Gain(), m.graph.CurrentTime(), env)
	for _, src := range v.Sources {
		if err := src.Stop(stopAt); err != nil {
			m.logger.Debug("redundant source stop", "key", v.Key, "err", err)
		}
	}
}

// rescale applies the anti-clipping scale for the current registry size
func (m *Manager) rescale() {
	scale := AntiClipScale(len(m.voices))
	now := m.graph.CurrentTime()
	for _, v := range m.voices {
		p := v.Trim.Gain()
		p.CancelAndHoldAtTime(now)
		p.SetTargetAtTime(scale, now, ScaleTimeConstant)
		v.scale = scale
	}
}
