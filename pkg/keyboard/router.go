package keyboard

import (
	"log/slog"

	"github.com/oisee/synthkeys/pkg/synth"
)

// Voicer starts and releases voices. *synth.Synth implements it; its NoteOff
// releases the ghost identifier together with the real one.
type Voicer interface {
	NoteOn(key synth.KeyID, freq float64, cfg synth.Config) bool
	NoteOff(key synth.KeyID, env synth.Envelope) bool
	Active(key synth.KeyID) bool
}

// Router turns raw key events into note triggers
type Router struct {
	voices Voicer
	keys   *KeyMap
	config func() synth.Config
	logger *slog.Logger
}

// NewRouter creates a router. config is read at every press and release.
func NewRouter(v Voicer, keys *KeyMap, config func() synth.Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{voices: v, keys: keys, config: config, logger: logger}
}

// Keys returns the key map
func (r *Router) Keys() *KeyMap {
	return r.keys
}

// Press triggers code. Unknown and already sounding keys are ignored.
func (r *Router) Press(code synth.KeyID) bool {
	freq, ok := r.keys.FrequencyFor(code)
	if !ok {
		r.logger.Debug("unmapped key", "code", code)
		return false
	}
	if r.voices.Active(code) {
		return false
	}
	return r.voices.NoteOn(code, freq, r.config())
}

// Release releases code and its ghost
func (r *Router) Release(code synth.KeyID) bool {
	if _, ok := r.keys.Lookup(code); !ok {
		return false
	}
	return r.voices.NoteOff(code, r.config().Envelope)
}
