// Package audio implements the clocked audio graph the synthesizer renders through
package audio

import (
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by scheduled sources. None of them is fatal: release paths may
// race with very short envelopes and are expected to ignore them.
var (
	ErrAlreadyStarted = errors.New("audio: source already started")
	ErrNotStarted     = errors.New("audio: source not started")
	ErrStopped        = errors.New("audio: source already stopped")
)

// Waveform selects the shape an oscillator generates
type Waveform uint8

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
	Noise
)

var waveformNames = [...]string{"sine", "square", "sawtooth", "triangle", "noise"}

// Waveforms lists every supported shape in display order
var Waveforms = []Waveform{Sine, Square, Sawtooth, Triangle, Noise}

func (w Waveform) String() string {
	if int(w) < len(waveformNames) {
		return waveformNames[w]
	}
	return "unknown"
}

// ParseWaveform converts a waveform name to its value
func ParseWaveform(s string) (Waveform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "saw" {
		name = "sawtooth"
	}
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return 0, errors.Errorf("audio: unknown waveform %q", s)
}

// Param is an automatable value. Times are seconds on the graph clock.
//
// The rendered value of a param is its automation value plus the sum of every
// signal connected to it with Node.ConnectParam.
type Param interface {
	SetValueAtTime(value, t float64)
	LinearRampToValueAtTime(value, t float64)
	ExponentialRampToValueAtTime(value, t float64)
	SetTargetAtTime(target, t, timeConstant float64)
	CancelScheduledValues(t float64)
	CancelAndHoldAtTime(t float64)
	// ValueAt returns the automation value at t, excluding connected signals.
	ValueAt(t float64) float64
}

// Node produces a signal that can feed another node or modulate a param
type Node interface {
	Connect(dst Node)
	ConnectParam(dst Param)
}

// GainNode sums its inputs and multiplies them by an automatable gain
type GainNode interface {
	Node
	Gain() Param
}

// OscillatorNode is a generating source with a scheduled lifetime
type OscillatorNode interface {
	Node
	Waveform() Waveform
	Frequency() Param
	Start(t float64) error
	Stop(t float64) error
}

// Graph is the backend contract the synthesizer builds voices against.
// Any implementation meeting it can replace Context.
type Graph interface {
	SampleRate() float64
	CurrentTime() float64
	NewOscillator(w Waveform) OscillatorNode
	NewGain() GainNode
	Destination() Node
	// Update runs fn atomically with respect to rendering.
	Update(fn func())
}
