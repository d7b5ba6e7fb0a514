package synth

import (
	"math"

	"github.com/oisee/synthkeys/pkg/audio"
)

const (
	// Floor is the smallest envelope level. Exponential ramps are undefined at zero.
	Floor = 1e-4
	// MinReleaseTimeConstant keeps very short releases from clicking
	MinReleaseTimeConstant = 0.01
	// StopMargin is added to the release time before sources are hard-stopped
	StopMargin = 0.1
)

// ApplyAttackDecaySustain schedules the attack and decay curves on p starting at now.
// Anything previously scheduled on p from now on is replaced.
func ApplyAttackDecaySustain(p audio.Param, now, peak float64, env Envelope) {
	peakLevel := math.Max(Floor, peak)
	sustainLevel := math.Max(Floor, peak*env.Sustain)
	attackEnd := now + math.Max(0, env.Attack)
	decayEnd := attackEnd + math.Max(0, env.Decay)

	p.CancelScheduledValues(now)
	p.SetValueAtTime(Floor, now)
	p.ExponentialRampToValueAtTime(peakLevel, attackEnd)
	p.ExponentialRampToValueAtTime(sustainLevel, decayEnd)
}

// ReleaseTimeConstant returns the set-target time constant for a release time
func ReleaseTimeConstant(release float64) float64 {
	return math.Max(MinReleaseTimeConstant, release/6)
}

// ApplyRelease replaces pending automation on p with a decay toward Floor and
// returns the instant at which the voice sources should stop.
func ApplyRelease(p audio.Param, now float64, env Envelope) (stopAt float64) {
	release := math.Max(0, env.Release)
	p.CancelAndHoldAtTime(now)
	p.SetTargetAtTime(Floor, now, ReleaseTimeConstant(release))
	return now + release + StopMargin
}
