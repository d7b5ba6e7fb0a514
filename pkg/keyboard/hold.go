package keyboard

import (
	"sort"
	"time"

	"github.com/oisee/synthkeys/pkg/synth"
)

// Terminals deliver presses only. A key counts as held while auto-repeat
// presses keep arriving.
const (
	// InitialHold covers the typical auto-repeat delay after the first press
	InitialHold = 550 * time.Millisecond
	// RepeatHold applies once repeats have been seen
	RepeatHold = 150 * time.Millisecond
)

type hold struct {
	last    time.Time
	repeats int
}

// HoldTracker infers key releases from the absence of repeats
type HoldTracker struct {
	Initial time.Duration
	Repeat  time.Duration
	held    map[synth.KeyID]*hold
}

// NewHoldTracker creates a tracker with the default thresholds
func NewHoldTracker() *HoldTracker {
	return &HoldTracker{
		Initial: InitialHold,
		Repeat:  RepeatHold,
		held:    make(map[synth.KeyID]*hold),
	}
}

// Press records a press of key at now. It reports true for a fresh press and
// false for an auto-repeat of a held key.
func (h *HoldTracker) Press(key synth.KeyID, now time.Time) bool {
	if s, ok := h.held[key]; ok {
		s.last = now
		s.repeats++
		return false
	}
	h.held[key] = &hold{last: now}
	return true
}

// Expire forgets and returns, sorted, every key whose hold lapsed at now
func (h *HoldTracker) Expire(now time.Time) []synth.KeyID {
	var out []synth.KeyID
	for key, s := range h.held {
		limit := h.Initial
		if s.repeats > 0 {
			limit = h.Repeat
		}
		if now.Sub(s.last) >= limit {
			out = append(out, key)
			delete(h.held, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Held reports whether key is being held
func (h *HoldTracker) Held(key synth.KeyID) bool {
	_, ok := h.held[key]
	return ok
}

// Len returns the number of held keys
func (h *HoldTracker) Len() int {
	return len(h.held)
}

// Reset forgets every key
func (h *HoldTracker) Reset() {
	clear(h.held)
}
