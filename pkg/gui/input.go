package gui

import "github.com/oisee/synthkeys/pkg/synth"

// holds tracks which input holds each key. Mouse and keyboard map to the same
// identifiers, so a key only sounds or stops on the first press and the last
// release across both.
type holds struct {
	mouse synth.KeyID
	keys  map[synth.KeyID]bool
}

func newHolds() *holds {
	return &holds{keys: make(map[synth.KeyID]bool)}
}

// keyDown records a keyboard press and reports whether it should trigger
func (h *holds) keyDown(code synth.KeyID) bool {
	h.keys[code] = true
	return code != h.mouse
}

// keyUp records a keyboard release and reports whether it should stop the note
func (h *holds) keyUp(code synth.KeyID) bool {
	delete(h.keys, code)
	return code != h.mouse
}

// mouseDown records a click and reports whether it should trigger
func (h *holds) mouseDown(code synth.KeyID) bool {
	h.mouse = code
	return !h.keys[code]
}

// mouseUp clears the mouse hold and returns the key to release, if any
func (h *holds) mouseUp() (synth.KeyID, bool) {
	code := h.mouse
	h.mouse = ""
	return code, code != "" && !h.keys[code]
}

// held reports whether the mouse is down on a key
func (h *holds) held() bool {
	return h.mouse != ""
}
