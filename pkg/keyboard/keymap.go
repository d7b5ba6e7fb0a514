// Package keyboard maps computer keys to notes and turns key events into
// voice triggers
package keyboard

import (
	"strconv"
	"unicode"

	"github.com/oisee/synthkeys/pkg/audio"
	"github.com/oisee/synthkeys/pkg/synth"
)

// Octave transpose limits
const (
	MinOctave = -2
	MaxOctave = 2
)

// Key is one playable key of the layout
type Key struct {
	Code  synth.KeyID // decimal upper-case character code, "90" for Z
	Char  rune
	Note  int // MIDI note before transposition
	Black bool
}

// Name returns the tracker-style note name, e.g. "C#4"
func (k Key) Name() string {
	return NoteName(k.Note)
}

// Layout is the two-octave key table in chromatic order: Z..M from C4 with the
// home row as sharps, Q..U from C5 with the digit row as sharps.
var Layout = []Key{
	key('Z', 60), key('S', 61), key('X', 62), key('D', 63), key('C', 64), key('V', 65),
	key('G', 66), key('B', 67), key('H', 68), key('N', 69), key('J', 70), key('M', 71),
	key('Q', 72), key('2', 73), key('W', 74), key('3', 75), key('E', 76), key('R', 77),
	key('5', 78), key('T', 79), key('6', 80), key('Y', 81), key('7', 82), key('U', 83),
}

func key(ch rune, note int) Key {
	return Key{Code: CodeFor(ch), Char: ch, Note: note, Black: IsBlack(note)}
}

// CodeFor returns the key identifier of a character, case-insensitive
func CodeFor(ch rune) synth.KeyID {
	return synth.KeyID(strconv.Itoa(int(unicode.ToUpper(ch))))
}

var noteNames = []string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// NoteName converts a MIDI note to a name like "C-4"
func NoteName(note int) string {
	if note < 0 {
		return "---"
	}
	return noteNames[note%12] + strconv.Itoa(note/12-1)
}

// PitchClass returns 0 for C through 11 for B
func PitchClass(note int) int {
	return ((note % 12) + 12) % 12
}

// IsBlack reports whether note falls on a black key
func IsBlack(note int) bool {
	switch PitchClass(note) {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// KeyMap resolves key identifiers to frequencies under an octave transpose
type KeyMap struct {
	byCode map[synth.KeyID]Key
	octave int
}

// NewKeyMap creates a map over Layout
func NewKeyMap() *KeyMap {
	m := &KeyMap{byCode: make(map[synth.KeyID]Key, len(Layout))}
	for _, k := range Layout {
		m.byCode[k.Code] = k
	}
	return m
}

// Lookup returns the key for code
func (m *KeyMap) Lookup(code synth.KeyID) (Key, bool) {
	k, ok := m.byCode[code]
	return k, ok
}

// LookupRune returns the key typed as ch
func (m *KeyMap) LookupRune(ch rune) (Key, bool) {
	return m.Lookup(CodeFor(ch))
}

// FrequencyFor returns the equal-tempered frequency of code at the current octave
func (m *KeyMap) FrequencyFor(code synth.KeyID) (float64, bool) {
	k, ok := m.byCode[code]
	if !ok {
		return 0, false
	}
	return audio.NoteToFreq(k.Note + 12*m.octave), true
}

// Octave returns the transpose in octaves
func (m *KeyMap) Octave() int {
	return m.octave
}

// SetOctave sets the transpose, clamped to MinOctave..MaxOctave
func (m *KeyMap) SetOctave(o int) int {
	m.octave = max(MinOctave, min(MaxOctave, o))
	return m.octave
}

// ShiftOctave moves the transpose by delta
func (m *KeyMap) ShiftOctave(delta int) int {
	return m.SetOctave(m.octave + delta)
}
