// Package visual tracks sounding notes as colours for the front ends
package visual

import (
	"math"
	"sort"
	"sync"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/oisee/synthkeys/pkg/synth"
)

// HSL is a note colour: hue in degrees, saturation and lightness in percent
type HSL struct {
	Hue   float64
	Sat   float64
	Light float64
}

// Color converts c for drawing
func (c HSL) Color() colorful.Color {
	return colorful.Hsl(c.Hue, c.Sat/100, c.Light/100)
}

// Hex returns c as #rrggbb
func (c HSL) Hex() string {
	return c.Color().Clamped().Hex()
}

// Palette holds one colour per pitch class, C first
var Palette = [12]HSL{
	{0, 85, 65},   // C
	{25, 90, 60},  // C#
	{45, 95, 60},  // D
	{55, 90, 65},  // D#
	{90, 80, 55},  // E
	{150, 75, 60}, // F
	{175, 85, 55}, // F#
	{200, 85, 60}, // G
	{240, 75, 65}, // G#
	{280, 80, 60}, // A
	{310, 85, 60}, // A#
	{340, 80, 65}, // B
}

// PitchClassOf returns the nearest equal-tempered pitch class of freq, 0 for C
func PitchClassOf(freq float64) int {
	if freq <= 0 {
		return 0
	}
	note := int(math.Round(69 + 12*math.Log2(freq/440)))
	return ((note % 12) + 12) % 12
}

// ColorFor returns the palette colour of freq
func ColorFor(freq float64) HSL {
	return Palette[PitchClassOf(freq)]
}

// Blend averages colours: circular mean of hue, arithmetic mean of the rest
func Blend(colors []HSL) (HSL, bool) {
	if len(colors) == 0 {
		return HSL{}, false
	}
	var sin, cos, sat, light float64
	for _, c := range colors {
		rad := c.Hue * math.Pi / 180
		sin += math.Sin(rad)
		cos += math.Cos(rad)
		sat += c.Sat
		light += c.Light
	}
	n := float64(len(colors))
	hue := math.Mod(math.Atan2(sin, cos)*180/math.Pi+360, 360)
	return HSL{Hue: hue, Sat: sat / n, Light: light / n}, true
}

// Scene implements synth.Observer. It is safe for concurrent use so a renderer
// may read it from another goroutine.
type Scene struct {
	mu     sync.Mutex
	active map[synth.KeyID]HSL
	order  []synth.KeyID
	bursts []Burst
	motes  []Particle
	rand   synth.RandomSource
	now    func() time.Time
}

var _ synth.Observer = (*Scene)(nil)

// NewScene creates an empty scene. r jitters burst placement; nil uses a fixed
// midpoint.
func NewScene(r synth.RandomSource) *Scene {
	if r == nil {
		r = midpoint{}
	}
	return &Scene{
		active: make(map[synth.KeyID]HSL),
		rand:   r,
		now:    time.Now,
	}
}

func (s *Scene) VoiceStarted(key synth.KeyID, freq float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := ColorFor(freq)
	if _, ok := s.active[key]; !ok {
		s.order = append(s.order, key)
	}
	s.active[key] = c
	now := s.now()
	s.bursts = append(s.bursts, spawnBursts(key, freq, c, now, s.rand)...)
	s.motes = append(s.motes, spawnParticles(key, c, now, s.rand)...)
}

func (s *Scene) VoiceStopped(key synth.KeyID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[key]; !ok {
		return
	}
	delete(s.active, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Lit returns the colour of key while it sounds
func (s *Scene) Lit(key synth.KeyID) (HSL, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active[key]
	return c, ok
}

// Active returns the sounding keys in sorted order
func (s *Scene) Active() []synth.KeyID {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]synth.KeyID, 0, len(s.active))
	for k := range s.active {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Colors returns the sounding colours in trigger order
func (s *Scene) Colors() []HSL {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HSL, len(s.order))
	for i, k := range s.order {
		out[i] = s.active[k]
	}
	return out
}

// Blend returns the mixed colour of every sounding note
func (s *Scene) Blend() (HSL, bool) {
	return Blend(s.Colors())
}

// Bursts drops expired bursts and returns the live ones at now
func (s *Scene) Bursts(now time.Time) []Burst {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.bursts[:0]
	for _, b := range s.bursts {
		if b.Alive(now) {
			live = append(live, b)
		}
	}
	clear(s.bursts[len(live):])
	s.bursts = live
	return append([]Burst(nil), live...)
}

// Particles drops removed particles and returns the rest at now. Particles
// still in their start delay are included with zero alpha.
func (s *Scene) Particles(now time.Time) []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.motes[:0]
	for _, p := range s.motes {
		if p.Alive(now) {
			live = append(live, p)
		}
	}
	clear(s.motes[len(live):])
	s.motes = live
	return append([]Particle(nil), live...)
}

type midpoint struct{}

func (midpoint) Float64() float64 { return 0.5 }
