package visual

import (
	"math"
	"time"

	"github.com/oisee/synthkeys/pkg/synth"
)

// Burst sizes in pixels
const (
	MinBurstSize = 120
	MaxBurstSize = 350
	// BurstJitter is the largest random size increase
	BurstJitter = 80
)

// Burst lifetimes
const (
	BurstLife       = 3 * time.Second
	RisingBurstLife = 3500 * time.Millisecond
	BurstStagger    = 100 * time.Millisecond
)

// Burst is a fading circle spawned by a note. X and Y are fractions of the
// canvas.
type Burst struct {
	Key    synth.KeyID
	Color  HSL
	X, Y   float64
	Size   float64
	Rising bool
	Born   time.Time
	Life   time.Duration
}

// BurstSize returns the clamped diameter for freq plus jitter; lower notes are larger
func BurstSize(freq, jitter float64) float64 {
	return math.Max(MinBurstSize, math.Min(MaxBurstSize, 180+(1000-freq)*0.25+jitter))
}

// Progress returns 0 at birth and 1 at the end of life
func (b Burst) Progress(now time.Time) float64 {
	if b.Life <= 0 {
		return 1
	}
	p := float64(now.Sub(b.Born)) / float64(b.Life)
	return math.Max(0, math.Min(1, p))
}

// Alive reports whether the burst is still visible at now
func (b Burst) Alive(now time.Time) bool {
	return now.Sub(b.Born) < b.Life
}

// Alpha returns the opacity at now, fading out over the lifetime
func (b Burst) Alpha(now time.Time) float64 {
	if now.Before(b.Born) {
		return 0
	}
	return 0.85 * (1 - b.Progress(now))
}

// Offset returns the upward drift of a rising burst as a fraction of the canvas
func (b Burst) Offset(now time.Time) float64 {
	if !b.Rising {
		return 0
	}
	return 0.3 * b.Progress(now)
}

func spawnBursts(key synth.KeyID, freq float64, c HSL, now time.Time, r synth.RandomSource) []Burst {
	n := 2 + int(r.Float64()*2)
	out := make([]Burst, 0, n)
	for i := 0; i < n; i++ {
		rising := r.Float64() > 0.4
		b := Burst{
			Key:    key,
			Color:  c,
			X:      r.Float64(),
			Rising: rising,
			Born:   now.Add(time.Duration(i) * BurstStagger),
			Life:   BurstLife,
		}
		if rising {
			b.Y = 0.7 + r.Float64()*0.3
			b.Life = RisingBurstLife
		} else {
			b.Y = r.Float64()
		}
		b.Size = BurstSize(freq, r.Float64()*BurstJitter)
		out = append(out, b)
	}
	return out
}

// Particle geometry and timing
const (
	MinParticleSize   = 30
	ParticleSizeRange = 50
	ParticleLife      = 2800 * time.Millisecond
	ParticleMaxDelay  = 300 * time.Millisecond
	ParticleAlpha     = 0.6
)

// Particle is a small floating dot spawned beside the bursts of a note. It
// becomes visible at Start and is removed at End, both measured from the
// trigger.
type Particle struct {
	Key   synth.KeyID
	Color HSL
	X, Y  float64
	Size  float64
	Start time.Time
	End   time.Time
}

// Alive reports whether the particle has not been removed yet
func (p Particle) Alive(now time.Time) bool {
	return now.Before(p.End)
}

// Progress returns 0 at Start and 1 at End
func (p Particle) Progress(now time.Time) float64 {
	span := p.End.Sub(p.Start)
	if span <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, float64(now.Sub(p.Start))/float64(span)))
}

// Alpha is zero during the start delay, then fades from ParticleAlpha
func (p Particle) Alpha(now time.Time) float64 {
	if now.Before(p.Start) || !p.Alive(now) {
		return 0
	}
	return ParticleAlpha * (1 - p.Progress(now))
}

// Offset returns the upward float as a fraction of the canvas
func (p Particle) Offset(now time.Time) float64 {
	return 0.2 * p.Progress(now)
}

func spawnParticles(key synth.KeyID, c HSL, now time.Time, r synth.RandomSource) []Particle {
	n := 3 + int(r.Float64()*3)
	out := make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		p := Particle{
			Key:   key,
			Color: c,
			X:     r.Float64(),
			Y:     0.5 + r.Float64()*0.5,
			Size:  MinParticleSize + r.Float64()*ParticleSizeRange,
			End:   now.Add(ParticleLife),
		}
		p.Start = now.Add(time.Duration(r.Float64() * float64(ParticleMaxDelay)))
		out = append(out, p)
	}
	return out
}
