package audio

import (
	"math"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
)

// DefaultSampleRate is used when a context is created with a non-positive rate
const DefaultSampleRate = 44100

// Context is a pull-rendered audio graph with a frame clock.
//
// Graph mutations from the control side go through Update; rendering holds the
// same lock for a whole block, so one control event is never split by a block.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      atomic.Int64
	dest       *Gain
	scratch    []float64
}

var _ Graph = (*Context)(nil)

// NewContext creates a context rendering at sampleRate frames per second
func NewContext(sampleRate int) *Context {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	c := &Context{sampleRate: float64(sampleRate)}
	c.dest = newGain(c)
	return c
}

// SampleRate returns frames per second
func (c *Context) SampleRate() float64 {
	return c.sampleRate
}

// Frame returns the next frame to be rendered
func (c *Context) Frame() int64 {
	return c.frame.Load()
}

// CurrentTime returns the graph clock in seconds
func (c *Context) CurrentTime() float64 {
	return float64(c.frame.Load()) / c.sampleRate
}

// NewOscillator creates an unstarted oscillator
func (c *Context) NewOscillator(w Waveform) OscillatorNode {
	return newOscillator(c, w)
}

// NewGain creates a unity gain node
func (c *Context) NewGain() GainNode {
	return newGain(c)
}

// Destination returns the final sink
func (c *Context) Destination() Node {
	return c.dest
}

// Live returns the number of nodes connected to the destination.
// It must not be called from inside Update.
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dest.Inputs()
}

// Update runs fn while rendering is paused
func (c *Context) Update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// RenderMono renders len(dst) frames and advances the clock
func (c *Context) RenderMono(dst []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := c.frame.Load()
	for i := range dst {
		dst[i] = c.dest.sample(frame)
		frame++
		c.frame.Store(frame)
	}
	c.dest.prune(frame)
}

// Render fills buf with interleaved frames, duplicating the mono mix across
// channels, and returns the number of frames rendered.
func (c *Context) Render(buf *goaudio.FloatBuffer) int {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	frames := len(buf.Data) / channels
	if cap(c.scratch) < frames {
		c.scratch = make([]float64, frames)
	}
	mono := c.scratch[:frames]
	c.RenderMono(mono)
	for i, s := range mono {
		for ch := 0; ch < channels; ch++ {
			buf.Data[i*channels+ch] = s
		}
	}
	return frames
}

// frameAt converts seconds to the first frame at or after t
func (c *Context) frameAt(t float64) int64 {
	if t <= 0 {
		return 0
	}
	return int64(math.Ceil(t*c.sampleRate - 1e-9))
}
