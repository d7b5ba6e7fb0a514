package audio

import (
	"math"
)

// Oscillator generates waveforms between its start and stop frames
type Oscillator struct {
	ctx        *Context
	waveform   Waveform
	frequency  *Automation
	phase      float64 // 0.0-1.0
	noiseState uint32

	started    bool
	startFrame int64
	stopFrame  int64 // -1 while no stop is scheduled

	lastFrame int64
	last      float64
}

func newOscillator(ctx *Context, w Waveform) *Oscillator {
	return &Oscillator{
		ctx:        ctx,
		waveform:   w,
		frequency:  newAutomation(ctx, 440),
		noiseState: 0x9e3779b9,
		stopFrame:  -1,
		lastFrame:  -1,
	}
}

// Waveform returns the generated shape
func (o *Oscillator) Waveform() Waveform {
	return o.waveform
}

// Frequency returns the frequency param in Hz
func (o *Oscillator) Frequency() Param {
	return o.frequency
}

// Connect feeds the oscillator output into dst
func (o *Oscillator) Connect(dst Node) {
	connect(o.ctx, o, dst)
}

// ConnectParam adds the oscillator output to dst
func (o *Oscillator) ConnectParam(dst Param) {
	connectParam(o.ctx, o, dst)
}

// Start schedules the first audible frame. Times in the past start immediately.
func (o *Oscillator) Start(t float64) error {
	if o.started {
		return ErrAlreadyStarted
	}
	o.started = true
	o.startFrame = max(o.ctx.frameAt(t), o.ctx.Frame())
	return nil
}

// Stop schedules the first silent frame. A stop that has not been reached yet
// may be moved; stopping a finished or never started source returns an error.
func (o *Oscillator) Stop(t float64) error {
	if !o.started {
		return ErrNotStarted
	}
	if o.stopFrame >= 0 && o.stopFrame <= o.ctx.Frame() {
		return ErrStopped
	}
	o.stopFrame = max(o.ctx.frameAt(t), o.startFrame)
	return nil
}

// StopTime returns the scheduled stop in seconds, or -1 if none is scheduled
func (o *Oscillator) StopTime() float64 {
	if o.stopFrame < 0 {
		return -1
	}
	return float64(o.stopFrame) / o.ctx.sampleRate
}

func (o *Oscillator) finished(frame int64) bool {
	return o.stopFrame >= 0 && frame >= o.stopFrame
}

// sample generates the value for frame (-1.0 to 1.0) and advances the phase
func (o *Oscillator) sample(frame int64) float64 {
	if frame == o.lastFrame {
		return o.last
	}
	o.lastFrame = frame
	if !o.started || frame < o.startFrame || o.finished(frame) {
		o.last = 0
		return 0
	}

	freq := o.frequency.render(frame, float64(frame)/o.ctx.sampleRate)

	var v float64
	switch o.waveform {
	case Sine:
		v = math.Sin(2 * math.Pi * o.phase)
	case Square:
		v = o.square()
	case Sawtooth:
		v = o.sawtooth()
	case Triangle:
		v = o.triangle()
	case Noise:
		v = o.noise()
	}

	// Advance phase; negative frequencies from deep FM run backwards
	o.phase += freq / o.ctx.sampleRate
	o.phase -= math.Floor(o.phase)

	o.last = v
	return v
}

// Triangle wave: /\/\/\
func (o *Oscillator) triangle() float64 {
	p := o.phase
	if p < 0.5 {
		return 4.0*p - 1.0
	}
	return 3.0 - 4.0*p
}

// Sawtooth wave: /|/|/|
func (o *Oscillator) sawtooth() float64 {
	return 2.0*o.phase - 1.0
}

// Square wave: _|-|_|-|
func (o *Oscillator) square() float64 {
	if o.phase < 0.5 {
		return 1.0
	}
	return -1.0
}

// Noise: xorshift white noise, independent of frequency
func (o *Oscillator) noise() float64 {
	x := o.noiseState
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	o.noiseState = x
	return float64(int32(x)) / float64(math.MaxInt32)
}

// NoteToFreq converts a MIDI note number to frequency
func NoteToFreq(note int) float64 {
	// A4 = note 69 = 440 Hz
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}
