package synth

import (
	"math"

	"github.com/oisee/synthkeys/pkg/audio"
)

// Patch builds the generating part of one voice. Wire connects the sources into
// amp and returns them unstarted; the first source is the primary oscillator
// that pitch modulation attaches to.
type Patch interface {
	Wire(g audio.Graph, freq float64, amp audio.Node, now float64) []audio.OscillatorNode
}

// WaveformPatch is a single oscillator of a selectable shape
type WaveformPatch struct {
	Waveform audio.Waveform
}

func (p WaveformPatch) Wire(g audio.Graph, freq float64, amp audio.Node, now float64) []audio.OscillatorNode {
	osc := g.NewOscillator(p.Waveform)
	osc.Frequency().SetValueAtTime(freq, now)
	osc.Connect(amp)
	return []audio.OscillatorNode{osc}
}

// AdditivePatch stacks sine partials at integer multiples of the fundamental
type AdditivePatch struct {
	Partials int
	Rolloff  float64
}

// PartialAmplitude returns the level of partial i (1-based): 1/i^rolloff
func PartialAmplitude(i int, rolloff float64) float64 {
	return 1 / math.Pow(float64(i), rolloff)
}

func (p AdditivePatch) Wire(g audio.Graph, freq float64, amp audio.Node, now float64) []audio.OscillatorNode {
	n := max(1, p.Partials)
	rolloff := math.Max(0, p.Rolloff)
	sources := make([]audio.OscillatorNode, 0, n)
	for i := 1; i <= n; i++ {
		osc := g.NewOscillator(audio.Sine)
		osc.Frequency().SetValueAtTime(freq*float64(i), now)

		partial := g.NewGain()
		partial.Gain().SetValueAtTime(PartialAmplitude(i, rolloff), now)

		osc.Connect(partial)
		partial.Connect(amp)
		sources = append(sources, osc)
	}
	return sources
}

// AMPatch multiplies a sine carrier by (1 - depth/2) + modulator*depth/2
type AMPatch struct {
	Frequency float64
	Depth     float64
}

// AMBias returns the constant part of the carrier multiplier
func AMBias(depth float64) float64 {
	return 1 - clamp01(depth)/2
}

// AMSwing returns the modulator scale on the carrier multiplier
func AMSwing(depth float64) float64 {
	return clamp01(depth) / 2
}

func (p AMPatch) Wire(g audio.Graph, freq float64, amp audio.Node, now float64) []audio.OscillatorNode {
	carrier := g.NewOscillator(audio.Sine)
	carrier.Frequency().SetValueAtTime(freq, now)

	modulator := g.NewOscillator(audio.Sine)
	modulator.Frequency().SetValueAtTime(p.Frequency, now)

	multiplier := g.NewGain()
	multiplier.Gain().SetValueAtTime(AMBias(p.Depth), now)

	swing := g.NewGain()
	swing.Gain().SetValueAtTime(AMSwing(p.Depth), now)

	modulator.Connect(swing)
	swing.ConnectParam(multiplier.Gain())
	carrier.Connect(multiplier)
	multiplier.Connect(amp)
	return []audio.OscillatorNode{carrier, modulator}
}

// FMPatch drives a sine carrier's frequency with a sine modulator
type FMPatch struct {
	Ratio float64
	Index float64
}

// FMModulator returns the modulator frequency and the peak frequency deviation
// for a carrier at freq.
func FMModulator(freq, ratio, index float64) (modFreq, deviation float64) {
	modFreq = freq * ratio
	return modFreq, modFreq * index
}

func (p FMPatch) Wire(g audio.Graph, freq float64, amp audio.Node, now float64) []audio.OscillatorNode {
	modFreq, deviation := FMModulator(freq, p.Ratio, p.Index)

	modulator := g.NewOscillator(audio.Sine)
	modulator.Frequency().SetValueAtTime(modFreq, now)

	depth := g.NewGain()
	depth.Gain().SetValueAtTime(deviation, now)

	carrier := g.NewOscillator(audio.Sine)
	carrier.Frequency().SetValueAtTime(freq, now)

	modulator.Connect(depth)
	depth.ConnectParam(carrier.Frequency())
	carrier.Connect(amp)
	return []audio.OscillatorNode{carrier, modulator}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
