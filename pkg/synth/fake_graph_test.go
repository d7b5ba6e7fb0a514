package synth

import (
	"github.com/oisee/synthkeys/pkg/audio"
)

// Recording graph used to inspect voice topology without rendering

type paramCall struct {
	op    string
	value float64
	t     float64
	tau   float64
}

type fakeParam struct {
	calls   []paramCall
	sources []audio.Node
}

func (p *fakeParam) SetValueAtTime(value, t float64) {
	p.calls = append(p.calls, paramCall{op: "set", value: value, t: t})
}

func (p *fakeParam) LinearRampToValueAtTime(value, t float64) {
	p.calls = append(p.calls, paramCall{op: "linear", value: value, t: t})
}

func (p *fakeParam) ExponentialRampToValueAtTime(value, t float64) {
	p.calls = append(p.calls, paramCall{op: "exp", value: value, t: t})
}

func (p *fakeParam) SetTargetAtTime(target, t, tau float64) {
	p.calls = append(p.calls, paramCall{op: "target", value: target, t: t, tau: tau})
}

func (p *fakeParam) CancelScheduledValues(t float64) {
	p.calls = append(p.calls, paramCall{op: "cancel", t: t})
}

func (p *fakeParam) CancelAndHoldAtTime(t float64) {
	p.calls = append(p.calls, paramCall{op: "hold", t: t})
}

func (p *fakeParam) ValueAt(t float64) float64 {
	var v float64
	for _, c := range p.calls {
		if c.op == "set" && c.t <= t {
			v = c.value
		}
	}
	return v
}

// initial returns the first value set on p
func (p *fakeParam) initial() float64 {
	for _, c := range p.calls {
		if c.op == "set" {
			return c.value
		}
	}
	return 0
}

type fakeGain struct {
	gain    *fakeParam
	outputs []audio.Node
	params  []audio.Param
	inputs  []audio.Node
}

func (g *fakeGain) Gain() audio.Param { return g.gain }

func (g *fakeGain) Connect(dst audio.Node) {
	g.outputs = append(g.outputs, dst)
	if d, ok := dst.(*fakeGain); ok {
		d.inputs = append(d.inputs, g)
	}
}

func (g *fakeGain) ConnectParam(dst audio.Param) {
	g.params = append(g.params, dst)
	dst.(*fakeParam).sources = append(dst.(*fakeParam).sources, g)
}

type fakeOscillator struct {
	waveform audio.Waveform
	freq     *fakeParam
	outputs  []audio.Node
	params   []audio.Param
	start    float64
	stop     float64
	started  bool
	stopped  bool
	startErr error
}

func (o *fakeOscillator) Waveform() audio.Waveform { return o.waveform }
func (o *fakeOscillator) Frequency() audio.Param   { return o.freq }

func (o *fakeOscillator) Connect(dst audio.Node) {
	o.outputs = append(o.outputs, dst)
	if d, ok := dst.(*fakeGain); ok {
		d.inputs = append(d.inputs, o)
	}
}

func (o *fakeOscillator) ConnectParam(dst audio.Param) {
	o.params = append(o.params, dst)
	dst.(*fakeParam).sources = append(dst.(*fakeParam).sources, o)
}

func (o *fakeOscillator) Start(t float64) error {
	if o.startErr != nil {
		return o.startErr
	}
	if o.started {
		return audio.ErrAlreadyStarted
	}
	o.started, o.start = true, t
	return nil
}

func (o *fakeOscillator) Stop(t float64) error {
	if !o.started {
		return audio.ErrNotStarted
	}
	o.stopped, o.stop = true, t
	return nil
}

type fakeGraph struct {
	now         float64
	oscillators []*fakeOscillator
	gains       []*fakeGain
	dest        *fakeGain
	updates     int
	inUpdate    bool
	startErr    error // returned by Start of every oscillator created afterwards
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{dest: &fakeGain{gain: &fakeParam{}}}
}

func (g *fakeGraph) SampleRate() float64  { return 1000 }
func (g *fakeGraph) CurrentTime() float64 { return g.now }
func (g *fakeGraph) Destination() audio.Node {
	return g.dest
}

func (g *fakeGraph) NewOscillator(w audio.Waveform) audio.OscillatorNode {
	o := &fakeOscillator{waveform: w, freq: &fakeParam{}, startErr: g.startErr}
	g.oscillators = append(g.oscillators, o)
	return o
}

func (g *fakeGraph) NewGain() audio.GainNode {
	n := &fakeGain{gain: &fakeParam{}}
	g.gains = append(g.gains, n)
	return n
}

func (g *fakeGraph) Update(fn func()) {
	if g.inUpdate {
		panic("nested Update")
	}
	g.inUpdate = true
	defer func() { g.inUpdate = false }()
	g.updates++
	fn()
}
