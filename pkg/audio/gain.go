package audio

import "fmt"

// signal is implemented by every node that can be rendered
type signal interface {
	sample(frame int64) float64
	finished(frame int64) bool
}

// Gain sums its inputs and scales them by the gain param
type Gain struct {
	ctx    *Context
	gain   *Automation
	inputs []signal

	lastFrame int64
	last      float64
}

func newGain(ctx *Context) *Gain {
	return &Gain{
		ctx:       ctx,
		gain:      newAutomation(ctx, 1),
		lastFrame: -1,
	}
}

// Gain returns the gain param
func (g *Gain) Gain() Param {
	return g.gain
}

// Connect feeds the output into dst
func (g *Gain) Connect(dst Node) {
	connect(g.ctx, g, dst)
}

// ConnectParam adds the output to dst
func (g *Gain) ConnectParam(dst Param) {
	connectParam(g.ctx, g, dst)
}

// Inputs returns the number of live inputs
func (g *Gain) Inputs() int {
	return len(g.inputs)
}

func (g *Gain) sample(frame int64) float64 {
	if frame == g.lastFrame {
		return g.last
	}
	var sum float64
	for _, in := range g.inputs {
		sum += in.sample(frame)
	}
	out := sum * g.gain.render(frame, float64(frame)/g.ctx.sampleRate)
	g.lastFrame, g.last = frame, out
	return out
}

// finished reports whether every input has finished. A gain without inputs
// never finishes so freshly built stages and the destination stay alive.
func (g *Gain) finished(frame int64) bool {
	if len(g.inputs) == 0 {
		return false
	}
	for _, in := range g.inputs {
		if !in.finished(frame) {
			return false
		}
	}
	return true
}

// prune removes finished inputs below g
func (g *Gain) prune(frame int64) {
	live := g.inputs[:0]
	for _, in := range g.inputs {
		if in.finished(frame) {
			continue
		}
		if sub, ok := in.(*Gain); ok {
			sub.prune(frame)
		}
		live = append(live, in)
	}
	clear(g.inputs[len(live):])
	g.inputs = live
}

func connect(ctx *Context, src signal, dst Node) {
	g, ok := dst.(*Gain)
	if !ok || g.ctx != ctx {
		panic(fmt.Sprintf("audio: cannot connect to %T from another graph", dst))
	}
	g.inputs = append(g.inputs, src)
}

func connectParam(ctx *Context, src signal, dst Param) {
	a, ok := dst.(*Automation)
	if !ok || a.ctx != ctx {
		panic(fmt.Sprintf("audio: cannot modulate %T from another graph", dst))
	}
	a.inputs = append(a.inputs, src)
}
