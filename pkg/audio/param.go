package audio

import (
	"math"
	"sort"
)

type eventKind uint8

const (
	eventSet eventKind = iota
	eventLinear
	eventExponential
	eventTarget
)

type event struct {
	kind  eventKind
	time  float64
	value float64
	tau   float64 // time constant for eventTarget
}

func (e event) isRamp() bool {
	return e.kind == eventLinear || e.kind == eventExponential
}

// Automation is the Context implementation of Param
type Automation struct {
	ctx          *Context
	defaultValue float64
	events       []event
	inputs       []signal
}

func newAutomation(ctx *Context, value float64) *Automation {
	return &Automation{ctx: ctx, defaultValue: value}
}

// SetValueAtTime jumps to value at t
func (a *Automation) SetValueAtTime(value, t float64) {
	a.insert(event{kind: eventSet, time: t, value: value})
}

// LinearRampToValueAtTime ramps linearly from the previous event to value at t
func (a *Automation) LinearRampToValueAtTime(value, t float64) {
	a.insert(event{kind: eventLinear, time: t, value: value})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to value at t.
// Ramps between zero or opposite-sign endpoints hold the previous value until t.
func (a *Automation) ExponentialRampToValueAtTime(value, t float64) {
	a.insert(event{kind: eventExponential, time: t, value: value})
}

// SetTargetAtTime approaches target exponentially from t on
func (a *Automation) SetTargetAtTime(target, t, timeConstant float64) {
	a.insert(event{kind: eventTarget, time: t, value: target, tau: timeConstant})
}

// CancelScheduledValues drops every event at or after t
func (a *Automation) CancelScheduledValues(t float64) {
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time >= t })
	a.events = a.events[:i]
}

// CancelAndHoldAtTime drops every event at or after t and holds the value the
// automation had at t, including a ramp that was still in progress.
func (a *Automation) CancelAndHoldAtTime(t float64) {
	v := a.ValueAt(t)
	a.CancelScheduledValues(t)
	a.events = append(a.events, event{kind: eventSet, time: t, value: v})
}

// ValueAt returns the automation value at t
func (a *Automation) ValueAt(t float64) float64 {
	return evaluate(a.events, a.defaultValue, t)
}

// Events returns the number of scheduled events still retained
func (a *Automation) Events() int {
	return len(a.events)
}

// render returns the automation value plus connected signals for frame
func (a *Automation) render(frame int64, t float64) float64 {
	v := a.ValueAt(t)
	for _, in := range a.inputs {
		v += in.sample(frame)
	}
	return v
}

// insert keeps events ordered by time; equal times keep insertion order.
func (a *Automation) insert(e event) {
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > e.time })
	a.events = append(a.events, event{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = e
	a.compact()
}

// compact drops events whose effect is fully captured by a later event that has
// already started on the graph clock.
func (a *Automation) compact() {
	if a.ctx == nil || len(a.events) < 2 {
		return
	}
	now := a.ctx.CurrentTime()
	k := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > now }) - 1
	if k < 1 {
		return
	}
	head := a.events[k]
	if head.kind == eventTarget {
		start := evaluate(a.events[:k], a.defaultValue, head.time)
		a.events = append([]event{{kind: eventSet, time: head.time, value: start}}, a.events[k:]...)
		return
	}
	a.events = append(a.events[:0], a.events[k:]...)
}

func evaluate(events []event, value, t float64) float64 {
	v, t0 := value, 0.0
	for i := 0; i < len(events); i++ {
		e := events[i]
		if e.time > t {
			switch e.kind {
			case eventLinear:
				return linearAt(t0, v, e.time, e.value, t)
			case eventExponential:
				return exponentialAt(t0, v, e.time, e.value, t)
			}
			return v
		}
		switch e.kind {
		case eventSet, eventLinear, eventExponential:
			v, t0 = e.value, e.time
		case eventTarget:
			// A ramp following a target starts where the target started.
			if i+1 < len(events) && events[i+1].isRamp() {
				t0 = e.time
				continue
			}
			end := t
			if i+1 < len(events) && events[i+1].time <= t {
				end = events[i+1].time
			}
			v = targetAt(e.time, v, e.value, e.tau, end)
			t0 = end
		}
	}
	return v
}

func linearAt(t0, v0, t1, v1, t float64) float64 {
	if t <= t0 || t1 <= t0 {
		return v0
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

func exponentialAt(t0, v0, t1, v1, t float64) float64 {
	if t <= t0 || t1 <= t0 || v0 == 0 || v0*v1 <= 0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}

func targetAt(t0, v0, target, tau, t float64) float64 {
	if tau <= 0 {
		return target
	}
	return target + (v0-target)*math.Exp(-(t-t0)/tau)
}
