package synth

import (
	"io"
	"log/slog"
	"testing"

	"github.com/oisee/synthkeys/pkg/audio"
)

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) VoiceStarted(key KeyID, freq float64) {
	r.events = append(r.events, "on:"+string(key))
}

func (r *recordingObserver) VoiceStopped(key KeyID) {
	r.events = append(r.events, "off:"+string(key))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(obs Observer) (*audio.Context, *Manager) {
	ctx := audio.NewContext(1000)
	return ctx, NewManager(ctx, ctx.Destination(), obs, quietLogger())
}

func TestAntiClipScale(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 1},
		{1, 1},
		{4, 0.5},
		{9, 1.0 / 3},
	}
	for _, tt := range tests {
		if got := AntiClipScale(tt.n); !almostEqual(got, tt.want, 1e-12) {
			t.Errorf("AntiClipScale(%d) = %f, want %f", tt.n, got, tt.want)
		}
	}
}

func TestManagerSuppressesDuplicates(t *testing.T) {
	_, m := newTestManager(nil)
	cfg := DefaultConfig()

	if !m.NoteOn("65", 440, cfg) {
		t.Fatal("first note on should start a voice")
	}
	first, _ := m.Voice("65")
	if m.NoteOn("65", 440, cfg) {
		t.Fatal("repeated note on should be ignored")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 voice, got %d", m.Len())
	}
	if v, _ := m.Voice("65"); v != first {
		t.Fatal("repeated note on replaced the voice")
	}
}

func TestManagerScalesWithPolyphony(t *testing.T) {
	ctx, m := newTestManager(nil)
	cfg := DefaultConfig()
	keys := []KeyID{"90", "88", "67", "86"}

	check := func(n int) {
		t.Helper()
		want := AntiClipScale(n)
		for _, key := range m.Keys() {
			v, _ := m.Voice(key)
			if !almostEqual(v.Scale(), want, 1e-12) {
				t.Fatalf("%d voices: %s scale=%f want=%f", n, key, v.Scale(), want)
			}
			if !almostEqual(v.Level(), BaseLevel*want, 1e-12) {
				t.Fatalf("%d voices: %s level=%f", n, key, v.Level())
			}
			// The trim glides to the scale within a few time constants.
			later := ctx.CurrentTime() + 10*ScaleTimeConstant
			if got := v.Trim.Gain().ValueAt(later); !almostEqual(got, want, 1e-3) {
				t.Fatalf("%d voices: %s trim=%f want=%f", n, key, got, want)
			}
		}
	}

	for i, key := range keys {
		m.NoteOn(key, 261.63*float64(i+1), cfg)
		ctx.RenderMono(make([]float64, 5))
		check(i + 1)
	}
	for i, key := range keys {
		m.NoteOff(key, cfg.Envelope)
		ctx.RenderMono(make([]float64, 5))
		check(len(keys) - i - 1)
	}
}

func TestManagerRescaleKeepsEnvelope(t *testing.T) {
	ctx, m := newTestManager(nil)
	cfg := DefaultConfig()
	m.NoteOn("90", 261.63, cfg)
	ctx.RenderMono(make([]float64, 10))

	v, _ := m.Voice("90")
	before := v.Amp.Gain().ValueAt(1)
	m.NoteOn("88", 293.66, cfg)
	if after := v.Amp.Gain().ValueAt(1); !almostEqual(before, after, 1e-12) {
		t.Fatalf("new voice disturbed the envelope: %f -> %f", before, after)
	}
}

func TestManagerNoteOffIdempotent(t *testing.T) {
	_, m := newTestManager(nil)
	cfg := DefaultConfig()
	m.NoteOn("65", 440, cfg)

	if !m.NoteOff("65", cfg.Envelope) {
		t.Fatal("first note off should release")
	}
	if m.NoteOff("65", cfg.Envelope) {
		t.Fatal("second note off should be a no-op")
	}
	if m.NoteOff("66", cfg.Envelope) {
		t.Fatal("note off for an unknown key should be a no-op")
	}
	if m.Active("65") {
		t.Fatal("released key still active")
	}
}

func TestManagerReleaseSchedulesStop(t *testing.T) {
	ctx, m := newTestManager(nil)
	cfg := DefaultConfig()
	cfg.Mode = ModeAdditive
	cfg.LFO.Target = LFOAmplitude
	cfg.Envelope.Release = 0.4

	m.NoteOn("65", 440, cfg)
	v, _ := m.Voice("65")
	ctx.RenderMono(make([]float64, 100))
	now := ctx.CurrentTime()
	m.NoteOff("65", cfg.Envelope)

	want := now + 0.4 + StopMargin
	for i, src := range v.Sources {
		stopper, ok := src.(interface{ StopTime() float64 })
		if !ok {
			t.Fatalf("source %d has no stop time", i)
		}
		if got := stopper.StopTime(); !almostEqual(got, want, 1.0/ctx.SampleRate()) {
			t.Errorf("source %d stops at %f, want %f", i, got, want)
		}
	}
}

func TestManagerVoiceTailIsPruned(t *testing.T) {
	ctx, m := newTestManager(nil)
	cfg := DefaultConfig()
	cfg.Envelope.Release = 0.1

	m.NoteOn("65", 440, cfg)
	ctx.RenderMono(make([]float64, 50))
	if ctx.Live() != 1 {
		t.Fatalf("expected one live voice, got %d", ctx.Live())
	}
	m.NoteOff("65", cfg.Envelope)

	// The tail keeps sounding after the registry forgets the key.
	tail := make([]float64, 100)
	ctx.RenderMono(tail)
	var peak float64
	for _, s := range tail {
		peak = max(peak, s, -s)
	}
	if peak == 0 {
		t.Fatal("release tail should be audible")
	}

	ctx.RenderMono(make([]float64, 200))
	if ctx.Live() != 0 {
		t.Fatalf("expected the released voice to be pruned, got %d live", ctx.Live())
	}
}

func TestManagerReleaseAll(t *testing.T) {
	obs := &recordingObserver{}
	_, m := newTestManager(obs)
	cfg := DefaultConfig()
	m.NoteOn("90", 261.63, cfg)
	m.NoteOn("88", 293.66, cfg)

	if n := m.ReleaseAll(cfg.Envelope); n != 2 {
		t.Fatalf("expected 2 released, got %d", n)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", m.Len())
	}
	want := []string{"on:90", "on:88", "off:88", "off:90"}
	if len(obs.events) != len(want) {
		t.Fatalf("events: got %v want %v", obs.events, want)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Fatalf("events: got %v want %v", obs.events, want)
		}
	}
}

func TestManagerObserverSkipsIgnoredEvents(t *testing.T) {
	obs := &recordingObserver{}
	_, m := newTestManager(obs)
	cfg := DefaultConfig()
	m.NoteOn("65", 440, cfg)
	m.NoteOn("65", 440, cfg)
	m.NoteOff("65", cfg.Envelope)
	m.NoteOff("65", cfg.Envelope)

	if len(obs.events) != 2 {
		t.Fatalf("expected one start and one stop, got %v", obs.events)
	}
}

func TestObserversFanOut(t *testing.T) {
	var started, stopped int
	a := ObserverFuncs{Started: func(KeyID, float64) { started++ }}
	b := ObserverFuncs{Stopped: func(KeyID) { stopped++ }}
	obs := Observers{a, b, ObserverFuncs{}}

	obs.VoiceStarted("1", 1)
	obs.VoiceStopped("1")
	if started != 1 || stopped != 1 {
		t.Fatalf("started=%d stopped=%d", started, stopped)
	}
}
