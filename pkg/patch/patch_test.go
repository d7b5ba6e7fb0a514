package patch

import (
	"context"
	"strings"
	"testing"

	"github.com/oisee/synthkeys/pkg/audio"
	"github.com/oisee/synthkeys/pkg/synth"
)

func load(t *testing.T, src string) (synth.Config, error) {
	t.Helper()
	return Load(context.Background(), strings.NewReader(src), "test.lua", synth.DefaultConfig())
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(context.Background(), "testdata/bell.lua", synth.DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != synth.ModeFM || !cfg.Harmony || cfg.MasterVolume != 0.5 {
		t.Fatalf("globals: %+v", cfg)
	}
	want := synth.Envelope{Attack: 0.005, Decay: 0.6, Sustain: 0.2, Release: 1.5}
	if cfg.Envelope != want {
		t.Fatalf("envelope: got %+v want %+v", cfg.Envelope, want)
	}
	if cfg.FM.Ratio != 3.5 || cfg.FM.Index != 4 {
		t.Fatalf("fm: %+v", cfg.FM)
	}
	if cfg.LFO.Target != synth.LFOAmplitude || cfg.LFO.Rate != 4 {
		t.Fatalf("lfo: %+v", cfg.LFO)
	}
	// Untouched fields keep the base value.
	if cfg.AM != synth.DefaultConfig().AM {
		t.Fatalf("am changed: %+v", cfg.AM)
	}
}

func TestLoadComputedValues(t *testing.T) {
	cfg, err := load(t, `
local base = 0.1
envelope = { attack = base * 2 }
additive = { partials = 3 + 1, rolloff = math.sqrt(4) }
waveform = string.lower("SAW")
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Envelope.Attack != 0.2 {
		t.Fatalf("attack: %f", cfg.Envelope.Attack)
	}
	if cfg.Additive.Partials != 4 || cfg.Additive.Rolloff != 2 {
		t.Fatalf("additive: %+v", cfg.Additive)
	}
	if cfg.Waveform != audio.Sawtooth {
		t.Fatalf("waveform: %v", cfg.Waveform)
	}
	if cfg.Envelope.Release != synth.DefaultConfig().Envelope.Release {
		t.Fatal("unset envelope fields must keep their base values")
	}
}

func TestLoadClampsRanges(t *testing.T) {
	cfg, err := load(t, `master = 3; envelope = { sustain = -1 }; additive = { partials = 99 }`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MasterVolume != 1 || cfg.Envelope.Sustain != 0 || cfg.Additive.Partials != 16 {
		t.Fatalf("not clamped: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `mode = `, "parse"},
		{"runtime", `error("boom")`, "boom"},
		{"unknown mode", `mode = "granular"`, "unknown mode"},
		{"unknown waveform", `waveform = "pulse"`, "unknown waveform"},
		{"unknown lfo target", `lfo = { target = "filter" }`, "unknown lfo target"},
		{"wrong type", `master = "loud"`, "master must be a number"},
		{"wrong field type", `fm = { ratio = "two" }`, "fm.ratio must be a number"},
		{"wrong table", `envelope = 1`, "envelope must be a table"},
		{"wrong bool", `harmony = 1`, "harmony must be a boolean"},
		{"no io", `io.write("x")`, "run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(t, tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
			if cfg != synth.DefaultConfig() {
				t.Fatal("failed load must return the base config")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(context.Background(), "testdata/missing.lua", synth.DefaultConfig()); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, strings.NewReader(`while true do end`), "loop.lua", synth.DefaultConfig())
	if err == nil {
		t.Fatal("expected cancelled script to fail")
	}
}
