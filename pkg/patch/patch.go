// Package patch loads synth configurations from Lua scripts.
//
// A patch assigns globals over the defaults:
//
//	mode = "fm"
//	waveform = "saw"
//	master = 0.5
//	harmony = true
//	envelope = { attack = 0.01, decay = 0.2, sustain = 0.6, release = 0.8 }
//	fm = { ratio = 3.5, index = 4 }
//	lfo = { target = "pitch", rate = 5, depth = 0.2 }
//
// Values outside their ranges are clamped.
package patch

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/oisee/synthkeys/pkg/audio"
	"github.com/oisee/synthkeys/pkg/synth"
)

// Load runs the script read from r and applies its globals to base
func Load(ctx context.Context, r io.Reader, name string, base synth.Config) (synth.Config, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return base, errors.Wrapf(err, "patch: read %s", name)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	L.SetContext(ctx)

	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		return base, errors.Wrapf(err, "patch: parse %s", name)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return base, errors.Wrapf(err, "patch: run %s", name)
	}

	cfg, err := apply(L, base)
	if err != nil {
		return base, errors.Wrapf(err, "patch: %s", name)
	}
	return cfg.Normalize(), nil
}

// LoadFile loads the patch at path
func LoadFile(ctx context.Context, path string, base synth.Config) (synth.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, errors.Wrap(err, "patch: open")
	}
	defer f.Close()
	return Load(ctx, f, path, base)
}

// openSafeLibs opens the libraries a patch may use; io and os stay closed
func openSafeLibs(L *lua.LState) {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

func apply(L *lua.LState, cfg synth.Config) (synth.Config, error) {
	if s, ok, err := stringGlobal(L, "mode"); err != nil {
		return cfg, err
	} else if ok {
		m, err := synth.ParseMode(s)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}

	if s, ok, err := stringGlobal(L, "waveform"); err != nil {
		return cfg, err
	} else if ok {
		w, err := audio.ParseWaveform(s)
		if err != nil {
			return cfg, err
		}
		cfg.Waveform = w
	}

	switch v := L.GetGlobal("harmony").(type) {
	case *lua.LNilType:
	case lua.LBool:
		cfg.Harmony = bool(v)
	default:
		return cfg, errors.Errorf("harmony must be a boolean, got %s", v.Type())
	}

	if err := numberGlobal(L, "master", &cfg.MasterVolume); err != nil {
		return cfg, err
	}

	tables := []struct {
		name   string
		fields map[string]*float64
	}{
		{"envelope", map[string]*float64{
			"attack":  &cfg.Envelope.Attack,
			"decay":   &cfg.Envelope.Decay,
			"sustain": &cfg.Envelope.Sustain,
			"release": &cfg.Envelope.Release,
		}},
		{"additive", map[string]*float64{"rolloff": &cfg.Additive.Rolloff}},
		{"am", map[string]*float64{"frequency": &cfg.AM.Frequency, "depth": &cfg.AM.Depth}},
		{"fm", map[string]*float64{"ratio": &cfg.FM.Ratio, "index": &cfg.FM.Index}},
		{"lfo", map[string]*float64{"rate": &cfg.LFO.Rate, "depth": &cfg.LFO.Depth}},
	}
	for _, t := range tables {
		tbl, err := tableGlobal(L, t.name)
		if err != nil {
			return cfg, err
		}
		if tbl == nil {
			continue
		}
		for field, dst := range t.fields {
			if err := numberField(tbl, t.name, field, dst); err != nil {
				return cfg, err
			}
		}

		switch t.name {
		case "additive":
			partials := float64(cfg.Additive.Partials)
			if err := numberField(tbl, t.name, "partials", &partials); err != nil {
				return cfg, err
			}
			cfg.Additive.Partials = int(math.Round(partials))
		case "lfo":
			target, ok := tbl.RawGetString("target").(lua.LString)
			if !ok {
				if tbl.RawGetString("target") != lua.LNil {
					return cfg, errors.New("lfo.target must be a string")
				}
				break
			}
			lt, err := synth.ParseLFOTarget(string(target))
			if err != nil {
				return cfg, err
			}
			cfg.LFO.Target = lt
		}
	}
	return cfg, nil
}

func stringGlobal(L *lua.LState, name string) (string, bool, error) {
	switch v := L.GetGlobal(name).(type) {
	case *lua.LNilType:
		return "", false, nil
	case lua.LString:
		return string(v), true, nil
	default:
		return "", false, errors.Errorf("%s must be a string, got %s", name, v.Type())
	}
}

func numberGlobal(L *lua.LState, name string, dst *float64) error {
	switch v := L.GetGlobal(name).(type) {
	case *lua.LNilType:
		return nil
	case lua.LNumber:
		*dst = float64(v)
		return nil
	default:
		return errors.Errorf("%s must be a number, got %s", name, v.Type())
	}
}

func tableGlobal(L *lua.LState, name string) (*lua.LTable, error) {
	switch v := L.GetGlobal(name).(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		return v, nil
	default:
		return nil, errors.Errorf("%s must be a table, got %s", name, v.Type())
	}
}

func numberField(tbl *lua.LTable, table, field string, dst *float64) error {
	switch v := tbl.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil
	case lua.LNumber:
		*dst = float64(v)
		return nil
	default:
		return errors.Errorf("%s.%s must be a number, got %s", table, field, v.Type())
	}
}
