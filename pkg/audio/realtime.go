//go:build !headless

package audio

import (
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

// RealtimeOutput plays a Renderer through the sound card
type RealtimeOutput struct {
	otoCtx    *oto.Context
	otoPlayer *oto.Player
}

// NewRealtimeOutput opens the audio device and starts pulling from src.
// latency sizes the device buffer; it bounds how far ahead of the listener the
// graph clock runs.
func NewRealtimeOutput(src Renderer, sampleRate, channels int, latency time.Duration) (*RealtimeOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrap(err, "open audio device")
	}
	<-ready

	rt := &RealtimeOutput{otoCtx: otoCtx}
	rt.otoPlayer = otoCtx.NewPlayer(NewPCMReader(src, sampleRate, channels, 256))
	bytesPerSecond := sampleRate * channels * 2
	rt.otoPlayer.SetBufferSize(int(float64(bytesPerSecond) * latency.Seconds()))
	rt.otoPlayer.Play()

	slog.Debug("audio output started", "rate", sampleRate, "channels", channels, "latency", latency)
	return rt, nil
}

// Close stops the audio output
func (rt *RealtimeOutput) Close() error {
	if rt.otoPlayer == nil {
		return nil
	}
	err := rt.otoPlayer.Close()
	rt.otoPlayer = nil
	return errors.Wrap(err, "close audio player")
}
