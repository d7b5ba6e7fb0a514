//go:build headless

package audio

import "time"

// RealtimeOutput is a no-op in headless builds
type RealtimeOutput struct{}

func NewRealtimeOutput(src Renderer, sampleRate, channels int, latency time.Duration) (*RealtimeOutput, error) {
	return &RealtimeOutput{}, nil
}

func (rt *RealtimeOutput) Close() error {
	return nil
}
