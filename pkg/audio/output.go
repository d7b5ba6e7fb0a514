package audio

import (
	"encoding/binary"
	"math"

	goaudio "github.com/go-audio/audio"
)

// Renderer produces interleaved float frames
type Renderer interface {
	Render(buf *goaudio.FloatBuffer) int
}

// PCMReader implements io.Reader over a Renderer as signed 16-bit little-endian PCM
type PCMReader struct {
	src    Renderer
	buffer *goaudio.FloatBuffer
	pos    int
}

// NewPCMReader creates a reader rendering blockFrames frames at a time
func NewPCMReader(src Renderer, sampleRate, channels, blockFrames int) *PCMReader {
	if channels < 1 {
		channels = 1
	}
	if blockFrames < 1 {
		blockFrames = 512
	}
	buf := &goaudio.FloatBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   make([]float64, blockFrames*channels),
	}
	return &PCMReader{src: src, buffer: buf, pos: len(buf.Data)}
}

// Read implements io.Reader - renders audio on demand
func (r *PCMReader) Read(p []byte) (n int, err error) {
	for n+2 <= len(p) {
		if r.pos >= len(r.buffer.Data) {
			r.src.Render(r.buffer)
			r.pos = 0
		}
		s16 := int16(SoftClip(r.buffer.Data[r.pos]) * 32767)
		binary.LittleEndian.PutUint16(p[n:], uint16(s16))
		r.pos++
		n += 2
	}
	return n, nil
}

// SoftClip applies a tanh-style limiter above 0.9 and clamps to [-1, 1]
func SoftClip(sample float64) float64 {
	if sample > 0.9 {
		sample = 0.9 + 0.1*math.Tanh((sample-0.9)*10)
	} else if sample < -0.9 {
		sample = -0.9 + 0.1*math.Tanh((sample+0.9)*10)
	}
	if sample > 1.0 {
		sample = 1.0
	}
	if sample < -1.0 {
		sample = -1.0
	}
	return sample
}
