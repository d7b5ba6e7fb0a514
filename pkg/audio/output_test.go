package audio

import (
	"encoding/binary"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type constRenderer float64

func (c constRenderer) Render(buf *goaudio.FloatBuffer) int {
	for i := range buf.Data {
		buf.Data[i] = float64(c)
	}
	return len(buf.Data)
}

func TestPCMReaderConvertsSamples(t *testing.T) {
	r := NewPCMReader(constRenderer(0.5), 1000, 1, 4)
	p := make([]byte, 20)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("expected full read, got %d", n)
	}
	for i := 0; i < n; i += 2 {
		got := int16(binary.LittleEndian.Uint16(p[i:]))
		if got != 16383 {
			t.Fatalf("sample %d: got=%d want=16383", i/2, got)
		}
	}
}

func TestPCMReaderOddLength(t *testing.T) {
	r := NewPCMReader(constRenderer(0), 1000, 2, 4)
	if n, _ := r.Read(make([]byte, 7)); n != 6 {
		t.Fatalf("expected whole samples only, got %d bytes", n)
	}
}

func TestSoftClip(t *testing.T) {
	if got := SoftClip(0.5); got != 0.5 {
		t.Fatalf("expected pass-through below knee: got=%f", got)
	}
	for _, in := range []float64{1.2, 3, 100} {
		got := SoftClip(in)
		if got <= 0.9 || got > 1 {
			t.Fatalf("SoftClip(%f) = %f, expected within (0.9, 1]", in, got)
		}
		if neg := SoftClip(-in); neg != -got {
			t.Fatalf("expected odd symmetry: %f vs %f", neg, got)
		}
	}
}
