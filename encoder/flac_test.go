package encoder

import (
	"encoding/binary"
	"math"
	"testing"
)

func tonePCM(n int) []byte {
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(12000 * math.Sin(2*math.Pi*220*float64(i)/SampleRate))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

func TestFlacEncoder(t *testing.T) {
	nSamples := BlockSize*2 + BlockSize/2
	pcm := tonePCM(nSamples)

	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	samples := make([]int16, nSamples)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != uint64(nSamples) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), nSamples)
	}
	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestEncodePCM16(t *testing.T) {
	out, err := EncodePCM16(tonePCM(BlockSize + 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) < 4 || string(out[:4]) != "fLaC" {
		t.Fatal("EncodePCM16 output missing FLAC magic")
	}
}

func TestEncodePCM16PartialBlock(t *testing.T) {
	out, err := EncodePCM16(tonePCM(BlockSize / 4))
	if err != nil {
		t.Fatal(err)
	}
	if string(out[:4]) != "fLaC" {
		t.Fatal("partial block output missing FLAC magic")
	}
}
