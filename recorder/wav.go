package recorder

import (
	"encoding/binary"
	"io"
	"os"
)

const wavHeaderSize = 44

// writeWAVHeader emits a canonical 44-byte PCM16 mono header. dataLen may be
// zero; the header is patched once the final size is known.
func writeWAVHeader(w io.Writer, dataLen uint32) error {
	var h [wavHeaderSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataLen)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:24], Channels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], SampleRate*Channels*2) // byte rate
	binary.LittleEndian.PutUint16(h[32:34], Channels*2)            // block align
	binary.LittleEndian.PutUint16(h[34:36], 16)                    // bits per sample
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataLen)
	_, err := w.Write(h[:])
	return err
}

func patchWAVHeader(f *os.File, dataLen uint32) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return writeWAVHeader(f, dataLen)
}

// ReadWAV returns the PCM payload of a murmur-produced WAV artifact.
func ReadWAV(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) <= wavHeaderSize {
		return nil, nil
	}
	return data[wavHeaderSize:], nil
}
