//go:build !linux && !darwin

package beep

// No audio playback backend here; beeps are silent.

func Init()      {}
func PlayStart() {}
func PlayEnd()   {}
func PlayError() {}
