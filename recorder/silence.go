package recorder

// RMS above this counts a capture chunk as speech.
const speechRMSThreshold = 0.015

const (
	silenceWarnTicks = 80 // 8s at the 100ms tick
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)
)

type silenceEvent int

const (
	silenceNone silenceEvent = iota
	silenceWarn
	silenceClear
)

// silenceMonitor tracks speech presence over a sliding tick window and
// reports when a quiet stretch begins and when speech resumes.
type silenceMonitor struct {
	ticks  int
	window []bool
	warned bool
}

func newSilenceMonitor() *silenceMonitor {
	return &silenceMonitor{window: make([]bool, silenceWarnTicks)}
}

func (m *silenceMonitor) ratio() float64 {
	n := silenceWarnTicks
	if m.ticks < n {
		n = m.ticks
	}
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+silenceWarnTicks)%silenceWarnTicks] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *silenceMonitor) Tick(hasSpeech bool) silenceEvent {
	m.window[m.ticks%silenceWarnTicks] = hasSpeech
	m.ticks++

	r := m.ratio()

	if m.ticks >= silenceWarnTicks && r < speechMinRatio && !m.warned {
		m.warned = true
		return silenceWarn
	}
	if m.warned && r >= speechClearRatio {
		m.warned = false
		return silenceClear
	}
	return silenceNone
}
