package dynamic

// State classifies the content-growth behavior of a page under
// repeated interaction.
type State int

const (
	// Growing: the size signal is still changing.
	Growing State = iota

	// Stable: the signal has been flat for the stable window. A
	// stability candidate, not yet trusted (network-dependent loaders
	// plateau transiently).
	Stable

	// Exhausted: stability sustained through the confirmation window;
	// further interaction is not expected to produce content.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Stable:
		return "stable"
	case Exhausted:
		return "exhausted"
	default:
		return "growing"
	}
}

// Sample is one size-signal observation. Samples are append-only; the
// monitor only reads a trailing run.
type Sample struct {
	Attempt int
	Size    int
}

// Monitor classifies an ordered sequence of size samples as Growing,
// Stable, or Exhausted.
//
// The two-tier policy: stableWindow consecutive samples equal to their
// predecessor mark a stability candidate; confirmWindow additional
// equal samples confirm exhaustion. Equality is exact: size signals
// are integer character counts and are not noisy, so a single sample
// that differs from the previous one resets the run to zero. No
// partial credit for near-stability.
type Monitor struct {
	stableWindow  int
	confirmWindow int

	samples []Sample
	run     int // trailing count of samples equal to their predecessor
}

// NewMonitor creates a Monitor. Windows below 1 are clamped to 1.
func NewMonitor(stableWindow, confirmWindow int) *Monitor {
	if stableWindow < 1 {
		stableWindow = 1
	}
	if confirmWindow < 1 {
		confirmWindow = 1
	}
	return &Monitor{stableWindow: stableWindow, confirmWindow: confirmWindow}
}

// Observe appends a sample and returns the resulting classification.
func (m *Monitor) Observe(size int) State {
	if n := len(m.samples); n > 0 && m.samples[n-1].Size == size {
		m.run++
	} else {
		m.run = 0
	}
	m.samples = append(m.samples, Sample{Attempt: len(m.samples) + 1, Size: size})
	return m.State()
}

// State returns the current classification.
func (m *Monitor) State() State {
	switch {
	case m.run >= m.stableWindow+m.confirmWindow:
		return Exhausted
	case m.run >= m.stableWindow:
		return Stable
	default:
		return Growing
	}
}

// LastSize returns the most recent sample's size, or 0 before any
// observation. Used to substitute a zero-growth sample when a driver
// action fails.
func (m *Monitor) LastSize() int {
	if len(m.samples) == 0 {
		return 0
	}
	return m.samples[len(m.samples)-1].Size
}

// Samples returns the observed sequence.
func (m *Monitor) Samples() []Sample {
	return m.samples
}
