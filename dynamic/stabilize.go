package dynamic

import (
	"context"
	"log/slog"
	"time"
)

// LoopConfig bounds one stabilization run.
type LoopConfig struct {
	// MaxAttempts caps the interaction count regardless of convergence
	// (pages with polling clocks never stabilize).
	MaxAttempts int

	// SettleDelay is the pause after each interaction before sampling,
	// giving lazy loaders time to fire.
	SettleDelay time.Duration

	// StableWindow and ConfirmWindow parameterize the growth Monitor.
	StableWindow  int
	ConfirmWindow int
}

// Outcome summarizes one stabilization run.
type Outcome struct {
	// AttemptsUsed is the number of interaction attempts made.
	AttemptsUsed int

	// FinalSize is the last observed size signal.
	FinalSize int

	// Converged reports whether the Monitor confirmed exhaustion
	// before the attempt cap.
	Converged bool
}

// step is one entry in the rotating interaction schedule.
type step struct {
	name string
	run  func(ctx context.Context, d Driver) error
}

// schedule rotates through scroll targets, key presses, and a body
// click. Lazy-loading implementations vary in which direction or input
// triggers their observer; always scrolling to the bottom misses pages
// that load upward or virtualize via keyboard, so the loop cycles
// through the whole schedule.
var schedule = []step{
	{"scroll-bottom", func(ctx context.Context, d Driver) error { return d.ScrollTo(ctx, ScrollBottom) }},
	{"scroll-top", func(ctx context.Context, d Driver) error { return d.ScrollTo(ctx, ScrollTop) }},
	{"scroll-middle", func(ctx context.Context, d Driver) error { return d.ScrollTo(ctx, ScrollMiddle) }},
	{"scroll-quarter", func(ctx context.Context, d Driver) error { return d.ScrollTo(ctx, 0.25) }},
	{"scroll-three-quarter", func(ctx context.Context, d Driver) error { return d.ScrollTo(ctx, 0.75) }},
	{"key-space", func(ctx context.Context, d Driver) error { return d.PressKey(ctx, "Space") }},
	{"key-pagedown", func(ctx context.Context, d Driver) error { return d.PressKey(ctx, "PageDown") }},
	{"key-end", func(ctx context.Context, d Driver) error { return d.PressKey(ctx, "End") }},
	{"key-home", func(ctx context.Context, d Driver) error { return d.PressKey(ctx, "Home") }},
	{"click-body", func(ctx context.Context, d Driver) error { return d.Click(ctx, "body") }},
}

// Stabilize drives the page through the interaction schedule until the
// growth Monitor confirms exhaustion or the attempt cap is reached.
//
// Per-attempt driver failures are swallowed and counted as zero-growth
// samples. The only error returned is the context's, when the caller's
// deadline expires mid-loop; the partial Outcome is still valid.
func Stabilize(ctx context.Context, d Driver, cfg LoopConfig) (Outcome, error) {
	monitor := NewMonitor(cfg.StableWindow, cfg.ConfirmWindow)
	out := Outcome{}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		s := schedule[attempt%len(schedule)]
		if err := s.run(ctx, d); err != nil {
			slog.Debug("interaction failed, continuing",
				"attempt", attempt+1, "action", s.name, "error", err)
		}

		select {
		case <-time.After(cfg.SettleDelay):
		case <-ctx.Done():
			return out, ctx.Err()
		}

		size, err := d.SizeSignal(ctx)
		if err != nil {
			// No growth this attempt; never fatal.
			size = monitor.LastSize()
			slog.Debug("size sample failed, treating as no growth",
				"attempt", attempt+1, "error", err)
		}

		state := monitor.Observe(size)
		out.AttemptsUsed = attempt + 1
		out.FinalSize = size

		slog.Debug("stabilization attempt",
			"attempt", attempt+1, "action", s.name, "size", size, "state", state.String())

		if state == Exhausted {
			out.Converged = true
			slog.Debug("content stabilized",
				"attempts", out.AttemptsUsed, "finalSize", out.FinalSize)
			return out, nil
		}
	}

	slog.Debug("attempt cap reached without convergence",
		"attempts", out.AttemptsUsed, "finalSize", out.FinalSize)
	return out, nil
}
