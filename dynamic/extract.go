package dynamic

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/use-agent/deepfetch/cleaner"
	"github.com/use-agent/deepfetch/models"
)

// minRenderedSize is the size signal below which the page plausibly
// never rendered; live-page strategies are skipped and only the
// structural fallback runs against whatever markup exists.
const minRenderedSize = 64

// Options bounds one extraction call. Zero values take the documented
// defaults.
type Options struct {
	// InitialWait is the settle wait after navigation, before the
	// first interaction. Default: 5s.
	InitialWait time.Duration

	// ManualWait optionally holds the page open before stabilization
	// for human intervention. Default: 0 (disabled).
	ManualWait time.Duration

	// MaxAttempts caps the stabilization loop. Default: 50.
	MaxAttempts int

	// SettleDelay is the pause between interaction attempts. Default: 2s.
	SettleDelay time.Duration

	// StableWindow / ConfirmWindow parameterize the growth monitor.
	// Defaults: 3 and 2.
	StableWindow  int
	ConfirmWindow int

	// StrategyTimeout bounds each extraction strategy independently.
	// Default: 15s.
	StrategyTimeout time.Duration

	// OverallTimeout is the end-to-end deadline for the whole
	// pipeline. Default: 90s.
	OverallTimeout time.Duration

	// SalvageTimeout bounds the best-effort snapshot taken after the
	// overall deadline expires. Default: 3s.
	SalvageTimeout time.Duration

	// MinSubstance is the minimum corpus character count for a
	// strategy to win single-result selection. Default: 100.
	MinSubstance int

	// SelectSingle returns the single best strategy's corpus instead
	// of merging all strategies. Default: false (merge).
	SelectSingle bool
}

func (o *Options) defaults() {
	if o.InitialWait == 0 {
		o.InitialWait = 5 * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 50
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.StableWindow == 0 {
		o.StableWindow = 3
	}
	if o.ConfirmWindow == 0 {
		o.ConfirmWindow = 2
	}
	if o.StrategyTimeout == 0 {
		o.StrategyTimeout = 15 * time.Second
	}
	if o.OverallTimeout == 0 {
		o.OverallTimeout = 90 * time.Second
	}
	if o.SalvageTimeout == 0 {
		o.SalvageTimeout = 3 * time.Second
	}
	if o.MinSubstance == 0 {
		o.MinSubstance = 100
	}
}

// Report is the final output of one extraction call. Immutable once
// returned.
type Report struct {
	// Corpus holds the deduplicated fragments.
	Corpus *Corpus

	// Strategy names the winning strategy, or "merged" when all
	// strategies were combined, or "salvage" for a partial result
	// captured after the deadline expired.
	Strategy string

	// TotalCharacters is the summed fragment length.
	TotalCharacters int

	// AttemptsUsed is the number of stabilization attempts made.
	AttemptsUsed int

	// Converged reports whether content growth stopped before the
	// attempt cap.
	Converged bool

	// TimedOut reports that the overall deadline expired and Corpus is
	// best-effort partial content.
	TimedOut bool
}

// Extract runs the full pipeline against a settled page handle:
// stabilize until content stops growing, run every extraction strategy,
// then merge (or select) the results.
//
// The deadline is enforced at every await point. On expiry the call
// degrades to a best-effort snapshot instead of failing; the only error
// ever returned is NO_CONTENT_RETRIEVABLE, when even that snapshot
// yields nothing.
func Extract(ctx context.Context, d Driver, opts Options) (*Report, error) {
	opts.defaults()

	ctx, cancel := context.WithTimeout(ctx, opts.OverallTimeout)
	defer cancel()

	report := &Report{Corpus: NewCorpus(), Strategy: "none"}

	// Optional human-intervention hold, then the initial settle wait.
	for _, wait := range []time.Duration{opts.ManualWait, opts.InitialWait} {
		if wait <= 0 {
			continue
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return salvage(d, report, nil, opts)
		}
	}

	// Stabilization.
	outcome, err := Stabilize(ctx, d, LoopConfig{
		MaxAttempts:   opts.MaxAttempts,
		SettleDelay:   opts.SettleDelay,
		StableWindow:  opts.StableWindow,
		ConfirmWindow: opts.ConfirmWindow,
	})
	report.AttemptsUsed = outcome.AttemptsUsed
	report.Converged = outcome.Converged
	if err != nil {
		return salvage(d, report, nil, opts)
	}

	// Strategies. When the size signal suggests the page never
	// rendered, only the structural fallback is worth running.
	strategies := Strategies()
	if outcome.FinalSize < minRenderedSize {
		slog.Debug("page plausibly never rendered, structural fallback only",
			"finalSize", outcome.FinalSize)
		strategies = []Strategy{structuralFallback{}}
	}

	var results []StrategyResult
	for _, s := range strategies {
		if ctx.Err() != nil {
			return salvage(d, report, results, opts)
		}
		results = append(results, runStrategy(ctx, d, s, opts.StrategyTimeout))
	}
	if ctx.Err() != nil {
		return salvage(d, report, results, opts)
	}

	// Merge or select.
	if opts.SelectSingle {
		chosen := selectResult(results, opts.MinSubstance)
		report.Corpus = chosen.Corpus
		report.Strategy = chosen.Name
	} else {
		report.Corpus = Merge(results)
		report.Strategy = "merged"
	}
	report.TotalCharacters = report.Corpus.TotalCharacters()

	slog.Info("dynamic extraction complete",
		"strategy", report.Strategy,
		"fragments", report.Corpus.Len(),
		"characters", report.TotalCharacters,
		"attempts", report.AttemptsUsed,
		"converged", report.Converged)

	return report, nil
}

// runStrategy executes one strategy under its own timeout. Failures and
// timeouts yield an empty corpus, never an error.
func runStrategy(ctx context.Context, d Driver, s Strategy, timeout time.Duration) StrategyResult {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	corpus, err := s.Extract(sctx, d)
	if err != nil || corpus == nil {
		slog.Debug("strategy contributed nothing",
			"strategy", s.Name(), "error", err)
		corpus = NewCorpus()
	} else {
		slog.Debug("strategy finished",
			"strategy", s.Name(),
			"fragments", corpus.Len(),
			"characters", corpus.TotalCharacters())
	}
	return StrategyResult{Name: s.Name(), Priority: s.Priority(), Corpus: corpus}
}

// selectResult applies the single-result rule: the highest-priority
// strategy whose corpus exceeds the substance threshold wins; otherwise
// the structural fallback's result is used unconditionally.
func selectResult(results []StrategyResult, minSubstance int) StrategyResult {
	ordered := make([]StrategyResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, r := range ordered {
		if r.Corpus.TotalCharacters() >= minSubstance {
			return r
		}
	}
	for _, r := range results {
		if r.Name == "structural" {
			return r
		}
	}
	// No structural result recorded (never-rendered path ran nothing
	// useful); return an empty result rather than nil.
	return StrategyResult{Name: "none", Corpus: NewCorpus()}
}

// salvage runs after the overall deadline expires: abandon in-flight
// work and grab the page's current markup under a short secondary
// deadline, merging it with whatever strategy results completed. The
// snapshot runs on a fresh root context because the pipeline context is
// already dead.
func salvage(d Driver, report *Report, completed []StrategyResult, opts Options) (*Report, error) {
	slog.Warn("overall deadline expired, salvaging partial content",
		"attempts", report.AttemptsUsed)

	sctx, cancel := context.WithTimeout(context.Background(), opts.SalvageTimeout)
	defer cancel()

	results := completed
	if markup, err := d.HTML(sctx); err == nil {
		snapshot := NewCorpus()
		if text := cleaner.Flatten(markup); text != "" {
			snapshot.Add(text, structuralFallback{}.Priority())
		}
		results = append(results, StrategyResult{Name: "salvage", Corpus: snapshot})
	} else {
		slog.Warn("salvage snapshot failed", "error", err)
	}

	merged := Merge(results)
	if merged.Len() == 0 {
		return nil, models.NewExtractError(
			models.ErrCodeNoContent,
			"extraction timed out and the salvage snapshot yielded no content",
			nil,
		)
	}

	report.Corpus = merged
	report.Strategy = "salvage"
	report.TimedOut = true
	report.TotalCharacters = merged.TotalCharacters()
	return report, nil
}
