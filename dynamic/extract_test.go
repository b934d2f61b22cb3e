package dynamic

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/deepfetch/models"
)

func fastOptions() Options {
	return Options{
		InitialWait:     time.Millisecond,
		MaxAttempts:     50,
		SettleDelay:     time.Millisecond,
		StableWindow:    1,
		ConfirmWindow:   1,
		StrategyTimeout: time.Second,
		OverallTimeout:  5 * time.Second,
		SalvageTimeout:  time.Second,
	}
}

func TestExtract_StabilizesAndMerges(t *testing.T) {
	d := &fakeDriver{
		sizes:  []int{100, 250, 250, 250},
		markup: "<html><body><p>ignored words</p></body></html>",
		evalByNeedle: map[string]any{
			// Element walk and text-node walk overlap on purpose: the
			// shorter fragment must be pruned by containment.
			"blockquote":       []any{"hello world", "orthogonal text"},
			"createTreeWalker": []any{"hello world! extended"},
		},
	}

	report, err := Extract(context.Background(), d, fastOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if report.Strategy != "merged" {
		t.Errorf("Strategy = %q, want merged", report.Strategy)
	}
	if !report.Converged {
		t.Error("expected convergence")
	}
	if report.AttemptsUsed != 4 {
		t.Errorf("AttemptsUsed = %d, want 4", report.AttemptsUsed)
	}
	if report.TimedOut {
		t.Error("TimedOut must be false on a clean run")
	}

	got := report.Corpus.Fragments()
	want := []string{"hello world! extended", "orthogonal text", "ignored words"}
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("fragments = %v, want %v", got, want)
	}
	if report.TotalCharacters != report.Corpus.TotalCharacters() {
		t.Errorf("TotalCharacters = %d, want %d", report.TotalCharacters, report.Corpus.TotalCharacters())
	}
}

func TestExtract_SelectSinglePrefersConversation(t *testing.T) {
	transcript := strings.Repeat("user: what is the airspeed of an unladen swallow? ", 4)

	d := &fakeDriver{
		sizes:  []int{500, 500, 500},
		markup: "<html><body><p>page chrome text</p></body></html>",
		evalByNeedle: map[string]any{
			"data-message-author-role": []any{transcript},
			"blockquote":               []any{"a short sidebar note"},
		},
	}

	opts := fastOptions()
	opts.SelectSingle = true

	report, err := Extract(context.Background(), d, opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if report.Strategy != "conversation" {
		t.Errorf("Strategy = %q, want conversation", report.Strategy)
	}
	if report.Corpus.Len() != 1 {
		t.Errorf("fragments = %d, want 1", report.Corpus.Len())
	}
}

func TestExtract_SelectSingleFallsBackToStructural(t *testing.T) {
	// Nothing substantial from any live strategy; the structural result
	// wins unconditionally.
	d := &fakeDriver{
		sizes:  []int{500, 500, 500},
		markup: "<html><body><p>thin page</p></body></html>",
	}

	opts := fastOptions()
	opts.SelectSingle = true
	opts.MinSubstance = 1000

	report, err := Extract(context.Background(), d, opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if report.Strategy != "structural" {
		t.Errorf("Strategy = %q, want structural", report.Strategy)
	}
}

func TestExtract_NeverRenderedUsesStructuralOnly(t *testing.T) {
	// Size signal below the rendered floor: live-page walks are skipped.
	d := &fakeDriver{
		sizes:  []int{10, 10, 10},
		markup: "<html><body>bare shell</body></html>",
		evalByNeedle: map[string]any{
			"blockquote": []any{"must not appear in output"},
		},
	}

	report, err := Extract(context.Background(), d, fastOptions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if d.evaluatedContains("blockquote") {
		t.Error("element walk ran against a never-rendered page")
	}
	if got := report.Corpus.Text(); got != "bare shell" {
		t.Errorf("content = %q, want structural flatten only", got)
	}
}

func TestExtract_DeadlineSalvage(t *testing.T) {
	d := &fakeDriver{
		sizes:  []int{100, 200, 300},
		markup: "<html><body><p>partial but real content</p></body></html>",
	}

	opts := fastOptions()
	opts.InitialWait = time.Second
	opts.OverallTimeout = 10 * time.Millisecond

	report, err := Extract(context.Background(), d, opts)
	if err != nil {
		t.Fatalf("salvage must not error when the snapshot has content: %v", err)
	}
	if !report.TimedOut {
		t.Error("TimedOut must be set")
	}
	if report.Strategy != "salvage" {
		t.Errorf("Strategy = %q, want salvage", report.Strategy)
	}
	if report.Corpus.Len() == 0 {
		t.Error("salvage corpus is empty")
	}
}

func TestExtract_SalvageWithNothingIsNoContent(t *testing.T) {
	d := &fakeDriver{
		sizes:     []int{100},
		markupErr: errors.New("target crashed"),
	}

	opts := fastOptions()
	opts.InitialWait = time.Second
	opts.OverallTimeout = 10 * time.Millisecond

	_, err := Extract(context.Background(), d, opts)
	if err == nil {
		t.Fatal("expected an error")
	}
	var extractErr *models.ExtractError
	if !errors.As(err, &extractErr) || extractErr.Code != models.ErrCodeNoContent {
		t.Errorf("err = %v, want code %s", err, models.ErrCodeNoContent)
	}
}
