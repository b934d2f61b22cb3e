package dynamic

import (
	"sort"
	"strings"
)

// Corpus is a set of text fragments keyed by exact string content.
// Each fragment remembers the priority of the first strategy that
// produced it, which only matters for deterministic output ordering.
type Corpus struct {
	prio map[string]int
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{prio: make(map[string]int)}
}

// Add inserts a fragment. Text is trimmed; empty fragments are
// discarded. A fragment already present keeps its original priority.
func (c *Corpus) Add(text string, priority int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if _, ok := c.prio[text]; !ok {
		c.prio[text] = priority
	}
}

// Len returns the number of fragments.
func (c *Corpus) Len() int {
	return len(c.prio)
}

// TotalCharacters returns the summed length of all fragments.
func (c *Corpus) TotalCharacters() int {
	total := 0
	for f := range c.prio {
		total += len(f)
	}
	return total
}

// Fragments returns the fragments in deterministic order: longest
// first, then by first-seen strategy priority, then lexical. The most
// substantial, most specific content surfaces first and the output is
// reproducible across runs on the same captured page state.
func (c *Corpus) Fragments() []string {
	out := make([]string, 0, len(c.prio))
	for f := range c.prio {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		if c.prio[a] != c.prio[b] {
			return c.prio[a] < c.prio[b]
		}
		return a < b
	})
	return out
}

// Text joins the ordered fragments with blank lines.
func (c *Corpus) Text() string {
	return strings.Join(c.Fragments(), "\n\n")
}

// StrategyResult pairs a strategy name with the corpus it produced.
// Strategies that fail or time out contribute an empty corpus.
type StrategyResult struct {
	Name     string
	Priority int
	Corpus   *Corpus
}

// Merge unions the fragments of all strategy results and prunes
// containment duplicates: whenever one fragment is a substring of a
// longer kept fragment, the shorter is dropped. Equal-length fragments
// with different content are both kept. The operation is idempotent.
//
// The check is O(n²) over fragments, which is fine for the hundreds to
// low thousands of fragments a page yields.
func Merge(results []StrategyResult) *Corpus {
	union := NewCorpus()
	for _, r := range results {
		if r.Corpus == nil {
			continue
		}
		for f, p := range r.Corpus.prio {
			// Prefer the strongest (lowest) priority seen for a fragment.
			if old, ok := union.prio[f]; !ok || p < old {
				union.prio[f] = p
			}
		}
	}

	merged := NewCorpus()
	kept := make([]string, 0, union.Len())
	for _, f := range union.Fragments() { // longest first
		contained := false
		for _, k := range kept {
			if strings.Contains(k, f) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, f)
			merged.prio[f] = union.prio[f]
		}
	}
	return merged
}
