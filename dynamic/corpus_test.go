package dynamic

import (
	"reflect"
	"testing"
)

func TestCorpus_AddTrimsAndDiscardsEmpty(t *testing.T) {
	c := NewCorpus()
	c.Add("  padded fragment  ", 1)
	c.Add("", 1)
	c.Add("   \t\n", 1)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if got := c.Fragments()[0]; got != "padded fragment" {
		t.Errorf("fragment = %q, want trimmed", got)
	}
}

func TestCorpus_FirstPriorityWins(t *testing.T) {
	c := NewCorpus()
	c.Add("shared fragment", 3)
	c.Add("shared fragment", 1)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if got := c.prio["shared fragment"]; got != 3 {
		t.Errorf("priority = %d, want first-seen 3", got)
	}
}

func TestCorpus_FragmentOrdering(t *testing.T) {
	c := NewCorpus()
	c.Add("bb", 2)
	c.Add("aa", 2)
	c.Add("longer than the rest", 4)
	c.Add("cc", 1)

	// Longest first, then priority ascending, then lexical.
	want := []string{"longer than the rest", "cc", "aa", "bb"}
	if got := c.Fragments(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fragments() = %v, want %v", got, want)
	}
}

func TestCorpus_TotalCharactersAndText(t *testing.T) {
	c := NewCorpus()
	c.Add("abcd", 1)
	c.Add("ef", 1)

	if got := c.TotalCharacters(); got != 6 {
		t.Errorf("TotalCharacters = %d, want 6", got)
	}
	if got := c.Text(); got != "abcd\n\nef" {
		t.Errorf("Text = %q", got)
	}
}

func TestMerge_ContainmentPruning(t *testing.T) {
	a := NewCorpus()
	a.Add("hello", 2)
	a.Add("hello world", 2)
	b := NewCorpus()
	b.Add("hello world!", 3)

	merged := Merge([]StrategyResult{
		{Name: "a", Priority: 2, Corpus: a},
		{Name: "b", Priority: 3, Corpus: b},
	})

	want := []string{"hello world!"}
	if got := merged.Fragments(); !reflect.DeepEqual(got, want) {
		t.Errorf("merged = %v, want %v", got, want)
	}
}

func TestMerge_EqualLengthDistinctBothKept(t *testing.T) {
	a := NewCorpus()
	a.Add("first passage", 1)
	a.Add("other passage", 1)

	merged := Merge([]StrategyResult{{Name: "a", Priority: 1, Corpus: a}})
	if merged.Len() != 2 {
		t.Errorf("merged.Len = %d, want 2 (equal-length distinct fragments)", merged.Len())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	a := NewCorpus()
	a.Add("the quick brown fox", 2)
	a.Add("quick brown", 3)
	a.Add("an unrelated sentence", 1)

	once := Merge([]StrategyResult{{Name: "a", Corpus: a}})
	twice := Merge([]StrategyResult{{Name: "again", Corpus: once}})

	if !reflect.DeepEqual(once.Fragments(), twice.Fragments()) {
		t.Errorf("second merge changed output: %v vs %v", once.Fragments(), twice.Fragments())
	}
}

func TestMerge_KeepsStrongestPriority(t *testing.T) {
	a := NewCorpus()
	a.Add("duplicated across strategies", 4)
	b := NewCorpus()
	b.Add("duplicated across strategies", 1)

	merged := Merge([]StrategyResult{
		{Name: "a", Corpus: a},
		{Name: "b", Corpus: b},
	})
	if got := merged.prio["duplicated across strategies"]; got != 1 {
		t.Errorf("merged priority = %d, want 1", got)
	}
}

func TestMerge_NilAndEmptyCorpora(t *testing.T) {
	a := NewCorpus()
	a.Add("only survivor", 1)

	merged := Merge([]StrategyResult{
		{Name: "nil", Corpus: nil},
		{Name: "empty", Corpus: NewCorpus()},
		{Name: "a", Corpus: a},
	})
	if merged.Len() != 1 {
		t.Errorf("merged.Len = %d, want 1", merged.Len())
	}
}
