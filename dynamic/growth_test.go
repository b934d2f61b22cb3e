package dynamic

import "testing"

func TestMonitor_GrowingWhileSizesChange(t *testing.T) {
	m := NewMonitor(3, 2)
	for i, size := range []int{100, 200, 300, 400} {
		if got := m.Observe(size); got != Growing {
			t.Errorf("sample %d (size %d): got %s, want growing", i+1, size, got)
		}
	}
}

func TestMonitor_StableThenExhausted(t *testing.T) {
	m := NewMonitor(3, 2)

	m.Observe(500)
	// Three equal follow-ups reach the stable window.
	for i := 0; i < 3; i++ {
		state := m.Observe(500)
		if i < 2 && state != Growing {
			t.Errorf("run %d: got %s, want growing", i+1, state)
		}
		if i == 2 && state != Stable {
			t.Errorf("run 3: got %s, want stable", state)
		}
	}
	// One more equal sample is still inside the confirm window.
	if got := m.Observe(500); got != Stable {
		t.Errorf("run 4: got %s, want stable", got)
	}
	// The second confirm sample flips to exhausted.
	if got := m.Observe(500); got != Exhausted {
		t.Errorf("run 5: got %s, want exhausted", got)
	}
}

func TestMonitor_GrowthResetsRun(t *testing.T) {
	m := NewMonitor(2, 1)

	m.Observe(100)
	m.Observe(100)
	m.Observe(100) // run = 2, stable
	if got := m.State(); got != Stable {
		t.Fatalf("precondition: got %s, want stable", got)
	}

	// Any change resets the run entirely; a stability candidate that
	// starts growing again goes back to square one.
	if got := m.Observe(150); got != Growing {
		t.Errorf("after growth: got %s, want growing", got)
	}
	m.Observe(150)
	m.Observe(150)
	if got := m.State(); got != Stable {
		t.Errorf("re-stabilized: got %s, want stable", got)
	}
}

func TestMonitor_ShrinkAlsoResets(t *testing.T) {
	m := NewMonitor(1, 1)
	m.Observe(300)
	m.Observe(300)
	if got := m.Observe(200); got != Growing {
		t.Errorf("shrinking size must reset the run: got %s, want growing", got)
	}
}

func TestMonitor_ConvergenceAttemptCount(t *testing.T) {
	// With N attempts of real growth, convergence lands exactly at
	// N + stableWindow + confirmWindow samples.
	tests := []struct {
		name          string
		sizes         []int
		stableWindow  int
		confirmWindow int
		wantExhausted int // 1-based sample index, 0 = never
	}{
		{"immediate plateau", []int{100, 100, 100, 100}, 1, 1, 3},
		{"growth then plateau", []int{100, 250, 250, 250}, 1, 1, 4},
		{"wider windows", []int{100, 200, 200, 200, 200, 200, 200}, 3, 2, 7},
		{"never settles", []int{1, 2, 3, 4, 5, 6}, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(tt.stableWindow, tt.confirmWindow)
			got := 0
			for i, size := range tt.sizes {
				if m.Observe(size) == Exhausted && got == 0 {
					got = i + 1
				}
			}
			if got != tt.wantExhausted {
				t.Errorf("exhausted at sample %d, want %d", got, tt.wantExhausted)
			}
		})
	}
}

func TestNewMonitor_ClampsWindows(t *testing.T) {
	m := NewMonitor(0, -3)
	m.Observe(10)
	m.Observe(10)
	m.Observe(10)
	if got := m.State(); got != Exhausted {
		t.Errorf("windows should clamp to 1: got %s, want exhausted", got)
	}
}

func TestMonitor_LastSize(t *testing.T) {
	m := NewMonitor(1, 1)
	if got := m.LastSize(); got != 0 {
		t.Errorf("empty monitor LastSize = %d, want 0", got)
	}
	m.Observe(42)
	if got := m.LastSize(); got != 42 {
		t.Errorf("LastSize = %d, want 42", got)
	}
}
