package clock

import "testing"

func TestNew_InitializesAllNodesToZero(t *testing.T) {
	c := New([]string{"a", "b", "c"}, "a")
	snap := c.Snapshot()
	for _, id := range []string{"a", "b", "c"} {
		if snap[id] != 0 {
			t.Errorf("expected %s to start at 0, got %d", id, snap[id])
		}
	}
}

func TestIncrement_OnlyBumpsSelf(t *testing.T) {
	c := New([]string{"a", "b"}, "a")
	c.Increment()
	c.Increment()

	snap := c.Snapshot()
	if snap["a"] != 2 {
		t.Errorf("expected self counter 2, got %d", snap["a"])
	}
	if snap["b"] != 0 {
		t.Errorf("expected peer counter untouched, got %d", snap["b"])
	}
}

func TestMergeAndBump_TakesElementwiseMaxThenBumpsSelf(t *testing.T) {
	c := New([]string{"a", "b", "c"}, "a")
	c.Increment() // a=1

	c.MergeAndBump(Snapshot{"a": 0, "b": 5, "c": 2})

	snap := c.Snapshot()
	if snap["a"] != 2 {
		t.Errorf("expected a=2 (max(1,0)+1), got %d", snap["a"])
	}
	if snap["b"] != 5 {
		t.Errorf("expected b=5, got %d", snap["b"])
	}
	if snap["c"] != 2 {
		t.Errorf("expected c=2, got %d", snap["c"])
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Snapshot
		want Relation
	}{
		{"equal", Snapshot{"a": 1, "b": 2}, Snapshot{"a": 1, "b": 2}, EqualOrConcurrent},
		{"before", Snapshot{"a": 1, "b": 1}, Snapshot{"a": 2, "b": 2}, Before},
		{"after", Snapshot{"a": 2, "b": 2}, Snapshot{"a": 1, "b": 1}, After},
		{"concurrent", Snapshot{"a": 2, "b": 1}, Snapshot{"a": 1, "b": 2}, EqualOrConcurrent},
		{"missing keys treated as zero", Snapshot{"a": 1}, Snapshot{"a": 2, "b": 1}, Before},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := New([]string{"a"}, "a")
	snap := c.Snapshot()
	snap["a"] = 99

	if c.Snapshot()["a"] != 0 {
		t.Error("mutating a returned snapshot must not affect the clock")
	}
}
