package alpm

import "testing"

func TestVerCmp(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		// Plain numeric ordering.
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.10", "1.9", 1},
		{"1.0.0", "1.0", 1},
		{"0010", "10", 0},

		// Numeric beats alphabetic.
		{"1.0a", "1.0.1", -1},
		{"2.0rc1", "2.0.1", -1},

		// Missing segment sorts before any present segment.
		{"1.0", "1.0a", -1},
		{"1.0", "1.0.0", -1},

		// Alphabetic segments compare lexicographically.
		{"1.0alpha", "1.0beta", -1},
		{"1.0rc1", "1.0rc2", -1},

		// Epoch dominates.
		{"1:0.1", "2.0", 1},
		{"1:1.0", "1:1.0", 0},
		{"1:1.0", "2:0.1", -1},

		// Release is the final tie break; absent release matches any.
		{"1.0-1", "1.0-2", -1},
		{"1.0", "1.0-5", 0},
		{"1.0-1", "1.0-1", 0},
		{"1.0-2", "1.0-10", -1},

		// Separators only delimit.
		{"1..0", "1.0", 0},
		{"1.0_5", "1.0.5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := VerCmp(tt.a, tt.b); got != tt.want {
				t.Errorf("VerCmp(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Antisymmetry.
			if got := VerCmp(tt.b, tt.a); got != -tt.want {
				t.Errorf("VerCmp(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestVerCmpTotalOrder(t *testing.T) {
	// Strictly ascending corpus; every pair must agree with the ordering,
	// which exercises transitivity over the full cross product.
	ascending := []string{
		"0.9",
		"1.0",
		"1.0a",
		"1.0alpha",
		"1.0rc1",
		"1.0rc2",
		"1.0.1",
		"1.1",
		"2.0-1",
		"2.0-3",
		"1:0.1",
		"1:1.0",
		"2:0.0.1",
	}

	for i, a := range ascending {
		if VerCmp(a, a) != 0 {
			t.Errorf("VerCmp(%q, %q) != 0", a, a)
		}
		for _, b := range ascending[i+1:] {
			if VerCmp(a, b) != -1 {
				t.Errorf("VerCmp(%q, %q) = %d, want -1", a, b, VerCmp(a, b))
			}
			if VerCmp(b, a) != 1 {
				t.Errorf("VerCmp(%q, %q) = %d, want 1", b, a, VerCmp(b, a))
			}
		}
	}
}
