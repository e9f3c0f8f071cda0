package rating

import "testing"

func TestValidateScore(t *testing.T) {
	for _, s := range []int{1, 2, 3, 4, 5} {
		if err := ValidateScore(s); err != nil {
			t.Errorf("ValidateScore(%d) = %v", s, err)
		}
	}
	for _, s := range []int{0, -1, 6, 100} {
		if err := ValidateScore(s); err != ErrOutOfRange {
			t.Errorf("ValidateScore(%d) = %v, want ErrOutOfRange", s, err)
		}
	}
}

func TestScaledAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, 0},
		{"single five", []int{5}, 500},
		{"half star", []int{4, 5}, 450},
		{"rounds half away from zero", []int{4, 4, 5}, 433}, // 4.3333 -> 433.33 -> 433
		{"two thirds", []int{4, 5, 5}, 467},                 // 4.6667 -> 466.67 -> 467
		{"all ones", []int{1, 1, 1, 1}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaledAverage(tt.scores); got != tt.want {
				t.Errorf("ScaledAverage(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}
