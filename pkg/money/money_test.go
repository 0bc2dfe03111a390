package money

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1.005, 1.0},
		{1.006, 1.01},
		{19.999, 20},
		{100, 100},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSum(t *testing.T) {
	if got := Sum(0.1, 0.2); got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
	if got := Sum(); got != 0 {
		t.Errorf("expected 0 for no amounts, got %v", got)
	}
	if got := Sum(200, 50); got != 250 {
		t.Errorf("expected 250, got %v", got)
	}
}

func TestFits(t *testing.T) {
	for _, v := range []float64{0, 0.01, 1e9, MaxAmount} {
		if !Fits(v) {
			t.Errorf("Fits(%v) = false, want true", v)
		}
	}
	for _, v := range []float64{-0.01, 1e10, 2e11} {
		if Fits(v) {
			t.Errorf("Fits(%v) = true, want false", v)
		}
	}
}
