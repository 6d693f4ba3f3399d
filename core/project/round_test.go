package project

import "testing"

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{74.4, 74},
		{74.5, 75}, // halves go up, not to-even
		{75.5, 76},
		{49.5, 50},
		{99.99, 100},
		{-2.5, -3}, // away from zero
		{-2.4, -2},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(tt.in); got != tt.want {
			t.Errorf("RoundHalfUp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		quantity float64
		days     int
		want     float64
	}{
		{100, 10, 10},
		{100, 3, 34}, // partial day rounds up
		{1, 5, 1},
		{0, 5, 0},
		{7.5, 2, 4},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.quantity, tt.days); got != tt.want {
			t.Errorf("CeilDiv(%v, %d) = %v, want %v", tt.quantity, tt.days, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{50, 50},
		{0.005, 0.01},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
