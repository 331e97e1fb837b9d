package util

import "testing"

func TestRound(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{0.12345, 4, 0.1235},
		{0.12344, 4, 0.1234},
		{-0.5, 0, -1},
		{3.14159, 2, 3.14},
	}
	for _, c := range cases {
		if got := Round(c.v, c.places); got != c.want {
			t.Fatalf("Round(%v, %d) = %v, want %v", c.v, c.places, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Fatalf("Clamp above = %v, want 1", got)
	}
	if got := Clamp(-0.1, 0, 1); got != 0 {
		t.Fatalf("Clamp below = %v, want 0", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Fatalf("Clamp inside = %v, want 0.4", got)
	}
}
