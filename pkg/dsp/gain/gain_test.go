package gain

import (
	"math"
	"testing"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		name    string
		linear  float64
		db      float64
		epsilon float64
	}{
		{"Unity gain", 1.0, 0.0, 0.001},
		{"Half amplitude", 0.5, -6.02, 0.01},
		{"Double amplitude", 2.0, 6.02, 0.01},
		{"Zero amplitude", 0.0, MinDB, 0.001},
		{"Negative amplitude", -1.0, MinDB, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearToDb(tt.linear); math.Abs(got-tt.db) > tt.epsilon {
				t.Errorf("LinearToDb(%f) = %f, want %f", tt.linear, got, tt.db)
			}
			if tt.db == MinDB {
				return
			}
			if got := DbToLinear(tt.db); math.Abs(got-tt.linear) > tt.epsilon {
				t.Errorf("DbToLinear(%f) = %f, want %f", tt.db, got, tt.linear)
			}
		})
	}

	if got := DbToLinear(MinDB); got != 0 {
		t.Errorf("DbToLinear(MinDB) = %f, want 0", got)
	}
	if got := DbToLinearFloor(-80, -80); got != 0 {
		t.Errorf("DbToLinearFloor at floor = %f, want 0", got)
	}
	if got := DbToLinearFloor(-6, -80); math.Abs(got-0.501) > 0.001 {
		t.Errorf("DbToLinearFloor(-6) = %f", got)
	}
}

func TestCoefficient(t *testing.T) {
	if c := Coefficient(0, 48000); c != 0 {
		t.Errorf("zero time: %f", c)
	}
	if c := Coefficient(10, 0); c != 0 {
		t.Errorf("zero rate: %f", c)
	}
	// After one time constant the distance to the target shrinks by 1/e.
	c := Coefficient(1, 48000)
	if got := math.Pow(c, 48); math.Abs(got-1/math.E) > 1e-9 {
		t.Errorf("pole^48 = %f, want 1/e", got)
	}
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(1)
	s.SetTime(5, 48000)
	s.SetTarget(0)

	prev := s.Current()
	for range 64 {
		v := s.Next()
		if v >= prev || v < 0 {
			t.Fatalf("not gliding down: %f after %f", v, prev)
		}
		prev = v
	}
	if s.Settled() {
		t.Error("settled after 64 samples of a 5 ms glide")
	}

	for range 48000 {
		s.Next()
	}
	if !s.Settled() {
		t.Errorf("not settled after one second: %f", s.Current())
	}

	s.Snap(0.5)
	if s.Current() != 0.5 || !s.Settled() {
		t.Errorf("Snap: current %f", s.Current())
	}

	// Without a time constant the target is reached immediately.
	s.SetTime(0, 48000)
	s.SetTarget(2)
	if v := s.Next(); v != 2 {
		t.Errorf("unsmoothed Next = %f, want 2", v)
	}
}
