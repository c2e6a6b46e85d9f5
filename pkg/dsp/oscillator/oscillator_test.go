package oscillator

import (
	"math"
	"testing"
)

func TestWaveforms(t *testing.T) {
	tests := []struct {
		name string
		w    Waveform
		want []float64
	}{
		{"sine", Sine, []float64{0, 1, 0, -1}},
		{"square", Square, []float64{1, 1, -1, -1}},
		{"saw", Saw, []float64{-1, -0.5, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Oscillator
			o.SetFrequency(1, 4)
			for k, want := range tt.want {
				if got := o.Next(tt.w); math.Abs(got-want) > 1e-12 {
					t.Errorf("sample %d = %f, want %f", k, got, want)
				}
			}
			if o.Phase() != 0 {
				t.Errorf("phase after one cycle = %f", o.Phase())
			}
		})
	}
}

func TestPhaseWraps(t *testing.T) {
	var o Oscillator
	o.SetFrequency(30000, 48000)
	for range 100 {
		o.Next(Saw)
		if p := o.Phase(); p < 0 || p >= 1 {
			t.Fatalf("phase %f out of range", p)
		}
	}

	o.Reset()
	if o.Phase() != 0 {
		t.Errorf("phase after reset = %f", o.Phase())
	}

	var silent Oscillator
	silent.SetFrequency(440, 0)
	silent.Next(Sine)
	if silent.Phase() != 0 {
		t.Error("zero sample rate advanced the phase")
	}
}
