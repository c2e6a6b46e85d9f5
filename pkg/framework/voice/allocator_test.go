package voice

import (
	"testing"

	"github.com/justyntemme/augo/pkg/midi"
)

// testVoice goes silent on Release; only Stop forgets the note.
type testVoice struct {
	active   bool
	note     uint8
	velocity uint8
	level    float64
	starts   int
	stops    int
}

func (v *testVoice) Active() bool   { return v.active }
func (v *testVoice) Note() uint8    { return v.note }
func (v *testVoice) Level() float64 { return v.level }
func (v *testVoice) Start(note, velocity uint8) {
	v.active = true
	v.note = note
	v.velocity = velocity
	v.level = float64(velocity) / 127
	v.starts++
}
func (v *testVoice) Release() { v.active = false }
func (v *testVoice) Stop()    { v.active = false; v.stops++ }
func (v *testVoice) Render(out []float32) {
	for i := range out {
		out[i] += float32(v.level)
	}
}

func newPool(n int) ([]*testVoice, *Allocator) {
	tv := make([]*testVoice, n)
	voices := make([]Voice, n)
	for i := range tv {
		tv[i] = &testVoice{}
		voices[i] = tv[i]
	}
	return tv, NewAllocator(voices)
}

func playing(tv []*testVoice, note uint8) int {
	n := 0
	for _, v := range tv {
		if v.active && v.note == note {
			n++
		}
	}
	return n
}

func TestPoly(t *testing.T) {
	tv, a := newPool(4)

	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.NoteOn(67, 100)
	if got := a.ActiveCount(); got != 3 {
		t.Fatalf("ActiveCount() = %d, want 3", got)
	}

	a.NoteOff(64)
	if got := a.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount() after note off = %d, want 2", got)
	}

	a.NoteOn(60, 80)
	if got := playing(tv, 60); got != 1 {
		t.Errorf("note 60 on %d voices after retrigger, want 1", got)
	}
	if tv[0].velocity != 80 || tv[0].starts != 2 {
		t.Errorf("retrigger did not reuse voice 0: %+v", *tv[0])
	}
}

func TestStealing(t *testing.T) {
	tests := []struct {
		name   string
		mode   StealMode
		stolen uint8
		active int
	}{
		{"oldest", StealOldest, 60, 2},
		{"quietest", StealQuietest, 62, 2},
		{"none", StealNone, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv, a := newPool(2)
			a.SetStealMode(tt.mode)
			a.NoteOn(60, 100)
			a.NoteOn(62, 10)
			a.NoteOn(64, 90)

			if got := a.ActiveCount(); got != tt.active {
				t.Errorf("ActiveCount() = %d, want %d", got, tt.active)
			}
			if tt.mode == StealNone {
				if playing(tv, 64) != 0 {
					t.Error("new note played with stealing disabled")
				}
				return
			}
			if playing(tv, tt.stolen) != 0 {
				t.Errorf("note %d still playing, want it stolen", tt.stolen)
			}
			if playing(tv, 64) != 1 {
				t.Error("new note not playing")
			}
		})
	}
}

func TestStealOldestFollowsStartOrder(t *testing.T) {
	tv, a := newPool(2)
	a.NoteOn(60, 100)
	a.NoteOn(62, 100)
	a.NoteOn(60, 100) // retrigger makes 62 the oldest
	a.NoteOn(64, 100)

	if playing(tv, 62) != 0 || playing(tv, 60) != 1 || playing(tv, 64) != 1 {
		t.Errorf("unexpected voices after steal: %+v %+v", *tv[0], *tv[1])
	}
}

func TestMono(t *testing.T) {
	tv, a := newPool(3)
	a.SetMode(ModeMono)

	a.NoteOn(60, 100)
	a.NoteOn(67, 100)
	if got := a.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount() = %d, want 1", got)
	}
	if tv[0].note != 67 {
		t.Errorf("voice 0 plays %d, want 67", tv[0].note)
	}

	// Releasing the replaced note does nothing.
	a.NoteOff(60)
	if !tv[0].active {
		t.Error("voice released by a note it no longer plays")
	}
	a.NoteOff(67)
	if tv[0].active {
		t.Error("voice still active after note off")
	}
}

func TestSustainPedal(t *testing.T) {
	tv, a := newPool(4)

	a.ProcessEvent(&midi.Event{Status: 0xB0, Data1: midi.CCSustain, Data2: 127})
	a.NoteOn(60, 100)
	a.NoteOff(60)
	if playing(tv, 60) != 1 {
		t.Fatal("pedal did not hold the note")
	}

	// A held key survives lifting the pedal.
	a.NoteOn(62, 100)
	a.ProcessEvent(&midi.Event{Status: 0xB0, Data1: midi.CCSustain, Data2: 0})
	if playing(tv, 60) != 0 {
		t.Error("note 60 still sustained after pedal up")
	}
	if playing(tv, 62) != 1 {
		t.Error("note 62 released by pedal up while its key is down")
	}
}

func TestProcessEvent(t *testing.T) {
	tv, a := newPool(4)

	a.ProcessEvent(&midi.Event{Status: 0x90, Data1: 60, Data2: 100})
	a.ProcessEvent(&midi.Event{Status: 0x91, Data1: 64, Data2: 100})
	if got := a.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount() = %d, want 2", got)
	}

	// Note on with zero velocity is a note off.
	a.ProcessEvent(&midi.Event{Status: 0x90, Data1: 60, Data2: 0})
	if playing(tv, 60) != 0 {
		t.Error("zero velocity note on did not release")
	}

	a.ProcessEvent(&midi.Event{Status: 0xB0, Data1: midi.CCAllNotesOff})
	if got := a.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() after all notes off = %d, want 0", got)
	}

	a.NoteOn(70, 100)
	a.ProcessEvent(&midi.Event{Status: 0xB0, Data1: midi.CCAllSoundOff})
	for i, v := range tv {
		if v.active {
			t.Errorf("voice %d active after all sound off", i)
		}
	}
	if tv[0].stops == 0 {
		t.Error("all sound off did not stop voices")
	}
}

func TestRenderSumsActiveVoices(t *testing.T) {
	_, a := newPool(3)
	a.NoteOn(60, 127)
	a.NoteOn(64, 127)

	out := make([]float32, 8)
	a.Render(out)
	for i, s := range out {
		if s != 2 {
			t.Fatalf("out[%d] = %v, want 2", i, s)
		}
	}
}

func TestEmptyPool(t *testing.T) {
	_, a := newPool(0)
	a.NoteOn(60, 100)
	a.NoteOff(60)
	if got := a.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
}
