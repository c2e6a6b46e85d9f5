// Package voice assigns incoming notes to a fixed pool of synth voices.
// Nothing here allocates after NewAllocator, so it can run on the render
// thread.
package voice

import (
	"github.com/justyntemme/augo/pkg/midi"
)

// Mode defines how notes map to voices.
type Mode int

const (
	// ModePoly gives each note its own voice.
	ModePoly Mode = iota
	// ModeMono plays one note at a time on the first voice.
	ModeMono
)

// StealMode picks the voice to reuse when every voice is busy.
type StealMode int

const (
	// StealOldest reuses the voice started first.
	StealOldest StealMode = iota
	// StealQuietest reuses the voice with the lowest level.
	StealQuietest
	// StealNone drops new notes when the pool is full.
	StealNone
)

// Voice is one sound generator of the pool.
type Voice interface {
	// Active reports whether the voice still produces sound, including
	// its release.
	Active() bool
	Note() uint8
	// Level is the current output level, used by StealQuietest.
	Level() float64
	Start(note, velocity uint8)
	Release()
	// Stop silences the voice immediately.
	Stop()
	// Render adds the voice's output to out.
	Render(out []float32)
}

// Allocator routes note events to voices.
type Allocator struct {
	voices []Voice
	mode   Mode
	steal  StealMode

	// Per voice: start order, key still down, held only by the pedal.
	started   []uint64
	held      []bool
	sustained []bool

	clock   uint64
	sustain bool
}

// NewAllocator creates an allocator over voices in poly mode, stealing the
// oldest voice.
func NewAllocator(voices []Voice) *Allocator {
	return &Allocator{
		voices:    voices,
		started:   make([]uint64, len(voices)),
		held:      make([]bool, len(voices)),
		sustained: make([]bool, len(voices)),
	}
}

// SetMode switches the allocation mode and silences every voice.
func (a *Allocator) SetMode(mode Mode) {
	if mode == a.mode {
		return
	}
	a.mode = mode
	a.Reset()
}

// SetStealMode sets how a busy pool is handled.
func (a *Allocator) SetStealMode(mode StealMode) {
	a.steal = mode
}

// ProcessEvent handles one MIDI event. Events other than notes, sustain and
// the channel mode messages are ignored.
func (a *Allocator) ProcessEvent(e *midi.Event) {
	switch e.Type() {
	case midi.EventTypeNoteOn:
		a.NoteOn(e.Data1, e.Data2)
	case midi.EventTypeNoteOff:
		a.NoteOff(e.Data1)
	case midi.EventTypeControlChange:
		switch e.Data1 {
		case midi.CCSustain:
			a.SetSustain(e.Data2 >= 64)
		case midi.CCAllNotesOff:
			a.AllNotesOff()
		case midi.CCAllSoundOff, midi.CCResetAll:
			a.Reset()
		}
	}
}

// NoteOn starts note, retriggering a voice that already plays it.
func (a *Allocator) NoteOn(note, velocity uint8) {
	if len(a.voices) == 0 {
		return
	}
	idx := -1
	if a.mode == ModeMono {
		idx = 0
	} else {
		idx = a.find(note)
		if idx < 0 {
			idx = a.free()
		}
		if idx < 0 {
			idx = a.victim()
		}
		if idx < 0 {
			return
		}
	}

	a.clock++
	a.started[idx] = a.clock
	a.held[idx] = true
	a.sustained[idx] = false
	a.voices[idx].Start(note, velocity)
}

// NoteOff releases note unless the sustain pedal is down.
func (a *Allocator) NoteOff(note uint8) {
	for i, v := range a.voices {
		if !a.held[i] || v.Note() != note {
			continue
		}
		a.held[i] = false
		if a.sustain {
			a.sustained[i] = true
			continue
		}
		v.Release()
	}
}

// SetSustain sets the pedal state. Lifting it releases every note held
// only by the pedal.
func (a *Allocator) SetSustain(on bool) {
	a.sustain = on
	if on {
		return
	}
	for i, v := range a.voices {
		if a.sustained[i] {
			a.sustained[i] = false
			v.Release()
		}
	}
}

// AllNotesOff releases every sounding voice.
func (a *Allocator) AllNotesOff() {
	for i, v := range a.voices {
		a.held[i] = false
		a.sustained[i] = false
		if v.Active() {
			v.Release()
		}
	}
}

// Reset stops every voice and lifts the pedal.
func (a *Allocator) Reset() {
	for i, v := range a.voices {
		v.Stop()
		a.held[i] = false
		a.sustained[i] = false
		a.started[i] = 0
	}
	a.sustain = false
	a.clock = 0
}

// ActiveCount returns the number of sounding voices.
func (a *Allocator) ActiveCount() int {
	n := 0
	for _, v := range a.voices {
		if v.Active() {
			n++
		}
	}
	return n
}

// Render adds every active voice to out.
func (a *Allocator) Render(out []float32) {
	for _, v := range a.voices {
		if v.Active() {
			v.Render(out)
		}
	}
}

func (a *Allocator) find(note uint8) int {
	for i, v := range a.voices {
		if v.Active() && v.Note() == note {
			return i
		}
	}
	return -1
}

func (a *Allocator) free() int {
	for i, v := range a.voices {
		if !v.Active() {
			return i
		}
	}
	return -1
}

func (a *Allocator) victim() int {
	best := -1
	for i, v := range a.voices {
		switch a.steal {
		case StealOldest:
			if best < 0 || a.started[i] < a.started[best] {
				best = i
			}
		case StealQuietest:
			if best < 0 || v.Level() < a.voices[best].Level() {
				best = i
			}
		}
	}
	if best >= 0 {
		a.voices[best].Stop()
	}
	return best
}
