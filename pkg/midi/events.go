// Package midi holds the fixed-size short MIDI events delivered to the audio
// callback and the queue that carries them there.
package midi

import (
	"fmt"
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
	EventTypeSystem
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	case EventTypePolyPressure:
		return "PolyPressure"
	case EventTypeControlChange:
		return "CC"
	case EventTypeProgramChange:
		return "ProgramChange"
	case EventTypeChannelPressure:
		return "ChannelPressure"
	case EventTypePitchBend:
		return "PitchBend"
	default:
		return "System"
	}
}

// Event is one short MIDI message scheduled at a sample offset within the
// current render block. Next links the events of one block in arrival order;
// it is rebuilt on every render and only valid until the render returns.
type Event struct {
	Status uint8
	Data1  uint8
	Data2  uint8
	Offset uint32

	Next *Event
}

// NewEvent builds an event from raw bytes.
func NewEvent(status, data1, data2 uint8, offset uint32) Event {
	return Event{Status: status, Data1: data1, Data2: data2, Offset: offset}
}

// FromMessage converts a short gomidi message. Messages longer than three
// bytes, such as SysEx, are rejected.
func FromMessage(msg gomidi.Message, offset uint32) (Event, error) {
	if len(msg) == 0 || len(msg) > 3 {
		return Event{}, fmt.Errorf("midi message of %d bytes is not a short message", len(msg))
	}
	e := Event{Status: msg[0], Offset: offset}
	if len(msg) > 1 {
		e.Data1 = msg[1]
	}
	if len(msg) > 2 {
		e.Data2 = msg[2]
	}
	return e, nil
}

// Message returns the event as a gomidi message. It allocates, so it is meant
// for control threads and tests, not the render path.
func (e Event) Message() gomidi.Message {
	switch e.Status & 0xF0 {
	case 0xC0, 0xD0:
		return gomidi.Message{e.Status, e.Data1}
	}
	return gomidi.Message{e.Status, e.Data1, e.Data2}
}

// Type decodes the status byte. A note-on with zero velocity is a note-off.
func (e Event) Type() EventType {
	switch e.Status & 0xF0 {
	case 0x80:
		return EventTypeNoteOff
	case 0x90:
		if e.Data2 == 0 {
			return EventTypeNoteOff
		}
		return EventTypeNoteOn
	case 0xA0:
		return EventTypePolyPressure
	case 0xB0:
		return EventTypeControlChange
	case 0xC0:
		return EventTypeProgramChange
	case 0xD0:
		return EventTypeChannelPressure
	case 0xE0:
		return EventTypePitchBend
	default:
		return EventTypeSystem
	}
}

// Channel returns the zero-based channel of a channel voice message.
func (e Event) Channel() uint8 {
	return e.Status & 0x0F
}

// PitchBend returns the bend amount in -8192..8191.
func (e Event) PitchBend() int16 {
	return int16(uint16(e.Data2)<<7|uint16(e.Data1)) - 8192
}

func (e Event) String() string {
	switch e.Type() {
	case EventTypeNoteOn:
		return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case EventTypeNoteOff:
		return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case EventTypeControlChange:
		return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case EventTypePitchBend:
		return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}", e.Channel(), e.PitchBend(), e.Offset)
	default:
		return fmt.Sprintf("%s{%02X %02X %02X, offset:%d}", e.Type(), e.Status, e.Data1, e.Data2, e.Offset)
	}
}

const (
	CCModWheel    uint8 = 1
	CCBreath      uint8 = 2
	CCVolume      uint8 = 7
	CCPan         uint8 = 10
	CCExpression  uint8 = 11
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCResetAll    uint8 = 121
	CCAllNotesOff uint8 = 123
)

func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((float64(note)-69.0)/12.0)
}

func NoteNumberToName(note uint8) string {
	noteNames := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
