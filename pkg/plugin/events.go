package plugin

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/midi"
)

// MIDIEvent queues a short MIDI message for the next render, offset frames
// into the block. It is the single producer of the event ring: calls must
// not overlap. A full ring drops the event.
func (i *Instance) MIDIEvent(status, data1, data2 uint8, offset uint32) error {
	if i == nil || i.closed.Load() {
		return au.ErrInvalidInstance
	}
	if !i.events.Add(midi.NewEvent(status, data1, data2, offset)) {
		i.metrics.DroppedMIDI.Inc()
	}
	return nil
}

// SendMIDI queues a gomidi message through MIDIEvent.
func (i *Instance) SendMIDI(msg gomidi.Message, offset uint32) error {
	e, err := midi.FromMessage(msg, offset)
	if err != nil {
		return fmt.Errorf("%w: %v", au.ErrParam, err)
	}
	return i.MIDIEvent(e.Status, e.Data1, e.Data2, e.Offset)
}

// PendingMIDI returns the number of events the next render will deliver and
// how many were dropped since the instance was opened. After Reset nothing is
// pending until the next render has discarded the queue.
func (i *Instance) PendingMIDI() (pending int, dropped uint64) {
	if i.flushRequested.Load() {
		return 0, i.events.Dropped()
	}
	return i.events.Len(), i.events.Dropped()
}
