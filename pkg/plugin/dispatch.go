package plugin

import (
	"github.com/justyntemme/augo/pkg/au"
)

// Call carries the arguments and results of one entry point call. Each
// entry point reads and writes only its own fields.
type Call struct {
	// Properties
	Property au.PropertyID
	Scope    au.Scope
	Element  au.Element
	Data     any
	Size     uint32
	Writable bool

	// Listeners and render notifications
	Listener au.PropertyListener
	Observer au.RenderObserver
	RefCon   any

	// Parameters
	Parameter    au.ParameterID
	Value        float32
	BufferOffset uint32
	Events       []au.ParameterEvent

	// Render
	Flags     *au.RenderActionFlags
	TimeStamp *au.TimeStamp
	Bus       uint32
	Frames    uint32
	IO        *au.BufferList

	// MIDI
	Status       uint8
	Data1, Data2 uint8
	Offset       uint32
}

// Method is the uniform form of every entry point.
type Method func(*Instance, *Call) error

// Lookup returns the handler of a selector.
func Lookup(sel au.Selector) (Method, bool) {
	switch sel {
	case au.SelectInitialize:
		return callInitialize, true
	case au.SelectUninitialize:
		return callUninitialize, true
	case au.SelectGetPropertyInfo:
		return callGetPropertyInfo, true
	case au.SelectGetProperty:
		return callGetProperty, true
	case au.SelectSetProperty:
		return callSetProperty, true
	case au.SelectAddPropertyListener:
		return callAddPropertyListener, true
	case au.SelectRemovePropertyListener:
		return callRemovePropertyListener, true
	case au.SelectRemovePropertyListenerWithUserData:
		return callRemovePropertyListenerWithUserData, true
	case au.SelectGetParameter:
		return callGetParameter, true
	case au.SelectSetParameter:
		return callSetParameter, true
	case au.SelectScheduleParameters:
		return callScheduleParameters, true
	case au.SelectRender:
		return callRender, true
	case au.SelectReset:
		return callReset, true
	case au.SelectAddRenderNotify:
		return callAddRenderNotify, true
	case au.SelectRemoveRenderNotify:
		return callRemoveRenderNotify, true
	case au.SelectMIDIEvent:
		return callMIDIEvent, true
	}
	return nil, false
}

// Dispatch runs the handler of sel. Unknown selectors report
// au.ErrUnimplemented.
func (i *Instance) Dispatch(sel au.Selector, c *Call) error {
	m, ok := Lookup(sel)
	if !ok {
		return au.ErrUnimplemented
	}
	return m(i, c)
}

func callInitialize(i *Instance, _ *Call) error { return i.Initialize() }

func callUninitialize(i *Instance, _ *Call) error { return i.Uninitialize() }

func callGetPropertyInfo(i *Instance, c *Call) error {
	var err error
	c.Size, c.Writable, err = i.GetPropertyInfo(c.Property, c.Scope, c.Element)
	return err
}

func callGetProperty(i *Instance, c *Call) error {
	return i.GetProperty(c.Property, c.Scope, c.Element, c.Data)
}

func callSetProperty(i *Instance, c *Call) error {
	return i.SetProperty(c.Property, c.Scope, c.Element, c.Data)
}

func callAddPropertyListener(i *Instance, c *Call) error {
	return i.AddPropertyListener(c.Property, c.Listener, c.RefCon)
}

func callRemovePropertyListener(i *Instance, c *Call) error {
	return i.RemovePropertyListener(c.Property, c.Listener)
}

func callRemovePropertyListenerWithUserData(i *Instance, c *Call) error {
	return i.RemovePropertyListenerWithRefCon(c.Property, c.Listener, c.RefCon)
}

func callGetParameter(i *Instance, c *Call) error {
	var err error
	c.Value, err = i.GetParameter(c.Parameter, c.Scope, c.Element)
	return err
}

func callSetParameter(i *Instance, c *Call) error {
	return i.SetParameter(c.Parameter, c.Scope, c.Element, c.Value, c.BufferOffset)
}

func callScheduleParameters(i *Instance, c *Call) error {
	return i.ScheduleParameters(c.Events)
}

func callRender(i *Instance, c *Call) error {
	return i.Render(c.Flags, c.TimeStamp, c.Bus, c.Frames, c.IO)
}

func callReset(i *Instance, c *Call) error {
	return i.Reset(c.Scope, c.Element)
}

func callAddRenderNotify(i *Instance, c *Call) error {
	return i.AddRenderNotify(c.Observer, c.RefCon)
}

func callRemoveRenderNotify(i *Instance, c *Call) error {
	return i.RemoveRenderNotify(c.Observer, c.RefCon)
}

func callMIDIEvent(i *Instance, c *Call) error {
	return i.MIDIEvent(c.Status, c.Data1, c.Data2, c.Offset)
}
