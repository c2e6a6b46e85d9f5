package au

import "reflect"

// PropertyListener receives property change notifications. Implementations
// are identified by value, so they should be pointers or other comparable
// types.
type PropertyListener interface {
	PropertyChanged(refCon any, id PropertyID, scope Scope, element Element)
}

// RenderObserver is called before and after each render.
type RenderObserver interface {
	RenderNotify(refCon any, flags *RenderActionFlags, ts *TimeStamp, bus uint32, frames uint32, io *BufferList) error
}

// InputProc supplies input audio when the host installs a render callback.
type InputProc interface {
	RenderInput(refCon any, flags *RenderActionFlags, ts *TimeStamp, bus uint32, frames uint32, io *BufferList) error
}

// InputFunc adapts a function to InputProc.
type InputFunc func(refCon any, flags *RenderActionFlags, ts *TimeStamp, bus uint32, frames uint32, io *BufferList) error

func (f InputFunc) RenderInput(refCon any, flags *RenderActionFlags, ts *TimeStamp, bus uint32, frames uint32, io *BufferList) error {
	return f(refCon, flags, ts, bus, frames, io)
}

// Renderer is anything that can produce audio on an output bus, typically an
// upstream unit connected with MakeConnection.
type Renderer interface {
	Render(flags *RenderActionFlags, ts *TimeStamp, bus uint32, frames uint32, io *BufferList) error
}

// RenderCallback is the payload of SetRenderCallback. A nil Proc clears it.
type RenderCallback struct {
	Proc   InputProc
	RefCon any
}

// Connection is the payload of MakeConnection. A nil Source disconnects.
type Connection struct {
	Source       Renderer
	SourceOutput uint32
	DestInput    uint32
}

// HostCallbacks exposes host transport information to the plugin.
type HostCallbacks struct {
	UserData       any
	BeatAndTempo   func() (beat, tempo float64, err error)
	TransportState func() (playing bool, sampleTime float64, err error)
}

// Preset names a factory or user preset. Negative numbers denote user
// presets.
type Preset struct {
	Number int32
	Name   string
}

// ChannelInfo is one supported (input, output) channel pair. -1 means any
// count, 0 means the side is absent.
type ChannelInfo struct {
	InChannels  int16
	OutChannels int16
}

// ParameterUnit is the host's unit vocabulary for a parameter.
type ParameterUnit uint32

const (
	UnitGeneric             ParameterUnit = 0
	UnitIndexed             ParameterUnit = 1
	UnitBoolean             ParameterUnit = 2
	UnitPercent             ParameterUnit = 3
	UnitSeconds             ParameterUnit = 4
	UnitSampleFrames        ParameterUnit = 5
	UnitPhase               ParameterUnit = 6
	UnitRate                ParameterUnit = 7
	UnitHertz               ParameterUnit = 8
	UnitCents               ParameterUnit = 9
	UnitRelativeSemiTones   ParameterUnit = 10
	UnitMIDINoteNumber      ParameterUnit = 11
	UnitMIDIController      ParameterUnit = 12
	UnitDecibels            ParameterUnit = 13
	UnitLinearGain          ParameterUnit = 14
	UnitDegrees             ParameterUnit = 15
	UnitEqualPowerCrossfade ParameterUnit = 16
	UnitMixerFaderCurve1    ParameterUnit = 17
	UnitPan                 ParameterUnit = 18
	UnitMeters              ParameterUnit = 19
	UnitAbsoluteCents       ParameterUnit = 20
	UnitOctaves             ParameterUnit = 21
	UnitBPM                 ParameterUnit = 22
	UnitBeats               ParameterUnit = 23
	UnitMilliseconds        ParameterUnit = 24
	UnitRatio               ParameterUnit = 25
	UnitCustomUnit          ParameterUnit = 26
)

// ParameterFlags describe how the host may present a parameter.
type ParameterFlags uint32

const (
	ParameterFlagMeterReadOnly      ParameterFlags = 1 << 15
	ParameterFlagIsGlobalMeta       ParameterFlags = 1 << 18
	ParameterFlagHasClump           ParameterFlags = 1 << 20
	ParameterFlagValuesHaveStrings  ParameterFlags = 1 << 21
	ParameterFlagDisplayLogarithmic ParameterFlags = 1 << 22
	ParameterFlagIsHighResolution   ParameterFlags = 1 << 23
	ParameterFlagNonRealTime        ParameterFlags = 1 << 24
	ParameterFlagCanRamp            ParameterFlags = 1 << 25
	ParameterFlagHasName            ParameterFlags = 1 << 27
	ParameterFlagIsReadable         ParameterFlags = 1 << 30
	ParameterFlagIsWritable         ParameterFlags = 1 << 31
)

// ParameterInfo is the payload of the ParameterInfo property.
type ParameterInfo struct {
	Name         string
	UnitName     string
	ClumpID      uint32
	Unit         ParameterUnit
	MinValue     float32
	MaxValue     float32
	DefaultValue float32
	Flags        ParameterFlags
}

// ParameterStringFromValue is the in/out payload of the
// ParameterStringFromValue property. A nil Value formats the current value.
type ParameterStringFromValue struct {
	ParamID ParameterID
	Value   *float32
	String  string
}

// ParameterValueFromString is the in/out payload of the
// ParameterValueFromString property.
type ParameterValueFromString struct {
	ParamID ParameterID
	String  string
	Value   float32
}

// ClumpName is the in/out payload of the ParameterClumpName property.
type ClumpName struct {
	ClumpID uint32
	Name    string
}

// ViewInfo is the payload of the CocoaUI property.
type ViewInfo struct {
	BundleID  string
	ClassName string
	Width     uint32
	Height    uint32
}

// ParameterEventType distinguishes immediate from ramped scheduled events.
type ParameterEventType uint32

const (
	ParameterEventImmediate ParameterEventType = 1
	ParameterEventRamped    ParameterEventType = 2
)

// ParameterEvent is one entry of a ScheduleParameters call.
type ParameterEvent struct {
	Scope     Scope
	Element   Element
	Parameter ParameterID
	Type      ParameterEventType

	// Immediate
	BufferOffset uint32
	Value        float32

	// Ramped
	StartBufferOffset int32
	DurationInFrames  uint32
	StartValue        float32
	EndValue          float32
}

// Class info keys
const (
	ClassInfoType         = "type"
	ClassInfoSubType      = "subtype"
	ClassInfoManufacturer = "manufacturer"
	ClassInfoName         = "name"
	ClassInfoVersion      = "version"
	ClassInfoData         = "data"
)

// ClassInfo is the structured bundle a host persists for an instance.
type ClassInfo map[string]any

// SameListener reports whether two listener identities are equal without
// panicking on uncomparable dynamic types.
func SameListener(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
