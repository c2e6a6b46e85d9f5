// Package au defines the host-side vocabulary of the Audio Unit (v2)
// component interface: selectors, property identifiers, scopes, stream
// formats, buffer lists and result codes.
package au

import "fmt"

// Selector identifies a host entry point.
type Selector int16

// Entry point selectors
const (
	SelectInitialize                         Selector = 1
	SelectUninitialize                       Selector = 2
	SelectGetPropertyInfo                    Selector = 3
	SelectGetProperty                        Selector = 4
	SelectSetProperty                        Selector = 5
	SelectGetParameter                       Selector = 6
	SelectSetParameter                       Selector = 7
	SelectReset                              Selector = 9
	SelectAddPropertyListener                Selector = 10
	SelectRemovePropertyListener             Selector = 11
	SelectRender                             Selector = 14
	SelectAddRenderNotify                    Selector = 15
	SelectRemoveRenderNotify                 Selector = 16
	SelectScheduleParameters                 Selector = 17
	SelectRemovePropertyListenerWithUserData Selector = 18
	SelectMIDIEvent                          Selector = 0x0101
)

func (s Selector) String() string {
	switch s {
	case SelectInitialize:
		return "Initialize"
	case SelectUninitialize:
		return "Uninitialize"
	case SelectGetPropertyInfo:
		return "GetPropertyInfo"
	case SelectGetProperty:
		return "GetProperty"
	case SelectSetProperty:
		return "SetProperty"
	case SelectGetParameter:
		return "GetParameter"
	case SelectSetParameter:
		return "SetParameter"
	case SelectReset:
		return "Reset"
	case SelectAddPropertyListener:
		return "AddPropertyListener"
	case SelectRemovePropertyListener:
		return "RemovePropertyListener"
	case SelectRender:
		return "Render"
	case SelectAddRenderNotify:
		return "AddRenderNotify"
	case SelectRemoveRenderNotify:
		return "RemoveRenderNotify"
	case SelectScheduleParameters:
		return "ScheduleParameters"
	case SelectRemovePropertyListenerWithUserData:
		return "RemovePropertyListenerWithUserData"
	case SelectMIDIEvent:
		return "MIDIEvent"
	default:
		return fmt.Sprintf("Selector(%d)", int16(s))
	}
}

// PropertyID identifies a property.
type PropertyID uint32

// Properties understood by the bridge
const (
	PropertyClassInfo                PropertyID = 0
	PropertyMakeConnection           PropertyID = 1
	PropertySampleRate               PropertyID = 2
	PropertyParameterList            PropertyID = 3
	PropertyParameterInfo            PropertyID = 4
	PropertyStreamFormat             PropertyID = 8
	PropertyElementCount             PropertyID = 11
	PropertyLatency                  PropertyID = 12
	PropertySupportedNumChannels     PropertyID = 13
	PropertyMaximumFramesPerSlice    PropertyID = 14
	PropertyParameterValueStrings    PropertyID = 16
	PropertyTailTime                 PropertyID = 20
	PropertyBypassEffect             PropertyID = 21
	PropertyLastRenderError          PropertyID = 22
	PropertySetRenderCallback        PropertyID = 23
	PropertyFactoryPresets           PropertyID = 24
	PropertyHostCallbacks            PropertyID = 27
	PropertyInPlaceProcessing        PropertyID = 29
	PropertyCocoaUI                  PropertyID = 31
	PropertyParameterStringFromValue PropertyID = 33
	PropertyParameterClumpName       PropertyID = 35
	PropertyPresentPreset            PropertyID = 36
	PropertyOfflineRender            PropertyID = 37
	PropertyParameterValueFromString PropertyID = 38
	PropertyShouldAllocateBuffer     PropertyID = 51

	// PropertyInstanceHandle is private to the bridge and its UI glue.
	PropertyInstanceHandle PropertyID = 64000
)

var propertyNames = map[PropertyID]string{
	PropertyClassInfo:                "ClassInfo",
	PropertyMakeConnection:           "MakeConnection",
	PropertySampleRate:               "SampleRate",
	PropertyParameterList:            "ParameterList",
	PropertyParameterInfo:            "ParameterInfo",
	PropertyStreamFormat:             "StreamFormat",
	PropertyElementCount:             "ElementCount",
	PropertyLatency:                  "Latency",
	PropertySupportedNumChannels:     "SupportedNumChannels",
	PropertyMaximumFramesPerSlice:    "MaximumFramesPerSlice",
	PropertyParameterValueStrings:    "ParameterValueStrings",
	PropertyTailTime:                 "TailTime",
	PropertyBypassEffect:             "BypassEffect",
	PropertyLastRenderError:          "LastRenderError",
	PropertySetRenderCallback:        "SetRenderCallback",
	PropertyFactoryPresets:           "FactoryPresets",
	PropertyHostCallbacks:            "HostCallbacks",
	PropertyInPlaceProcessing:        "InPlaceProcessing",
	PropertyCocoaUI:                  "CocoaUI",
	PropertyParameterStringFromValue: "ParameterStringFromValue",
	PropertyParameterClumpName:       "ParameterClumpName",
	PropertyPresentPreset:            "PresentPreset",
	PropertyOfflineRender:            "OfflineRender",
	PropertyParameterValueFromString: "ParameterValueFromString",
	PropertyShouldAllocateBuffer:     "ShouldAllocateBuffer",
	PropertyInstanceHandle:           "InstanceHandle",
}

func (p PropertyID) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Property(%d)", uint32(p))
}

// Scope selects which side of the unit a property or parameter addresses.
type Scope uint32

const (
	ScopeGlobal Scope = 0
	ScopeInput  Scope = 1
	ScopeOutput Scope = 2
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	default:
		return fmt.Sprintf("Scope(%d)", uint32(s))
	}
}

// Element is a bus index, or a parameter id for parameter properties.
type Element uint32

// ParameterID identifies a parameter.
type ParameterID uint32

// ComponentType is the four-char category code of a component.
type ComponentType uint32

// Component types
const (
	TypeEffect          ComponentType = 'a'<<24 | 'u'<<16 | 'f'<<8 | 'x'
	TypeMusicDevice     ComponentType = 'a'<<24 | 'u'<<16 | 'm'<<8 | 'u'
	TypeMusicEffect     ComponentType = 'a'<<24 | 'u'<<16 | 'm'<<8 | 'f'
	TypeMIDIProcessor   ComponentType = 'a'<<24 | 'u'<<16 | 'm'<<8 | 'i'
	TypeGenerator       ComponentType = 'a'<<24 | 'u'<<16 | 'g'<<8 | 'n'
	TypeFormatConverter ComponentType = 'a'<<24 | 'u'<<16 | 'f'<<8 | 'c'
)

// AcceptsMIDI reports whether hosts deliver MIDI to this component type.
func (t ComponentType) AcceptsMIDI() bool {
	return t == TypeMusicDevice || t == TypeMusicEffect || t == TypeMIDIProcessor
}

// IsInstrument reports whether the component produces audio without an
// audio input.
func (t ComponentType) IsInstrument() bool {
	return t == TypeMusicDevice || t == TypeGenerator
}

func (t ComponentType) String() string {
	return FourCC(t).String()
}

// FourCC is a four-character code packed big-endian into 32 bits.
type FourCC uint32

// ParseFourCC packs a four character string.
func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("four-char code %q must be exactly 4 bytes", s)
	}
	return FourCC(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])), nil
}

func (c FourCC) String() string {
	return string([]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)})
}

// ComponentDescription identifies a component to the host.
type ComponentDescription struct {
	Type         ComponentType
	SubType      FourCC
	Manufacturer FourCC
}
