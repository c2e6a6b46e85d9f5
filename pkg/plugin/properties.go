package plugin

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
)

// payload extracts a typed property payload. A missing or mistyped payload
// is an invalid value.
func payload[T any](v any) (*T, error) {
	p, ok := v.(*T)
	if !ok || p == nil {
		return nil, au.ErrInvalidPropertyValue
	}
	return p, nil
}

func sizeOf[T any]() uint32 {
	var v T
	return uint32(unsafe.Sizeof(v))
}

// GetPropertyInfo reports the size of a property's payload and whether it
// can be set.
func (i *Instance) GetPropertyInfo(id au.PropertyID, scope au.Scope, element au.Element) (size uint32, writable bool, err error) {
	if err := i.checkOpen(); err != nil {
		return 0, false, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	switch id {
	case au.PropertyClassInfo:
		return sizeOf[au.ClassInfo](), true, nil
	case au.PropertyMakeConnection:
		return sizeOf[au.Connection](), true, i.checkInputScope(scope, element)
	case au.PropertySampleRate:
		return sizeOf[float64](), true, nil
	case au.PropertyParameterList:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return uint32(i.core.ParameterCount()) * sizeOf[au.ParameterID](), false, nil
	case au.PropertyParameterInfo:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		if _, err := i.parameter(au.ParameterID(element)); err != nil {
			return 0, false, err
		}
		return sizeOf[au.ParameterInfo](), false, nil
	case au.PropertyStreamFormat:
		return sizeOf[au.StreamFormat](), true, i.checkBus(scope, element)
	case au.PropertyElementCount:
		if scope > au.ScopeOutput {
			return 0, false, au.ErrInvalidScope
		}
		return sizeOf[uint32](), false, nil
	case au.PropertyLatency, au.PropertyTailTime:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return sizeOf[float64](), false, nil
	case au.PropertySupportedNumChannels:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return uint32(len(i.caps)) * sizeOf[au.ChannelInfo](), false, nil
	case au.PropertyMaximumFramesPerSlice:
		return sizeOf[uint32](), true, nil
	case au.PropertyParameterValueStrings:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		s, err := i.valueStrings(au.ParameterID(element))
		if err != nil {
			return 0, false, err
		}
		return uint32(len(s)) * sizeOf[string](), false, nil
	case au.PropertyBypassEffect:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return sizeOf[uint32](), true, nil
	case au.PropertyLastRenderError:
		return sizeOf[au.Status](), false, nil
	case au.PropertySetRenderCallback:
		return sizeOf[au.RenderCallback](), true, i.checkInputScope(scope, element)
	case au.PropertyFactoryPresets:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		if len(i.presets) == 0 {
			return 0, false, au.ErrInvalidProperty
		}
		return uint32(len(i.presets)) * sizeOf[au.Preset](), false, nil
	case au.PropertyHostCallbacks:
		return sizeOf[au.HostCallbacks](), true, nil
	case au.PropertyInPlaceProcessing, au.PropertyOfflineRender, au.PropertyShouldAllocateBuffer:
		return sizeOf[uint32](), true, nil
	case au.PropertyCocoaUI:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		if !i.core.HasGUI() {
			return 0, false, au.ErrInvalidProperty
		}
		return sizeOf[au.ViewInfo](), false, nil
	case au.PropertyParameterStringFromValue, au.PropertyParameterValueFromString, au.PropertyParameterClumpName:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		switch id {
		case au.PropertyParameterStringFromValue:
			return sizeOf[au.ParameterStringFromValue](), false, nil
		case au.PropertyParameterValueFromString:
			return sizeOf[au.ParameterValueFromString](), false, nil
		}
		return sizeOf[au.ClumpName](), false, nil
	case au.PropertyPresentPreset:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return sizeOf[au.Preset](), true, nil
	case au.PropertyInstanceHandle:
		if scope != au.ScopeGlobal {
			return 0, false, au.ErrInvalidScope
		}
		return sizeOf[Core](), false, nil
	}
	return 0, false, au.ErrInvalidProperty
}

func (i *Instance) checkInputScope(scope au.Scope, element au.Element) error {
	if scope != au.ScopeInput {
		return au.ErrInvalidScope
	}
	if int(element) >= i.inputBusCount {
		return au.ErrInvalidElement
	}
	return nil
}

// GetProperty writes the value of a property into out, which must be a
// pointer of the property's payload type. Get-only and read-write
// properties may be queried from any thread.
func (i *Instance) GetProperty(id au.PropertyID, scope au.Scope, element au.Element, out any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	switch id {
	case au.PropertyClassInfo:
		p, err := payload[au.ClassInfo](out)
		if err != nil {
			return err
		}
		ci, err := i.exportClassInfoLocked()
		if err != nil {
			return err
		}
		*p = ci

	case au.PropertySampleRate:
		p, err := payload[float64](out)
		if err != nil {
			return err
		}
		*p = i.sampleRate

	case au.PropertyParameterList:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[[]au.ParameterID](out)
		if err != nil {
			return err
		}
		*p = i.parameterList()

	case au.PropertyParameterInfo:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[au.ParameterInfo](out)
		if err != nil {
			return err
		}
		info, err := i.parameterInfo(au.ParameterID(element))
		if err != nil {
			return err
		}
		*p = info

	case au.PropertyStreamFormat:
		f, err := i.streamFormat(scope, element)
		if err != nil {
			return err
		}
		p, err := payload[au.StreamFormat](out)
		if err != nil {
			return err
		}
		*p = f

	case au.PropertyElementCount:
		p, err := payload[uint32](out)
		if err != nil {
			return err
		}
		switch scope {
		case au.ScopeGlobal:
			*p = 1
		case au.ScopeInput:
			*p = uint32(i.inputBusCount)
		case au.ScopeOutput:
			*p = uint32(i.outputBusCount)
		default:
			return au.ErrInvalidScope
		}

	case au.PropertyLatency:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[float64](out)
		if err != nil {
			return err
		}
		*p = float64(i.core.LatencySamples()) / i.sampleRate

	case au.PropertyTailTime:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[float64](out)
		if err != nil {
			return err
		}
		if n := i.core.TailSamples(); n == math.MaxUint32 {
			*p = math.Inf(1)
		} else {
			*p = float64(n) / i.sampleRate
		}

	case au.PropertySupportedNumChannels:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[[]au.ChannelInfo](out)
		if err != nil {
			return err
		}
		*p = i.supportedChannels()

	case au.PropertyMaximumFramesPerSlice:
		p, err := payload[uint32](out)
		if err != nil {
			return err
		}
		*p = i.maxFrames

	case au.PropertyParameterValueStrings:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[[]string](out)
		if err != nil {
			return err
		}
		s, err := i.valueStrings(au.ParameterID(element))
		if err != nil {
			return err
		}
		*p = s

	case au.PropertyBypassEffect:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[uint32](out)
		if err != nil {
			return err
		}
		*p = 0
		if i.bypass.Load() {
			*p = 1
		}

	case au.PropertyLastRenderError:
		p, err := payload[au.Status](out)
		if err != nil {
			return err
		}
		*p = au.Status(i.lastRenderError.Swap(0))

	case au.PropertyFactoryPresets:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		if len(i.presets) == 0 {
			return au.ErrInvalidProperty
		}
		p, err := payload[[]au.Preset](out)
		if err != nil {
			return err
		}
		*p = append([]au.Preset(nil), i.presets...)

	case au.PropertyHostCallbacks:
		p, err := payload[au.HostCallbacks](out)
		if err != nil {
			return err
		}
		*p = au.HostCallbacks{}
		if cb := i.host.Load(); cb != nil {
			*p = *cb
		}

	case au.PropertyInPlaceProcessing:
		p, err := payload[uint32](out)
		if err != nil {
			return err
		}
		*p = 0

	case au.PropertyCocoaUI:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		if !i.core.HasGUI() {
			return au.ErrInvalidProperty
		}
		p, err := payload[au.ViewInfo](out)
		if err != nil {
			return err
		}
		w, h := i.core.GUISize()
		info := i.factory.plugin.Info()
		*p = au.ViewInfo{BundleID: info.ID, ClassName: viewClassName, Width: w, Height: h}

	case au.PropertyParameterStringFromValue:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[au.ParameterStringFromValue](out)
		if err != nil {
			return err
		}
		return i.stringFromValue(p)

	case au.PropertyParameterValueFromString:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[au.ParameterValueFromString](out)
		if err != nil {
			return err
		}
		return i.valueFromString(p)

	case au.PropertyParameterClumpName:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[au.ClumpName](out)
		if err != nil {
			return err
		}
		return i.clumpName(p)

	case au.PropertyPresentPreset:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[au.Preset](out)
		if err != nil {
			return err
		}
		*p = i.presentPresetLocked()

	case au.PropertyInstanceHandle:
		if scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		p, err := payload[Core](out)
		if err != nil {
			return err
		}
		*p = i.core

	default:
		// Set-only properties land here too.
		return au.ErrInvalidProperty
	}
	return nil
}

// viewClassName is the class hosts instantiate for the plugin GUI.
const viewClassName = "AugoViewFactory"

// SetProperty sets a property from in, which must be a pointer of the
// property's payload type. Listeners of the property are notified after a
// successful state change, on the calling thread and without internal
// locks held.
func (i *Instance) SetProperty(id au.PropertyID, scope au.Scope, element au.Element, in any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	changed, err := i.setPropertyLocked(id, scope, element, in)
	i.mu.Unlock()

	if err != nil {
		i.log.Debug("set property rejected",
			zap.Stringer("property", id),
			zap.Stringer("scope", scope),
			zap.Uint32("element", uint32(element)),
			zap.Error(err))
		return err
	}
	if changed {
		i.notify(id, scope, element)
	}
	return nil
}

func (i *Instance) setPropertyLocked(id au.PropertyID, scope au.Scope, element au.Element, in any) (bool, error) {
	switch id {
	case au.PropertyClassInfo:
		p, err := payload[au.ClassInfo](in)
		if err != nil {
			return false, err
		}
		return true, i.importClassInfoLocked(*p)

	case au.PropertyMakeConnection:
		if err := i.checkInputScope(scope, element); err != nil {
			return false, err
		}
		p, err := payload[au.Connection](in)
		if err != nil {
			return false, err
		}
		if p.Source == nil {
			return false, i.setInputSource(scope, element, nil)
		}
		if src, ok := p.Source.(*Instance); ok && src == i {
			return false, au.ErrInvalidPropertyValue
		}
		return false, i.setInputSource(scope, element, &inputSource{upstream: p.Source, output: p.SourceOutput})

	case au.PropertySampleRate:
		p, err := payload[float64](in)
		if err != nil {
			return false, err
		}
		return true, i.setSampleRate(*p)

	case au.PropertyStreamFormat:
		p, err := payload[au.StreamFormat](in)
		if err != nil {
			return false, err
		}
		return true, i.setStreamFormat(scope, element, p)

	case au.PropertyMaximumFramesPerSlice:
		p, err := payload[uint32](in)
		if err != nil {
			return false, err
		}
		if *p == 0 || *p > MaxFramesLimit {
			return false, au.ErrInvalidPropertyValue
		}
		// A prepared instance keeps rendering with the frame limit it was
		// initialized with.
		i.maxFrames = *p
		return true, nil

	case au.PropertyBypassEffect:
		if scope != au.ScopeGlobal {
			return false, au.ErrInvalidScope
		}
		p, err := payload[uint32](in)
		if err != nil {
			return false, err
		}
		i.bypass.Store(*p != 0)
		i.log.Debug("bypass", zap.Bool("enabled", *p != 0))
		return true, nil

	case au.PropertySetRenderCallback:
		if err := i.checkInputScope(scope, element); err != nil {
			return false, err
		}
		p, err := payload[au.RenderCallback](in)
		if err != nil {
			return false, err
		}
		if p.Proc == nil {
			return false, i.setInputSource(scope, element, nil)
		}
		return false, i.setInputSource(scope, element, &inputSource{proc: p.Proc, refCon: p.RefCon})

	case au.PropertyHostCallbacks:
		p, err := payload[au.HostCallbacks](in)
		if err != nil {
			return false, err
		}
		cb := *p
		i.host.Store(&cb)
		return false, nil

	case au.PropertyInPlaceProcessing, au.PropertyOfflineRender, au.PropertyShouldAllocateBuffer:
		_, err := payload[uint32](in)
		return false, err

	case au.PropertyPresentPreset:
		if scope != au.ScopeGlobal {
			return false, au.ErrInvalidScope
		}
		p, err := payload[au.Preset](in)
		if err != nil {
			return false, err
		}
		return true, i.setPresentPresetLocked(*p)

	case au.PropertyParameterList, au.PropertyParameterInfo, au.PropertyElementCount,
		au.PropertyLatency, au.PropertySupportedNumChannels, au.PropertyParameterValueStrings,
		au.PropertyTailTime, au.PropertyLastRenderError, au.PropertyFactoryPresets,
		au.PropertyCocoaUI, au.PropertyParameterStringFromValue, au.PropertyParameterClumpName,
		au.PropertyParameterValueFromString, au.PropertyInstanceHandle:
		return false, au.ErrPropertyNotWritable
	}
	return false, au.ErrInvalidProperty
}
