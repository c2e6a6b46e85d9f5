package plugin

import (
	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
)

// checkBus validates a bus address.
func (i *Instance) checkBus(scope au.Scope, element au.Element) error {
	switch scope {
	case au.ScopeInput:
		if int(element) >= i.inputBusCount {
			return au.ErrInvalidElement
		}
	case au.ScopeOutput:
		if int(element) >= i.outputBusCount {
			return au.ErrInvalidElement
		}
	default:
		return au.ErrInvalidScope
	}
	return nil
}

func (i *Instance) streamFormat(scope au.Scope, element au.Element) (au.StreamFormat, error) {
	if err := i.checkBus(scope, element); err != nil {
		return au.StreamFormat{}, err
	}
	if scope == au.ScopeInput {
		return i.inputFormats[element], nil
	}
	return i.outputFormats[element], nil
}

// setStreamFormat negotiates the format of one bus. The main bus of each
// direction only accepts channel counts some capability admits; auxiliary
// buses take any count up to MaxStreamChannels. A format set while
// prepared takes effect at the next Initialize.
func (i *Instance) setStreamFormat(scope au.Scope, element au.Element, f *au.StreamFormat) error {
	if !f.IsFloatNonInterleaved() {
		return au.ErrFormatNotSupported
	}
	if err := i.checkBus(scope, element); err != nil {
		return err
	}
	if f.ChannelsPerFrame < 1 || f.ChannelsPerFrame > MaxStreamChannels {
		return au.ErrFormatNotSupported
	}
	if !validSampleRate(f.SampleRate) {
		return au.ErrFormatNotSupported
	}
	if f.BitsPerChannel != 32 && f.BitsPerChannel != 64 {
		return au.ErrFormatNotSupported
	}

	dir := bus.DirectionOutput
	if scope == au.ScopeInput {
		dir = bus.DirectionInput
	}
	if element == 0 && !bus.Admits(i.caps, dir, int32(f.ChannelsPerFrame)) {
		i.log.Debug("stream format rejected",
			zap.Stringer("scope", scope),
			zap.Uint32("channels", f.ChannelsPerFrame))
		return au.ErrFormatNotSupported
	}

	if scope == au.ScopeInput {
		i.inputFormats[element] = *f
	} else {
		i.outputFormats[element] = *f
	}
	i.sampleRate = f.SampleRate
	return nil
}

// setSampleRate moves every bus to sr.
func (i *Instance) setSampleRate(sr float64) error {
	if !validSampleRate(sr) {
		return au.ErrInvalidPropertyValue
	}
	i.sampleRate = sr
	for k := 0; k < i.inputBusCount; k++ {
		i.inputFormats[k].SampleRate = sr
	}
	for k := 0; k < i.outputBusCount; k++ {
		i.outputFormats[k].SampleRate = sr
	}
	return nil
}

func (i *Instance) supportedChannels() []au.ChannelInfo {
	out := make([]au.ChannelInfo, len(i.caps))
	for k, c := range i.caps {
		out[k] = au.ChannelInfo{InChannels: int16(c.In), OutChannels: int16(c.Out)}
	}
	return out
}

// setInputSource installs or clears the source of an input bus. A render
// callback and a connection exclude each other.
func (i *Instance) setInputSource(scope au.Scope, element au.Element, src *inputSource) error {
	if scope != au.ScopeInput {
		return au.ErrInvalidScope
	}
	if int(element) >= i.inputBusCount {
		return au.ErrInvalidElement
	}
	i.sources[element].Store(src)
	return nil
}
