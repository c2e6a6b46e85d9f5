package plugin

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
)

// Initialize prepares the instance for rendering with the current formats.
// It is a no-op when the instance is already prepared. On failure the
// instance stays unprepared.
func (i *Instance) Initialize() error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.prepared.Load() {
		return nil
	}
	if err := i.prepareLocked(); err != nil {
		i.log.Warn("initialize failed", zap.Error(err))
		return err
	}
	return nil
}

func (i *Instance) prepareLocked() error {
	if !validSampleRate(i.sampleRate) {
		return fmt.Errorf("%w: sample rate %g", au.ErrFormatNotSupported, i.sampleRate)
	}
	if i.maxFrames == 0 || i.maxFrames > MaxFramesLimit {
		return fmt.Errorf("%w: %d frames per slice", au.ErrInvalidPropertyValue, i.maxFrames)
	}

	layout := i.buildLayout()
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("%w: %v", au.ErrFormatNotSupported, err)
	}
	in, out := layout.MainInputChannels(), layout.MainOutputChannels()
	if !bus.Matches(i.caps, in, out) {
		return fmt.Errorf("%w: %d in, %d out", au.ErrFormatNotSupported, in, out)
	}

	format := Float32
	if i.outputBusCount > 0 && i.outputFormats[0].Is64Bit() {
		format = Float64
	}

	cfg := PrepareConfig{
		SampleRate:   i.sampleRate,
		MaxFrames:    i.maxFrames,
		SampleFormat: format,
		Buses:        layout,
	}
	if err := i.core.Prepare(cfg); err != nil {
		var st au.Status
		if errors.As(err, &st) {
			return err
		}
		return fmt.Errorf("core prepare: %w", err)
	}

	for k := 0; k < i.inputBusCount; k++ {
		i.inputs[k].allocate(int(i.inputFormats[k].ChannelsPerFrame), i.maxFrames, format)
	}
	i.rc = RenderContext{Inputs: make([]*au.BufferList, i.inputBusCount)}
	i.flushQueues()

	i.sampleFormat = format
	i.layout = layout
	i.renderMaxFrames.Store(i.maxFrames)
	i.prepared.Store(true)
	i.metrics.PreparedInstances.Inc()

	i.log.Info("initialized",
		zap.Float64("sampleRate", cfg.SampleRate),
		zap.Uint32("maxFrames", cfg.MaxFrames),
		zap.Stringer("sampleFormat", format),
		zap.Int32("inChannels", in),
		zap.Int32("outChannels", out))
	return nil
}

// buildLayout turns the negotiated stream formats into a bus layout. Bus 0
// of each direction is the main bus.
func (i *Instance) buildLayout() bus.Layout {
	l := bus.Layout{
		Inputs:  make([]bus.Info, i.inputBusCount),
		Outputs: make([]bus.Info, i.outputBusCount),
	}
	for k := range l.Inputs {
		l.Inputs[k] = layoutBus(bus.DirectionInput, k, i.inputNames[k], i.inputFormats[k])
	}
	for k := range l.Outputs {
		l.Outputs[k] = layoutBus(bus.DirectionOutput, k, i.outputNames[k], i.outputFormats[k])
	}
	return l
}

func layoutBus(dir bus.Direction, k int, name string, f au.StreamFormat) bus.Info {
	t := bus.TypeAux
	if k == 0 {
		t = bus.TypeMain
	}
	return bus.Info{
		MediaType:    bus.MediaTypeAudio,
		Direction:    dir,
		ChannelCount: int32(f.ChannelsPerFrame),
		Name:         name,
		BusType:      t,
		IsActive:     true,
	}
}

// Uninitialize returns the instance to the unprepared state. It always
// succeeds on an open instance.
func (i *Instance) Uninitialize() error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.unprepareLocked()
	return nil
}

func (i *Instance) unprepareLocked() {
	if !i.prepared.Swap(false) {
		return
	}
	i.core.Unprepare()
	for k := range i.inputs {
		i.inputs[k].release()
	}
	i.rc = RenderContext{}
	i.flushQueues()
	i.metrics.PreparedInstances.Dec()
	i.log.Info("uninitialized")
}

// Close destroys the instance. Every later call, including a second Close,
// returns au.ErrInvalidInstance.
func (i *Instance) Close() error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed.Swap(true) {
		return au.ErrInvalidInstance
	}
	i.unprepareLocked()
	i.core.Destroy()

	i.listeners.clear()
	i.notifiers.clear()
	for k := range i.sources {
		i.sources[k].Store(nil)
	}
	i.host.Store(nil)
	i.presets = nil

	i.factory.unregister(i.id)
	i.log.Info("instance closed")
	return nil
}

// Reset clears the core's processing state. MIDI events and parameter
// changes still queued when the next render starts are discarded there; the
// queues themselves are only touched by their producer and the render thread.
func (i *Instance) Reset(scope au.Scope, element au.Element) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.core.Reset()
	i.flushRequested.Store(true)
	return nil
}

// flushQueues empties both queues outright. Only valid while no render can
// run, that is around Initialize and Uninitialize.
func (i *Instance) flushQueues() {
	i.flushRequested.Store(false)
	i.events.Clear()
	i.paramMu.Lock()
	i.params.Reset()
	i.paramMu.Unlock()
}

func validSampleRate(sr float64) bool {
	return sr > 0 && sr <= MaxSampleRate && !math.IsNaN(sr)
}
