package plugin

import (
	"github.com/justyntemme/augo/pkg/au"
)

var _ au.Renderer = (*Instance)(nil)

// Render produces frames samples of output bus outBus into io. It runs on
// the audio thread and neither allocates nor locks. Render notifications
// are sent before and after the core runs, also when the core fails; the
// core's error is returned as is.
func (i *Instance) Render(flags *au.RenderActionFlags, ts *au.TimeStamp, outBus uint32, frames uint32, io *au.BufferList) error {
	if i == nil || i.closed.Load() {
		return au.ErrInvalidInstance
	}
	if !i.prepared.Load() {
		i.metrics.uninitialized.Inc()
		return au.ErrUninitialized
	}
	if frames > i.renderMaxFrames.Load() {
		i.metrics.tooManyFrames.Inc()
		return au.ErrTooManyFramesToProcess
	}
	if io == nil {
		return au.ErrParam
	}
	if outBus >= uint32(i.outputBusCount) {
		return au.ErrInvalidElement
	}
	if i.flushRequested.Swap(false) {
		i.discardQueued()
	}

	i.renderNotify(au.RenderPreRender, ts, outBus, frames, io)
	i.metrics.Renders.Inc()

	if i.bypass.Load() {
		if in := i.pullInput(0, ts, frames); in != nil {
			io.CopyFrom(in)
		} else {
			io.Silence()
		}
		i.discardQueued()
		i.metrics.BypassedRenders.Inc()
		i.renderNotify(au.RenderPostRender, ts, outBus, frames, io)
		return nil
	}

	rc := &i.rc
	for k := range rc.Inputs {
		rc.Inputs[k] = i.pullInput(k, ts, frames)
	}
	rc.Input = nil
	if len(rc.Inputs) > 0 {
		rc.Input = rc.Inputs[0]
	}

	events, _, eventSnap := i.events.Take()
	first, second, paramSnap := i.params.Drain()
	i.changes = append(append(i.changes[:0], first...), second...)

	rc.Flags = flags
	rc.TimeStamp = ts
	rc.Frames = frames
	rc.OutputBus = outBus
	rc.Output = io
	rc.Events = events
	rc.ParameterChanges = i.changes
	rc.Host = i.host.Load()

	err := i.core.Render(rc)

	i.events.Release(eventSnap)
	i.params.Release(paramSnap)
	rc.Output, rc.Events, rc.TimeStamp, rc.Flags = nil, nil, nil, nil

	i.lastRenderError.Store(int32(au.StatusOf(err)))
	if err != nil {
		i.metrics.RenderErrors.Inc()
	}
	i.renderNotify(au.RenderPostRender, ts, outBus, frames, io)
	return err
}

// discardQueued drops the queued events and changes from the consumer side.
func (i *Instance) discardQueued() {
	_, _, eventSnap := i.events.Take()
	i.events.Release(eventSnap)
	_, _, paramSnap := i.params.Drain()
	i.params.Release(paramSnap)
}
