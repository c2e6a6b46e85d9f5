// Package process provides the audio processing context handed to plugin
// processors on every render.
package process

import (
	"github.com/justyntemme/augo/pkg/framework/param"
	"github.com/justyntemme/augo/pkg/midi"
)

// ParamChange is a parameter value scheduled at a sample offset within the
// current block. The registry already holds the latest value; processors
// that render sample-accurate automation can split the block at Offset.
type ParamChange struct {
	ID     uint32
	Value  float64 // normalized
	Offset uint32
}

// EventProcessor receives MIDI events from ProcessEvents.
type EventProcessor interface {
	ProcessEvent(event *midi.Event)
}

// Context provides a clean API for audio processing with zero allocations
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// All audio buses; Input and Output alias bus 0.
	InputBuses  [][][]float32
	OutputBuses [][][]float32

	// Events is the first MIDI event of this block, linked through Next.
	Events *midi.Event

	// ParamChanges holds changes scheduled for this block, oldest first.
	ParamChanges []ParamChange

	numSamples int

	// Pre-allocated work buffers
	workBuffer []float32
	tempBuffer []float32

	params *param.Registry
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int, params *param.Registry) *Context {
	return &Context{
		workBuffer: make([]float32, maxBlockSize),
		tempBuffer: make([]float32, maxBlockSize),
		params:     params,
	}
}

// Begin prepares the context for a block of frames and clears per-block
// state. Buffers are assigned by the caller.
func (c *Context) Begin(frames int) {
	c.numSamples = frames
	c.Events = nil
	c.ParamChanges = c.ParamChanges[:0]
	c.Input, c.Output = nil, nil
	if len(c.InputBuses) > 0 {
		c.Input = c.InputBuses[0]
	}
	if len(c.OutputBuses) > 0 {
		c.Output = c.OutputBuses[0]
	}
}

// Param returns the current value of a parameter (0-1 normalized)
func (c *Context) Param(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if c.numSamples > 0 {
		return c.numSamples
	}
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// Sidechain returns the first auxiliary input bus, or nil.
func (c *Context) Sidechain() [][]float32 {
	if len(c.InputBuses) > 1 {
		return c.InputBuses[1]
	}
	return nil
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	return c.workBuffer[:c.NumSamples()]
}

// TempBuffer returns a slice of the pre-allocated temp buffer
// sized to the current block size - no allocation!
func (c *Context) TempBuffer() []float32 {
	return c.tempBuffer[:c.NumSamples()]
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}

	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// HasEvents reports whether any MIDI arrived for this block.
func (c *Context) HasEvents() bool {
	return c.Events != nil
}

// ProcessEvents hands every event with start <= offset < end to p, in
// arrival order.
func (c *Context) ProcessEvents(p EventProcessor, start, end uint32) {
	for e := c.Events; e != nil; e = e.Next {
		if e.Offset >= start && e.Offset < end {
			p.ProcessEvent(e)
		}
	}
}

// AddParamChange records a scheduled change. Used by the host adapter; the
// slice grows only up to its pre-allocated capacity.
func (c *Context) AddParamChange(change ParamChange) bool {
	if len(c.ParamChanges) == cap(c.ParamChanges) {
		return false
	}
	c.ParamChanges = append(c.ParamChanges, change)
	return true
}

// ReserveParamChanges sizes the scheduled-change storage.
func (c *Context) ReserveParamChanges(n int) {
	c.ParamChanges = make([]ParamChange, 0, n)
}
