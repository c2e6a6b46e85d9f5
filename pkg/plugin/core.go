package plugin

import (
	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
	"github.com/justyntemme/augo/pkg/framework/param"
	"github.com/justyntemme/augo/pkg/framework/process"
	"github.com/justyntemme/augo/pkg/midi"
)

// SampleFormat is the sample type a core renders with.
type SampleFormat int

const (
	Float32 SampleFormat = iota
	Float64
)

func (f SampleFormat) String() string {
	if f == Float64 {
		return "float64"
	}
	return "float32"
}

// PrepareConfig is everything a core needs to allocate for rendering.
type PrepareConfig struct {
	SampleRate   float64
	MaxFrames    uint32
	SampleFormat SampleFormat
	Buses        bus.Layout
}

// RenderContext is handed to Core.Render. It is owned by the instance and
// reused on every call; cores must not retain it or anything it points to.
type RenderContext struct {
	Flags     *au.RenderActionFlags
	TimeStamp *au.TimeStamp
	Frames    uint32
	OutputBus uint32
	Output    *au.BufferList

	// Input is the pulled audio of the main input bus, or nil when nothing
	// is connected or the pull failed. Inputs holds every input bus the
	// same way.
	Input  *au.BufferList
	Inputs []*au.BufferList

	// Events is the first MIDI event of the block, linked in arrival order.
	Events *midi.Event

	// ParameterChanges are the changes scheduled since the previous render,
	// oldest first. Parameter values are already current.
	ParameterChanges []process.ParamChange

	Host *au.HostCallbacks
}

// Core is the plugin side of the bridge. The instance calls every method
// from its control thread except Render, which runs on the audio thread and
// must neither allocate nor block.
type Core interface {
	Destroy()

	InputBusCount() int
	OutputBusCount() int
	InputBusInfo(i int) (bus.Info, bool)
	OutputBusInfo(i int) (bus.Info, bool)
	ChannelCapabilities() []bus.Capability

	Prepare(cfg PrepareConfig) error
	Unprepare()
	Render(rc *RenderContext) error
	Reset()

	ParameterCount() int
	ParameterAt(i int) *param.Parameter
	Parameter(id uint32) *param.Parameter
	GroupCount() int
	GroupAt(i int) (param.Group, bool)

	// StateSize returns an upper bound of the bytes GetState writes; 0
	// means the core has no state to save.
	StateSize() int
	GetState(buf []byte) (int, error)
	SetState(data []byte) error

	PresetCount() int
	PresetInfo(i int) (au.Preset, bool)
	ApplyPreset(i int) bool

	LatencySamples() uint32
	// TailSamples returns math.MaxUint32 for an infinite tail.
	TailSamples() uint32

	HasGUI() bool
	GUISize() (width, height uint32)
}
