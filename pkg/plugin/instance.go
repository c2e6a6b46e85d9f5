package plugin

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
	"github.com/justyntemme/augo/pkg/framework/process"
	"github.com/justyntemme/augo/pkg/framework/queue"
	"github.com/justyntemme/augo/pkg/midi"
)

// Limits and defaults of a host session.
const (
	DefaultSampleRate = 44100.0
	DefaultMaxFrames  = 1024
	MaxSampleRate     = 384000.0
	MaxFramesLimit    = 8192
	MaxStreamChannels = 64

	paramQueueSize = 1024
)

// State is the lifecycle state of an instance.
type State int32

const (
	Unprepared State = iota
	Prepared
)

func (s State) String() string {
	if s == Prepared {
		return "prepared"
	}
	return "unprepared"
}

// inputSource is where an input bus pulls its audio from: a host render
// callback or the output of an upstream unit.
type inputSource struct {
	proc   au.InputProc
	refCon any

	upstream au.Renderer
	output   uint32
}

// Instance is one open plugin. Control calls are serialized internally;
// Render must not run concurrently with Initialize, Uninitialize, Reset or
// Close.
type Instance struct {
	id      uuid.UUID
	factory *Factory
	core    Core
	desc    au.ComponentDescription
	log     *zap.Logger
	metrics *Metrics

	mu       sync.Mutex
	closed   atomic.Bool
	prepared atomic.Bool

	sampleRate   float64
	maxFrames    uint32
	sampleFormat SampleFormat
	layout       bus.Layout
	caps         []bus.Capability

	inputBusCount  int
	outputBusCount int
	inputNames     [bus.MaxBuses]string
	outputNames    [bus.MaxBuses]string
	inputFormats   [bus.MaxBuses]au.StreamFormat
	outputFormats  [bus.MaxBuses]au.StreamFormat

	presets     []au.Preset
	presetIndex int32
	presetName  string

	listeners *snapshotList[propertyListener]
	notifiers *snapshotList[renderNotifier]

	// Read by the render thread.
	renderMaxFrames atomic.Uint32
	bypass          atomic.Bool
	lastRenderError atomic.Int32
	flushRequested  atomic.Bool
	sources         [bus.MaxBuses]atomic.Pointer[inputSource]
	host            atomic.Pointer[au.HostCallbacks]
	inputs          [bus.MaxBuses]inputBuffers

	events  *midi.EventQueue
	paramMu sync.Mutex
	params  *queue.SPSC[process.ParamChange]
	changes []process.ParamChange

	rc          RenderContext
	pullFlags   au.RenderActionFlags
	notifyFlags au.RenderActionFlags
}

func newInstance(f *Factory, core Core) (*Instance, error) {
	events, err := midi.NewEventQueue(f.queueSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", au.ErrFailedInitialization, err)
	}
	params := queue.MustNew[process.ParamChange](paramQueueSize)

	i := &Instance{
		id:          uuid.New(),
		factory:     f,
		core:        core,
		desc:        f.desc,
		metrics:     f.metrics,
		sampleRate:  DefaultSampleRate,
		maxFrames:   f.maxFrames(),
		presetIndex: -1,
		listeners:   newSnapshotList[propertyListener](MaxPropertyListeners),
		notifiers:   newSnapshotList[renderNotifier](MaxRenderNotifiers),
		events:      events,
		params:      params,
		changes:     make([]process.ParamChange, 0, params.Cap()),
	}
	i.log = f.log.With(zap.Stringer("instance", i.id))

	i.inputBusCount = core.InputBusCount()
	i.outputBusCount = core.OutputBusCount()
	if i.inputBusCount < 0 || i.inputBusCount > bus.MaxBuses ||
		i.outputBusCount < 0 || i.outputBusCount > bus.MaxBuses {
		return nil, fmt.Errorf("%w: core declares %d input and %d output buses, limit is %d",
			au.ErrFailedInitialization, i.inputBusCount, i.outputBusCount, bus.MaxBuses)
	}
	for k := 0; k < i.inputBusCount; k++ {
		info, _ := core.InputBusInfo(k)
		i.inputNames[k] = info.Name
		i.inputFormats[k] = au.CanonicalFormat(i.sampleRate, declaredChannels(info))
	}
	for k := 0; k < i.outputBusCount; k++ {
		info, _ := core.OutputBusInfo(k)
		i.outputNames[k] = info.Name
		i.outputFormats[k] = au.CanonicalFormat(i.sampleRate, declaredChannels(info))
	}

	i.caps = core.ChannelCapabilities()
	if len(i.caps) == 0 {
		i.caps = i.defaultCapabilities()
	}
	if len(i.caps) > bus.MaxCapabilities {
		i.log.Warn("capability table truncated",
			zap.Int("declared", len(i.caps)), zap.Int("limit", bus.MaxCapabilities))
		i.caps = i.caps[:bus.MaxCapabilities]
	}

	for k := 0; k < core.PresetCount(); k++ {
		p, ok := core.PresetInfo(k)
		if !ok {
			continue
		}
		p.Number = int32(k)
		i.presets = append(i.presets, p)
	}
	return i, nil
}

// declaredChannels is the default channel count of a bus; buses declared
// without a count are stereo.
func declaredChannels(info bus.Info) uint32 {
	if info.ChannelCount <= 0 {
		return 2
	}
	return uint32(info.ChannelCount)
}

// defaultCapabilities derives the table for cores that declare none: the
// declared main bus counts, with no input for instruments.
func (i *Instance) defaultCapabilities() []bus.Capability {
	c := bus.Capability{In: 0, Out: 0}
	if i.outputBusCount > 0 {
		c.Out = int32(i.outputFormats[0].ChannelsPerFrame)
	}
	if i.inputBusCount > 0 && !i.desc.Type.IsInstrument() {
		c.In = int32(i.inputFormats[0].ChannelsPerFrame)
	}
	return []bus.Capability{c}
}

func (i *Instance) checkOpen() error {
	if i == nil || i.closed.Load() {
		return au.ErrInvalidInstance
	}
	return nil
}

// ID identifies the instance within its factory.
func (i *Instance) ID() uuid.UUID {
	return i.id
}

// Core returns the plugin core of the instance.
func (i *Instance) Core() Core {
	return i.core
}

// Description returns the component description of the plugin.
func (i *Instance) Description() au.ComponentDescription {
	return i.desc
}

// State returns the lifecycle state.
func (i *Instance) State() State {
	if i.prepared.Load() {
		return Prepared
	}
	return Unprepared
}

// Closed reports whether Close has been called.
func (i *Instance) Closed() bool {
	return i.closed.Load()
}
