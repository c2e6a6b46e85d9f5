package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/debug"
	"github.com/justyntemme/augo/pkg/midi"
)

// ErrNotRegistered is returned by Open before Register was called.
var ErrNotRegistered = errors.New("no plugin registered")

// Factory opens instances of one plugin and keeps track of the open ones.
type Factory struct {
	plugin        Plugin
	log           *zap.Logger
	reg           prometheus.Registerer
	defaultFrames uint32

	once      sync.Once
	initErr   error
	desc      au.ComponentDescription
	metrics   *Metrics
	queueSize int

	mu        sync.RWMutex
	instances map[uuid.UUID]*Instance
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger of the factory and its instances. The package
// logger from debug.Logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(f *Factory) {
		f.log = l
	}
}

// WithRegisterer registers the bridge metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(f *Factory) {
		f.reg = reg
	}
}

// WithDefaultMaxFrames sets MaximumFramesPerSlice of new instances.
// Values outside 1..MaxFramesLimit are ignored.
func WithDefaultMaxFrames(n uint32) Option {
	return func(f *Factory) {
		if n > 0 && n <= MaxFramesLimit {
			f.defaultFrames = n
		}
	}
}

// NewFactory creates a factory for p. Nothing is validated until the first
// Open.
func NewFactory(p Plugin, opts ...Option) *Factory {
	f := &Factory{
		plugin:    p,
		instances: make(map[uuid.UUID]*Instance),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ensureRegistered validates the plugin and creates the shared metrics. It
// runs once; a failure is reported by every later Open.
func (f *Factory) ensureRegistered() error {
	f.once.Do(func() {
		if f.plugin == nil {
			f.initErr = ErrNotRegistered
			return
		}
		info := f.plugin.Info()
		if err := info.Validate(); err != nil {
			f.initErr = err
			return
		}
		f.queueSize = midi.DefaultQueueSize
		if qs, ok := f.plugin.(QueueSizer); ok && qs.MIDIQueueSize() > 0 {
			f.queueSize = qs.MIDIQueueSize()
		}
		if f.log == nil {
			f.log = debug.Named("bridge")
		}
		f.log = f.log.With(zap.String("plugin", info.Name))
		f.desc = info.Description()
		f.metrics = NewMetrics(f.reg, info.Name)
		f.log.Debug("plugin registered",
			zap.Stringer("type", f.desc.Type),
			zap.Stringer("subtype", f.desc.SubType),
			zap.Stringer("manufacturer", f.desc.Manufacturer),
			zap.Stringer("uid", info.UID()))
	})
	return f.initErr
}

// Open creates a new instance with default formats. The instance stays
// registered with the factory until it is closed.
func (f *Factory) Open() (*Instance, error) {
	if err := f.ensureRegistered(); err != nil {
		return nil, err
	}
	core, err := f.plugin.NewCore()
	if err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}
	if core == nil {
		return nil, fmt.Errorf("failed to create core: %w", au.ErrFailedInitialization)
	}
	inst, err := newInstance(f, core)
	if err != nil {
		core.Destroy()
		return nil, err
	}

	f.mu.Lock()
	f.instances[inst.id] = inst
	f.mu.Unlock()

	f.metrics.Instances.Inc()
	inst.log.Info("instance opened",
		zap.Int("inputBuses", inst.inputBusCount),
		zap.Int("outputBuses", inst.outputBusCount))
	return inst, nil
}

func (f *Factory) maxFrames() uint32 {
	if f.defaultFrames == 0 {
		return DefaultMaxFrames
	}
	return f.defaultFrames
}

func (f *Factory) unregister(id uuid.UUID) {
	f.mu.Lock()
	delete(f.instances, id)
	f.mu.Unlock()
	f.metrics.Instances.Dec()
}

// Instance returns the open instance with the given id.
func (f *Factory) Instance(id uuid.UUID) *Instance {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.instances[id]
}

// Len returns the number of open instances.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.instances)
}

// Plugin returns the plugin the factory opens.
func (f *Factory) Plugin() Plugin {
	return f.plugin
}

// Metrics returns the shared metrics, or nil when the plugin failed to
// register.
func (f *Factory) Metrics() *Metrics {
	if f.ensureRegistered() != nil {
		return nil
	}
	return f.metrics
}

var (
	defaultMu      sync.RWMutex
	defaultFactory *Factory
)

// Register sets the plugin served by the package-level Open. Plugins call it
// from an init function.
func Register(p Plugin, opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultFactory = NewFactory(p, opts...)
}

// Default returns the factory set by Register, or nil.
func Default() *Factory {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultFactory
}

// Open opens an instance of the registered plugin.
func Open() (*Instance, error) {
	f := Default()
	if f == nil {
		return nil, ErrNotRegistered
	}
	return f.Open()
}
