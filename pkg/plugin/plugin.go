// Package plugin hosts plugin cores behind the Audio Unit (v2) entry points:
// the instance lifecycle, format negotiation, properties, parameters, the
// render pipeline and state persistence.
package plugin

import (
	fwplugin "github.com/justyntemme/augo/pkg/framework/plugin"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// Info returns plugin metadata
	Info() fwplugin.Info

	// NewCore creates the core of a new instance
	NewCore() (Core, error)
}

// QueueSizer is implemented by plugins that need a MIDI ring other than
// midi.DefaultQueueSize. The size must be a power of two.
type QueueSizer interface {
	MIDIQueueSize() int
}

// FromBase exposes a framework plugin to the bridge. Each instance gets its
// own processor wrapped by NewProcessorCore.
func FromBase(b *fwplugin.Base) Plugin {
	return basePlugin{b}
}

type basePlugin struct {
	base *fwplugin.Base
}

func (p basePlugin) Info() fwplugin.Info {
	return p.base.Info
}

func (p basePlugin) NewCore() (Core, error) {
	opts := []CoreOption{WithPresetBank(p.base.Presets)}
	if p.base.EditorWidth > 0 && p.base.EditorHeight > 0 {
		opts = append(opts, WithGUI(p.base.EditorWidth, p.base.EditorHeight))
	}
	if p.base.Info.Type.IsInstrument() {
		opts = append(opts, AsInstrument())
	}
	return NewProcessorCore(p.base.NewProcessor(), opts...), nil
}

func (p basePlugin) MIDIQueueSize() int {
	return p.base.MIDIQueueSize
}
