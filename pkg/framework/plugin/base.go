package plugin

import (
	"github.com/justyntemme/augo/pkg/framework/preset"
)

// Base describes a framework plugin: its metadata, its factory presets and
// how to construct a processor for each new instance.
type Base struct {
	Info    Info
	Presets *preset.Bank

	// EditorWidth and EditorHeight are zero for plugins without a GUI.
	EditorWidth  uint32
	EditorHeight uint32

	// MIDIQueueSize is the capacity of each instance's event ring. Zero
	// selects the bridge default.
	MIDIQueueSize int

	newProcessor func() Processor
}

// NewBase creates a new plugin base
func NewBase(info Info, newProcessor func() Processor) *Base {
	return &Base{
		Info:         info,
		newProcessor: newProcessor,
	}
}

// WithPresets sets the factory presets.
func (b *Base) WithPresets(bank *preset.Bank) *Base {
	b.Presets = bank
	return b
}

// WithEditor declares a GUI of the given size.
func (b *Base) WithEditor(width, height uint32) *Base {
	b.EditorWidth, b.EditorHeight = width, height
	return b
}

// NewProcessor constructs a processor for a new instance.
func (b *Base) NewProcessor() Processor {
	return b.newProcessor()
}
