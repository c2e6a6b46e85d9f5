// Package config loads the YAML descriptor that declares a plugin's
// identity, host-facing limits and factory presets.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/plugin"
	"github.com/justyntemme/augo/pkg/framework/preset"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid plugin descriptor")

// Defaults applied to fields left empty.
const (
	DefaultMIDIQueueSize = 1024
	DefaultMaxFrames     = 1024
	MaxFramesLimit       = 8192
)

// Descriptor is the on-disk plugin description.
type Descriptor struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Vendor       string        `yaml:"vendor"`
	Version      string        `yaml:"version"`
	Category     string        `yaml:"category,omitempty"`
	URL          string        `yaml:"url,omitempty"`
	Email        string        `yaml:"email,omitempty"`
	Type         string        `yaml:"type"`
	SubType      string        `yaml:"subtype"`
	Manufacturer string        `yaml:"manufacturer"`
	Editor       *EditorConfig `yaml:"editor,omitempty"`

	MIDIQueueSize int `yaml:"midi_queue_size,omitempty"`
	MaxFrames     int `yaml:"max_frames,omitempty"`

	Presets []PresetConfig `yaml:"presets,omitempty"`
}

// EditorConfig declares a GUI and its preferred size.
type EditorConfig struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// PresetConfig is one factory preset. Values are plain parameter values
// keyed by parameter id; unlisted parameters are left alone.
type PresetConfig struct {
	Name   string             `yaml:"name"`
	Values map[uint32]float64 `yaml:"values"`
}

var componentTypes = map[string]au.ComponentType{
	"aufx": au.TypeEffect,
	"aumu": au.TypeMusicDevice,
	"aumf": au.TypeMusicEffect,
	"aumi": au.TypeMIDIProcessor,
	"augn": au.TypeGenerator,
	"aufc": au.TypeFormatConverter,
}

// Load reads and validates a descriptor file.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a descriptor, filling in defaults.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if d.MIDIQueueSize == 0 {
		d.MIDIQueueSize = DefaultMIDIQueueSize
	}
	if d.MaxFrames == 0 {
		d.MaxFrames = DefaultMaxFrames
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// MustParse is Parse for embedded descriptors; it panics on error.
func MustParse(data []byte) *Descriptor {
	d, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks the descriptor.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if _, ok := componentTypes[d.Type]; !ok {
		errs = append(errs, fmt.Errorf("type %q is not a known component type", d.Type))
	}
	if _, err := au.ParseFourCC(d.SubType); err != nil {
		errs = append(errs, fmt.Errorf("subtype: %w", err))
	}
	if _, err := au.ParseFourCC(d.Manufacturer); err != nil {
		errs = append(errs, fmt.Errorf("manufacturer: %w", err))
	}
	if n := d.MIDIQueueSize; n < 2 || n > 1<<16 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("midi_queue_size %d must be a power of two between 2 and 65536", n))
	}
	if d.MaxFrames < 1 || d.MaxFrames > MaxFramesLimit {
		errs = append(errs, fmt.Errorf("max_frames %d must be in 1..%d", d.MaxFrames, MaxFramesLimit))
	}
	for i, p := range d.Presets {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("preset %d has no name", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Info converts the descriptor to plugin metadata. The descriptor must be
// valid.
func (d *Descriptor) Info() plugin.Info {
	sub, _ := au.ParseFourCC(d.SubType)
	manu, _ := au.ParseFourCC(d.Manufacturer)
	return plugin.Info{
		ID:           d.ID,
		Name:         d.Name,
		Version:      d.Version,
		Vendor:       d.Vendor,
		Category:     d.Category,
		URL:          d.URL,
		Email:        d.Email,
		Type:         componentTypes[d.Type],
		SubType:      sub,
		Manufacturer: manu,
	}
}

// Bank returns the factory presets.
func (d *Descriptor) Bank() *preset.Bank {
	presets := make([]preset.Preset, len(d.Presets))
	for i, p := range d.Presets {
		presets[i] = preset.Preset{Name: p.Name, Values: p.Values}
	}
	return preset.NewBank(presets...)
}

// HasEditor reports whether a GUI is declared.
func (d *Descriptor) HasEditor() bool {
	return d.Editor != nil && d.Editor.Width > 0 && d.Editor.Height > 0
}

// Base builds the framework plugin described by d around a processor
// constructor.
func (d *Descriptor) Base(newProcessor func() plugin.Processor) *plugin.Base {
	b := plugin.NewBase(d.Info(), newProcessor).WithPresets(d.Bank())
	if d.HasEditor() {
		b.WithEditor(d.Editor.Width, d.Editor.Height)
	}
	b.MIDIQueueSize = d.MIDIQueueSize
	return b
}
