// Package bus describes the audio and event buses a plugin declares and the
// channel layouts it can run with.
package bus

import "fmt"

// Limits on the layouts a plugin may declare or negotiate.
const (
	MaxBuses    = 16
	MaxChannels = 32
)

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionInput {
		return "input"
	}
	return "output"
}

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration holds the buses a plugin declares.
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return NewBuilder().
		WithMonoInput("Mono In").
		WithMonoOutput("Mono Out").
		MustBuild()
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)

	buses := c.audioBuses
	if mediaType == MediaTypeEvent {
		buses = c.eventBuses
	}

	for _, bus := range buses {
		if bus.Direction == direction {
			count++
		}
	}

	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.audioBuses
	if mediaType == MediaTypeEvent {
		buses = c.eventBuses
	}

	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}

	return nil
}

// AudioBuses returns a copy of the audio buses in one direction, in
// declaration order.
func (c *Configuration) AudioBuses(direction Direction) []Info {
	var out []Info
	for _, b := range c.audioBuses {
		if b.Direction == direction {
			out = append(out, b)
		}
	}
	return out
}

// HasEventInput reports whether the plugin declares a MIDI input.
func (c *Configuration) HasEventInput() bool {
	return c.GetBusCount(MediaTypeEvent, DirectionInput) > 0
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

// Layout is the concrete channel arrangement a plugin is prepared with.
// Bus 0 of each direction is the main bus.
type Layout struct {
	Inputs  []Info
	Outputs []Info
}

// Resolve builds the layout for the given negotiated channel counts, one per
// declared audio bus. A nil slice keeps the declared counts.
func (c *Configuration) Resolve(inChannels, outChannels []int32) (Layout, error) {
	var l Layout
	var err error
	if l.Inputs, err = resolve(c.AudioBuses(DirectionInput), inChannels); err != nil {
		return Layout{}, err
	}
	if l.Outputs, err = resolve(c.AudioBuses(DirectionOutput), outChannels); err != nil {
		return Layout{}, err
	}
	return l, l.Validate()
}

func resolve(declared []Info, channels []int32) ([]Info, error) {
	if channels != nil && len(channels) != len(declared) {
		return nil, fmt.Errorf("got %d channel counts for %d buses", len(channels), len(declared))
	}
	out := make([]Info, len(declared))
	for i, b := range declared {
		if channels != nil {
			b.ChannelCount = channels[i]
		}
		out[i] = b
	}
	return out, nil
}

// Validate checks the structural limits of a layout.
func (l Layout) Validate() error {
	if len(l.Inputs) > MaxBuses || len(l.Outputs) > MaxBuses {
		return fmt.Errorf("layout has %d inputs and %d outputs, limit is %d per direction",
			len(l.Inputs), len(l.Outputs), MaxBuses)
	}
	for _, buses := range [][]Info{l.Inputs, l.Outputs} {
		for i, b := range buses {
			if b.ChannelCount < 0 || b.ChannelCount > MaxChannels {
				return fmt.Errorf("%s bus %d has %d channels, limit is %d",
					b.Direction, i, b.ChannelCount, MaxChannels)
			}
			if i == 0 && b.BusType != TypeMain {
				return fmt.Errorf("%s bus 0 must be the main bus", b.Direction)
			}
		}
	}
	return nil
}

// MainInputChannels returns the channel count of input bus 0, or 0.
func (l Layout) MainInputChannels() int32 {
	if len(l.Inputs) == 0 {
		return 0
	}
	return l.Inputs[0].ChannelCount
}

// MainOutputChannels returns the channel count of output bus 0, or 0.
func (l Layout) MainOutputChannels() int32 {
	if len(l.Outputs) == 0 {
		return 0
	}
	return l.Outputs[0].ChannelCount
}
