package bus

// Any is the wildcard channel count of a Capability.
const Any = -1

// MaxCapabilities bounds the capability table a plugin may report.
const MaxCapabilities = 16

// Capability is one supported (input, output) channel pair for the main
// buses. Any matches every count; 0 means the side is absent. The pair
// (Any, Any) additionally requires equal input and output counts.
type Capability struct {
	In  int32
	Out int32
}

// Admits reports whether the capability allows channels on one side,
// without looking at the other side.
func (c Capability) Admits(dir Direction, channels int32) bool {
	want := c.Out
	if dir == DirectionInput {
		want = c.In
	}
	return want == Any || want == channels
}

// Matches reports whether the capability allows the full pair.
func (c Capability) Matches(in, out int32) bool {
	if c.In == Any && c.Out == Any {
		return in == out
	}
	return c.Admits(DirectionInput, in) && c.Admits(DirectionOutput, out)
}

// Admits reports whether any capability allows channels on one side.
func Admits(caps []Capability, dir Direction, channels int32) bool {
	for _, c := range caps {
		if c.Admits(dir, channels) {
			return true
		}
	}
	return false
}

// Matches reports whether any capability allows the full pair.
func Matches(caps []Capability, in, out int32) bool {
	for _, c := range caps {
		if c.Matches(in, out) {
			return true
		}
	}
	return false
}

// DefaultCapabilities derives the capability table from the declared main
// buses. A bus declared with 0 channels counts as stereo. Instruments have
// no main input.
func DefaultCapabilities(c *Configuration, instrument bool) []Capability {
	in, out := int32(2), int32(2)
	if b := c.GetBusInfo(MediaTypeAudio, DirectionInput, 0); b != nil && b.ChannelCount > 0 {
		in = b.ChannelCount
	}
	if b := c.GetBusInfo(MediaTypeAudio, DirectionOutput, 0); b != nil && b.ChannelCount > 0 {
		out = b.ChannelCount
	}
	if instrument || c.GetBusCount(MediaTypeAudio, DirectionInput) == 0 {
		in = 0
	}
	return []Capability{{In: in, Out: out}}
}
