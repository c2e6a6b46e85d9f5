package process

// Channels returns the number of input channels that have a matching
// output channel.
func (c *Context) Channels() int {
	return min(c.NumInputChannels(), c.NumOutputChannels())
}

// ClearUnpaired zeros the output channels without a matching input, such
// as the second channel of a mono-in stereo-out layout.
func (c *Context) ClearUnpaired() {
	for ch := c.Channels(); ch < c.NumOutputChannels(); ch++ {
		clear(c.Output[ch][:c.NumSamples()])
	}
}

// ApplyGainCurve writes every paired input channel to its output scaled by
// the per-sample gain g, and clears unpaired outputs. g must hold at least
// NumSamples values.
func (c *Context) ApplyGainCurve(g []float32) {
	n := c.NumSamples()
	for ch := 0; ch < c.Channels(); ch++ {
		in, out := c.Input[ch][:n], c.Output[ch][:n]
		for k := range out {
			out[k] = in[k] * g[k]
		}
	}
	c.ClearUnpaired()
}

// Broadcast writes src scaled by gain to every output channel.
func (c *Context) Broadcast(src []float32, gain float32) {
	n := min(c.NumSamples(), len(src))
	for ch := range c.Output {
		out := c.Output[ch][:n]
		for k := range out {
			out[k] = src[k] * gain
		}
	}
}
