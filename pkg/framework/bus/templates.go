package bus

// Layouts used by the bundled plugins.

// NewEffectStereoSidechain is a stereo effect (aufx) with a stereo
// sidechain on input bus 1.
func NewEffectStereoSidechain() *Configuration {
	return NewBuilder().
		WithStereoInput("Input").
		WithStereoOutput("Output").
		WithSidechain("Sidechain").
		MustBuild()
}

// NewGenerator is an instrument (aumu) layout: no audio input, one stereo
// output and a MIDI input.
func NewGenerator() *Configuration {
	return NewBuilder().
		WithStereoOutput("Output").
		WithEventInput("MIDI").
		MustBuild()
}
