package au

// FormatID names the sample encoding of a stream.
type FormatID uint32

// FormatLinearPCM is the only encoding the bridge accepts ('lpcm').
const FormatLinearPCM FormatID = 'l'<<24 | 'p'<<16 | 'c'<<8 | 'm'

// FormatFlags qualify a linear PCM stream.
type FormatFlags uint32

const (
	FormatFlagIsFloat          FormatFlags = 1 << 0
	FormatFlagIsBigEndian      FormatFlags = 1 << 1
	FormatFlagIsSignedInteger  FormatFlags = 1 << 2
	FormatFlagIsPacked         FormatFlags = 1 << 3
	FormatFlagIsAlignedHigh    FormatFlags = 1 << 4
	FormatFlagIsNonInterleaved FormatFlags = 1 << 5
)

// StreamFormat describes the audio carried by one bus.
type StreamFormat struct {
	SampleRate       float64
	FormatID         FormatID
	FormatFlags      FormatFlags
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	BytesPerFrame    uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
}

// CanonicalFormat returns the 32-bit float non-interleaved format used as
// the default for every bus.
func CanonicalFormat(sampleRate float64, channels uint32) StreamFormat {
	return StreamFormat{
		SampleRate:       sampleRate,
		FormatID:         FormatLinearPCM,
		FormatFlags:      FormatFlagIsFloat | FormatFlagIsPacked | FormatFlagIsNonInterleaved,
		BytesPerPacket:   4,
		FramesPerPacket:  1,
		BytesPerFrame:    4,
		ChannelsPerFrame: channels,
		BitsPerChannel:   32,
	}
}

// IsFloatNonInterleaved reports whether f is linear PCM, floating point and
// non-interleaved, the only layout the bridge renders.
func (f StreamFormat) IsFloatNonInterleaved() bool {
	return f.FormatID == FormatLinearPCM &&
		f.FormatFlags&FormatFlagIsFloat != 0 &&
		f.FormatFlags&FormatFlagIsNonInterleaved != 0
}

// Is64Bit reports whether samples are double precision.
func (f StreamFormat) Is64Bit() bool {
	return f.BitsPerChannel == 64
}

// Buffer is one non-interleaved channel. Exactly one of Data and Data64 is
// used, depending on the negotiated sample format.
type Buffer struct {
	NumberChannels uint32
	Data           []float32
	Data64         []float64
}

// Frames returns the number of samples held by the buffer.
func (b *Buffer) Frames() int {
	if b.Data64 != nil {
		return len(b.Data64)
	}
	return len(b.Data)
}

// BufferList is the set of channel buffers exchanged during render. The
// host owns the slices; they are only valid for the duration of a call.
type BufferList struct {
	Buffers []Buffer
}

// NewBufferList allocates one non-interleaved buffer per channel.
func NewBufferList(channels, frames int, float64Samples bool) *BufferList {
	l := &BufferList{Buffers: make([]Buffer, channels)}
	for c := range l.Buffers {
		l.Buffers[c].NumberChannels = 1
		if float64Samples {
			l.Buffers[c].Data64 = make([]float64, frames)
		} else {
			l.Buffers[c].Data = make([]float32, frames)
		}
	}
	return l
}

// CopyFrom copies src into l buffer by buffer, bounded by the smaller
// buffer count and the smaller length of each pair.
func (l *BufferList) CopyFrom(src *BufferList) {
	n := len(l.Buffers)
	if len(src.Buffers) < n {
		n = len(src.Buffers)
	}
	for i := 0; i < n; i++ {
		dst := &l.Buffers[i]
		in := &src.Buffers[i]
		switch {
		case dst.Data64 != nil && in.Data64 != nil:
			copy(dst.Data64, in.Data64)
		case dst.Data64 != nil:
			m := min(len(dst.Data64), len(in.Data))
			for j := 0; j < m; j++ {
				dst.Data64[j] = float64(in.Data[j])
			}
		case in.Data64 != nil:
			m := min(len(dst.Data), len(in.Data64))
			for j := 0; j < m; j++ {
				dst.Data[j] = float32(in.Data64[j])
			}
		default:
			copy(dst.Data, in.Data)
		}
	}
}

// Silence zeroes every buffer.
func (l *BufferList) Silence() {
	for i := range l.Buffers {
		clear(l.Buffers[i].Data)
		clear(l.Buffers[i].Data64)
	}
}

// RenderActionFlags annotate a render or render-notify call.
type RenderActionFlags uint32

const (
	RenderPreRender            RenderActionFlags = 1 << 2
	RenderPostRender           RenderActionFlags = 1 << 3
	RenderOutputIsSilence      RenderActionFlags = 1 << 4
	RenderPreflight            RenderActionFlags = 1 << 5
	RenderRender               RenderActionFlags = 1 << 6
	RenderComplete             RenderActionFlags = 1 << 7
	RenderPostRenderError      RenderActionFlags = 1 << 8
	RenderDoNotCheckRenderArgs RenderActionFlags = 1 << 9
)

// TimeStampFlags mark which TimeStamp fields are valid.
type TimeStampFlags uint32

const (
	TimeStampSampleTimeValid TimeStampFlags = 1 << 0
	TimeStampHostTimeValid   TimeStampFlags = 1 << 1
)

// TimeStamp positions a render call on the host timeline.
type TimeStamp struct {
	SampleTime float64
	HostTime   uint64
	Flags      TimeStampFlags
}
