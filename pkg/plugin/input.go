package plugin

import (
	"github.com/justyntemme/augo/pkg/au"
)

// inputBuffers is the scratch list one input bus pulls into. The list's
// slices may be replaced by the source during a pull, so they are restored
// from the owned storage before every pull.
type inputBuffers struct {
	list   au.BufferList
	data   [][]float32
	data64 [][]float64
}

// allocate sizes the storage for channels buffers of frames samples. It
// keeps the current storage when it already fits.
func (b *inputBuffers) allocate(channels int, frames uint32, format SampleFormat) {
	if b.fits(channels, frames, format) {
		return
	}
	*b = inputBuffers{list: au.BufferList{Buffers: make([]au.Buffer, channels)}}
	if format == Float64 {
		b.data64 = make([][]float64, channels)
		for c := range b.data64 {
			b.data64[c] = make([]float64, frames)
		}
		return
	}
	b.data = make([][]float32, channels)
	for c := range b.data {
		b.data[c] = make([]float32, frames)
	}
}

func (b *inputBuffers) fits(channels int, frames uint32, format SampleFormat) bool {
	if len(b.list.Buffers) != channels || channels == 0 {
		return false
	}
	if format == Float64 {
		return b.data64 != nil && uint32(cap(b.data64[0])) >= frames
	}
	return b.data != nil && uint32(cap(b.data[0])) >= frames
}

func (b *inputBuffers) release() {
	*b = inputBuffers{}
}

// reset points every buffer back at the owned storage, frames long.
func (b *inputBuffers) reset(frames uint32) *au.BufferList {
	for c := range b.list.Buffers {
		buf := &b.list.Buffers[c]
		buf.NumberChannels = 1
		if b.data64 != nil {
			buf.Data = nil
			buf.Data64 = b.data64[c][:frames]
		} else {
			buf.Data = b.data[c][:frames]
			buf.Data64 = nil
		}
	}
	return &b.list
}

// pullInput fetches the audio of input bus k from its source. It returns
// nil when the bus has no source or the pull failed. Audio thread only.
func (i *Instance) pullInput(k int, ts *au.TimeStamp, frames uint32) *au.BufferList {
	src := i.sources[k].Load()
	if src == nil {
		return nil
	}
	list := i.inputs[k].reset(frames)
	i.pullFlags = 0
	var err error
	if src.proc != nil {
		err = src.proc.RenderInput(src.refCon, &i.pullFlags, ts, uint32(k), frames, list)
	} else {
		err = src.upstream.Render(&i.pullFlags, ts, src.output, frames, list)
	}
	if err != nil {
		return nil
	}
	return list
}
