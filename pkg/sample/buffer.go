// Package sample implements ChunkSampleBuffer, the fixed-frame-count
// multichannel audio block passed between processors on the audio
// thread. It is grounded on the channel-slice view pattern in
// justyntemme/vst3go's pkg/vst3/buffers.go (AudioBuffer) and the
// process.Context buffer helpers, generalized from VST3's C-owned
// buffers to a buffer the engine itself owns.
package sample

// ChunkSize is the fixed frame count processed per audio block
// (AUDIO_CHUNK_SIZE in spec terms).
const ChunkSize = 64

// Buffer is a multichannel block of ChunkSize frames of float32 audio.
// An owning Buffer allocates its own channel storage; a non-owning
// Buffer (created with View) shares storage with another Buffer and
// must not outlive it. Buffers are not synchronized: callers guarantee
// exclusive access to a given Buffer for the duration of one block.
type Buffer struct {
	channels [][]float32
	owning   bool
}

// New allocates an owning Buffer with the given channel count.
func New(channelCount int) *Buffer {
	channels := make([][]float32, channelCount)
	for i := range channels {
		channels[i] = make([]float32, ChunkSize)
	}
	return &Buffer{channels: channels, owning: true}
}

// View returns a non-owning Buffer over a contiguous channel range of
// src, starting at firstChannel for channelCount channels. The
// returned Buffer shares sample storage with src and must not be used
// after src's storage is reused or freed.
func View(src *Buffer, firstChannel, channelCount int) *Buffer {
	if firstChannel < 0 || channelCount < 0 || firstChannel+channelCount > len(src.channels) {
		panic("sample: view out of range")
	}
	channels := src.channels[firstChannel : firstChannel+channelCount : firstChannel+channelCount]
	return &Buffer{channels: channels, owning: false}
}

// ChannelCount returns the number of channels in the buffer.
func (b *Buffer) ChannelCount() int {
	return len(b.channels)
}

// Channel returns the sample slice for channel ch. The slice aliases
// the buffer's storage; writes through it are visible to the buffer.
func (b *Buffer) Channel(ch int) []float32 {
	return b.channels[ch]
}

// Clear zeroes every sample in every channel.
func (b *Buffer) Clear() {
	for _, ch := range b.channels {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// Add adds other into b sample-by-sample. Channel counts must match.
func (b *Buffer) Add(other *Buffer) {
	if len(b.channels) != len(other.channels) {
		panic("sample: channel count mismatch in Add")
	}
	for c := range b.channels {
		dst, src := b.channels[c], other.channels[c]
		for i := range dst {
			dst[i] += src[i]
		}
	}
}

// AddWithGain adds other into b after scaling every sample of other by
// gain. Channel counts must match.
func (b *Buffer) AddWithGain(other *Buffer, gain float32) {
	if len(b.channels) != len(other.channels) {
		panic("sample: channel count mismatch in AddWithGain")
	}
	for c := range b.channels {
		dst, src := b.channels[c], other.channels[c]
		for i := range dst {
			dst[i] += src[i] * gain
		}
	}
}

// ApplyGain multiplies every sample in every channel by gain.
func (b *Buffer) ApplyGain(gain float32) {
	for _, ch := range b.channels {
		for i := range ch {
			ch[i] *= gain
		}
	}
}

// CopyFrom copies other's samples into b. Channel counts must match.
func (b *Buffer) CopyFrom(other *Buffer) {
	if len(b.channels) != len(other.channels) {
		panic("sample: channel count mismatch in CopyFrom")
	}
	for c := range b.channels {
		copy(b.channels[c], other.channels[c])
	}
}
