package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(b *Buffer, v float32) {
	for c := 0; c < b.ChannelCount(); c++ {
		ch := b.Channel(c)
		for i := range ch {
			ch[i] = v
		}
	}
}

func TestNewIsZeroed(t *testing.T) {
	b := New(2)
	require.Equal(t, 2, b.ChannelCount())
	for _, v := range b.Channel(0) {
		assert.Equal(t, float32(0), v)
	}
}

func TestClear(t *testing.T) {
	b := New(2)
	fill(b, 1.0)
	b.Clear()
	for c := 0; c < 2; c++ {
		for _, v := range b.Channel(c) {
			assert.Equal(t, float32(0), v)
		}
	}
}

func TestViewAliasesStorage(t *testing.T) {
	src := New(4)
	fill(src, 2.0)
	v := View(src, 1, 2)
	require.Equal(t, 2, v.ChannelCount())
	v.Channel(0)[0] = 9
	assert.Equal(t, float32(9), src.Channel(1)[0])
}

func TestViewOutOfRangePanics(t *testing.T) {
	src := New(2)
	assert.Panics(t, func() { View(src, 1, 2) })
}

func TestAddWithGain(t *testing.T) {
	a := New(1)
	b := New(1)
	fill(a, 1.0)
	fill(b, 2.0)
	a.AddWithGain(b, 0.5)
	assert.Equal(t, float32(2.0), a.Channel(0)[0])
}

func TestApplyGain(t *testing.T) {
	b := New(1)
	fill(b, 2.0)
	b.ApplyGain(0.5)
	assert.Equal(t, float32(1.0), b.Channel(0)[0])
}

func TestAddChannelMismatchPanics(t *testing.T) {
	a := New(1)
	b := New(2)
	assert.Panics(t, func() { a.Add(b) })
}
