package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/strip"
)

func TestStrip_SetAndGet(t *testing.T) {
	s := NewStrip(make(chan *Frame, 1), NewFramePool())

	s.SetColor(3, color.Orange)
	assert.Equal(t, color.Orange, s.Color(3))
	assert.Equal(t, color.Black, s.Color(4))

	s.SetBrightness(3, 50)
	assert.Equal(t, color.HSV{H: 30, S: 0, V: 127}, s.Color(3))

	// out of range indexes are ignored
	s.SetColor(-1, color.Red)
	s.SetColor(strip.MaxLed, color.Red)
	s.SetBrightness(strip.MaxLed, 10)
	assert.Equal(t, color.Black, s.Color(strip.MaxLed))
}

func TestStrip_TransmitAndReady(t *testing.T) {
	out := make(chan *Frame, 1)
	pool := NewFramePool()
	s := NewStrip(out, pool)

	s.SetColor(0, color.Red)
	s.SetColor(1, color.White)
	assert.True(t, s.Ready())

	s.Transmit()
	assert.False(t, s.Ready(), "frame pending")

	// a second frame while busy is dropped
	s.Transmit()
	assert.Equal(t, uint64(1), s.Dropped())

	f := <-out
	require.Len(t, f.Leds, strip.MaxLed)
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, color.RGB{R: 255}, f.Leds[0])
	assert.Equal(t, color.RGB{R: 255, G: 255, B: 255}, f.Leds[1])
	assert.True(t, f.Leds[2].IsEmpty())
	assert.True(t, s.Ready())
	pool.Put(f)

	s.Transmit()
	f = <-out
	assert.Equal(t, uint64(3), f.Seq)
}
