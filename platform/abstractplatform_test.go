package platform

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/fcleds/color"
	c "lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/strip"
)

func TestAbstractPlatform_DisplayDriver(t *testing.T) {
	var mu sync.Mutex
	var displayed []uint64
	s := newAbstractPlatform(&c.Config{}, func(f *driver.Frame) {
		mu.Lock()
		displayed = append(displayed, f.Seq)
		mu.Unlock()
	})
	recorder := driver.NewRecorder(4)
	s.AddSink(recorder)

	frames := make(chan *driver.Frame)
	s.startDisplayDriver(frames, driver.NewFramePool())

	frames <- &driver.Frame{Seq: 1, Leds: []color.RGB{{R: 1}}}
	frames <- &driver.Frame{Seq: 2, Leds: []color.RGB{{G: 1}}}
	assert.Eventually(t, func() bool { return recorder.Len() == 2 }, time.Second, time.Millisecond)
	s.stopDisplayDriver()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, displayed)
	require.Equal(t, 2, recorder.Len())
	last, _ := recorder.Last()
	assert.Equal(t, []color.RGB{{G: 1}}, last.Leds)
}

func TestAbstractPlatform_NoDisplayInShutdown(t *testing.T) {
	called := false
	s := newAbstractPlatform(&c.Config{}, func(*driver.Frame) { called = true })
	frames := make(chan *driver.Frame)
	s.startDisplayDriver(frames, &sync.Pool{})

	s.setInShutdown()
	frames <- &driver.Frame{}
	close(s.displayStopChan)
	s.displayWg.Wait()

	assert.False(t, called)
}

func TestAbstractPlatform_Layout(t *testing.T) {
	s := newAbstractPlatform(&c.Config{}, func(*driver.Frame) {})
	assert.Equal(t, strip.DefaultConfigs(), s.Layout(), "starts with the default layout")

	configs := []strip.LedConfig{strip.At(0, 0, strip.Warning), strip.At(1, 0, strip.Warning)}
	s.SetLayout(configs)
	configs[0] = strip.At(5, 5, 0)
	assert.Equal(t, strip.At(0, 0, strip.Warning), s.Layout()[0], "layout is copied")

	leds := s.visibleLeds(&driver.Frame{Leds: make([]color.RGB, strip.MaxLed)})
	assert.Len(t, leds, 2)
}

func TestAbstractPlatform_StopWithoutFrames(t *testing.T) {
	s := newAbstractPlatform(&c.Config{}, func(*driver.Frame) {})
	s.startDisplayDriver(make(chan *driver.Frame), &sync.Pool{})

	done := make(chan struct{})
	go func() {
		s.stopDisplayDriver()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("display driver did not stop")
	}
}
