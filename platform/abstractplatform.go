package platform

import (
	"log/slog"
	"sync"

	"lautenbacher.net/fcleds/color"
	c "lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/strip"
	u "lautenbacher.net/fcleds/util"
)

type AbstractPlatform struct {
	config          *c.Config
	displayFunc     func(*driver.Frame)
	sinks           []driver.Sink
	layout          *u.AtomicEvent[[]strip.LedConfig]
	displayWg       sync.WaitGroup
	displayStopChan chan bool
	shutdownMutex   sync.RWMutex
	isShuttingDown  bool
	ledBufferPool   *sync.Pool
}

func newAbstractPlatform(conf *c.Config, displayFunc func(*driver.Frame)) *AbstractPlatform {
	layout := u.NewAtomicEvent[[]strip.LedConfig]()
	layout.Send(strip.DefaultConfigs())
	return &AbstractPlatform{
		config:          conf,
		displayFunc:     displayFunc,
		layout:          layout,
		displayStopChan: make(chan bool),
	}
}

func (s *AbstractPlatform) AddSink(sink driver.Sink) {
	s.sinks = append(s.sinks, sink)
}

func (s *AbstractPlatform) SetLayout(configs []strip.LedConfig) {
	layout := make([]strip.LedConfig, len(configs))
	copy(layout, configs)
	s.layout.Send(layout)
}

// Layout returns the last published LED table.
func (s *AbstractPlatform) Layout() []strip.LedConfig {
	return s.layout.Value()
}

// visibleLeds cuts a frame down to the configured LEDs.
func (s *AbstractPlatform) visibleLeds(frame *driver.Frame) []color.RGB {
	count := min(len(s.layout.Value()), len(frame.Leds))
	return frame.Leds[:count]
}

func (s *AbstractPlatform) setInShutdown() {
	s.shutdownMutex.Lock()
	s.isShuttingDown = true
	s.shutdownMutex.Unlock()
}

func (s *AbstractPlatform) startDisplayDriver(frames chan *driver.Frame, pool *sync.Pool) {
	s.ledBufferPool = pool
	s.displayWg.Add(1)
	go s.displayDriver(frames)
}

func (s *AbstractPlatform) stopDisplayDriver() {
	s.setInShutdown()
	close(s.displayStopChan)
	s.displayWg.Wait()
}

func (s *AbstractPlatform) displayDriver(frames chan *driver.Frame) {
	defer s.displayWg.Done()
	for {
		select {
		case <-s.displayStopChan:
			slog.Info("Ending DisplayDriver go-routine...")
			return
		case frame := <-frames:
			s.shutdownMutex.RLock()
			if !s.isShuttingDown {
				s.displayFunc(frame)
				for _, sink := range s.sinks {
					sink.DisplayFrame(frame)
				}
			}
			s.shutdownMutex.RUnlock()
			// Return the buffer to the pool for reuse.
			s.ledBufferPool.Put(frame)
		}
	}
}
