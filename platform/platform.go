package platform

import (
	"sync"

	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/strip"
)

// Platform defines the interface for abstracting away the real hardware
// from the TUI simulation.
type Platform interface {
	// Start opens the output device and starts reading frames. Frames are
	// returned to pool once displayed.
	Start(frames chan *driver.Frame, pool *sync.Pool) error

	// Stop cleans up all platform resources.
	Stop()

	// Ready is closed once the platform displays frames.
	Ready() <-chan bool

	// SetLayout publishes the active LED table. It decides how many LEDs
	// are sent to the strip and where the TUI draws them.
	SetLayout(configs []strip.LedConfig)

	// AddSink registers an extra receiver of displayed frames. Sinks must
	// be added before Start.
	AddSink(sink driver.Sink)
}
