// Package scheduler drives the compositor at three independent rates on a
// wrapping microsecond clock.
package scheduler

import (
	"time"

	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/layer"
	"lautenbacher.net/fcleds/util"
)

// Clock is a monotonic microsecond counter that wraps at 2^32.
type Clock interface {
	Micros() uint32
}

// SystemClock counts microseconds since its creation.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Micros() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}

// Options are the layer update intervals.
type Options struct {
	AnimationInterval time.Duration
	IndicatorInterval time.Duration
	WarningInterval   time.Duration
}

// DefaultOptions run the animation at 20Hz, the warnings at 10Hz and the
// indicators at 5Hz.
func DefaultOptions() Options {
	return Options{
		AnimationInterval: 50 * time.Millisecond,
		IndicatorInterval: 200 * time.Millisecond,
		WarningInterval:   100 * time.Millisecond,
	}
}

type Scheduler struct {
	comp   *layer.Compositor
	drv    driver.Driver
	clock  Clock
	source flight.Source

	animationInterval uint32
	indicatorInterval uint32
	warningInterval   uint32

	enabled       bool
	nextAnimation uint32
	nextIndicator uint32
	nextWarning   uint32
}

// New returns a disabled scheduler. Zero intervals in opts fall back to
// the defaults.
func New(comp *layer.Compositor, drv driver.Driver, clock Clock, source flight.Source, opts Options) *Scheduler {
	def := DefaultOptions()
	return &Scheduler{
		comp:              comp,
		drv:               drv,
		clock:             clock,
		source:            source,
		animationInterval: micros(opts.AnimationInterval, def.AnimationInterval),
		indicatorInterval: micros(opts.IndicatorInterval, def.IndicatorInterval),
		warningInterval:   micros(opts.WarningInterval, def.WarningInterval),
	}
}

func micros(d, fallback time.Duration) uint32 {
	if d <= 0 {
		d = fallback
	}
	return uint32(d.Microseconds())
}

// Enable starts updating; every deadline is due on the next Update.
func (s *Scheduler) Enable() {
	now := s.clock.Micros()
	s.nextAnimation = now
	s.nextIndicator = now
	s.nextWarning = now
	s.enabled = true
}

func (s *Scheduler) Disable() { s.enabled = false }

func (s *Scheduler) Enabled() bool { return s.enabled }

// elapsed compares across the clock wrap.
func elapsed(now, deadline uint32) bool {
	return int32(now-deadline) >= 0
}

// Update runs one control-loop tick and reports whether a frame was
// transmitted. Ticks before the next deadline do nothing at all.
func (s *Scheduler) Update() bool {
	if !s.enabled || !s.drv.Ready() {
		return false
	}

	now := s.clock.Micros()
	animationNow := elapsed(now, s.nextAnimation)
	indicatorNow := elapsed(now, s.nextIndicator)
	warningNow := elapsed(now, s.nextWarning)
	if !(animationNow || indicatorNow || warningNow) {
		return false
	}

	fs := s.source.FlightState()
	s.comp.Begin(fs)
	s.comp.ApplyBase()

	if warningNow {
		s.nextWarning = now + s.warningInterval
		s.comp.Warning.Toggle(layer.SampleWarnings(fs))
	}
	s.comp.ApplyWarning()

	if indicatorNow {
		rollScale := util.Abs(fs.Roll) / layer.IndicatorDeadband
		pitchScale := util.Abs(fs.Pitch) / layer.IndicatorDeadband
		scale := max(1, rollScale, pitchScale)
		s.nextIndicator = now + s.indicatorInterval/uint32(scale)
		s.comp.Indicator.Toggle()
	}
	s.comp.ApplyIndicator()

	if animationNow {
		s.nextAnimation = now + s.animationInterval
		s.comp.Animation.Advance(s.comp.Height())
	}
	s.comp.ApplyAnimation()

	s.drv.Transmit()
	return true
}
