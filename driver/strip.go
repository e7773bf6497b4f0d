package driver

import (
	"sync"
	"time"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/strip"
)

// NewFramePool returns a pool of frames sized for the whole strip.
func NewFramePool() *sync.Pool {
	return &sync.Pool{
		New: func() any {
			return &Frame{Leds: make([]color.RGB, strip.MaxLed)}
		},
	}
}

// Strip is the HSV buffer of the whole LED table. Transmit converts it
// to RGB and passes it to the display goroutine over out without
// blocking; at most cap(out) frames are in flight.
type Strip struct {
	leds [strip.MaxLed]color.HSV
	out  chan *Frame
	pool *sync.Pool
	seq  uint64
	now  func() time.Time

	dropped uint64
}

func NewStrip(out chan *Frame, pool *sync.Pool) *Strip {
	return &Strip{
		out:  out,
		pool: pool,
		now:  time.Now,
	}
}

func (s *Strip) SetColor(index int, c color.HSV) {
	if index >= 0 && index < len(s.leds) {
		s.leds[index] = c
	}
}

func (s *Strip) Color(index int) color.HSV {
	if index >= 0 && index < len(s.leds) {
		return s.leds[index]
	}
	return color.Black
}

func (s *Strip) SetBrightness(index int, percent uint8) {
	if index >= 0 && index < len(s.leds) {
		s.leds[index] = s.leds[index].Dim(percent)
	}
}

func (s *Strip) Ready() bool {
	return len(s.out) < cap(s.out)
}

func (s *Strip) Transmit() {
	f := s.pool.Get().(*Frame)
	s.seq++
	f.Seq = s.seq
	f.Time = s.now()
	f.Leds = f.Leds[:0]
	for _, c := range s.leds {
		f.Leds = append(f.Leds, c.ToRGB())
	}

	select {
	case s.out <- f:
	default:
		s.dropped++
		s.pool.Put(f)
	}
}

// Dropped counts frames that found the output channel full.
func (s *Strip) Dropped() uint64 {
	return s.dropped
}
