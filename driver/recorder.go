package driver

import (
	"sync"

	"github.com/gammazero/deque"
)

// Recorder keeps the most recent frames. It is a Sink and safe for
// concurrent use.
type Recorder struct {
	mu       sync.Mutex
	frames   deque.Deque[Frame]
	capacity int
}

// NewRecorder keeps at most capacity frames; capacity below 1 keeps one.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{capacity: max(capacity, 1)}
}

func (r *Recorder) DisplayFrame(f *Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slot Frame
	if r.frames.Len() >= r.capacity {
		// reuse the LED slice of the oldest frame
		slot = r.frames.PopFront()
	}
	f.copyInto(&slot)
	r.frames.PushBack(slot)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames.Len()
}

// Frames returns copies of the recorded frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make([]Frame, 0, r.frames.Len())
	for i := 0; i < r.frames.Len(); i++ {
		f := r.frames.At(i)
		ret = append(ret, f.Clone())
	}
	return ret
}

// Last returns a copy of the newest frame.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frames.Len() == 0 {
		return Frame{}, false
	}
	f := r.frames.Back()
	return f.Clone(), true
}
