package flight

import "sync"

// Live is a Source written from another goroutine, e.g. keyboard input.
type Live struct {
	mu    sync.Mutex
	state State
}

// NewLive starts disarmed, ok to arm and at minimum throttle.
func NewLive() *Live {
	return &Live{state: State{OkToArm: true, Throttle: ThrottleMin}}
}

func (l *Live) FlightState() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Update applies fn to the state and clamps the sticks and throttle
// afterwards. It returns the resulting state.
func (l *Live) Update(fn func(*State)) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.state)
	l.state.Roll = clamp(l.state.Roll, -StickMax, StickMax)
	l.state.Pitch = clamp(l.state.Pitch, -StickMax, StickMax)
	l.state.Throttle = clamp(l.state.Throttle, ThrottleMin, ThrottleMax)
	return l.state
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
