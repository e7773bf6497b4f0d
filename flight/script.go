package flight

import (
	"time"
)

// Step holds a state for a duration.
type Step struct {
	Duration time.Duration
	State    State
}

// Script replays steps in a loop, starting at the first call to
// FlightState.
type Script struct {
	steps []Step
	total time.Duration
	now   func() time.Time
	start time.Time
}

// NewScript returns a Script over steps. Steps with a non-positive
// duration are skipped. Without any usable step the script reports a
// disarmed idle state.
func NewScript(steps []Step) *Script {
	return newScript(steps, time.Now)
}

func newScript(steps []Step, now func() time.Time) *Script {
	s := &Script{now: now}
	for _, step := range steps {
		if step.Duration > 0 {
			s.steps = append(s.steps, step)
			s.total += step.Duration
		}
	}
	return s
}

func (s *Script) FlightState() State {
	if len(s.steps) == 0 {
		return State{OkToArm: true, Throttle: ThrottleMin}
	}
	t := s.now()
	if s.start.IsZero() {
		s.start = t
	}
	offset := t.Sub(s.start) % s.total
	for _, step := range s.steps {
		if offset < step.Duration {
			return step.State
		}
		offset -= step.Duration
	}
	return s.steps[len(s.steps)-1].State
}
