package strip

import "fmt"

// State owns the LED configuration table and the geometry derived from
// it. It is not safe for concurrent use; mutate it between frames on the
// goroutine that renders.
type State struct {
	configs [MaxLed]LedConfig
	used    [MaxLed]bool
	count   int
	geo     Geometry
}

// NewState returns an empty table.
func NewState() *State {
	s := &State{}
	s.Reevaluate()
	return s
}

// NewDefaultState returns a table holding DefaultConfigs.
func NewDefaultState() *State {
	s := &State{}
	s.LoadDefaults()
	return s
}

// Count is the number of active LEDs: the prefix of used slots.
func (s *State) Count() int { return s.count }

// Geometry returns the geometry matching the current table.
func (s *State) Geometry() Geometry { return s.geo }

// Config returns entry index and whether the slot is in use.
func (s *State) Config(index int) (LedConfig, bool) {
	if index < 0 || index >= MaxLed {
		return LedConfig{}, false
	}
	return s.configs[index], s.used[index]
}

// Active returns a copy of the active entries in strip order.
func (s *State) Active() []LedConfig {
	ret := make([]LedConfig, s.count)
	copy(ret, s.configs[:s.count])
	return ret
}

// SetConfig stores c at index and marks the slot as used.
func (s *State) SetConfig(index int, c LedConfig) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	s.configs[index] = c
	s.used[index] = true
	s.Reevaluate()
	return nil
}

// Clear zeroes entry index and marks it unused, which ends the active
// prefix there.
func (s *State) Clear(index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	s.clear(index)
	s.Reevaluate()
	return nil
}

// Reset clears every slot.
func (s *State) Reset() {
	for i := range s.configs {
		s.clear(i)
	}
	s.Reevaluate()
}

// LoadDefaults replaces the table with DefaultConfigs.
func (s *State) LoadDefaults() {
	for i := range s.configs {
		s.clear(i)
	}
	for i, c := range defaultConfigs {
		s.configs[i] = c
		s.used[i] = true
	}
	s.Reevaluate()
}

// Reevaluate recomputes the active count and the geometry as one unit.
// Every mutation calls it.
func (s *State) Reevaluate() {
	s.count = 0
	for s.count < MaxLed && s.used[s.count] {
		s.count++
	}
	s.geo = newGeometry(s.configs[:s.count])
}

func (s *State) clear(index int) {
	s.configs[index] = LedConfig{}
	s.used[index] = false
}

func checkIndex(index int) error {
	if index < 0 || index >= MaxLed {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}
