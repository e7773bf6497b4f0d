package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
)

func TestApplyKey(t *testing.T) {
	tests := []struct {
		name  string
		keys  string
		start flight.State
		want  flight.State
	}{
		{"arm", " ", flight.State{OkToArm: true}, flight.State{OkToArm: true, Armed: true}},
		{"disarm", "  ", flight.State{OkToArm: true}, flight.State{OkToArm: true}},
		{"arming disabled", " ", flight.State{}, flight.State{}},
		{"disarm while disabled", " ", flight.State{Armed: true}, flight.State{}},
		{"modes toggle", "135", flight.State{}, flight.State{Modes: flight.Angle | flight.Mag | flight.Headfree}},
		{"mode off again", "22", flight.State{}, flight.State{}},
		{"sticks", "ddw", flight.State{}, flight.State{Roll: 200, Pitch: 100}},
		{"center", "aasc", flight.State{}, flight.State{}},
		{"throttle", "+++-", flight.State{Throttle: 1000}, flight.State{Throttle: 1100}},
		{"warnings", "bf", flight.State{}, flight.State{LowBattery: true, FailsafeElapsed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.start
			for _, key := range tt.keys {
				assert.True(t, applyKey(key, &state))
			}
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestApplyKey_Unknown(t *testing.T) {
	state := flight.State{}
	assert.False(t, applyKey('x', &state))
	assert.Equal(t, flight.State{}, state)
}

func TestStatusText(t *testing.T) {
	text := statusText(flight.State{Armed: true, Modes: flight.Angle | flight.Baro, Throttle: 1500, LowBattery: true})
	assert.Contains(t, text, "ARMED")
	assert.Contains(t, text, "angle|baro")
	assert.Contains(t, text, "throttle 1500")
	assert.Contains(t, text, "LOW BATTERY")
	assert.NotContains(t, text, "FAILSAFE")

	assert.Contains(t, statusText(flight.State{}), "ARMING DISABLED")
	assert.Contains(t, statusText(flight.State{OkToArm: true}), "acro")
}

func TestRenderGrid(t *testing.T) {
	layout := []strip.LedConfig{
		strip.At(0, 0, strip.Warning),
		strip.At(1, 1, strip.Warning),
		strip.At(1, 1, strip.Warning),
	}
	leds := []color.RGB{{R: 255}, {}, {B: 40}}

	lines := strings.Split(renderGrid(layout, leds), "\n\n")
	// two rows plus the trailing separator
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[#ff0000]█[-]")
	assert.NotContains(t, lines[0], "·")
	assert.Contains(t, lines[1], "[#505050]·[-]")
	assert.Contains(t, lines[1], "[#0000ff]▂[-]")
}

func TestRenderGrid_IgnoresLedsBeyondFrame(t *testing.T) {
	layout := []strip.LedConfig{strip.At(0, 0, 0), strip.At(3, 0, 0)}
	text := renderGrid(layout, []color.RGB{{G: 255}})
	assert.Equal(t, "[#00ff00]█[-]   \n\n", text)
}

func TestScaledColor(t *testing.T) {
	assert.Equal(t, "[#000000]", scaledColor(color.RGB{}))
	assert.Equal(t, "[#ff8000]", scaledColor(color.RGB{R: 100, G: 50}))
}
