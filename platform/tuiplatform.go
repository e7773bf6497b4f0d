package platform

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/logging"
	"lautenbacher.net/fcleds/strip"
)

const (
	stickStep    = 100
	throttleStep = 50
	// cellWidth is the number of LEDs drawn per grid cell.
	cellWidth = 4
)

type TUIPlatform struct {
	*AbstractPlatform
	tviewapp     *tview.Application
	intro        *tview.TextView
	status       *tview.TextView
	ledDisplay   *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	live         *flight.Live
	logFlushOnce sync.Once
	readyChan    chan bool
}

// NewTUIPlatform simulates the strip in the terminal. The keyboard drives
// live, which the control loop reads as its flight state.
func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal, live *flight.Live) *TUIPlatform {
	inst := &TUIPlatform{
		ossignalChan: ossignalchan,
		live:         live,
		readyChan:    make(chan bool),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.DisplayLeds)
	return inst
}

func (s *TUIPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *TUIPlatform) Start(frames chan *driver.Frame, pool *sync.Pool) error {
	s.initSimulationTUI(s.ossignalChan)
	s.startDisplayDriver(frames, pool)
	return nil
}

func (s *TUIPlatform) Stop() {
	s.stopDisplayDriver()

	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

// DisplayLeds renders the frame here, as the frame is recycled after the
// call, and queues the redraw.
func (s *TUIPlatform) DisplayLeds(frame *driver.Frame) {
	text := renderGrid(s.Layout(), frame.Leds)
	s.tviewapp.QueueUpdateDraw(func() {
		s.ledDisplay.SetText(text)
	})
}

func (s *TUIPlatform) getIntroText() string {
	line1 := "[#ff0000]space[-] arm/disarm, [#ff0000]o[-] ok to arm, [blue]1[-]...[blue]5[-] angle/horizon/mag/baro/headfree"
	line2 := "[#ff0000]a[-]/[#ff0000]d[-] roll, [#ff0000]w[-]/[#ff0000]s[-] pitch, [#ff0000]c[-] center, [#ff0000]+[-]/[#ff0000]-[-] throttle, [#ff0000]b[-] low battery, [#ff0000]f[-] failsafe"
	line3 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s\n%s", line1, line2, line3)
}

func (s *TUIPlatform) initSimulationTUI(ossignal chan os.Signal) {
	s.tviewapp = tview.NewApplication()

	// --- Intro Pane ---
	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" FCLEDS Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- Flight State Pane ---
	s.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.status.SetText(statusText(s.live.FlightState()))
	s.status.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- LED Display Pane ---
	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.ledDisplay.SetBorder(true).SetTitle(" Strip ")
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	// --- Log Pane ---
	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	// --- Layout ---
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 5, 0, false).
		AddItem(s.status, 1, 0, false).
		AddItem(s.ledDisplay, 0, 1, false).
		AddItem(s.logView, 0, 1, true) // Flexible height, gets focus

	// --- Flush logs after first draw ---
	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logWriter := tview.ANSIWriter(s.logView)
			logging.SetOutput(logWriter)
			close(s.readyChan) // Signal that the TUI is ready
		})
	})

	// --- Input Handling ---
	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.tviewapp.Stop()
			ossignal <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				ossignal <- os.Interrupt
				return nil
			case 'r', 'R':
				ossignal <- syscall.SIGHUP
				return nil
			}
			var handled bool
			state := s.live.Update(func(fs *flight.State) {
				handled = applyKey(event.Rune(), fs)
			})
			if handled {
				slog.Debug("Flight state changed", "key", string(event.Rune()), "armed", state.Armed, "modes", state.Modes.String())
				s.status.SetText(statusText(state))
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	// --- Start TUI ---
	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
}

var modeKeys = map[rune]flight.Modes{
	'1': flight.Angle,
	'2': flight.Horizon,
	'3': flight.Mag,
	'4': flight.Baro,
	'5': flight.Headfree,
}

// applyKey changes the flight state for a simulation key. It reports
// whether the key was one.
func applyKey(key rune, fs *flight.State) bool {
	if mode, ok := modeKeys[key]; ok {
		fs.Modes ^= mode
		return true
	}
	switch key {
	case ' ':
		if !fs.Armed && !fs.OkToArm {
			slog.Info("Arming disabled, hit o first")
			return true
		}
		fs.Armed = !fs.Armed
	case 'o', 'O':
		fs.OkToArm = !fs.OkToArm
	case 'a':
		fs.Roll -= stickStep
	case 'd':
		fs.Roll += stickStep
	case 'w':
		fs.Pitch += stickStep
	case 's':
		fs.Pitch -= stickStep
	case 'c':
		fs.Roll, fs.Pitch = 0, 0
	case '+':
		fs.Throttle += throttleStep
	case '-':
		fs.Throttle -= throttleStep
	case 'b', 'B':
		fs.LowBattery = !fs.LowBattery
	case 'f', 'F':
		fs.FailsafeElapsed = !fs.FailsafeElapsed
	default:
		return false
	}
	return true
}

func statusText(fs flight.State) string {
	var buf strings.Builder
	if fs.Armed {
		buf.WriteString("[#0000ff]ARMED[-]")
	} else if fs.OkToArm {
		buf.WriteString("[#00ff00]DISARMED[-]")
	} else {
		buf.WriteString("[#ffff00]ARMING DISABLED[-]")
	}
	modes := fs.Modes.String()
	if modes == "" {
		modes = "acro"
	}
	fmt.Fprintf(&buf, " | modes %s | roll %4d pitch %4d | throttle %d", modes, fs.Roll, fs.Pitch, fs.Throttle)
	if fs.LowBattery {
		buf.WriteString(" | [#ff0000]LOW BATTERY[-]")
	}
	if fs.FailsafeElapsed {
		buf.WriteString(" | [#ff0000]FAILSAFE[-]")
	}
	return buf.String()
}

// renderGrid draws the LEDs at their grid positions, north up. LEDs that
// share a position are drawn side by side within the cell.
func renderGrid(layout []strip.LedConfig, leds []color.RGB) string {
	cells := make(map[strip.Position][]int)
	width, height := 0, 0
	for i, cfg := range layout {
		if i >= len(leds) {
			break
		}
		cells[cfg.Position] = append(cells[cfg.Position], i)
		width = max(width, cfg.Position.X()+1)
		height = max(height, cfg.Position.Y()+1)
	}

	var buf strings.Builder
	for y := range height {
		for x := range width {
			if x > 0 {
				buf.WriteString("  ")
			}
			indices := cells[strip.NewPosition(uint8(x), uint8(y))]
			for n := range cellWidth {
				if n >= len(indices) {
					buf.WriteString(" ")
					continue
				}
				buf.WriteString(ledGlyph(leds[indices[n]]))
			}
		}
		buf.WriteString("\n\n")
	}
	return buf.String()
}

var glyphs = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// ledGlyph shows the hue at full intensity and the brightness as the
// height of the block.
func ledGlyph(led color.RGB) string {
	if led.IsEmpty() {
		return "[#505050]·[-]"
	}
	brightness := max(led.R, led.G, led.B)
	glyph := glyphs[int(brightness)*len(glyphs)/256]
	return scaledColor(led) + glyph + "[-]"
}

func scaledColor(led color.RGB) string {
	maxColor := float64(max(led.R, led.G, led.B))
	if maxColor == 0 {
		return "[#000000]"
	}
	factor := 255 / maxColor
	red := math.Min(float64(led.R)*factor, 255)
	green := math.Min(float64(led.G)*factor, 255)
	blue := math.Min(float64(led.B)*factor, 255)

	const epsilon = 1e-9

	return fmt.Sprintf("[#%02x%02x%02x]", byte(math.Round(red+epsilon)), byte(math.Round(green+epsilon)), byte(math.Round(blue+epsilon)))
}
