package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lautenbacher.net/fcleds/color"
	c "lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/layer"
	"lautenbacher.net/fcleds/logging"
	pl "lautenbacher.net/fcleds/platform"
	"lautenbacher.net/fcleds/preview"
	"lautenbacher.net/fcleds/scheduler"
	"lautenbacher.net/fcleds/strip"
	u "lautenbacher.net/fcleds/util"
)

// framesInFlight is the number of frames the display goroutine may lag
// behind before the strip reports busy.
const framesInFlight = 2

type App struct {
	ossignal   chan os.Signal
	stopsignal chan struct{}
	shutdownWg sync.WaitGroup

	cfile    string
	config   *c.Config
	platform pl.Platform
	preview  *preview.Server
	recorder *driver.Recorder
	reload   *u.AtomicEvent[*c.Config]

	state   *strip.State
	palette *color.Palette
	pool    *sync.Pool
	frames  chan *driver.Frame
	strip   *driver.Strip
	comp    *layer.Compositor
	sched   *scheduler.Scheduler
}

func NewApp(ossignal chan os.Signal) *App {
	return &App{
		ossignal:   ossignal,
		stopsignal: make(chan struct{}),
		reload:     u.NewAtomicEvent[*c.Config](),
	}
}

func main() {
	cfile := flag.String("config", c.CONFILE, "path to the config file")
	realp := flag.Bool("real", false, "drive the LED strip on the Raspberry Pi instead of the TUI simulation")
	flag.Parse()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	app := NewApp(ossignal)
	if err := app.Run(*cfile, *realp); err != nil {
		slog.Error("fcleds failed", "error", err)
		logging.Close()
		os.Exit(1)
	}
	logging.Close()
}

// Run starts everything and blocks until SIGINT or SIGTERM.
func (a *App) Run(cfile string, hardware bool) error {
	conf, err := c.ReadConfig(cfile)
	if err != nil {
		return err
	}
	a.cfile = cfile

	logOpts := conf.Logging.TUI.Options(true)
	if hardware {
		logOpts = conf.Logging.HW.Options(false)
	}
	if err := logging.Init(logOpts); err != nil {
		return err
	}

	var source flight.Source
	if hardware {
		steps, err := conf.Simulation.FlightSteps()
		if err != nil {
			return err
		}
		source = flight.NewScript(steps)
		a.platform = pl.NewRaspberryPiPlatform(conf)
	} else {
		live := flight.NewLive()
		source = live
		a.platform = pl.NewTUIPlatform(conf, a.ossignal, live)
	}

	if err := a.initialise(conf, source); err != nil {
		return err
	}
	if conf.Preview.Enabled {
		a.preview = preview.NewServer(conf.Preview, cfile, a.recorder)
		a.platform.AddSink(a.recorder)
		a.platform.AddSink(a.preview.Hub())
	}

	slog.Info("Starting platform", "hardware", hardware)
	if err := a.platform.Start(a.frames, a.pool); err != nil {
		return fmt.Errorf("failed to start platform: %w", err)
	}
	<-a.platform.Ready()
	a.platform.SetLayout(a.state.Active())

	if a.preview != nil {
		if err := a.preview.Start(); err != nil {
			a.platform.Stop()
			return err
		}
	}

	ctx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if err := c.Watch(ctx, cfile, a.reload.Send); err != nil {
		slog.Warn("Config file is not watched, use SIGHUP to reload", "error", err)
	}

	a.startControlLoop()
	a.waitForSignal()
	a.shutdown(!hardware)
	return nil
}

// initialise builds the LED pipeline from conf.
func (a *App) initialise(conf *c.Config, source flight.Source) error {
	state, err := conf.Strip.Layout()
	if err != nil {
		return err
	}
	palette, err := conf.Strip.Palette()
	if err != nil {
		return err
	}

	a.config = conf
	a.state = state
	a.palette = palette
	a.recorder = driver.NewRecorder(conf.Preview.History)
	a.pool = driver.NewFramePool()
	a.frames = make(chan *driver.Frame, framesInFlight)
	a.strip = driver.NewStrip(a.frames, a.pool)
	a.comp = layer.NewCompositor(a.state, a.palette, a.strip)
	a.comp.Animation.Enabled = conf.Strip.Animation
	a.sched = scheduler.New(a.comp, a.strip, scheduler.NewSystemClock(), source, scheduler.Options{
		AnimationInterval: conf.Loop.AnimationInterval,
		IndicatorInterval: conf.Loop.IndicatorInterval,
		WarningInterval:   conf.Loop.WarningInterval,
	})
	slog.Info("LED pipeline initialised", "leds", a.state.Count(), "width", a.state.Geometry().Width, "height", a.state.Geometry().Height)
	return nil
}

func (a *App) startControlLoop() {
	a.sched.Enable()
	a.shutdownWg.Add(1)
	go a.controlLoop()
}

// controlLoop is the only goroutine touching the strip state, the palette
// and the compositor after startup.
func (a *App) controlLoop() {
	defer a.shutdownWg.Done()

	interval := a.config.Loop.Interval
	if interval <= 0 {
		interval = 2 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var commands <-chan *preview.Command
	if a.preview != nil {
		commands = a.preview.Commands()
	}

	for {
		select {
		case <-a.stopsignal:
			slog.Info("Ending control loop", "droppedFrames", a.strip.Dropped())
			return
		case <-ticker.C:
			a.sched.Update()
		case <-a.reload.Channel():
			a.applyConfig(a.reload.Value())
		case cmd := <-commands:
			reply := cmd.Execute(a.state, a.palette)
			slog.Info("Descriptor request", "command", cmd.Kind, "index", cmd.Index, "result", reply.Text, "error", reply.Err)
			if cmd.Changed() {
				a.platform.SetLayout(a.state.Active())
			}
		}
	}
}

// applyConfig takes over the runtime part of conf. Loop, hardware and
// logging settings need a restart.
func (a *App) applyConfig(conf *c.Config) {
	if conf == nil {
		return
	}
	var errs []error
	if err := conf.Strip.ApplyLayout(a.state); err != nil {
		errs = append(errs, err)
	}
	if palette, err := conf.Strip.Palette(); err != nil {
		errs = append(errs, err)
	} else {
		*a.palette = *palette
	}
	if err := errors.Join(errs...); err != nil {
		slog.Error("Config only partly applied", "error", err)
	}
	a.comp.Animation.Enabled = conf.Strip.Animation
	a.platform.SetLayout(a.state.Active())
	slog.Info("Applied configuration", "leds", a.state.Count(), "animation", conf.Strip.Animation)
}

func (a *App) waitForSignal() {
	for sig := range a.ossignal {
		switch sig {
		case syscall.SIGHUP:
			slog.Info("Reloading config", "file", a.cfile)
			conf, err := c.ReadConfig(a.cfile)
			if err != nil {
				slog.Error("Reload failed", "error", err)
				continue
			}
			a.reload.Send(conf)
		default:
			slog.Info("Received signal, shutting down", "signal", sig)
			return
		}
	}
}

func (a *App) shutdown(tui bool) {
	close(a.stopsignal)
	a.shutdownWg.Wait()
	a.sched.Disable()

	if a.preview != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.preview.Stop(ctx); err != nil {
			slog.Error("Error stopping preview server", "error", err)
		}
		cancel()
	}
	if tui {
		// the log pane goes away with the TUI
		logging.BufferOutput()
	}
	a.platform.Stop()
	slog.Info("Shutdown complete")
}
