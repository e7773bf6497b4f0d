package platform

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/strip"
)

// ws2812Frequency is the NRZ bit rate of WS2812 LEDs.
const ws2812Frequency = 800 * physic.KiloHertz

type RaspberryPiPlatform struct {
	*AbstractPlatform
	ledWriter ledWriter
	device    io.Closer
	readyChan chan bool
	// written is the longest LED run sent so far.
	written int
}

func NewRaspberryPiPlatform(conf *config.Config) *RaspberryPiPlatform {
	inst := &RaspberryPiPlatform{
		readyChan: make(chan bool),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.rpiDisplayFunc)
	return inst
}

func (s *RaspberryPiPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *RaspberryPiPlatform) Start(frames chan *driver.Frame, pool *sync.Pool) error {
	hw := s.config.Hardware
	slog.Info("Initialise SPI...", "backend", hw.SPIBackend, "ledType", hw.LEDType)

	correction := [3]float64{1, 1, 1}
	copy(correction[:], hw.ColorCorrection)

	switch strings.ToUpper(hw.LEDType) {
	case "WS2812":
		port, err := openPeriphPort(hw.SPIDevice)
		if err != nil {
			return err
		}
		dev, err := nrzled.NewSPI(port, &nrzled.Opts{
			NumPixels: strip.MaxLed,
			Channels:  3,
			Freq:      ws2812Frequency,
		})
		if err != nil {
			port.Close()
			return fmt.Errorf("failed to create ws2812 driver: %w", err)
		}
		s.device = port
		s.ledWriter = newWs2812Writer(dev, correction)
	case "APA102", "WS2801":
		bus, err := openBus(hw)
		if err != nil {
			return err
		}
		s.device = bus
		if strings.ToUpper(hw.LEDType) == "APA102" {
			s.ledWriter = newApa102Writer(bus, correction, hw.APA102Brightness)
		} else {
			s.ledWriter = newWs2801Writer(bus, correction)
		}
	default:
		return fmt.Errorf("unknown LED type: %s", hw.LEDType)
	}

	s.startDisplayDriver(frames, pool)

	close(s.readyChan) // For RPi, we are ready immediately.
	return nil
}

func (s *RaspberryPiPlatform) Stop() {
	s.stopDisplayDriver()

	// Now, safely close hardware
	if s.ledWriter != nil {
		if err := s.ledWriter.halt(); err != nil {
			slog.Error("Error switching LEDs off", "error", err)
		}
	}
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			slog.Error("Error closing spi device", "error", err)
		}
		s.device = nil
	}
}

func (s *RaspberryPiPlatform) rpiDisplayFunc(frame *driver.Frame) {
	leds := s.visibleLeds(frame)
	// LEDs dropped from the layout keep getting dark data
	if n := len(leds); n < s.written {
		leds = frame.Leds[:min(s.written, len(frame.Leds))]
		clear(leds[n:])
	}
	s.written = len(leds)
	if err := s.ledWriter.write(leds); err != nil {
		slog.Error("Error writing to LED driver", "error", err)
	}
}

// spiBus is a write-mostly SPI connection.
type spiBus interface {
	Tx(data []byte) error
	io.Closer
}

func openBus(hw config.HardwareConfig) (spiBus, error) {
	if hw.SPIBackend == "periph" {
		return openPeriphBus(hw.SPIDevice, hw.SPIFrequency)
	}
	return openRpioBus(hw.SPIFrequency)
}

type rpioBus struct{}

func openRpioBus(frequency int) (*rpioBus, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open gpio: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to open spi: %w", err)
	}
	rpio.SpiSpeed(frequency)
	return &rpioBus{}, nil
}

// Tx overwrites data with the bytes read back.
func (b *rpioBus) Tx(data []byte) error {
	rpio.SpiExchange(data)
	return nil
}

func (b *rpioBus) Close() error {
	rpio.SpiEnd(rpio.Spi0)
	return rpio.Close()
}

type periphBus struct {
	port spi.PortCloser
	conn spi.Conn
	read []byte
}

func openPeriphPort(device string) (spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph: %w", err)
	}
	// An empty name opens the first SPI port.
	port, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi: %w", err)
	}
	return port, nil
}

func openPeriphBus(device string, frequency int) (*periphBus, error) {
	port, err := openPeriphPort(device)
	if err != nil {
		return nil, err
	}
	conn, err := port.Connect(physic.Frequency(frequency)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to spi device: %w", err)
	}
	return &periphBus{port: port, conn: conn}, nil
}

func (b *periphBus) Tx(data []byte) error {
	if cap(b.read) < len(data) {
		b.read = make([]byte, len(data))
	}
	if err := b.conn.Tx(data, b.read[:len(data)]); err != nil {
		return fmt.Errorf("spi transaction failed: %w", err)
	}
	return nil
}

func (b *periphBus) Close() error {
	return b.port.Close()
}

// ledWriter interface and implementations
type ledWriter interface {
	write(leds []color.RGB) error
	// halt switches all LEDs off.
	halt() error
}

func corrected(value byte, factor float64) byte {
	return byte(math.Min(float64(value)*factor, 255))
}

type ws2801Writer struct {
	bus        spiBus
	correction [3]float64
	buffer     []byte
}

func newWs2801Writer(bus spiBus, correction [3]float64) *ws2801Writer {
	// Pre-allocate buffer to the maximum possible size.
	return &ws2801Writer{
		bus:        bus,
		correction: correction,
		buffer:     make([]byte, 3*strip.MaxLed),
	}
}

func (d *ws2801Writer) write(leds []color.RGB) error {
	display := d.buffer[:3*len(leds)]
	for idx, led := range leds {
		display[3*idx] = corrected(led.R, d.correction[0])
		display[(3*idx)+1] = corrected(led.G, d.correction[1])
		display[(3*idx)+2] = corrected(led.B, d.correction[2])
	}
	return d.bus.Tx(display)
}

func (d *ws2801Writer) halt() error {
	return d.write(make([]color.RGB, strip.MaxLed))
}

type apa102Writer struct {
	bus        spiBus
	correction [3]float64
	brightness byte
	buffer     []byte
}

func apa102FrameSize(leds int) int {
	return 4 + (4 * leds) + (leds / 16) + 1
}

func newApa102Writer(bus spiBus, correction [3]float64, brightness int) *apa102Writer {
	return &apa102Writer{
		bus:        bus,
		correction: correction,
		brightness: byte(brightness) | 0xE0,
		buffer:     make([]byte, apa102FrameSize(strip.MaxLed)),
	}
}

func (d *apa102Writer) write(leds []color.RGB) error {
	requiredSize := apa102FrameSize(len(leds))
	display := d.buffer[:requiredSize]

	// Frame start: 4 zero bytes
	copy(display[0:4], []byte{0x00, 0x00, 0x00, 0x00})

	offset := 4
	for _, led := range leds {
		// protocol: brightness byte, blue, green, red
		display[offset] = d.brightness
		display[offset+1] = corrected(led.B, d.correction[2])
		display[offset+2] = corrected(led.G, d.correction[1])
		display[offset+3] = corrected(led.R, d.correction[0])
		offset += 4
	}

	// Frame end: fill the rest of the slice with 0xFF
	for i := offset; i < requiredSize; i++ {
		display[i] = 0xFF
	}
	return d.bus.Tx(display)
}

func (d *apa102Writer) halt() error {
	return d.write(make([]color.RGB, strip.MaxLed))
}

// ws2812Writer always sends the full strip; LEDs after the configured
// ones stay dark.
type ws2812Writer struct {
	dev        *nrzled.Dev
	correction [3]float64
	buffer     []byte
}

func newWs2812Writer(dev *nrzled.Dev, correction [3]float64) *ws2812Writer {
	return &ws2812Writer{
		dev:        dev,
		correction: correction,
		buffer:     make([]byte, 3*strip.MaxLed),
	}
}

func (d *ws2812Writer) write(leds []color.RGB) error {
	clear(d.buffer)
	for idx, led := range leds {
		d.buffer[3*idx] = corrected(led.R, d.correction[0])
		d.buffer[(3*idx)+1] = corrected(led.G, d.correction[1])
		d.buffer[(3*idx)+2] = corrected(led.B, d.correction[2])
	}
	if _, err := d.dev.Write(d.buffer); err != nil {
		return fmt.Errorf("ws2812 write failed: %w", err)
	}
	return nil
}

func (d *ws2812Writer) halt() error {
	return d.dev.Halt()
}
