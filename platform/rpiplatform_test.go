package platform

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	"lautenbacher.net/fcleds/color"
	c "lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/strip"
)

type recordingBus struct {
	sent   [][]byte
	closed bool
}

func (b *recordingBus) Tx(data []byte) error {
	b.sent = append(b.sent, append([]byte(nil), data...))
	return nil
}

func (b *recordingBus) Close() error {
	b.closed = true
	return nil
}

func (b *recordingBus) last() []byte {
	if len(b.sent) == 0 {
		return nil
	}
	return b.sent[len(b.sent)-1]
}

func TestWS2801Writer_Write(t *testing.T) {
	bus := &recordingBus{}
	writer := newWs2801Writer(bus, [3]float64{1.0, 1.0, 1.0})

	err := writer.write([]color.RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	})
	require.NoError(t, err)

	expected := []byte{255, 0, 0, 0, 255, 0, 0, 0, 255}
	assert.Equal(t, expected, bus.last())
}

func TestWS2801Writer_ColorCorrection(t *testing.T) {
	bus := &recordingBus{}
	writer := newWs2801Writer(bus, [3]float64{2.0, 0.5, 0})

	require.NoError(t, writer.write([]color.RGB{{R: 200, G: 200, B: 200}}))
	assert.Equal(t, []byte{255, 100, 0}, bus.last(), "red saturates at 255")
}

func TestAPA102Writer_Write(t *testing.T) {
	bus := &recordingBus{}
	writer := newApa102Writer(bus, [3]float64{1.0, 1.0, 1.0}, 31)

	err := writer.write([]color.RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
	})
	require.NoError(t, err)

	// Expected:
	// 4 bytes start frame (0x00, 0x00, 0x00, 0x00)
	// For each LED:
	//   1 byte brightness (0xE0 | 31 = 0xFF)
	//   3 bytes color (blue, green, red)
	// frame end: (leds / 16) + 1 bytes of 0xFF
	expected := []byte{
		0x00, 0x00, 0x00, 0x00, // Start frame
		0xFF, 0, 0, 255, // LED 1
		0xFF, 0, 255, 0, // LED 2
		0xFF, // End frame
	}
	assert.Equal(t, expected, bus.last())
}

func TestAPA102Writer_BrightnessAndFrameEnd(t *testing.T) {
	bus := &recordingBus{}
	writer := newApa102Writer(bus, [3]float64{1.0, 1.0, 1.0}, 5)

	require.NoError(t, writer.write(make([]color.RGB, 16)))
	sent := bus.last()
	require.Len(t, sent, apa102FrameSize(16))
	assert.Equal(t, byte(0xE5), sent[4])
	assert.Equal(t, []byte{0xFF, 0xFF}, sent[len(sent)-2:])
}

func TestWriters_HaltSendsDarkStrip(t *testing.T) {
	bus := &recordingBus{}
	writer := newWs2801Writer(bus, [3]float64{1.0, 1.0, 1.0})
	require.NoError(t, writer.write([]color.RGB{{R: 1, G: 2, B: 3}}))
	require.NoError(t, writer.halt())

	assert.Equal(t, make([]byte, 3*strip.MaxLed), bus.last())
}

func TestWS2812Writer_Write(t *testing.T) {
	var buf bytes.Buffer
	dev, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &nrzled.Opts{
		NumPixels: strip.MaxLed,
		Channels:  3,
		Freq:      ws2812Frequency,
	})
	require.NoError(t, err)

	writer := newWs2812Writer(dev, [3]float64{1.0, 1.0, 1.0})
	require.NoError(t, writer.write([]color.RGB{{R: 255}}))
	first := append([]byte(nil), buf.Bytes()...)
	assert.NotEmpty(t, first)

	buf.Reset()
	require.NoError(t, writer.write([]color.RGB{{R: 255}}))
	assert.Equal(t, first, buf.Bytes(), "the same colors give the same stream")

	buf.Reset()
	require.NoError(t, writer.write([]color.RGB{{B: 255}}))
	assert.NotEqual(t, first, buf.Bytes())
}

func TestRaspberryPiPlatform_ShrunkLayoutGoesDark(t *testing.T) {
	bus := &recordingBus{}
	p := NewRaspberryPiPlatform(&c.Config{})
	p.ledWriter = newWs2801Writer(bus, [3]float64{1, 1, 1})

	lit := func() *driver.Frame {
		f := &driver.Frame{Leds: make([]color.RGB, strip.MaxLed)}
		for i := range f.Leds {
			f.Leds[i] = color.RGB{R: 10, G: 20, B: 30}
		}
		return f
	}

	p.SetLayout([]strip.LedConfig{strip.At(0, 0, 0), strip.At(1, 0, 0), strip.At(2, 0, 0)})
	p.rpiDisplayFunc(lit())
	assert.Equal(t, []byte{10, 20, 30, 10, 20, 30, 10, 20, 30}, bus.last())

	p.SetLayout([]strip.LedConfig{strip.At(0, 0, 0)})
	p.rpiDisplayFunc(lit())
	assert.Equal(t, []byte{10, 20, 30, 0, 0, 0, 0, 0, 0}, bus.last(), "removed LEDs are switched off")

	p.SetLayout([]strip.LedConfig{strip.At(0, 0, 0), strip.At(1, 0, 0)})
	p.rpiDisplayFunc(lit())
	assert.Equal(t, []byte{10, 20, 30, 10, 20, 30, 0, 0, 0}, bus.last())
}
