package linux

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/resource"
)

// Backend serves all four capabilities from Linux device interfaces. Each
// peripheral type has its own registry and handle counter.
type Backend struct {
	gpio *Gpio
	i2c  *I2c
	spi  *Spi
	uart *Uart
}

var _ hal.Backend = (*Backend)(nil)

// New creates a backend from cfg. No device is opened until Init.
func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		gpio: NewGpio(cfg.GpioRoot),
		i2c:  NewI2c(cfg.I2cPath),
		spi:  NewSpi(cfg.SpiPath, cfg.SpiMode),
		uart: NewUart(cfg.UartPath, cfg.UartReadTimeout),
	}
	b.trace("gpio", b.gpio.pins)
	b.trace("i2c", b.i2c.buses)
	b.trace("spi", b.spi.devs)
	b.trace("uart", b.uart.ports)
	return b, nil
}

type registry interface {
	Subscribe(resource.Observer)
}

func (b *Backend) trace(periph string, r registry) {
	r.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		Logger().Debug("device "+e.Type.String(), zap.String("peripheral", periph), zap.Int32("handle", e.Handle))
	}))
}

func (b *Backend) Gpio() *Gpio { return b.gpio }
func (b *Backend) I2c() *I2c   { return b.i2c }
func (b *Backend) Spi() *Spi   { return b.spi }
func (b *Backend) Uart() *Uart { return b.uart }

// Engine returns an engine serving every capability from this backend.
func (b *Backend) Engine() *hal.Engine {
	return &hal.Engine{Gpio: b.gpio, I2c: b.i2c, Spi: b.spi, Uart: b.uart}
}

// Close releases every open device of every type.
func (b *Backend) Close() error {
	return multierr.Combine(
		b.gpio.Close(),
		b.i2c.Close(),
		b.spi.Close(),
		b.uart.Close(),
	)
}
