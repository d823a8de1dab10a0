package cabi

import (
	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

// Default drivers serve a table from the hal provider registered under
// the call's context. A context that does not resolve to a provider of
// the right type yields -Unexpected.

const errUnresolved = -int32(abi.Unexpected)

func provider[T any](r *Runtime, c Context) (T, bool) {
	var zero T
	p, ok := r.Resolve(c)
	if !ok {
		return zero, false
	}
	v, ok := p.(T)
	return v, ok
}

// result encodes err as a driver return: 0 or a negated errno.
func result(err error) int32 {
	return -int32(abi.ErrnoOf(err))
}

func value(v int32, err error) int32 {
	if err != nil {
		return result(err)
	}
	return v
}

// GpioDriver returns a table dispatching to the hal.Gpio registered under
// the call's context.
func (r *Runtime) GpioDriver() GpioDriver {
	return GpioDriver{
		Init: func(c Context, port, pin uint32, output bool) int32 {
			g, ok := provider[hal.Gpio](r, c)
			if !ok {
				return errUnresolved
			}
			return value(g.Init(port, pin, output))
		},
		Deinit: func(c Context, h int32) int32 {
			g, ok := provider[hal.Gpio](r, c)
			if !ok {
				return errUnresolved
			}
			return result(g.Deinit(h))
		},
		Set: func(c Context, h int32, state uint32) int32 {
			g, ok := provider[hal.Gpio](r, c)
			if !ok {
				return errUnresolved
			}
			if state > uint32(hal.High) {
				return -int32(abi.InvalidArg)
			}
			return result(g.Set(h, hal.PinState(state)))
		},
		Get: func(c Context, h int32) int32 {
			g, ok := provider[hal.Gpio](r, c)
			if !ok {
				return errUnresolved
			}
			state, err := g.Get(h)
			return value(int32(state), err)
		},
	}
}

// I2cDriver returns a table dispatching to the registered hal.I2c.
func (r *Runtime) I2cDriver() I2cDriver {
	return I2cDriver{
		Init: func(c Context, port, baud uint32, sda, scl int32) int32 {
			d, ok := provider[hal.I2c](r, c)
			if !ok {
				return errUnresolved
			}
			return value(d.Init(port, baud, sda, scl))
		},
		Deinit: func(c Context, h int32) int32 {
			d, ok := provider[hal.I2c](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Deinit(h))
		},
		Write: func(c Context, h int32, addr uint16, data []byte) int32 {
			d, ok := provider[hal.I2c](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Write(h, addr, data))
		},
		Read: func(c Context, h int32, addr uint16, buf []byte) int32 {
			d, ok := provider[hal.I2c](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Read(h, addr, buf))
		},
		WriteRead: func(c Context, h int32, addr uint16, data, buf []byte) int32 {
			d, ok := provider[hal.I2c](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.WriteRead(h, addr, data, buf))
		},
	}
}

// SpiDriver returns a table dispatching to the registered hal.Spi.
func (r *Runtime) SpiDriver() SpiDriver {
	return SpiDriver{
		Init: func(c Context, port, baud uint32, mosi, miso, sck, cs int32) int32 {
			d, ok := provider[hal.Spi](r, c)
			if !ok {
				return errUnresolved
			}
			return value(d.Init(port, baud, mosi, miso, sck, cs))
		},
		Deinit: func(c Context, h int32) int32 {
			d, ok := provider[hal.Spi](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Deinit(h))
		},
		Read: func(c Context, h int32, buf []byte) int32 {
			d, ok := provider[hal.Spi](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Read(h, buf))
		},
		Write: func(c Context, h int32, data []byte) int32 {
			d, ok := provider[hal.Spi](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Write(h, data))
		},
		Transfer: func(c Context, h int32, buf []byte) int32 {
			d, ok := provider[hal.Spi](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Transfer(h, buf))
		},
	}
}

// UartDriver returns a table dispatching to the registered hal.Uart.
func (r *Runtime) UartDriver() UartDriver {
	return UartDriver{
		Init: func(c Context, port, baud uint32, tx, rx int32) int32 {
			d, ok := provider[hal.Uart](r, c)
			if !ok {
				return errUnresolved
			}
			return value(d.Init(port, baud, tx, rx))
		},
		Deinit: func(c Context, h int32) int32 {
			d, ok := provider[hal.Uart](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Deinit(h))
		},
		Write: func(c Context, h int32, flags uint32, data []byte) int32 {
			d, ok := provider[hal.Uart](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Write(h, flags, data))
		},
		Read: func(c Context, h int32, flags uint32, buf []byte) int32 {
			d, ok := provider[hal.Uart](r, c)
			if !ok {
				return errUnresolved
			}
			return result(d.Read(h, flags, buf))
		},
	}
}
