package hal

import (
	"github.com/wippyai/wasm-embedded/errors"
)

// Peripheral names one capability type.
type Peripheral string

const (
	PeripheralGpio Peripheral = "gpio"
	PeripheralI2c  Peripheral = "i2c"
	PeripheralSpi  Peripheral = "spi"
	PeripheralUart Peripheral = "uart"
)

// Peripherals lists every peripheral type in binding order.
var Peripherals = []Peripheral{PeripheralGpio, PeripheralSpi, PeripheralI2c, PeripheralUart}

// Engine routes a guest session to one provider per peripheral type.
// A nil field means the deployment does not provide that capability.
// Engine holds no peripheral state and does not own its providers.
type Engine struct {
	Gpio Gpio
	I2c  I2c
	Spi  Spi
	Uart Uart
}

// Provides reports whether the engine carries a provider for p.
func (e *Engine) Provides(p Peripheral) bool {
	if e == nil {
		return false
	}
	switch p {
	case PeripheralGpio:
		return e.Gpio != nil
	case PeripheralI2c:
		return e.I2c != nil
	case PeripheralSpi:
		return e.Spi != nil
	case PeripheralUart:
		return e.Uart != nil
	}
	return false
}

// Require returns a NotProvided error for the first peripheral in ps
// the engine cannot serve.
func (e *Engine) Require(ps ...Peripheral) error {
	for _, p := range ps {
		if !e.Provides(p) {
			return errors.NotProvided(string(p))
		}
	}
	return nil
}

// Provided lists the peripherals the engine serves, in binding order.
func (e *Engine) Provided() []Peripheral {
	var out []Peripheral
	for _, p := range Peripherals {
		if e.Provides(p) {
			out = append(out, p)
		}
	}
	return out
}

// Backend is a source of capability providers with a teardown step.
// For hardware backends Close releases devices; for the mock backend it
// verifies the recorded call sequence.
type Backend interface {
	Engine() *Engine
	Close() error
}
