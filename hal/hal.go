package hal

import (
	"fmt"
)

// Handle identifies one open device instance. It is meaningful only to the
// backend instance that issued it, and only for one peripheral type.
type Handle = int32

// PinState is the logic level of a GPIO pin.
type PinState uint8

const (
	Low PinState = iota
	High
)

func (s PinState) String() string {
	if s == High {
		return "high"
	}
	return "low"
}

// MarshalText encodes the state as "high" or "low".
func (s PinState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "high" or "low".
func (s *PinState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "high", "High", "HIGH":
		*s = High
	case "low", "Low", "LOW":
		*s = Low
	default:
		return fmt.Errorf("hal: invalid pin state %q", b)
	}
	return nil
}

// Gpio is the GPIO capability contract.
type Gpio interface {
	// Init configures pin on port as an input or output.
	Init(port, pin uint32, output bool) (Handle, error)
	Deinit(h Handle) error
	Set(h Handle, state PinState) error
	Get(h Handle) (PinState, error)
}

// I2c is the I2C capability contract.
type I2c interface {
	Init(port, baud uint32, sda, scl int32) (Handle, error)
	Deinit(h Handle) error
	Write(h Handle, addr uint16, data []byte) error
	// Read fills buf from the device at addr.
	Read(h Handle, addr uint16, buf []byte) error
	// WriteRead writes data then reads into buf with a repeated start.
	WriteRead(h Handle, addr uint16, data, buf []byte) error
}

// Spi is the SPI capability contract. Each call is an independent bus
// transaction; no atomicity is implied across calls.
type Spi interface {
	Init(port, baud uint32, mosi, miso, sck, cs int32) (Handle, error)
	Deinit(h Handle) error
	Read(h Handle, buf []byte) error
	Write(h Handle, data []byte) error
	// Transfer clocks buf out and replaces its contents with the bytes clocked in.
	Transfer(h Handle, buf []byte) error
}

// Uart is the UART capability contract.
type Uart interface {
	Init(port, baud uint32, tx, rx int32) (Handle, error)
	Deinit(h Handle) error
	Write(h Handle, flags uint32, data []byte) error
	Read(h Handle, flags uint32, buf []byte) error
}
