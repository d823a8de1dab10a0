package cabi

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
)

type binding[D any] struct {
	drv   D
	ctx   Context
	bound bool
}

// Runtime owns the driver side table and the driver bound for each
// peripheral type. It binds sessions as an engine.Binder.
type Runtime struct {
	slots  map[Context]any
	gpio   binding[GpioDriver]
	i2c    binding[I2cDriver]
	spi    binding[SpiDriver]
	uart   binding[UartDriver]
	mu     sync.Mutex
	next   Context
	closed bool
}

var _ engine.Binder = (*Runtime)(nil)

// NewRuntime creates a runtime with an empty side table.
func NewRuntime() *Runtime {
	return &Runtime{slots: make(map[Context]any), next: 1}
}

// Register stores provider in the side table and returns its context.
// Contexts count up from 1 and are never reused.
func (r *Runtime) Register(provider any) Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.next
	r.next++
	r.slots[c] = provider
	Logger().Debug("context registered", zap.Uint32("context", uint32(c)))
	return c
}

// Resolve returns the provider stored under c.
func (r *Runtime) Resolve(c Context) (any, bool) {
	if c == Null {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.slots[c]
	return p, ok
}

func bindOnce[D interface{ complete() bool }](r *Runtime, b *binding[D], periph hal.Peripheral, drv D, c Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New(errors.PhaseBind, errors.KindInvalidState).
			Peripheral(string(periph)).
			Detail("runtime is closed").
			Build()
	}
	if b.bound {
		return errors.New(errors.PhaseBind, errors.KindAlreadyBound).
			Peripheral(string(periph)).
			Detail("driver already bound").
			Build()
	}
	if !drv.complete() {
		return errors.New(errors.PhaseBind, errors.KindInvalidArg).
			Peripheral(string(periph)).
			Detail("driver table has nil entries").
			Build()
	}
	b.drv, b.ctx, b.bound = drv, c, true
	Logger().Debug("driver bound", zap.String("peripheral", string(periph)), zap.Uint32("context", uint32(c)))
	return nil
}

// BindGpio installs the GPIO driver. It may be called once.
func (r *Runtime) BindGpio(drv GpioDriver, c Context) error {
	return bindOnce(r, &r.gpio, hal.PeripheralGpio, drv, c)
}

// BindI2c installs the I2C driver. It may be called once.
func (r *Runtime) BindI2c(drv I2cDriver, c Context) error {
	return bindOnce(r, &r.i2c, hal.PeripheralI2c, drv, c)
}

// BindSpi installs the SPI driver. It may be called once.
func (r *Runtime) BindSpi(drv SpiDriver, c Context) error {
	return bindOnce(r, &r.spi, hal.PeripheralSpi, drv, c)
}

// BindUart installs the UART driver. It may be called once.
func (r *Runtime) BindUart(drv UartDriver, c Context) error {
	return bindOnce(r, &r.uart, hal.PeripheralUart, drv, c)
}

// BindEngine registers every capability hw provides and binds the
// matching default driver for it.
func (r *Runtime) BindEngine(hw *hal.Engine) error {
	if hw.Gpio != nil {
		if err := r.BindGpio(r.GpioDriver(), r.Register(hw.Gpio)); err != nil {
			return err
		}
	}
	if hw.I2c != nil {
		if err := r.BindI2c(r.I2cDriver(), r.Register(hw.I2c)); err != nil {
			return err
		}
	}
	if hw.Spi != nil {
		if err := r.BindSpi(r.SpiDriver(), r.Register(hw.Spi)); err != nil {
			return err
		}
	}
	if hw.Uart != nil {
		if err := r.BindUart(r.UartDriver(), r.Register(hw.Uart)); err != nil {
			return err
		}
	}
	return nil
}

// Bound reports whether a driver is installed for p.
func (r *Runtime) Bound(p hal.Peripheral) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch p {
	case hal.PeripheralGpio:
		return r.gpio.bound
	case hal.PeripheralI2c:
		return r.i2c.bound
	case hal.PeripheralSpi:
		return r.spi.bound
	case hal.PeripheralUart:
		return r.uart.bound
	}
	return false
}

// Bind validates the guest's imports, requires a driver for every
// peripheral the guest imports, and registers the trampolines.
func (r *Runtime) Bind(ctx context.Context, s *engine.Session) error {
	if err := s.ValidateImports(); err != nil {
		return err
	}
	for _, p := range s.Required() {
		if !r.Bound(p) {
			return errors.NotProvided(string(p))
		}
	}

	for _, p := range hal.Peripherals {
		if !r.Bound(p) {
			continue
		}
		b := s.Runtime().NewHostModuleBuilder(string(p))
		for _, f := range abi.Module(string(p)) {
			b.NewFunctionBuilder().
				WithGoModuleFunction(r.trampoline(f), f.ParamTypes(), f.ResultTypes()).
				WithName(f.Name).
				Export(f.Name)
		}
		if _, err := b.Instantiate(ctx); err != nil {
			return err
		}
		Logger().Debug("driver table bound", zap.String("module", string(p)))
	}
	return nil
}

// Close unbinds every driver: side-table slots are released and bound
// contexts are nulled. The drivers stay installed, so a guest still
// running gets -Unexpected from every call.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.gpio.ctx = Null
	r.i2c.ctx = Null
	r.spi.ctx = Null
	r.uart.ctx = Null
	clear(r.slots)
	Logger().Debug("runtime closed")
	return nil
}

func (r *Runtime) gpioBinding() (GpioDriver, Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gpio.drv, r.gpio.ctx
}

func (r *Runtime) i2cBinding() (I2cDriver, Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.i2c.drv, r.i2c.ctx
}

func (r *Runtime) spiBinding() (SpiDriver, Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spi.drv, r.spi.ctx
}

func (r *Runtime) uartBinding() (UartDriver, Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uart.drv, r.uart.ctx
}
