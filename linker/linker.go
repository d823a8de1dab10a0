package linker

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/hal"
)

// Linker registers typed host functions for every capability hw provides.
type Linker struct {
	hw *hal.Engine
}

var _ engine.Binder = (*Linker)(nil)

// New creates a linker serving capabilities from hw.
func New(hw *hal.Engine) *Linker {
	return &Linker{hw: hw}
}

// Engine returns the capabilities the linker binds.
func (l *Linker) Engine() *hal.Engine { return l.hw }

// Bind checks the guest's imports against hw, then instantiates one host
// module per provided peripheral in the session's runtime. Nothing is
// registered when the check fails.
func (l *Linker) Bind(ctx context.Context, s *engine.Session) error {
	if err := s.CheckImports(l.hw); err != nil {
		Logger().Warn("bind rejected", zap.Error(err))
		return err
	}

	r := s.Runtime()
	for _, p := range l.hw.Provided() {
		b := r.NewHostModuleBuilder(string(p))
		switch p {
		case hal.PeripheralGpio:
			gpioFuncs(b, l.hw.Gpio)
		case hal.PeripheralI2c:
			i2cFuncs(b, l.hw.I2c)
		case hal.PeripheralSpi:
			spiFuncs(b, l.hw.Spi)
		case hal.PeripheralUart:
			uartFuncs(b, l.hw.Uart)
		}
		if _, err := b.Instantiate(ctx); err != nil {
			return err
		}
		Logger().Debug("host module bound", zap.String("module", string(p)))
	}
	return nil
}

func export(b wazero.HostModuleBuilder, name string, fn any) {
	b.NewFunctionBuilder().WithFunc(fn).Export(name)
}

// status converts a capability result into the guest return value.
func status(err error) uint32 {
	if err == nil {
		return uint32(abi.Ok)
	}
	code := abi.ErrnoOf(err)
	Logger().Debug("capability error", zap.Stringer("errno", code), zap.Error(err))
	return uint32(code)
}

func handle(v uint32) hal.Handle { return hal.Handle(int32(v)) }

// address narrows an i32 argument to the u16 bus address the ABI declares.
func address(v uint32) (uint16, bool) {
	if v > 0xFFFF {
		return 0, false
	}
	return uint16(v), true
}
