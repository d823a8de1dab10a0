// Package wasmembedded lets WebAssembly guests drive GPIO, I2C, SPI and
// UART peripherals through host-provided capability imports.
//
// # Architecture Overview
//
//	wasmembedded/
//	├── hal/         Capability contracts and the Engine aggregate
//	├── resource/    Handle registry shared by backends
//	├── linux/       sysfs GPIO, i2c-dev, spidev and tty backend
//	├── mock/        Scripted backend that replays and verifies calls
//	├── abi/         Guest import signatures and error codes
//	├── engine/      wazero sessions: Created, Bound, Running, Completed or Trapped
//	├── linker/      Typed host functions with trapping memory access
//	├── cabi/        C-style driver tables behind opaque contexts
//	├── config/      TOML runtime configuration
//	├── errors/      Structured errors with phase and kind
//	└── cmd/wasme/   CLI: run, check and console
//
// # Quick Start
//
//	backend, _ := linux.New(linux.DefaultConfig())
//	defer backend.Close()
//
//	eng, _ := engine.New(ctx, nil)
//	s, _ := eng.NewSession(ctx, wasmBytes)
//	if err := s.Bind(ctx, linker.New(backend.Engine())); err != nil {
//		return err
//	}
//	if err := s.Run(ctx, ""); err != nil {
//		var trap *engine.Trap
//		errors.As(err, &trap)
//	}
//
// # Guest ABI
//
// Every capability import lives in a module named after its peripheral
// and returns an i32 status: 0 ok, 1 invalid_arg, 2 unexpected, 3 failed,
// 4 no_device. Byte lists are passed as (ptr, len); init and gpio.get
// write their value through a trailing out-pointer. See package abi.
//
// # Testing Without Hardware
//
// The mock backend takes an ordered script of expected calls and their
// results, written in TOML:
//
//	[[ops]]
//	kind = "i2c_read"
//	handle = 0
//	addr = 0x40
//	data_in = [0xAA, 0xBB]
//	res = 0
//
// A call that differs from the script aborts the session with a
// *mock.ExpectationMismatch instead of returning a status to the guest.
package wasmembedded
