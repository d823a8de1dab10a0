package linker

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/hal"
)

var (
	errnoInvalidArg = uint32(abi.InvalidArg)
	errnoOk         = uint32(abi.Ok)
)

func gpioFuncs(b wazero.HostModuleBuilder, g hal.Gpio) {
	export(b, abi.FuncInit, func(_ context.Context, m api.Module, port, pin, output, ret uint32) uint32 {
		engine.CheckRange(m, ret, 4)
		h, err := g.Init(port, pin, output != 0)
		if err != nil {
			return status(err)
		}
		engine.WriteU32(m, ret, uint32(h))
		return errnoOk
	})
	export(b, abi.FuncDeinit, func(_ context.Context, h uint32) uint32 {
		return status(g.Deinit(handle(h)))
	})
	export(b, abi.FuncSet, func(_ context.Context, h, state uint32) uint32 {
		if state > uint32(hal.High) {
			return errnoInvalidArg
		}
		return status(g.Set(handle(h), hal.PinState(state)))
	})
	export(b, abi.FuncGet, func(_ context.Context, m api.Module, h, ret uint32) uint32 {
		engine.CheckRange(m, ret, 4)
		state, err := g.Get(handle(h))
		if err != nil {
			return status(err)
		}
		engine.WriteU32(m, ret, uint32(state))
		return errnoOk
	})
}

func i2cFuncs(b wazero.HostModuleBuilder, d hal.I2c) {
	export(b, abi.FuncInit, func(_ context.Context, m api.Module, port, baud, sda, scl, ret uint32) uint32 {
		engine.CheckRange(m, ret, 4)
		h, err := d.Init(port, baud, int32(sda), int32(scl))
		if err != nil {
			return status(err)
		}
		engine.WriteU32(m, ret, uint32(h))
		return errnoOk
	})
	export(b, abi.FuncDeinit, func(_ context.Context, h uint32) uint32 {
		return status(d.Deinit(handle(h)))
	})
	export(b, abi.FuncWrite, func(_ context.Context, m api.Module, h, addr, ptr, n uint32) uint32 {
		data := engine.Bytes(m, ptr, n)
		a, valid := address(addr)
		if !valid {
			return errnoInvalidArg
		}
		return status(d.Write(handle(h), a, data))
	})
	export(b, abi.FuncRead, func(_ context.Context, m api.Module, h, addr, ptr, n uint32) uint32 {
		buf := engine.Bytes(m, ptr, n)
		a, valid := address(addr)
		if !valid {
			return errnoInvalidArg
		}
		return status(d.Read(handle(h), a, buf))
	})
	export(b, abi.FuncWriteRead, func(_ context.Context, m api.Module, h, addr, wptr, wn, rptr, rn uint32) uint32 {
		data := engine.Bytes(m, wptr, wn)
		buf := engine.Bytes(m, rptr, rn)
		a, valid := address(addr)
		if !valid {
			return errnoInvalidArg
		}
		return status(d.WriteRead(handle(h), a, data, buf))
	})
}

func spiFuncs(b wazero.HostModuleBuilder, d hal.Spi) {
	export(b, abi.FuncInit, func(_ context.Context, m api.Module, port, baud, mosi, miso, sck, cs, ret uint32) uint32 {
		engine.CheckRange(m, ret, 4)
		h, err := d.Init(port, baud, int32(mosi), int32(miso), int32(sck), int32(cs))
		if err != nil {
			return status(err)
		}
		engine.WriteU32(m, ret, uint32(h))
		return errnoOk
	})
	export(b, abi.FuncDeinit, func(_ context.Context, h uint32) uint32 {
		return status(d.Deinit(handle(h)))
	})
	export(b, abi.FuncRead, func(_ context.Context, m api.Module, h, ptr, n uint32) uint32 {
		return status(d.Read(handle(h), engine.Bytes(m, ptr, n)))
	})
	export(b, abi.FuncWrite, func(_ context.Context, m api.Module, h, ptr, n uint32) uint32 {
		return status(d.Write(handle(h), engine.Bytes(m, ptr, n)))
	})
	export(b, abi.FuncTransfer, func(_ context.Context, m api.Module, h, ptr, n uint32) uint32 {
		return status(d.Transfer(handle(h), engine.Bytes(m, ptr, n)))
	})
}

func uartFuncs(b wazero.HostModuleBuilder, d hal.Uart) {
	export(b, abi.FuncInit, func(_ context.Context, m api.Module, port, baud, tx, rx, ret uint32) uint32 {
		engine.CheckRange(m, ret, 4)
		h, err := d.Init(port, baud, int32(tx), int32(rx))
		if err != nil {
			return status(err)
		}
		engine.WriteU32(m, ret, uint32(h))
		return errnoOk
	})
	export(b, abi.FuncDeinit, func(_ context.Context, h uint32) uint32 {
		return status(d.Deinit(handle(h)))
	})
	export(b, abi.FuncWrite, func(_ context.Context, m api.Module, h, flags, ptr, n uint32) uint32 {
		return status(d.Write(handle(h), flags, engine.Bytes(m, ptr, n)))
	})
	export(b, abi.FuncRead, func(_ context.Context, m api.Module, h, flags, ptr, n uint32) uint32 {
		return status(d.Read(handle(h), flags, engine.Bytes(m, ptr, n)))
	})
}
