package cabi

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/engine"
)

var (
	errnoUnexpected = api.EncodeU32(uint32(abi.Unexpected))
	errnoInvalidArg = api.EncodeU32(uint32(abi.InvalidArg))
)

// status converts a driver return value into the guest errno.
func status(v int32) uint64 {
	if v < 0 {
		return api.EncodeU32(uint32(-v))
	}
	return 0
}

// call runs fn unless c is null and stores its status as the result.
func call(stack []uint64, c Context, fn func() int32) {
	if c == Null {
		stack[0] = errnoUnexpected
		return
	}
	stack[0] = status(fn())
}

// callValue is call for operations that return a value through ret.
func callValue(m api.Module, stack []uint64, c Context, ret uint32, fn func() int32) {
	if c == Null {
		stack[0] = errnoUnexpected
		return
	}
	v := fn()
	if v < 0 {
		stack[0] = status(v)
		return
	}
	engine.WriteU32(m, ret, uint32(v))
	stack[0] = 0
}

func u32(stack []uint64, i int) uint32 { return api.DecodeU32(stack[i]) }
func s32(stack []uint64, i int) int32  { return api.DecodeI32(stack[i]) }

// bytesAt resolves the (ptr, len) pair starting at stack[i].
func bytesAt(m api.Module, stack []uint64, i int) []byte {
	return engine.Bytes(m, u32(stack, i), u32(stack, i+1))
}

// trampoline returns the raw host function for f. Arguments are read from
// the value stack in lowered order and the errno is written to stack[0].
func (r *Runtime) trampoline(f abi.Func) api.GoModuleFunc {
	switch f.Module {
	case abi.ModuleGpio:
		return r.gpioTrampoline(f.Name)
	case abi.ModuleI2c:
		return r.i2cTrampoline(f.Name)
	case abi.ModuleSpi:
		return r.spiTrampoline(f.Name)
	case abi.ModuleUart:
		return r.uartTrampoline(f.Name)
	}
	return unknown(f)
}

func unknown(f abi.Func) api.GoModuleFunc {
	return func(context.Context, api.Module, []uint64) {
		engine.Raise(abi.Unexpected, "no trampoline for %s", f)
	}
}

func (r *Runtime) gpioTrampoline(name string) api.GoModuleFunc {
	switch name {
	case abi.FuncInit:
		return func(_ context.Context, m api.Module, stack []uint64) {
			ret := u32(stack, 3)
			engine.CheckRange(m, ret, 4)
			drv, c := r.gpioBinding()
			callValue(m, stack, c, ret, func() int32 {
				return drv.Init(c, u32(stack, 0), u32(stack, 1), u32(stack, 2) != 0)
			})
		}
	case abi.FuncDeinit:
		return func(_ context.Context, _ api.Module, stack []uint64) {
			drv, c := r.gpioBinding()
			call(stack, c, func() int32 { return drv.Deinit(c, s32(stack, 0)) })
		}
	case abi.FuncSet:
		return func(_ context.Context, _ api.Module, stack []uint64) {
			drv, c := r.gpioBinding()
			call(stack, c, func() int32 { return drv.Set(c, s32(stack, 0), u32(stack, 1)) })
		}
	case abi.FuncGet:
		return func(_ context.Context, m api.Module, stack []uint64) {
			ret := u32(stack, 1)
			engine.CheckRange(m, ret, 4)
			drv, c := r.gpioBinding()
			callValue(m, stack, c, ret, func() int32 { return drv.Get(c, s32(stack, 0)) })
		}
	}
	return unknown(abi.Func{Module: abi.ModuleGpio, Name: name})
}

func (r *Runtime) i2cTrampoline(name string) api.GoModuleFunc {
	switch name {
	case abi.FuncInit:
		return func(_ context.Context, m api.Module, stack []uint64) {
			ret := u32(stack, 4)
			engine.CheckRange(m, ret, 4)
			drv, c := r.i2cBinding()
			callValue(m, stack, c, ret, func() int32 {
				return drv.Init(c, u32(stack, 0), u32(stack, 1), s32(stack, 2), s32(stack, 3))
			})
		}
	case abi.FuncDeinit:
		return func(_ context.Context, _ api.Module, stack []uint64) {
			drv, c := r.i2cBinding()
			call(stack, c, func() int32 { return drv.Deinit(c, s32(stack, 0)) })
		}
	case abi.FuncWrite:
		return func(_ context.Context, m api.Module, stack []uint64) {
			data := bytesAt(m, stack, 2)
			if u32(stack, 1) > 0xFFFF {
				stack[0] = errnoInvalidArg
				return
			}
			drv, c := r.i2cBinding()
			call(stack, c, func() int32 { return drv.Write(c, s32(stack, 0), uint16(u32(stack, 1)), data) })
		}
	case abi.FuncRead:
		return func(_ context.Context, m api.Module, stack []uint64) {
			buf := bytesAt(m, stack, 2)
			if u32(stack, 1) > 0xFFFF {
				stack[0] = errnoInvalidArg
				return
			}
			drv, c := r.i2cBinding()
			call(stack, c, func() int32 { return drv.Read(c, s32(stack, 0), uint16(u32(stack, 1)), buf) })
		}
	case abi.FuncWriteRead:
		return func(_ context.Context, m api.Module, stack []uint64) {
			data := bytesAt(m, stack, 2)
			buf := bytesAt(m, stack, 4)
			if u32(stack, 1) > 0xFFFF {
				stack[0] = errnoInvalidArg
				return
			}
			drv, c := r.i2cBinding()
			call(stack, c, func() int32 {
				return drv.WriteRead(c, s32(stack, 0), uint16(u32(stack, 1)), data, buf)
			})
		}
	}
	return unknown(abi.Func{Module: abi.ModuleI2c, Name: name})
}

func (r *Runtime) spiTrampoline(name string) api.GoModuleFunc {
	switch name {
	case abi.FuncInit:
		return func(_ context.Context, m api.Module, stack []uint64) {
			ret := u32(stack, 6)
			engine.CheckRange(m, ret, 4)
			drv, c := r.spiBinding()
			callValue(m, stack, c, ret, func() int32 {
				return drv.Init(c, u32(stack, 0), u32(stack, 1), s32(stack, 2), s32(stack, 3), s32(stack, 4), s32(stack, 5))
			})
		}
	case abi.FuncDeinit:
		return func(_ context.Context, _ api.Module, stack []uint64) {
			drv, c := r.spiBinding()
			call(stack, c, func() int32 { return drv.Deinit(c, s32(stack, 0)) })
		}
	case abi.FuncRead:
		return func(_ context.Context, m api.Module, stack []uint64) {
			buf := bytesAt(m, stack, 1)
			drv, c := r.spiBinding()
			call(stack, c, func() int32 { return drv.Read(c, s32(stack, 0), buf) })
		}
	case abi.FuncWrite:
		return func(_ context.Context, m api.Module, stack []uint64) {
			data := bytesAt(m, stack, 1)
			drv, c := r.spiBinding()
			call(stack, c, func() int32 { return drv.Write(c, s32(stack, 0), data) })
		}
	case abi.FuncTransfer:
		return func(_ context.Context, m api.Module, stack []uint64) {
			buf := bytesAt(m, stack, 1)
			drv, c := r.spiBinding()
			call(stack, c, func() int32 { return drv.Transfer(c, s32(stack, 0), buf) })
		}
	}
	return unknown(abi.Func{Module: abi.ModuleSpi, Name: name})
}

func (r *Runtime) uartTrampoline(name string) api.GoModuleFunc {
	switch name {
	case abi.FuncInit:
		return func(_ context.Context, m api.Module, stack []uint64) {
			ret := u32(stack, 4)
			engine.CheckRange(m, ret, 4)
			drv, c := r.uartBinding()
			callValue(m, stack, c, ret, func() int32 {
				return drv.Init(c, u32(stack, 0), u32(stack, 1), s32(stack, 2), s32(stack, 3))
			})
		}
	case abi.FuncDeinit:
		return func(_ context.Context, _ api.Module, stack []uint64) {
			drv, c := r.uartBinding()
			call(stack, c, func() int32 { return drv.Deinit(c, s32(stack, 0)) })
		}
	case abi.FuncWrite:
		return func(_ context.Context, m api.Module, stack []uint64) {
			data := bytesAt(m, stack, 2)
			drv, c := r.uartBinding()
			call(stack, c, func() int32 { return drv.Write(c, s32(stack, 0), u32(stack, 1), data) })
		}
	case abi.FuncRead:
		return func(_ context.Context, m api.Module, stack []uint64) {
			buf := bytesAt(m, stack, 2)
			drv, c := r.uartBinding()
			call(stack, c, func() int32 { return drv.Read(c, s32(stack, 0), u32(stack, 1), buf) })
		}
	}
	return unknown(abi.Func{Module: abi.ModuleUart, Name: name})
}
