package mock

import (
	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

type i2c struct{ s *session }

var _ hal.I2c = i2c{}

func (d i2c) Init(port, baud uint32, sda, scl int32) (hal.Handle, error) {
	res := d.s.call(func(*Kind) Kind { return KindI2cInit(port, baud, sda, scl) })
	return initResult(abi.ModuleI2c, res)
}

func (d i2c) Deinit(h hal.Handle) error {
	res := d.s.call(func(*Kind) Kind { return KindI2cDeinit(h) })
	return opResult(abi.ModuleI2c, abi.FuncDeinit, res)
}

func (d i2c) Write(h hal.Handle, addr uint16, data []byte) error {
	res := d.s.call(func(*Kind) Kind { return KindI2cWrite(h, addr, data) })
	return opResult(abi.ModuleI2c, abi.FuncWrite, res)
}

func (d i2c) Read(h hal.Handle, addr uint16, buf []byte) error {
	res := d.s.call(func(exp *Kind) Kind {
		if exp != nil && exp.Type == I2cRead {
			return Kind{Type: I2cRead, Handle: h, Addr: addr, DataIn: fill(buf, exp.DataIn)}
		}
		return KindI2cRead(h, addr, buf)
	})
	return opResult(abi.ModuleI2c, abi.FuncRead, res)
}

func (d i2c) WriteRead(h hal.Handle, addr uint16, data, buf []byte) error {
	res := d.s.call(func(exp *Kind) Kind {
		out := clone(data)
		if exp != nil && exp.Type == I2cWriteRead {
			return Kind{Type: I2cWriteRead, Handle: h, Addr: addr, DataOut: out, DataIn: fill(buf, exp.DataIn)}
		}
		return KindI2cWriteRead(h, addr, out, buf)
	})
	return opResult(abi.ModuleI2c, abi.FuncWriteRead, res)
}
