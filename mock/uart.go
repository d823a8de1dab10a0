package mock

import (
	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

type uart struct{ s *session }

var _ hal.Uart = uart{}

func (d uart) Init(port, baud uint32, tx, rx int32) (hal.Handle, error) {
	res := d.s.call(func(*Kind) Kind { return KindUartInit(port, baud, tx, rx) })
	return initResult(abi.ModuleUart, res)
}

func (d uart) Deinit(h hal.Handle) error {
	res := d.s.call(func(*Kind) Kind { return KindUartDeinit(h) })
	return opResult(abi.ModuleUart, abi.FuncDeinit, res)
}

func (d uart) Write(h hal.Handle, flags uint32, data []byte) error {
	res := d.s.call(func(*Kind) Kind { return KindUartWrite(h, flags, data) })
	return opResult(abi.ModuleUart, abi.FuncWrite, res)
}

func (d uart) Read(h hal.Handle, flags uint32, buf []byte) error {
	res := d.s.call(func(exp *Kind) Kind {
		if exp != nil && exp.Type == UartRead {
			return Kind{Type: UartRead, Handle: h, Flags: flags, DataIn: fill(buf, exp.DataIn)}
		}
		return KindUartRead(h, flags, buf)
	})
	return opResult(abi.ModuleUart, abi.FuncRead, res)
}
