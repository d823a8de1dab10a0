package mock

import (
	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

type spi struct{ s *session }

var _ hal.Spi = spi{}

func (d spi) Init(port, baud uint32, mosi, miso, sck, cs int32) (hal.Handle, error) {
	res := d.s.call(func(*Kind) Kind { return KindSpiInit(port, baud, mosi, miso, sck, cs) })
	return initResult(abi.ModuleSpi, res)
}

func (d spi) Deinit(h hal.Handle) error {
	res := d.s.call(func(*Kind) Kind { return KindSpiDeinit(h) })
	return opResult(abi.ModuleSpi, abi.FuncDeinit, res)
}

func (d spi) Read(h hal.Handle, buf []byte) error {
	res := d.s.call(func(exp *Kind) Kind {
		if exp != nil && exp.Type == SpiRead {
			return Kind{Type: SpiRead, Handle: h, DataIn: fill(buf, exp.DataIn)}
		}
		return KindSpiRead(h, buf)
	})
	return opResult(abi.ModuleSpi, abi.FuncRead, res)
}

func (d spi) Write(h hal.Handle, data []byte) error {
	res := d.s.call(func(*Kind) Kind { return KindSpiWrite(h, data) })
	return opResult(abi.ModuleSpi, abi.FuncWrite, res)
}

// Transfer records the outgoing bytes, then overwrites buf with the
// scripted incoming bytes.
func (d spi) Transfer(h hal.Handle, buf []byte) error {
	res := d.s.call(func(exp *Kind) Kind {
		out := clone(buf)
		if exp != nil && exp.Type == SpiTransfer {
			return Kind{Type: SpiTransfer, Handle: h, DataOut: out, DataIn: fill(buf, exp.DataIn)}
		}
		return KindSpiTransfer(h, out, buf)
	})
	return opResult(abi.ModuleSpi, abi.FuncTransfer, res)
}
