package mock

import (
	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

type gpio struct{ s *session }

var _ hal.Gpio = gpio{}

func (g gpio) Init(port, pin uint32, output bool) (hal.Handle, error) {
	res := g.s.call(func(*Kind) Kind { return KindGpioInit(port, pin, output) })
	return initResult(abi.ModuleGpio, res)
}

func (g gpio) Deinit(h hal.Handle) error {
	res := g.s.call(func(*Kind) Kind { return KindGpioDeinit(h) })
	return opResult(abi.ModuleGpio, abi.FuncDeinit, res)
}

func (g gpio) Set(h hal.Handle, state hal.PinState) error {
	res := g.s.call(func(*Kind) Kind { return KindGpioSet(h, state) })
	return opResult(abi.ModuleGpio, abi.FuncSet, res)
}

func (g gpio) Get(h hal.Handle) (hal.PinState, error) {
	var state hal.PinState
	res := g.s.call(func(exp *Kind) Kind {
		if exp != nil && exp.Type == GpioGet {
			state = exp.State
		}
		return KindGpioGet(h, state)
	})
	return state, opResult(abi.ModuleGpio, abi.FuncGet, res)
}
