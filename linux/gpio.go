package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/resource"
)

// sysfsPin is an exported sysfs GPIO line with its value file held open.
type sysfsPin struct {
	value *os.File
	root  string
	num   uint32
}

func (p *sysfsPin) Close() error {
	err := p.value.Close()
	if uerr := writeSysfs(filepath.Join(p.root, "unexport"), strconv.FormatUint(uint64(p.num), 10)); uerr != nil {
		Logger().Warn("gpio unexport failed", zap.Uint32("pin", p.num), zap.Error(uerr))
	}
	return err
}

func writeSysfs(path, v string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Gpio drives pins through the sysfs GPIO interface. Lines are numbered
// globally by the kernel, so port is logged but not used for addressing.
type Gpio struct {
	pins *resource.Registry[*sysfsPin]
	root string
}

var _ hal.Gpio = (*Gpio)(nil)

// NewGpio creates a GPIO driver rooted at the sysfs class directory root.
func NewGpio(root string) *Gpio {
	return &Gpio{pins: resource.NewRegistry[*sysfsPin](), root: root}
}

func (g *Gpio) Init(port, pin uint32, output bool) (hal.Handle, error) {
	Logger().Debug("gpio init", zap.Uint32("port", port), zap.Uint32("pin", pin), zap.Bool("output", output))

	num := strconv.FormatUint(uint64(pin), 10)
	dir := filepath.Join(g.root, "gpio"+num)

	if _, err := os.Stat(dir); err != nil {
		if err := writeSysfs(filepath.Join(g.root, "export"), num); err != nil {
			return g.initFailed(pin, fmt.Errorf("export: %w", err))
		}
	}

	direction := "in"
	if output {
		direction = "out"
	}
	if err := writeSysfs(filepath.Join(dir, "direction"), direction); err != nil {
		return g.initFailed(pin, fmt.Errorf("direction: %w", err))
	}

	flag := os.O_RDONLY
	if output {
		flag = os.O_RDWR
	}
	value, err := os.OpenFile(filepath.Join(dir, "value"), flag, 0)
	if err != nil {
		return g.initFailed(pin, fmt.Errorf("value: %w", err))
	}

	h, err := g.pins.Insert(&sysfsPin{value: value, root: g.root, num: pin})
	if err != nil {
		value.Close()
		return g.initFailed(pin, err)
	}
	return h, nil
}

func (g *Gpio) initFailed(pin uint32, cause error) (hal.Handle, error) {
	Logger().Error("gpio init failed", zap.Uint32("pin", pin), zap.Error(cause))
	return 0, errors.Failed(errors.PhaseInit, abi.ModuleGpio, abi.FuncInit, cause)
}

func (g *Gpio) Deinit(h hal.Handle) error {
	Logger().Debug("gpio deinit", zap.Int32("handle", h))
	p, ok := g.pins.Remove(h)
	if !ok {
		return errors.NoDevice(errors.PhaseDeinit, abi.ModuleGpio, abi.FuncDeinit, h)
	}
	if err := p.Close(); err != nil {
		return errors.Failed(errors.PhaseDeinit, abi.ModuleGpio, abi.FuncDeinit, err)
	}
	return nil
}

func (g *Gpio) Set(h hal.Handle, state hal.PinState) error {
	Logger().Debug("gpio set", zap.Int32("handle", h), zap.Stringer("state", state))
	v := "0"
	if state == hal.High {
		v = "1"
	}
	return g.with(abi.FuncSet, h, func(p *sysfsPin) error {
		_, err := p.value.WriteAt([]byte(v), 0)
		return err
	})
}

func (g *Gpio) Get(h hal.Handle) (hal.PinState, error) {
	var state hal.PinState
	err := g.with(abi.FuncGet, h, func(p *sysfsPin) error {
		var b [1]byte
		if _, err := p.value.ReadAt(b[:], 0); err != nil {
			return err
		}
		if b[0] == '1' {
			state = hal.High
		}
		return nil
	})
	Logger().Debug("gpio get", zap.Int32("handle", h), zap.Stringer("state", state))
	return state, err
}

func (g *Gpio) with(op string, h hal.Handle, fn func(*sysfsPin) error) error {
	found, err := g.pins.With(h, fn)
	if !found {
		Logger().Warn("no gpio device", zap.Int32("handle", h), zap.String("op", op))
		return errors.NoDevice(errors.PhaseIO, abi.ModuleGpio, op, h)
	}
	if err != nil {
		Logger().Error("gpio op failed", zap.Int32("handle", h), zap.String("op", op), zap.Error(err))
		return errors.Failed(errors.PhaseIO, abi.ModuleGpio, op, err)
	}
	return nil
}

// Close releases every pin still open.
func (g *Gpio) Close() error {
	return g.pins.Close()
}
