package linux

import (
	"encoding/hex"
	"fmt"
	"io"

	"go.uber.org/zap"
	"tinygo.org/x/drivers"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/resource"
)

// i2cBus is an open I2C adapter.
type i2cBus interface {
	drivers.I2C
	io.Closer
}

// I2c forwards I2C transactions to /dev/i2c-N adapters.
type I2c struct {
	buses *resource.Registry[i2cBus]
	open  func(path string) (i2cBus, error)
	path  string
}

var _ hal.I2c = (*I2c)(nil)

// NewI2c creates an I2C driver. path is formatted with the port number.
func NewI2c(path string) *I2c {
	return &I2c{buses: resource.NewRegistry[i2cBus](), open: openI2cDev, path: path}
}

func (d *I2c) Init(port, baud uint32, sda, scl int32) (hal.Handle, error) {
	path := fmt.Sprintf(d.path, port)
	Logger().Debug("i2c init", zap.String("path", path), zap.Uint32("baud", baud),
		zap.Int32("sda", sda), zap.Int32("scl", scl))

	bus, err := d.open(path)
	if err != nil {
		Logger().Error("i2c open failed", zap.String("path", path), zap.Error(err))
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleI2c, abi.FuncInit, err)
	}
	h, err := d.buses.Insert(bus)
	if err != nil {
		bus.Close()
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleI2c, abi.FuncInit, err)
	}
	return h, nil
}

func (d *I2c) Deinit(h hal.Handle) error {
	Logger().Debug("i2c deinit", zap.Int32("handle", h))
	bus, ok := d.buses.Remove(h)
	if !ok {
		return errors.NoDevice(errors.PhaseDeinit, abi.ModuleI2c, abi.FuncDeinit, h)
	}
	if err := bus.Close(); err != nil {
		return errors.Failed(errors.PhaseDeinit, abi.ModuleI2c, abi.FuncDeinit, err)
	}
	return nil
}

func (d *I2c) Write(h hal.Handle, addr uint16, data []byte) error {
	Logger().Debug("i2c write", zap.Int32("handle", h), zap.Uint16("addr", addr),
		zap.String("data", hex.EncodeToString(data)))
	return d.tx(abi.FuncWrite, h, addr, data, nil)
}

func (d *I2c) Read(h hal.Handle, addr uint16, buf []byte) error {
	err := d.tx(abi.FuncRead, h, addr, nil, buf)
	Logger().Debug("i2c read", zap.Int32("handle", h), zap.Uint16("addr", addr),
		zap.String("data", hex.EncodeToString(buf)))
	return err
}

func (d *I2c) WriteRead(h hal.Handle, addr uint16, data, buf []byte) error {
	err := d.tx(abi.FuncWriteRead, h, addr, data, buf)
	Logger().Debug("i2c write_read", zap.Int32("handle", h), zap.Uint16("addr", addr),
		zap.String("out", hex.EncodeToString(data)), zap.String("in", hex.EncodeToString(buf)))
	return err
}

func (d *I2c) tx(op string, h hal.Handle, addr uint16, w, r []byte) error {
	found, err := d.buses.With(h, func(bus i2cBus) error {
		return bus.Tx(addr, w, r)
	})
	if !found {
		Logger().Warn("no i2c device", zap.Int32("handle", h), zap.String("op", op))
		return errors.NoDevice(errors.PhaseIO, abi.ModuleI2c, op, h)
	}
	if err != nil {
		Logger().Error("i2c op failed", zap.Int32("handle", h), zap.String("op", op), zap.Error(err))
		return errors.Failed(errors.PhaseIO, abi.ModuleI2c, op, err)
	}
	return nil
}

// Close releases every adapter still open.
func (d *I2c) Close() error {
	return d.buses.Close()
}
