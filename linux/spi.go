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

// spiBus is an open, configured SPI device.
type spiBus interface {
	drivers.SPI
	io.Closer
}

// Spi forwards SPI transfers to spidev devices. Each call is one
// independent transfer.
type Spi struct {
	devs *resource.Registry[spiBus]
	open func(path string, mode uint8, baud uint32) (spiBus, error)
	path string
	mode uint8
}

var _ hal.Spi = (*Spi)(nil)

// NewSpi creates an SPI driver. path is formatted with the port number and
// chip select; mode is applied to every device opened.
func NewSpi(path string, mode uint8) *Spi {
	return &Spi{devs: resource.NewRegistry[spiBus](), open: openSpiDev, path: path, mode: mode}
}

func (d *Spi) Init(port, baud uint32, mosi, miso, sck, cs int32) (hal.Handle, error) {
	if cs < 0 {
		cs = 0
	}
	path := fmt.Sprintf(d.path, port, cs)
	Logger().Debug("spi init", zap.String("path", path), zap.Uint32("baud", baud),
		zap.Int32("mosi", mosi), zap.Int32("miso", miso), zap.Int32("sck", sck))

	dev, err := d.open(path, d.mode, baud)
	if err != nil {
		Logger().Error("spi open failed", zap.String("path", path), zap.Error(err))
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleSpi, abi.FuncInit, err)
	}
	h, err := d.devs.Insert(dev)
	if err != nil {
		dev.Close()
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleSpi, abi.FuncInit, err)
	}
	return h, nil
}

func (d *Spi) Deinit(h hal.Handle) error {
	Logger().Debug("spi deinit", zap.Int32("handle", h))
	dev, ok := d.devs.Remove(h)
	if !ok {
		return errors.NoDevice(errors.PhaseDeinit, abi.ModuleSpi, abi.FuncDeinit, h)
	}
	if err := dev.Close(); err != nil {
		return errors.Failed(errors.PhaseDeinit, abi.ModuleSpi, abi.FuncDeinit, err)
	}
	return nil
}

func (d *Spi) Read(h hal.Handle, buf []byte) error {
	err := d.tx(abi.FuncRead, h, nil, buf)
	Logger().Debug("spi read", zap.Int32("handle", h), zap.String("data", hex.EncodeToString(buf)))
	return err
}

func (d *Spi) Write(h hal.Handle, data []byte) error {
	Logger().Debug("spi write", zap.Int32("handle", h), zap.String("data", hex.EncodeToString(data)))
	return d.tx(abi.FuncWrite, h, data, nil)
}

func (d *Spi) Transfer(h hal.Handle, buf []byte) error {
	out := hex.EncodeToString(buf)
	err := d.tx(abi.FuncTransfer, h, buf, buf)
	Logger().Debug("spi transfer", zap.Int32("handle", h), zap.String("out", out),
		zap.String("in", hex.EncodeToString(buf)))
	return err
}

func (d *Spi) tx(op string, h hal.Handle, w, r []byte) error {
	found, err := d.devs.With(h, func(dev spiBus) error {
		return dev.Tx(w, r)
	})
	if !found {
		Logger().Warn("no spi device", zap.Int32("handle", h), zap.String("op", op))
		return errors.NoDevice(errors.PhaseIO, abi.ModuleSpi, op, h)
	}
	if err != nil {
		Logger().Error("spi op failed", zap.Int32("handle", h), zap.String("op", op), zap.Error(err))
		return errors.Failed(errors.PhaseIO, abi.ModuleSpi, op, err)
	}
	return nil
}

// Close releases every device still open.
func (d *Spi) Close() error {
	return d.devs.Close()
}
