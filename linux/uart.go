package linux

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/resource"
)

var errReadTimeout = fmt.Errorf("uart read timed out")

func openSerial(path string, baud uint32, timeout time.Duration) (io.ReadWriteCloser, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        path,
		Baud:        int(baud),
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return port, nil
}

// Uart moves bytes over serial ttys one byte per system call.
type Uart struct {
	ports   *resource.Registry[io.ReadWriteCloser]
	open    func(path string, baud uint32, timeout time.Duration) (io.ReadWriteCloser, error)
	path    string
	timeout time.Duration
}

var _ hal.Uart = (*Uart)(nil)

// NewUart creates a UART driver. path is formatted with the port number.
func NewUart(path string, readTimeout time.Duration) *Uart {
	return &Uart{
		ports:   resource.NewRegistry[io.ReadWriteCloser](),
		open:    openSerial,
		path:    path,
		timeout: readTimeout,
	}
}

func (d *Uart) Init(port, baud uint32, tx, rx int32) (hal.Handle, error) {
	path := fmt.Sprintf(d.path, port)
	Logger().Debug("uart init", zap.String("path", path), zap.Uint32("baud", baud),
		zap.Int32("tx", tx), zap.Int32("rx", rx))

	p, err := d.open(path, baud, d.timeout)
	if err != nil {
		Logger().Error("uart open failed", zap.String("path", path), zap.Error(err))
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleUart, abi.FuncInit, err)
	}
	h, err := d.ports.Insert(p)
	if err != nil {
		p.Close()
		return 0, errors.Failed(errors.PhaseInit, abi.ModuleUart, abi.FuncInit, err)
	}
	return h, nil
}

func (d *Uart) Deinit(h hal.Handle) error {
	Logger().Debug("uart deinit", zap.Int32("handle", h))
	p, ok := d.ports.Remove(h)
	if !ok {
		return errors.NoDevice(errors.PhaseDeinit, abi.ModuleUart, abi.FuncDeinit, h)
	}
	if err := p.Close(); err != nil {
		return errors.Failed(errors.PhaseDeinit, abi.ModuleUart, abi.FuncDeinit, err)
	}
	return nil
}

func (d *Uart) Write(h hal.Handle, flags uint32, data []byte) error {
	Logger().Debug("uart write", zap.Int32("handle", h), zap.Uint32("flags", flags),
		zap.String("data", hex.EncodeToString(data)))
	return d.with(abi.FuncWrite, h, func(p io.ReadWriteCloser) error {
		for i := range data {
			if _, err := p.Write(data[i : i+1]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Uart) Read(h hal.Handle, flags uint32, buf []byte) error {
	err := d.with(abi.FuncRead, h, func(p io.ReadWriteCloser) error {
		for i := range buf {
			n, err := p.Read(buf[i : i+1])
			if err != nil {
				return err
			}
			if n == 0 {
				return errReadTimeout
			}
		}
		return nil
	})
	Logger().Debug("uart read", zap.Int32("handle", h), zap.Uint32("flags", flags),
		zap.String("data", hex.EncodeToString(buf)))
	return err
}

func (d *Uart) with(op string, h hal.Handle, fn func(io.ReadWriteCloser) error) error {
	found, err := d.ports.With(h, fn)
	if !found {
		Logger().Warn("no uart device", zap.Int32("handle", h), zap.String("op", op))
		return errors.NoDevice(errors.PhaseIO, abi.ModuleUart, op, h)
	}
	if err != nil {
		Logger().Error("uart op failed", zap.Int32("handle", h), zap.String("op", op), zap.Error(err))
		return errors.Failed(errors.PhaseIO, abi.ModuleUart, op, err)
	}
	return nil
}

// Close releases every port still open.
func (d *Uart) Close() error {
	return d.ports.Close()
}
