//go:build linux

package linux

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"
)

// From linux/spi/spidev.h.
const (
	spiIocWrMode        = 0x40016b01
	spiIocWrBitsPerWord = 0x40016b03
	spiIocWrMaxSpeedHz  = 0x40046b04
	spiIocMessage1      = 0x40206b00

	spiBitsPerWord = 8
)

type spiIocTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	len            uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// spiDev is an open /dev/spidevB.C character device.
type spiDev struct {
	f     *os.File
	speed uint32
}

var _ drivers.SPI = (*spiDev)(nil)

func openSpiDev(path string, mode uint8, baud uint32) (spiBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d := &spiDev{f: f, speed: baud}

	bits := uint8(spiBitsPerWord)
	if err := ioctl(f.Fd(), spiIocWrMode, unsafe.Pointer(&mode)); err != nil {
		f.Close()
		return nil, err
	}
	if err := ioctl(f.Fd(), spiIocWrBitsPerWord, unsafe.Pointer(&bits)); err != nil {
		f.Close()
		return nil, err
	}
	if baud > 0 {
		if err := ioctl(f.Fd(), spiIocWrMaxSpeedHz, unsafe.Pointer(&baud)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return d, nil
}

// Tx clocks w out and r in as one transfer. When both are set they must
// have the same length; either may be the same slice.
func (d *spiDev) Tx(w, r []byte) error {
	n := len(w)
	if n == 0 {
		n = len(r)
	}
	if n == 0 {
		return nil
	}
	if w != nil && r != nil && len(w) != len(r) {
		return unix.EINVAL
	}

	tr := spiIocTransfer{
		len:         uint32(n),
		speedHz:     d.speed,
		bitsPerWord: spiBitsPerWord,
	}
	if len(w) > 0 {
		tr.txBuf = uint64(uintptr(unsafe.Pointer(&w[0])))
	}
	if len(r) > 0 {
		tr.rxBuf = uint64(uintptr(unsafe.Pointer(&r[0])))
	}
	err := ioctl(d.f.Fd(), spiIocMessage1, unsafe.Pointer(&tr))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	return err
}

// Transfer exchanges a single byte.
func (d *spiDev) Transfer(b byte) (byte, error) {
	buf := []byte{b}
	if err := d.Tx(buf, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *spiDev) Close() error {
	return d.f.Close()
}
