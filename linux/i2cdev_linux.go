//go:build linux

package linux

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"
)

// From linux/i2c-dev.h and linux/i2c.h.
const (
	i2cRdwr = 0x0707
	i2cMRd  = 0x0001
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// i2cDev is an open /dev/i2c-N character device.
type i2cDev struct {
	f *os.File
}

var _ drivers.I2C = (*i2cDev)(nil)

func openI2cDev(path string) (i2cBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &i2cDev{f: f}, nil
}

// Tx writes w then reads r in one combined transaction with a repeated
// start between the two messages.
func (d *i2cDev) Tx(addr uint16, w, r []byte) error {
	if len(w) > 0xffff || len(r) > 0xffff {
		return unix.EMSGSIZE
	}
	var msgs [2]i2cMsg
	n := 0
	if len(w) > 0 {
		msgs[n] = i2cMsg{addr: addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))}
		n++
	}
	if len(r) > 0 {
		msgs[n] = i2cMsg{addr: addr, flags: i2cMRd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))}
		n++
	}
	if n == 0 {
		return nil
	}

	data := i2cRdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(n)}
	err := ioctl(d.f.Fd(), i2cRdwr, unsafe.Pointer(&data))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(&msgs)
	return err
}

func (d *i2cDev) Close() error {
	return d.f.Close()
}
