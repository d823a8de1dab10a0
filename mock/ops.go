package mock

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wippyai/wasm-embedded/hal"
)

// OpType tags a Kind with the operation it describes.
type OpType string

const (
	I2cInit      OpType = "i2c_init"
	I2cDeinit    OpType = "i2c_deinit"
	I2cWrite     OpType = "i2c_write"
	I2cRead      OpType = "i2c_read"
	I2cWriteRead OpType = "i2c_write_read"
	SpiInit      OpType = "spi_init"
	SpiDeinit    OpType = "spi_deinit"
	SpiRead      OpType = "spi_read"
	SpiWrite     OpType = "spi_write"
	SpiTransfer  OpType = "spi_transfer"
	UartInit     OpType = "uart_init"
	UartDeinit   OpType = "uart_deinit"
	UartWrite    OpType = "uart_write"
	UartRead     OpType = "uart_read"
	GpioInit     OpType = "gpio_init"
	GpioDeinit   OpType = "gpio_deinit"
	GpioSet      OpType = "gpio_set"
	GpioGet      OpType = "gpio_get"
)

// OpTypes lists every operation type.
var OpTypes = []OpType{
	I2cInit, I2cDeinit, I2cWrite, I2cRead, I2cWriteRead,
	SpiInit, SpiDeinit, SpiRead, SpiWrite, SpiTransfer,
	UartInit, UartDeinit, UartWrite, UartRead,
	GpioInit, GpioDeinit, GpioSet, GpioGet,
}

func (t OpType) valid() bool {
	for _, v := range OpTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Init reports whether t opens a device.
func (t OpType) Init() bool {
	return t == I2cInit || t == SpiInit || t == UartInit || t == GpioInit
}

// Kind is one capability call with its exact arguments. Only the fields
// belonging to Type are meaningful; constructors leave the rest zero.
// For read-style operations DataIn and State hold the data returned.
type Kind struct {
	Type OpType

	Port, Baud, Pin uint32
	Output          bool

	Sda, Scl            int32
	Mosi, Miso, Sck, Cs int32
	Tx, Rx              int32

	Handle hal.Handle
	Addr   uint16
	Flags  uint32

	DataOut []byte
	DataIn  []byte
	State   hal.PinState
}

func KindI2cInit(port, baud uint32, sda, scl int32) Kind {
	return Kind{Type: I2cInit, Port: port, Baud: baud, Sda: sda, Scl: scl}
}

func KindI2cDeinit(h hal.Handle) Kind { return Kind{Type: I2cDeinit, Handle: h} }

func KindI2cWrite(h hal.Handle, addr uint16, out []byte) Kind {
	return Kind{Type: I2cWrite, Handle: h, Addr: addr, DataOut: clone(out)}
}

func KindI2cRead(h hal.Handle, addr uint16, in []byte) Kind {
	return Kind{Type: I2cRead, Handle: h, Addr: addr, DataIn: clone(in)}
}

func KindI2cWriteRead(h hal.Handle, addr uint16, out, in []byte) Kind {
	return Kind{Type: I2cWriteRead, Handle: h, Addr: addr, DataOut: clone(out), DataIn: clone(in)}
}

func KindSpiInit(port, baud uint32, mosi, miso, sck, cs int32) Kind {
	return Kind{Type: SpiInit, Port: port, Baud: baud, Mosi: mosi, Miso: miso, Sck: sck, Cs: cs}
}

func KindSpiDeinit(h hal.Handle) Kind { return Kind{Type: SpiDeinit, Handle: h} }

func KindSpiRead(h hal.Handle, in []byte) Kind {
	return Kind{Type: SpiRead, Handle: h, DataIn: clone(in)}
}

func KindSpiWrite(h hal.Handle, out []byte) Kind {
	return Kind{Type: SpiWrite, Handle: h, DataOut: clone(out)}
}

func KindSpiTransfer(h hal.Handle, out, in []byte) Kind {
	return Kind{Type: SpiTransfer, Handle: h, DataOut: clone(out), DataIn: clone(in)}
}

func KindUartInit(port, baud uint32, tx, rx int32) Kind {
	return Kind{Type: UartInit, Port: port, Baud: baud, Tx: tx, Rx: rx}
}

func KindUartDeinit(h hal.Handle) Kind { return Kind{Type: UartDeinit, Handle: h} }

func KindUartWrite(h hal.Handle, flags uint32, out []byte) Kind {
	return Kind{Type: UartWrite, Handle: h, Flags: flags, DataOut: clone(out)}
}

func KindUartRead(h hal.Handle, flags uint32, in []byte) Kind {
	return Kind{Type: UartRead, Handle: h, Flags: flags, DataIn: clone(in)}
}

func KindGpioInit(port, pin uint32, output bool) Kind {
	return Kind{Type: GpioInit, Port: port, Pin: pin, Output: output}
}

func KindGpioDeinit(h hal.Handle) Kind { return Kind{Type: GpioDeinit, Handle: h} }

func KindGpioSet(h hal.Handle, s hal.PinState) Kind {
	return Kind{Type: GpioSet, Handle: h, State: s}
}

func KindGpioGet(h hal.Handle, s hal.PinState) Kind {
	return Kind{Type: GpioGet, Handle: h, State: s}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

// owned returns k with only the fields its Type uses.
func (k Kind) owned() Kind {
	switch k.Type {
	case I2cInit:
		return KindI2cInit(k.Port, k.Baud, k.Sda, k.Scl)
	case SpiInit:
		return KindSpiInit(k.Port, k.Baud, k.Mosi, k.Miso, k.Sck, k.Cs)
	case UartInit:
		return KindUartInit(k.Port, k.Baud, k.Tx, k.Rx)
	case GpioInit:
		return KindGpioInit(k.Port, k.Pin, k.Output)
	case I2cDeinit, SpiDeinit, UartDeinit, GpioDeinit:
		return Kind{Type: k.Type, Handle: k.Handle}
	case I2cWrite:
		return KindI2cWrite(k.Handle, k.Addr, k.DataOut)
	case I2cRead:
		return KindI2cRead(k.Handle, k.Addr, k.DataIn)
	case I2cWriteRead:
		return KindI2cWriteRead(k.Handle, k.Addr, k.DataOut, k.DataIn)
	case SpiRead:
		return KindSpiRead(k.Handle, k.DataIn)
	case SpiWrite:
		return KindSpiWrite(k.Handle, k.DataOut)
	case SpiTransfer:
		return KindSpiTransfer(k.Handle, k.DataOut, k.DataIn)
	case UartWrite:
		return KindUartWrite(k.Handle, k.Flags, k.DataOut)
	case UartRead:
		return KindUartRead(k.Handle, k.Flags, k.DataIn)
	case GpioSet:
		return KindGpioSet(k.Handle, k.State)
	case GpioGet:
		return KindGpioGet(k.Handle, k.State)
	}
	return Kind{Type: k.Type}
}

// stray names the fields set on k that its Type does not use.
func (k Kind) stray() []string {
	o := k.owned()
	var names []string
	check := func(name string, differs bool) {
		if differs {
			names = append(names, name)
		}
	}
	check("port", k.Port != o.Port)
	check("baud", k.Baud != o.Baud)
	check("pin", k.Pin != o.Pin)
	check("output", k.Output != o.Output)
	check("sda", k.Sda != o.Sda)
	check("scl", k.Scl != o.Scl)
	check("mosi", k.Mosi != o.Mosi)
	check("miso", k.Miso != o.Miso)
	check("sck", k.Sck != o.Sck)
	check("cs", k.Cs != o.Cs)
	check("tx", k.Tx != o.Tx)
	check("rx", k.Rx != o.Rx)
	check("handle", k.Handle != o.Handle)
	check("addr", k.Addr != o.Addr)
	check("flags", k.Flags != o.Flags)
	check("data_out", !bytes.Equal(k.DataOut, o.DataOut))
	check("data_in", !bytes.Equal(k.DataIn, o.DataIn))
	check("state", k.State != o.State)
	return names
}

// Equal compares every field. Nil and empty byte slices are equal.
func (k Kind) Equal(o Kind) bool {
	return k.Type == o.Type &&
		k.Port == o.Port && k.Baud == o.Baud && k.Pin == o.Pin && k.Output == o.Output &&
		k.Sda == o.Sda && k.Scl == o.Scl &&
		k.Mosi == o.Mosi && k.Miso == o.Miso && k.Sck == o.Sck && k.Cs == o.Cs &&
		k.Tx == o.Tx && k.Rx == o.Rx &&
		k.Handle == o.Handle && k.Addr == o.Addr && k.Flags == o.Flags &&
		bytes.Equal(k.DataOut, o.DataOut) && bytes.Equal(k.DataIn, o.DataIn) &&
		k.State == o.State
}

// String renders the fields belonging to Type.
func (k Kind) String() string {
	var f []string
	add := func(name string, v any) { f = append(f, fmt.Sprintf("%s: %v", name, v)) }
	hex := func(name string, b []byte) { f = append(f, fmt.Sprintf("%s: [% x]", name, b)) }

	switch k.Type {
	case I2cInit:
		add("port", k.Port)
		add("baud", k.Baud)
		add("sda", k.Sda)
		add("scl", k.Scl)
	case SpiInit:
		add("port", k.Port)
		add("baud", k.Baud)
		add("mosi", k.Mosi)
		add("miso", k.Miso)
		add("sck", k.Sck)
		add("cs", k.Cs)
	case UartInit:
		add("port", k.Port)
		add("baud", k.Baud)
		add("tx", k.Tx)
		add("rx", k.Rx)
	case GpioInit:
		add("port", k.Port)
		add("pin", k.Pin)
		add("output", k.Output)
	case I2cDeinit, SpiDeinit, UartDeinit, GpioDeinit:
		add("handle", k.Handle)
	case I2cWrite:
		add("handle", k.Handle)
		add("addr", fmt.Sprintf("%#x", k.Addr))
		hex("data_out", k.DataOut)
	case I2cRead:
		add("handle", k.Handle)
		add("addr", fmt.Sprintf("%#x", k.Addr))
		hex("data_in", k.DataIn)
	case I2cWriteRead:
		add("handle", k.Handle)
		add("addr", fmt.Sprintf("%#x", k.Addr))
		hex("data_out", k.DataOut)
		hex("data_in", k.DataIn)
	case SpiRead:
		add("handle", k.Handle)
		hex("data_in", k.DataIn)
	case SpiWrite:
		add("handle", k.Handle)
		hex("data_out", k.DataOut)
	case SpiTransfer:
		add("handle", k.Handle)
		hex("data_out", k.DataOut)
		hex("data_in", k.DataIn)
	case UartWrite:
		add("handle", k.Handle)
		add("flags", k.Flags)
		hex("data_out", k.DataOut)
	case UartRead:
		add("handle", k.Handle)
		add("flags", k.Flags)
		hex("data_in", k.DataIn)
	case GpioSet, GpioGet:
		add("handle", k.Handle)
		add("state", k.State)
	}
	return string(k.Type) + "{" + strings.Join(f, ", ") + "}"
}

// Op is one scripted expectation: the call the guest must make next and
// the result it receives.
//
// For init operations a non-negative Res is the handle returned and a
// negative Res is a negated error code. For every other operation Res is
// 0 for success or an error code.
type Op struct {
	Kind Kind
	Res  int32
}

func (o Op) String() string {
	return fmt.Sprintf("%s -> %d", o.Kind, o.Res)
}
