package cabi

// Context is an opaque driver context: an index into the Runtime's side
// table. The zero Context is null.
type Context uint32

// Null is the zero context.
const Null Context = 0

// GpioDriver is the GPIO operation table.
type GpioDriver struct {
	// Init returns the new handle.
	Init   func(ctx Context, port, pin uint32, output bool) int32
	Deinit func(ctx Context, h int32) int32
	// Set receives the raw state word; values other than 0 and 1 are
	// rejected with -InvalidArg.
	Set func(ctx Context, h int32, state uint32) int32
	// Get returns 0 for low and 1 for high.
	Get func(ctx Context, h int32) int32
}

// I2cDriver is the I2C operation table.
type I2cDriver struct {
	Init      func(ctx Context, port, baud uint32, sda, scl int32) int32
	Deinit    func(ctx Context, h int32) int32
	Write     func(ctx Context, h int32, addr uint16, data []byte) int32
	Read      func(ctx Context, h int32, addr uint16, buf []byte) int32
	WriteRead func(ctx Context, h int32, addr uint16, data, buf []byte) int32
}

// SpiDriver is the SPI operation table.
type SpiDriver struct {
	Init     func(ctx Context, port, baud uint32, mosi, miso, sck, cs int32) int32
	Deinit   func(ctx Context, h int32) int32
	Read     func(ctx Context, h int32, buf []byte) int32
	Write    func(ctx Context, h int32, data []byte) int32
	Transfer func(ctx Context, h int32, buf []byte) int32
}

// UartDriver is the UART operation table.
type UartDriver struct {
	Init   func(ctx Context, port, baud uint32, tx, rx int32) int32
	Deinit func(ctx Context, h int32) int32
	Write  func(ctx Context, h int32, flags uint32, data []byte) int32
	Read   func(ctx Context, h int32, flags uint32, buf []byte) int32
}

func (d GpioDriver) complete() bool {
	return d.Init != nil && d.Deinit != nil && d.Set != nil && d.Get != nil
}

func (d I2cDriver) complete() bool {
	return d.Init != nil && d.Deinit != nil && d.Write != nil && d.Read != nil && d.WriteRead != nil
}

func (d SpiDriver) complete() bool {
	return d.Init != nil && d.Deinit != nil && d.Read != nil && d.Write != nil && d.Transfer != nil
}

func (d UartDriver) complete() bool {
	return d.Init != nil && d.Deinit != nil && d.Write != nil && d.Read != nil
}
