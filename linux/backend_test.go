package linux

import (
	"bytes"
	stderrors "errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
)

func TestGpio_Sysfs(t *testing.T) {
	root := fakeSysfs(t, "5")
	g := NewGpio(root)

	h, err := g.Init(0, 5, true)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "gpio5", "direction")); got != "out" {
		t.Errorf("direction = %q, want out", got)
	}

	if err := g.Set(h, hal.High); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "gpio5", "value")); got != "1" {
		t.Errorf("value = %q, want 1", got)
	}
	state, err := g.Get(h)
	if err != nil || state != hal.High {
		t.Fatalf("Get = %s, %v", state, err)
	}

	if err := g.Set(h, hal.Low); err != nil {
		t.Fatal(err)
	}
	if state, _ := g.Get(h); state != hal.Low {
		t.Errorf("Get after Set(low) = %s", state)
	}

	if err := g.Deinit(h); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "unexport")); got != "5" {
		t.Errorf("unexport = %q, want 5", got)
	}
}

func TestGpio_ExportsMissingLine(t *testing.T) {
	root := fakeSysfs(t)
	g := NewGpio(root)

	_, err := g.Init(0, 7, false)
	if !stderrors.Is(err, errors.ErrFailed) {
		t.Fatalf("Init = %v, want failed", err)
	}
	if got := readFile(t, filepath.Join(root, "export")); got != "7" {
		t.Errorf("export = %q, want 7", got)
	}
}

func TestGpio_InputRejectsSet(t *testing.T) {
	root := fakeSysfs(t, "3")
	g := NewGpio(root)
	h, err := g.Init(0, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "gpio3", "direction")); got != "in" {
		t.Errorf("direction = %q, want in", got)
	}
	if err := g.Set(h, hal.High); !stderrors.Is(err, errors.ErrFailed) {
		t.Fatalf("Set on input = %v, want failed", err)
	}
}

func TestHandlesNeverReused(t *testing.T) {
	root := fakeSysfs(t, "1", "2", "3")
	g := NewGpio(root)

	var last hal.Handle = -1
	for i, pin := range []uint32{1, 2, 3, 1, 2} {
		h, err := g.Init(0, pin, true)
		if err != nil {
			t.Fatal(err)
		}
		if h <= last {
			t.Fatalf("init %d returned %d after %d", i, h, last)
		}
		last = h
		if i%2 == 0 {
			if err := g.Deinit(h); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func newTestBackend(t *testing.T) (*Backend, *fakeI2c, *fakeSpi, *fakeSerial) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.GpioRoot = fakeSysfs(t, "4")
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	bus := &fakeI2c{reply: []byte{0xAA, 0xBB}}
	b.i2c.open = func(path string) (i2cBus, error) {
		if path != "/dev/i2c-1" {
			t.Errorf("i2c path = %q", path)
		}
		return bus, nil
	}

	dev := &fakeSpi{}
	b.spi.open = func(path string, mode uint8, baud uint32) (spiBus, error) {
		dev.path, dev.mode, dev.baud = path, mode, baud
		return dev, nil
	}

	port := &fakeSerial{in: bytes.NewReader([]byte("ok"))}
	b.uart.open = func(path string, baud uint32, timeout time.Duration) (io.ReadWriteCloser, error) {
		if path != "/dev/tty2" {
			t.Errorf("uart path = %q", path)
		}
		port.timeout = timeout
		return port, nil
	}
	return b, bus, dev, port
}

func TestI2c(t *testing.T) {
	b, bus, _, _ := newTestBackend(t)
	d := b.I2c()

	h, err := d.Init(1, 100000, -1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(h, 0x40, []byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	if bus.addr != 0x40 || !bytes.Equal(bus.w, []byte{1, 2}) {
		t.Errorf("tx addr %#x data % x", bus.addr, bus.w)
	}

	buf := make([]byte, 2)
	if err := d.Read(h, 0x40, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{0xAA, 0xBB}) {
		t.Errorf("Read = % x", buf)
	}

	buf = make([]byte, 1)
	if err := d.WriteRead(h, 0x41, []byte{0x0F}, buf); err != nil {
		t.Fatal(err)
	}
	if bus.addr != 0x41 || buf[0] != 0xAA {
		t.Errorf("WriteRead addr %#x buf % x", bus.addr, buf)
	}

	bus.err = stderrors.New("nack")
	if err := d.Write(h, 0x40, []byte{1}); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("Write with bus error = %v, want failed", err)
	}

	if err := d.Deinit(h); err != nil {
		t.Fatal(err)
	}
	if !bus.closed {
		t.Error("Deinit should close the adapter")
	}
}

func TestSpi(t *testing.T) {
	b, _, dev, _ := newTestBackend(t)
	d := b.Spi()

	h, err := d.Init(0, 1000000, -1, -1, -1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if dev.path != "/dev/spidev0.0" {
		t.Errorf("path = %q", dev.path)
	}
	if dev.mode != SpiMode2|SpiNoCs || dev.baud != 1000000 {
		t.Errorf("mode %#x baud %d", dev.mode, dev.baud)
	}

	buf := []byte{0x01, 0x02}
	if err := d.Transfer(h, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dev.wrote, []byte{0x01, 0x02}) || !bytes.Equal(buf, []byte{0xFE, 0xFD}) {
		t.Errorf("transfer wrote % x, buf now % x", dev.wrote, buf)
	}

	rd := make([]byte, 3)
	if err := d.Read(h, rd); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rd, []byte{0x5A, 0x5A, 0x5A}) {
		t.Errorf("Read = % x", rd)
	}

	if err := d.Write(h, []byte{7}); err != nil || !bytes.Equal(dev.wrote, []byte{7}) {
		t.Errorf("Write: %v, wrote % x", err, dev.wrote)
	}

	h2, err := d.Init(1, 500000, -1, -1, -1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if dev.path != "/dev/spidev1.2" || h2 != h+1 {
		t.Errorf("second init path %q handle %d", dev.path, h2)
	}
}

func TestUart_ByteAtATime(t *testing.T) {
	b, _, _, port := newTestBackend(t)
	d := b.Uart()

	h, err := d.Init(2, 115200, -1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(h, 0, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if port.out.String() != "abc" || port.writes != 3 {
		t.Errorf("wrote %q in %d writes", port.out.String(), port.writes)
	}

	buf := make([]byte, 2)
	if err := d.Read(h, 0, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ok" || port.reads != 2 {
		t.Errorf("read %q in %d reads", buf, port.reads)
	}

	if err := d.Read(h, 0, make([]byte, 1)); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("Read past input = %v, want failed", err)
	}
}

func TestOpenFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.I2cPath = filepath.Join(t.TempDir(), "missing-i2c-%d")
	cfg.SpiPath = filepath.Join(t.TempDir(), "missing-spi-%d.%d")
	cfg.UartPath = filepath.Join(t.TempDir(), "missing-tty%d")
	cfg.GpioRoot = t.TempDir()
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := b.I2c().Init(0, 100000, -1, -1); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("i2c Init = %v", err)
	}
	if _, err := b.Spi().Init(0, 100000, -1, -1, -1, 0); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("spi Init = %v", err)
	}
	if _, err := b.Uart().Init(0, 9600, -1, -1); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("uart Init = %v", err)
	}
	if _, err := b.Gpio().Init(0, 1, true); !stderrors.Is(err, errors.ErrFailed) {
		t.Errorf("gpio Init = %v", err)
	}
}

func TestAbsentHandle(t *testing.T) {
	b, _, _, _ := newTestBackend(t)
	defer b.Close()
	const h hal.Handle = 42

	buf := make([]byte, 1)
	ops := map[string]func() error{
		"gpio.deinit":    func() error { return b.Gpio().Deinit(h) },
		"gpio.set":       func() error { return b.Gpio().Set(h, hal.High) },
		"gpio.get":       func() error { _, err := b.Gpio().Get(h); return err },
		"i2c.deinit":     func() error { return b.I2c().Deinit(h) },
		"i2c.write":      func() error { return b.I2c().Write(h, 1, buf) },
		"i2c.read":       func() error { return b.I2c().Read(h, 1, buf) },
		"i2c.write_read": func() error { return b.I2c().WriteRead(h, 1, buf, buf) },
		"spi.deinit":     func() error { return b.Spi().Deinit(h) },
		"spi.read":       func() error { return b.Spi().Read(h, buf) },
		"spi.write":      func() error { return b.Spi().Write(h, buf) },
		"spi.transfer":   func() error { return b.Spi().Transfer(h, buf) },
		"uart.deinit":    func() error { return b.Uart().Deinit(h) },
		"uart.write":     func() error { return b.Uart().Write(h, 0, buf) },
		"uart.read":      func() error { return b.Uart().Read(h, 0, buf) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			if !stderrors.Is(err, errors.ErrNoDevice) {
				t.Fatalf("%s = %v, want no_device", name, err)
			}
		})
	}
}

func TestDoubleDeinit(t *testing.T) {
	b, _, _, _ := newTestBackend(t)

	gh, err := b.Gpio().Init(0, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	ih, _ := b.I2c().Init(1, 100000, -1, -1)
	sh, _ := b.Spi().Init(0, 1000, -1, -1, -1, 0)
	uh, _ := b.Uart().Init(2, 9600, -1, -1)

	deinits := []struct {
		name string
		fn   func() error
	}{
		{"gpio", func() error { return b.Gpio().Deinit(gh) }},
		{"i2c", func() error { return b.I2c().Deinit(ih) }},
		{"spi", func() error { return b.Spi().Deinit(sh) }},
		{"uart", func() error { return b.Uart().Deinit(uh) }},
	}
	for _, d := range deinits {
		if err := d.fn(); err != nil {
			t.Fatalf("%s first deinit: %v", d.name, err)
		}
		if err := d.fn(); !stderrors.Is(err, errors.ErrNoDevice) {
			t.Fatalf("%s second deinit = %v, want no_device", d.name, err)
		}
	}
}

func TestBackend_CloseReleasesDevices(t *testing.T) {
	b, bus, dev, port := newTestBackend(t)
	b.I2c().Init(1, 100000, -1, -1)
	b.Spi().Init(0, 1000, -1, -1, -1, 0)
	b.Uart().Init(2, 9600, -1, -1)

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if !bus.closed || !dev.closed || !port.closed {
		t.Errorf("closed: i2c=%v spi=%v uart=%v", bus.closed, dev.closed, port.closed)
	}

	eng := b.Engine()
	for _, p := range hal.Peripherals {
		if !eng.Provides(p) {
			t.Errorf("engine should provide %s", p)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.SpiPath = "/dev/spidev%d"
	if err := bad.Validate(); errors.KindOf(err) != errors.KindInvalidConfig {
		t.Errorf("Validate = %v, want invalid_config", err)
	}

	bad = DefaultConfig()
	bad.GpioRoot = ""
	if _, err := New(bad); err == nil {
		t.Error("New should reject empty gpio root")
	}
}
