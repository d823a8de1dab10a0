package linux

import (
	"fmt"
	"strings"
	"time"

	"github.com/wippyai/wasm-embedded/errors"
)

// SPI mode bits from linux/spi/spidev.h.
const (
	SpiCpha  = 0x01
	SpiCpol  = 0x02
	SpiMode0 = 0
	SpiMode1 = SpiCpha
	SpiMode2 = SpiCpol
	SpiMode3 = SpiCpol | SpiCpha
	SpiCsHi  = 0x04
	SpiLsb   = 0x08
	Spi3Wire = 0x10
	SpiLoop  = 0x20
	SpiNoCs  = 0x40
	SpiReady = 0x80
)

// Config locates the OS device interfaces. Path templates are formatted
// with fmt.Sprintf.
type Config struct {
	// GpioRoot is the sysfs GPIO class directory.
	GpioRoot string
	// I2cPath takes the port number.
	I2cPath string
	// SpiPath takes the port number and chip select.
	SpiPath string
	// UartPath takes the port number.
	UartPath string
	// UartReadTimeout bounds each single-byte read. 0 blocks.
	UartReadTimeout time.Duration
	// SpiMode is written with SPI_IOC_WR_MODE on init.
	SpiMode uint8
}

// DefaultConfig returns the standard Linux device locations.
func DefaultConfig() Config {
	return Config{
		GpioRoot: "/sys/class/gpio",
		I2cPath:  "/dev/i2c-%d",
		SpiPath:  "/dev/spidev%d.%d",
		UartPath: "/dev/tty%d",
		SpiMode:  SpiMode2 | SpiNoCs,
	}
}

// Validate checks every path template has the verbs it is formatted with.
func (c Config) Validate() error {
	checks := []struct {
		name, tmpl string
		verbs      int
	}{
		{"i2c_path", c.I2cPath, 1},
		{"spi_path", c.SpiPath, 2},
		{"uart_path", c.UartPath, 1},
	}
	for _, ch := range checks {
		if ch.tmpl == "" {
			return errors.Config(ch.name+" is empty", nil)
		}
		if n := strings.Count(ch.tmpl, "%d"); n != ch.verbs {
			return errors.Config(fmt.Sprintf("%s %q must contain %d %%d verb(s)", ch.name, ch.tmpl, ch.verbs), nil)
		}
	}
	if c.GpioRoot == "" {
		return errors.Config("gpio_root is empty", nil)
	}
	return nil
}
