// Package config loads the wasme runtime configuration from TOML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/linux"
)

// Backend names.
const (
	BackendLinux = "linux"
	BackendMock  = "mock"
)

// Adapter names.
const (
	AdapterLinker = "linker"
	AdapterCabi   = "cabi"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the top-level runtime configuration.
type Config struct {
	Backend string `toml:"backend"`
	Adapter string `toml:"adapter"`
	// Mock is the expectation script used by the mock backend.
	Mock   string `toml:"mock"`
	Linux  Linux  `toml:"linux"`
	Engine Engine `toml:"engine"`
	Log    Log    `toml:"log"`
}

// Linux overrides the device locations of the Linux backend.
type Linux struct {
	GpioRoot        string   `toml:"gpio_root"`
	I2cPath         string   `toml:"i2c_path"`
	SpiPath         string   `toml:"spi_path"`
	UartPath        string   `toml:"uart_path"`
	// UartReadTimeout bounds each UART read. 0, the default, blocks.
	UartReadTimeout Duration `toml:"uart_read_timeout"`
	SpiMode         uint8    `toml:"spi_mode"`
}

// Engine configures guest execution.
type Engine struct {
	Entry            string   `toml:"entry"`
	Args             []string `toml:"args"`
	MemoryLimitPages uint32   `toml:"memory_limit_pages"`
	DisableWASI      bool     `toml:"disable_wasi"`
}

// Log configures the zap logger built by the CLI.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	lc := linux.DefaultConfig()
	return Config{
		Backend: BackendLinux,
		Adapter: AdapterLinker,
		Linux: Linux{
			GpioRoot:        lc.GpioRoot,
			I2cPath:         lc.I2cPath,
			SpiPath:         lc.SpiPath,
			UartPath:        lc.UartPath,
			UartReadTimeout: Duration(lc.UartReadTimeout),
			SpiMode:         lc.SpiMode,
		},
		Engine: Engine{Entry: "_start"},
		Log:    Log{Level: "info", Format: FormatConsole},
	}
}

// Load reads path over the defaults. Keys absent from the file keep
// their default values; unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Config("read config "+path, err)
	}
	return Parse(data)
}

// Parse decodes a configuration document over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Config("parse config", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, errors.Config(fmt.Sprintf("unknown key %q", undec[0].String()), nil)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks selections, the log settings and the Linux path templates.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLinux:
		if err := c.LinuxConfig().Validate(); err != nil {
			return err
		}
	case BackendMock:
		if c.Mock == "" {
			return errors.Config("mock backend needs a script", nil)
		}
	default:
		return errors.Config(fmt.Sprintf("unknown backend %q", c.Backend), nil)
	}

	switch c.Adapter {
	case AdapterLinker, AdapterCabi:
	default:
		return errors.Config(fmt.Sprintf("unknown adapter %q", c.Adapter), nil)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Config("log level", err)
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return errors.Config(fmt.Sprintf("unknown log format %q", c.Log.Format), nil)
	}
	return nil
}

// LinuxConfig converts the [linux] table into a backend configuration.
func (c Config) LinuxConfig() linux.Config {
	return linux.Config{
		GpioRoot:        c.Linux.GpioRoot,
		I2cPath:         c.Linux.I2cPath,
		SpiPath:         c.Linux.SpiPath,
		UartPath:        c.Linux.UartPath,
		UartReadTimeout: time.Duration(c.Linux.UartReadTimeout),
		SpiMode:         c.Linux.SpiMode,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
