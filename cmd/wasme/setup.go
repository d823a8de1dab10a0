package main

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-embedded/cabi"
	"github.com/wippyai/wasm-embedded/config"
	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/linker"
	"github.com/wippyai/wasm-embedded/linux"
	"github.com/wippyai/wasm-embedded/mock"
)

// loadConfig reads the --config file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"log-level", &cfg.Log.Level},
		{"log-format", &cfg.Log.Format},
		{"backend", &cfg.Backend},
		{"adapter", &cfg.Adapter},
		{"mock", &cfg.Mock},
		{"entry", &cfg.Engine.Entry},
	}
	for _, o := range overrides {
		if v := c.String(o.flag); c.IsSet(o.flag) && v != "" {
			*o.dst = v
		}
	}
	// A script on the command line implies the mock backend.
	if c.IsSet("mock") && !c.IsSet("backend") {
		cfg.Backend = config.BackendMock
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger: human-readable console output or
// production JSON, both on stderr.
func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	if cfg.Format == config.FormatJSON {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// installLogger makes l the logger of every package that logs.
func installLogger(l *zap.Logger) {
	engine.SetLogger(l.Named("engine"))
	linux.SetLogger(l.Named("linux"))
	mock.SetLogger(l.Named("mock"))
	linker.SetLogger(l.Named("linker"))
	cabi.SetLogger(l.Named("cabi"))
}

// openBackend creates the backend cfg selects.
func openBackend(cfg config.Config) (hal.Backend, error) {
	if cfg.Backend == config.BackendMock {
		script, err := mock.Load(cfg.Mock)
		if err != nil {
			return nil, err
		}
		return mock.New(script), nil
	}
	b, err := linux.New(cfg.LinuxConfig())
	if err != nil {
		return nil, err
	}
	return b, nil
}

// newBinder creates the adapter cfg selects. release undoes any binding
// state the adapter holds outside the session.
func newBinder(cfg config.Config, hw *hal.Engine) (b engine.Binder, release func() error, err error) {
	if cfg.Adapter == config.AdapterCabi {
		rt := cabi.NewRuntime()
		if err := rt.BindEngine(hw); err != nil {
			rt.Close()
			return nil, nil, err
		}
		return rt, rt.Close, nil
	}
	return linker.New(hw), func() error { return nil }, nil
}
