package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/errors"
)

// DefaultEntry is the export a session runs when none is named.
const DefaultEntry = "_start"

// Config holds configuration for engine creation
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// Args are passed to the guest through WASI.
	Args []string

	// MemoryLimitPages sets the maximum memory per guest in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32

	// DisableWASI skips instantiating wasi_snapshot_preview1 for guests.
	DisableWASI bool
}

// Engine compiles guest modules and creates isolated sessions for them.
// Compiled code is cached across sessions; each session gets its own
// wazero runtime so host modules bound for one guest never leak into
// another.
type Engine struct {
	cache wazero.CompilationCache
	cfg   Config
}

// New creates a new wazero-based engine. A nil cfg uses defaults.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	e := &Engine{cache: wazero.NewCompilationCache()}
	if cfg != nil {
		e.cfg = *cfg
	}
	return e, nil
}

func (e *Engine) runtimeConfig() wazero.RuntimeConfig {
	rc := wazero.NewRuntimeConfig().
		WithCompilationCache(e.cache).
		WithCloseOnContextDone(true)
	if e.cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(e.cfg.MemoryLimitPages)
	}
	return rc
}

// NewSession compiles wasmBytes into a fresh runtime and returns a session
// in the Created state.
func (e *Engine) NewSession(ctx context.Context, wasmBytes []byte) (*Session, error) {
	r := wazero.NewRuntimeWithConfig(ctx, e.runtimeConfig())

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidArg).
			Detail("compile guest").
			Cause(err).
			Build()
	}

	if !e.cfg.DisableWASI {
		if _, err := InstantiateWASI(ctx, r); err != nil {
			r.Close(ctx)
			return nil, errors.New(errors.PhaseLoad, errors.KindFailed).
				Detail("instantiate WASI").
				Cause(err).
				Build()
		}
	}

	s := &Session{
		engine:   e,
		runtime:  r,
		compiled: compiled,
		imports:  importsOf(compiled),
		state:    StateCreated,
	}
	Logger().Debug("session created",
		zap.Int("imports", len(s.imports)),
		zap.Any("peripherals", s.Required()))
	return s, nil
}

// Close releases the compilation cache. Sessions must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	if err := e.cache.Close(ctx); err != nil {
		return fmt.Errorf("close compilation cache: %w", err)
	}
	return nil
}
