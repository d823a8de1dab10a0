package engine

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
)

// State is a session lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateBound
	StateRunning
	StateCompleted
	StateTrapped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBound:
		return "bound"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTrapped:
		return "trapped"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTrapped
}

// Import is one function import of the guest.
type Import struct {
	Module  string
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Binder registers host functions for a session. Bind is called once,
// while the session is in the Created state.
type Binder interface {
	Bind(ctx context.Context, s *Session) error
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(ctx context.Context, s *Session) error

func (f BinderFunc) Bind(ctx context.Context, s *Session) error { return f(ctx, s) }

// Aborter marks an error raised inside a host call that must not become
// a guest trap. Run re-panics it so the failure reaches the test or
// process driving the session.
type Aborter interface {
	error
	AbortSession()
}

// Session is one guest execution: Created, then Bound by an adapter,
// then Running until it is Completed or Trapped.
type Session struct {
	engine   *Engine
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	instance api.Module
	trap     *Trap
	imports  []Import
	mu       sync.Mutex
	state    State
}

func importsOf(compiled wazero.CompiledModule) []Import {
	defs := compiled.ImportedFunctions()
	out := make([]Import, 0, len(defs))
	for _, def := range defs {
		module, name, _ := def.Import()
		out = append(out, Import{
			Module:  module,
			Name:    name,
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	return out
}

// Runtime returns the session's wazero runtime for host module registration.
func (s *Session) Runtime() wazero.Runtime { return s.runtime }

// Imports lists the guest's function imports in declaration order.
func (s *Session) Imports() []Import { return s.imports }

// Required lists the peripheral modules the guest imports from.
func (s *Session) Required() []hal.Peripheral {
	seen := make(map[string]bool)
	var out []hal.Peripheral
	for _, imp := range s.imports {
		if abi.IsModule(imp.Module) && !seen[imp.Module] {
			seen[imp.Module] = true
			out = append(out, hal.Peripheral(imp.Module))
		}
	}
	return out
}

// CheckImports validates every capability import against the guest ABI
// and verifies hw provides each imported peripheral.
func (s *Session) CheckImports(hw *hal.Engine) error {
	if err := s.ValidateImports(); err != nil {
		return err
	}
	return hw.Require(s.Required()...)
}

// ValidateImports checks that every import from a capability module names
// a known function with the lowered signature the guest ABI defines.
func (s *Session) ValidateImports() error {
	for _, imp := range s.imports {
		if !abi.IsModule(imp.Module) {
			continue
		}
		f, ok := abi.Lookup(imp.Module, imp.Name)
		if !ok {
			return errors.New(errors.PhaseBind, errors.KindInvalidArg).
				Peripheral(imp.Module).
				Op(imp.Name).
				Detail("unknown capability function").
				Build()
		}
		params, results := f.ParamTypes(), f.ResultTypes()
		if !slices.Equal(imp.Params, params) || !slices.Equal(imp.Results, results) {
			return errors.New(errors.PhaseBind, errors.KindInvalidArg).
				Peripheral(imp.Module).
				Op(imp.Name).
				Detail("signature mismatch: imported %s, want %s",
					signature(imp.Params, imp.Results), signature(params, results)).
				Build()
		}
	}
	return nil
}

// signature renders value types the way the text format writes them,
// e.g. "(i32, i32) -> (i32)".
func signature(params, results []api.ValueType) string {
	names := func(vts []api.ValueType) string {
		s := make([]string, len(vts))
		for i, vt := range vts {
			s[i] = api.ValueTypeName(vt)
		}
		return "(" + strings.Join(s, ", ") + ")"
	}
	return names(params) + " -> " + names(results)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Trap returns the trap that ended the session, if any.
func (s *Session) Trap() *Trap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trap
}

// Memory returns the guest memory once the guest has been instantiated.
func (s *Session) Memory() api.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instance == nil {
		return nil
	}
	return s.instance.Memory()
}

// Bind runs b against the session and moves it to Bound on success.
// A failed bind leaves the session in Created.
func (s *Session) Bind(ctx context.Context, b Binder) error {
	s.mu.Lock()
	if s.state != StateCreated {
		state := s.state
		s.mu.Unlock()
		return errors.New(errors.PhaseBind, errors.KindAlreadyBound).
			Detail("session is %s", state).
			Build()
	}
	s.mu.Unlock()

	if err := b.Bind(ctx, s); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateBound
	s.mu.Unlock()
	Logger().Debug("session bound")
	return nil
}

// Run instantiates the guest and calls entry (DefaultEntry when empty).
// It returns nil when the guest completes and a *Trap when it traps.
// An Aborter raised by a host call is re-panicked.
func (s *Session) Run(ctx context.Context, entry string) error {
	if entry == "" {
		entry = DefaultEntry
	}

	s.mu.Lock()
	switch s.state {
	case StateBound:
	case StateCreated:
		s.mu.Unlock()
		return errors.New(errors.PhaseRuntime, errors.KindUnbound).
			Detail("run before bind").
			Build()
	default:
		state := s.state
		s.mu.Unlock()
		return errors.New(errors.PhaseRuntime, errors.KindInvalidState).
			Detail("session is %s", state).
			Build()
	}
	s.state = StateRunning
	s.mu.Unlock()

	err := s.run(ctx, entry)
	return s.finish(err)
}

func (s *Session) run(ctx context.Context, entry string) error {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions()
	ec := s.engine.cfg
	if ec.Stdout != nil {
		cfg = cfg.WithStdout(ec.Stdout)
	}
	if ec.Stderr != nil {
		cfg = cfg.WithStderr(ec.Stderr)
	}
	if ec.Stdin != nil {
		cfg = cfg.WithStdin(ec.Stdin)
	}
	if len(ec.Args) > 0 {
		cfg = cfg.WithArgs(ec.Args...)
	}

	inst, err := s.runtime.InstantiateModule(ctx, s.compiled, cfg)
	if err != nil {
		return &Trap{Code: abi.Unexpected, Reason: "instantiate guest", Cause: err}
	}
	s.mu.Lock()
	s.instance = inst
	s.mu.Unlock()

	fn := inst.ExportedFunction(entry)
	if fn == nil {
		return &Trap{Code: abi.Unexpected, Reason: "guest does not export " + entry}
	}

	Logger().Debug("guest running", zap.String("entry", entry))
	_, err = fn.Call(ctx)
	return err
}

func (s *Session) finish(err error) error {
	var aborter Aborter
	if err != nil && stderrors.As(err, &aborter) {
		s.mu.Lock()
		s.state = StateTrapped
		s.mu.Unlock()
		Logger().Error("session aborted", zap.Error(aborter))
		panic(aborter)
	}

	trap := classify(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if trap == nil {
		s.state = StateCompleted
		Logger().Debug("guest completed")
		return nil
	}
	s.state = StateTrapped
	s.trap = trap
	Logger().Warn("guest trapped", zap.Stringer("code", trap.Code), zap.String("reason", trap.Reason))
	return trap
}

// classify maps a guest call result to a trap, or nil for completion.
func classify(err error) *Trap {
	if err == nil {
		return nil
	}

	var exit *sys.ExitError
	if stderrors.As(err, &exit) {
		if exit.ExitCode() == 0 {
			return nil
		}
		return &Trap{Code: abi.Unexpected, Reason: "guest exited", Cause: err}
	}

	var trap *Trap
	if stderrors.As(err, &trap) {
		return trap
	}

	return &Trap{Code: abi.Unexpected, Reason: "guest fault", Cause: err}
}

// Close releases the guest instance, its host modules and its runtime.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.instance = nil
	s.mu.Unlock()
	return s.runtime.Close(ctx)
}
