package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit    Phase = "init"    // device open and configuration
	PhaseDeinit  Phase = "deinit"  // device release
	PhaseIO      Phase = "io"      // data operations on an open device
	PhaseBind    Phase = "bind"    // adapter binding
	PhaseLoad    Phase = "load"    // guest module loading
	PhaseRuntime Phase = "runtime" // guest execution
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

// Capability error kinds. These four are the only kinds that cross the
// guest boundary; adapters map each one to exactly one guest error code.
const (
	KindInvalidArg Kind = "invalid_arg"
	KindNoDevice   Kind = "no_device"
	KindFailed     Kind = "failed"
	KindUnexpected Kind = "unexpected"
)

// Host-side kinds, never surfaced to guests.
const (
	KindNotProvided   Kind = "not_provided"
	KindUnbound       Kind = "unbound"
	KindAlreadyBound  Kind = "already_bound"
	KindInvalidState  Kind = "invalid_state"
	KindInvalidConfig Kind = "invalid_config"
)

// CapabilityKinds lists every kind a capability operation may fail with.
var CapabilityKinds = []Kind{KindInvalidArg, KindUnexpected, KindFailed, KindNoDevice}

// Error is the structured error type used throughout the module
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	Peripheral string
	Op         string
	Detail     string
	Handle     int32
	HasHandle  bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Peripheral != "" || e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Peripheral)
		if e.Op != "" {
			if e.Peripheral != "" {
				b.WriteByte('.')
			}
			b.WriteString(e.Op)
		}
	}

	if e.HasHandle {
		b.WriteString(" (handle ")
		b.WriteString(strconv.FormatInt(int64(e.Handle), 10))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrInvalidArg  = &Error{Kind: KindInvalidArg}
	ErrNoDevice    = &Error{Kind: KindNoDevice}
	ErrFailed      = &Error{Kind: KindFailed}
	ErrUnexpected  = &Error{Kind: KindUnexpected}
	ErrNotProvided = &Error{Kind: KindNotProvided}
	ErrUnbound     = &Error{Kind: KindUnbound}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Peripheral sets the peripheral type name (gpio, i2c, spi, uart)
func (b *Builder) Peripheral(p string) *Builder {
	b.err.Peripheral = p
	return b
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Handle sets the device handle the operation addressed
func (b *Builder) Handle(h int32) *Builder {
	b.err.Handle = h
	b.err.HasHandle = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for capability failures

// NoDevice reports an operation on a handle absent from the registry
func NoDevice(phase Phase, peripheral, op string, handle int32) *Error {
	return New(phase, KindNoDevice).
		Peripheral(peripheral).
		Op(op).
		Handle(handle).
		Build()
}

// Failed reports a failed device or library operation
func Failed(phase Phase, peripheral, op string, cause error) *Error {
	return New(phase, KindFailed).
		Peripheral(peripheral).
		Op(op).
		Cause(cause).
		Build()
}

// InvalidArg reports a caller argument that fails a precondition
func InvalidArg(phase Phase, peripheral, op, detail string) *Error {
	return New(phase, KindInvalidArg).
		Peripheral(peripheral).
		Op(op).
		Detail("%s", detail).
		Build()
}

// Unexpected reports a violated backend invariant
func Unexpected(phase Phase, peripheral, op, detail string) *Error {
	return New(phase, KindUnexpected).
		Peripheral(peripheral).
		Op(op).
		Detail("%s", detail).
		Build()
}

// NotProvided reports a capability the engine does not provide
func NotProvided(peripheral string) *Error {
	return New(PhaseBind, KindNotProvided).
		Peripheral(peripheral).
		Detail("capability not provided by engine").
		Build()
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return New(PhaseConfig, KindInvalidConfig).
		Detail("%s", detail).
		Cause(cause).
		Build()
}

// KindOf extracts the Kind of err. Errors that are not *Error, or that
// carry no kind, are reported as KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindUnexpected
}

// IsCapability reports whether k belongs to the capability taxonomy.
func IsCapability(k Kind) bool {
	switch k {
	case KindInvalidArg, KindNoDevice, KindFailed, KindUnexpected:
		return true
	}
	return false
}
