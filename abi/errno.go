package abi

import (
	"strconv"

	"github.com/wippyai/wasm-embedded/errors"
)

// Errno is the status code every capability import returns to the guest.
type Errno int32

const (
	Ok         Errno = 0
	InvalidArg Errno = 1
	Unexpected Errno = 2
	Failed     Errno = 3
	NoDevice   Errno = 4
)

// KindErrno maps each capability error kind to its guest code. It covers
// every entry of errors.CapabilityKinds; both adapters translate through it.
var KindErrno = map[errors.Kind]Errno{
	errors.KindInvalidArg: InvalidArg,
	errors.KindUnexpected: Unexpected,
	errors.KindFailed:     Failed,
	errors.KindNoDevice:   NoDevice,
}

func (e Errno) String() string {
	switch e {
	case Ok:
		return "ok"
	case InvalidArg:
		return "invalid_arg"
	case Unexpected:
		return "unexpected"
	case Failed:
		return "failed"
	case NoDevice:
		return "no_device"
	}
	return "errno(" + strconv.Itoa(int(e)) + ")"
}

// Kind returns the error kind for e. Ok maps to the empty kind; unknown
// codes map to KindUnexpected.
func (e Errno) Kind() errors.Kind {
	switch e {
	case Ok:
		return ""
	case InvalidArg:
		return errors.KindInvalidArg
	case Failed:
		return errors.KindFailed
	case NoDevice:
		return errors.KindNoDevice
	}
	return errors.KindUnexpected
}

// Err converts e back into a capability error for peripheral.op, or nil for Ok.
func (e Errno) Err(peripheral, op string) error {
	if e == Ok {
		return nil
	}
	return errors.New(errors.PhaseIO, e.Kind()).
		Peripheral(peripheral).
		Op(op).
		Detail("status %s", e).
		Build()
}

// ErrnoOf translates a capability error into its guest code. nil is Ok.
// Errors outside the capability taxonomy are reported as Unexpected.
func ErrnoOf(err error) Errno {
	if err == nil {
		return Ok
	}
	if code, ok := KindErrno[errors.KindOf(err)]; ok {
		return code
	}
	return Unexpected
}
