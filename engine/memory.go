package engine

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-embedded/abi"
)

// Trap ends a guest run with an error code. Host functions raise it by
// panicking; wazero unwinds the guest and Run reports it.
type Trap struct {
	Cause  error
	Reason string
	Code   abi.Errno
}

func (t *Trap) Error() string {
	s := "trap (" + t.Code.String() + ")"
	if t.Reason != "" {
		s += ": " + t.Reason
	}
	if t.Cause != nil {
		s += ": " + t.Cause.Error()
	}
	return s
}

func (t *Trap) Unwrap() error { return t.Cause }

// Raise aborts the current guest call with a trap.
func Raise(code abi.Errno, format string, args ...any) {
	panic(&Trap{Code: code, Reason: fmt.Sprintf(format, args...)})
}

// Bytes returns the guest memory region [ptr, ptr+n) as a slice aliasing
// guest memory. An out-of-range region traps with InvalidArg.
func Bytes(m api.Module, ptr, n uint32) []byte {
	mem := m.Memory()
	if mem == nil {
		Raise(abi.InvalidArg, "guest exports no memory")
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		Raise(abi.InvalidArg, "memory access out of range: %#x+%d (size %d)", ptr, n, mem.Size())
	}
	return b
}

// WriteU32 stores v little-endian at ptr, trapping on an out-of-range address.
func WriteU32(m api.Module, ptr, v uint32) {
	mem := m.Memory()
	if mem == nil {
		Raise(abi.InvalidArg, "guest exports no memory")
	}
	if !mem.WriteUint32Le(ptr, v) {
		Raise(abi.InvalidArg, "memory access out of range: %#x+4 (size %d)", ptr, mem.Size())
	}
}

// CheckRange traps unless [ptr, ptr+n) lies inside guest memory. Adapters
// call it for out-pointers before running the capability operation so a
// bad pointer never leaves a device half configured.
func CheckRange(m api.Module, ptr, n uint32) {
	Bytes(m, ptr, n)
}
