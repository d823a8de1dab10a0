// Package errors provides structured error types for the peripheral host layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Capability operations fail with exactly one of four kinds:
//
//	KindInvalidArg  caller argument fails a precondition
//	KindNoDevice    handle not present in the backend registry
//	KindFailed      underlying device or library operation failed
//	KindUnexpected  backend invariant violated
//
// Adapters translate these four kinds into guest error codes. The remaining
// kinds (KindNotProvided, KindUnbound, ...) describe host-side configuration
// and lifecycle failures and never reach a guest.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseIO, errors.KindFailed).
//		Peripheral("i2c").
//		Op("write").
//		Handle(h).
//		Cause(ioErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NoDevice(errors.PhaseIO, "gpio", "set", h)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match on kind alone:
//
//	if errors.Is(err, errors.ErrNoDevice) { ... }
package errors
