// Package linker binds capability imports with typed host functions.
//
// Each capability operation is registered as one typed Go function in a
// host module named after its peripheral (gpio, i2c, spi, uart). Lowered
// arguments arrive as i32 values; byte lists are (ptr, len) pairs resolved
// against guest memory and every call returns an abi.Errno.
//
// # Errors
//
// Capability errors are mapped through abi.KindErrno, one code per kind.
// A pointer outside guest memory is not an error code: the host function
// traps and the session ends Trapped with InvalidArg.
//
// # Example
//
//	s, _ := eng.NewSession(ctx, wasm)
//	if err := s.Bind(ctx, linker.New(backend.Engine())); err != nil {
//		return err
//	}
//	err := s.Run(ctx, "")
package linker
