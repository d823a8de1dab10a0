// Package abi describes the guest-facing peripheral interface shared by the
// typed and function-table adapters.
//
// Guests import functions from four modules, gpio, i2c, spi and uart. Every
// import takes i32 parameters and returns an i32 Errno:
//
//	0 ok, 1 invalid_arg, 2 unexpected, 3 failed, 4 no_device
//
// Byte buffers are passed as (ptr, len) pairs into guest memory. Values the
// host produces, such as a new handle or a pin level, are written through a
// trailing out-pointer as little-endian u32. Funcs lists every import with
// its parameters expressed as WIT types.
package abi
