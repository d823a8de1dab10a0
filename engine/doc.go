// Package engine runs WebAssembly guests that use the peripheral imports.
//
// It wraps wazero. An Engine holds configuration and a compilation cache;
// every guest execution is a Session with its own wazero runtime, so host
// modules registered for one guest are never visible to another.
//
// # Session Lifecycle
//
//	Created ──Bind──▶ Bound ──Run──▶ Running ──▶ Completed
//	                                        └──▶ Trapped(code)
//
// An adapter (see the linker and cabi packages) implements Binder and
// registers the gpio, i2c, spi and uart host modules during Bind. Run on a
// session that was never bound fails with errors.KindUnbound. Completed and
// Trapped are final.
//
// # Traps
//
// Host functions end a guest run by panicking with a *Trap, usually through
// Raise or the memory helpers Bytes and WriteU32, which trap with
// abi.InvalidArg on out-of-range guest pointers. Guest faults such as
// unreachable and nonzero WASI exits become traps with abi.Unexpected.
//
// Errors implementing Aborter are not traps: Run re-panics them. The mock
// backend uses this to stop a run at the first scripted expectation that
// does not match.
//
// # WASI
//
// Unless Config.DisableWASI is set, wasi_snapshot_preview1 is instantiated
// in every session runtime so guests built with standard toolchains can
// print and exit.
package engine
